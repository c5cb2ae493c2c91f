package utils

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"github.com/bsm/redislock"
)

var mutex sync.Mutex

// get type name of struct
func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

// GetSequence returns the next per-business sequence number for model T.
// Redis holds the counter; on a cold counter the max sequence_no is read back
// from the db so restarts never reissue a number. A redis lock serializes
// the cold-counter rebuild across instances; the local mutex covers the
// single-instance case when the locker is not initialized.
func GetSequence[T any](ctx context.Context, businessId string) (int64, error) {
	var model T
	mutex.Lock()
	defer mutex.Unlock()
	typeName := strings.ToLower(GetTypeName[T]())
	cacheKey := businessId + "-" + typeName + "_seq"

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "seq:"+cacheKey, 30*time.Second, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
		})
		if err != nil {
			return 0, err
		}
		defer func() {
			_ = lock.Release(ctx)
		}()
	}

	var seqNo int64
	var err error
	db := config.GetDB()

	for {
		seqNo, err = config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// if not found in redis, get from db
		if seqNo <= 1 {
			var dbSeq *int64
			if err := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
				Where("business_id = ?", businessId).
				Scan(&dbSeq).Error; err != nil {
				return 0, err
			}
			if dbSeq == nil {
				seqNo = 0
			} else {
				seqNo = *dbSeq
			}
			seqNo++
			if err := config.SetRedisObject(cacheKey, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		if seqNo > 0 {
			return seqNo, nil
		}
	}
}
