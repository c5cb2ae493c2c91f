package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"gorm.io/gorm"
)

// AcquireBusinessPostingLock serializes ledger posting per business across
// instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB transaction that will do the posting.
func AcquireBusinessPostingLock(tx *gorm.DB, businessId string) error {
	lockName := fmt.Sprintf("posting:%s", businessId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire posting lock for business_id=%s", businessId)
	}
	return nil
}

func ReleaseBusinessPostingLock(tx *gorm.DB, businessId string) {
	lockName := fmt.Sprintf("posting:%s", businessId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

// runPosting wraps fn in a transaction holding the business posting lock.
// Any error rolls everything back; no partial state survives.
func runPosting(ctx context.Context, businessId string, fn func(tx *gorm.DB) error) error {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	if err := AcquireBusinessPostingLock(tx, businessId); err != nil {
		return err
	}
	defer ReleaseBusinessPostingLock(tx, businessId)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit().Error
}
