package utils

import (
	"context"
	"reflect"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
)

// check if id exists, using business_id in WHERE, return ErrorRecordNotFound
func ValidateResourceId[T any](ctx context.Context, businessId string, id interface{}) error {
	count, err := ResourceCountWhere[T](ctx, businessId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

func ValidateUnique[T any](ctx context.Context, businessId string, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, businessId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, businessId, column+" = ? AND NOT id = ?", value, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return NewStateConflict("duplicate %s", column)
	}
	return nil
}

// count records, using WHERE business_id = ? AND $condition
// business_id can be blank for admin user
func ResourceCountWhere[T any](ctx context.Context, businessId string, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if businessId != "" {
		dbCtx.Where("business_id = ?", businessId)
	}
	dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FetchModelForChange loads a record by id scoped to the business, for update/delete flows.
func FetchModelForChange[T any](ctx context.Context, businessId string, id int) (*T, error) {
	var model T
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if businessId != "" {
		dbCtx = dbCtx.Where("business_id = ?", businessId)
	}
	if err := dbCtx.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, ErrorRecordNotFound
	}
	return &model, nil
}
