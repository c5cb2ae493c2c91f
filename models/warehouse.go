package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
)

type Warehouse struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	OutletId   int       `gorm:"index;not null" json:"outlet_id"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone      string    `gorm:"size:20" json:"phone"`
	Address    string    `gorm:"type:text" json:"address"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewWarehouse struct {
	OutletId int    `json:"outlet_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewWarehouse) validate(ctx context.Context, businessId string, id int) error {
	if err := utils.ValidateUnique[Warehouse](ctx, businessId, "name", input.Name, id); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[Outlet](ctx, businessId, input.OutletId); err != nil {
		return errors.New("outlet not found")
	}
	return nil
}

func CreateWarehouse(ctx context.Context, input *NewWarehouse) (*Warehouse, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}
	warehouse := Warehouse{
		BusinessId: businessId,
		OutletId:   input.OutletId,
		Name:       input.Name,
		Phone:      input.Phone,
		Address:    input.Address,
		IsActive:   utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&warehouse).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func GetWarehouse(ctx context.Context, id int) (*Warehouse, error) {
	var warehouse Warehouse
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&warehouse).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &warehouse, nil
}
