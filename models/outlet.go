package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
)

// Outlet is a selling location of the business. Every request carries the
// acting outlet id in its context; transactions are attributed to it.
type Outlet struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone      string    `gorm:"size:20" json:"phone"`
	Address    string    `gorm:"type:text" json:"address"`
	InvoicePrefix string `gorm:"size:20" json:"invoice_prefix"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOutlet struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	InvoicePrefix string `json:"invoice_prefix"`
}

func (input *NewOutlet) validate(ctx context.Context, businessId string, id int) error {
	return utils.ValidateUnique[Outlet](ctx, businessId, "name", input.Name, id)
}

func CreateOutlet(ctx context.Context, input *NewOutlet) (*Outlet, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}
	outlet := Outlet{
		BusinessId:    businessId,
		Name:          input.Name,
		Phone:         input.Phone,
		Address:       input.Address,
		InvoicePrefix: input.InvoicePrefix,
		IsActive:      utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&outlet).Error; err != nil {
		return nil, err
	}
	return &outlet, nil
}

func GetOutlet(ctx context.Context, id int) (*Outlet, error) {
	var outlet Outlet
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&outlet).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &outlet, nil
}

func GetOutlets(ctx context.Context) ([]*Outlet, error) {
	var outlets []*Outlet
	db := config.GetDB()
	if err := db.WithContext(ctx).Order("id").Find(&outlets).Error; err != nil {
		return nil, err
	}
	return outlets, nil
}
