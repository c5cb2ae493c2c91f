package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Supplier struct {
	ID         int    `gorm:"primary_key" json:"id"`
	BusinessId string `gorm:"index;not null" json:"business_id"`
	Name       string `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone      string `gorm:"index;size:20" json:"phone"`
	Email      string `gorm:"size:100" json:"email"`
	Address    string `gorm:"type:text" json:"address"`
	counterpartyBalances
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (input *NewSupplier) validate(ctx context.Context, businessId string, id int) error {
	if len(strings.TrimSpace(input.Phone)) > 0 {
		if err := utils.ValidateUnique[Supplier](ctx, businessId, "phone", input.Phone, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}
	supplier := Supplier{
		BusinessId: businessId,
		Name:       input.Name,
		Phone:      input.Phone,
		Email:      input.Email,
		Address:    input.Address,
		IsActive:   utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	var supplier Supplier
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&supplier).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &supplier, nil
}

func GetSuppliers(ctx context.Context) ([]*Supplier, error) {
	var suppliers []*Supplier
	db := config.GetDB()
	if err := db.WithContext(ctx).Order("id").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

func AddSupplierDue(tx *gorm.DB, ctx context.Context, supplierId int, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	return applyBalanceDelta(tx, ctx, "suppliers", supplierId, "due_amount", amount)
}

func ReduceSupplierDue(tx *gorm.DB, ctx context.Context, supplierId int, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	return applyBalanceDelta(tx, ctx, "suppliers", supplierId, "due_amount", amount.Neg())
}

func AddSupplierAdvance(tx *gorm.DB, ctx context.Context, supplierId int, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	return applyBalanceDelta(tx, ctx, "suppliers", supplierId, "advance_amount", amount)
}

// DrawSupplierAdvance fails with InsufficientAdvanceError before mutating.
func DrawSupplierAdvance(tx *gorm.DB, ctx context.Context, supplierId int, amount decimal.Decimal) error {
	return drawAdvance(tx, ctx, "suppliers", supplierId, amount)
}
