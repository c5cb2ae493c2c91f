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

type Customer struct {
	ID         int    `gorm:"primary_key" json:"id"`
	BusinessId string `gorm:"index;not null" json:"business_id"`
	OutletId   int    `gorm:"index;default:0" json:"outlet_id"`
	Name       string `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone      string `gorm:"index;size:20" json:"phone"`
	Email      string `gorm:"size:100" json:"email"`
	Address    string `gorm:"type:text" json:"address"`
	counterpartyBalances
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	OutletId int    `json:"outlet_id"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

func (input *NewCustomer) validate(ctx context.Context, businessId string, id int) error {
	if len(strings.TrimSpace(input.Phone)) > 0 {
		if err := utils.ValidateUnique[Customer](ctx, businessId, "phone", input.Phone, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}
	customer := Customer{
		BusinessId: businessId,
		OutletId:   input.OutletId,
		Name:       input.Name,
		Phone:      input.Phone,
		Email:      input.Email,
		Address:    input.Address,
		IsActive:   utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	var customer Customer
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &customer, nil
}

func GetCustomers(ctx context.Context) ([]*Customer, error) {
	var customers []*Customer
	db := config.GetDB()
	if err := db.WithContext(ctx).Order("id").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func AddCustomerDue(tx *gorm.DB, ctx context.Context, customerId int, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	return applyBalanceDelta(tx, ctx, "customers", customerId, "due_amount", amount)
}

func ReduceCustomerDue(tx *gorm.DB, ctx context.Context, customerId int, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	return applyBalanceDelta(tx, ctx, "customers", customerId, "due_amount", amount.Neg())
}

func AddCustomerAdvance(tx *gorm.DB, ctx context.Context, customerId int, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	return applyBalanceDelta(tx, ctx, "customers", customerId, "advance_amount", amount)
}

// DrawCustomerAdvance fails with InsufficientAdvanceError before mutating.
func DrawCustomerAdvance(tx *gorm.DB, ctx context.Context, customerId int, amount decimal.Decimal) error {
	return drawAdvance(tx, ctx, "customers", customerId, amount)
}
