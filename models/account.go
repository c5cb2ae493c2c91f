package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is a named money account (cash drawer, bank, mobile wallet).
// Its balance is mutated only through UpdateAccountBalance.
type Account struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	OutletId       int             `gorm:"index;default:0" json:"outlet_id"`
	AccountType    AccountType     `gorm:"size:12;not null" json:"account_type" binding:"required"`
	Name           string          `gorm:"size:100;not null" json:"name" binding:"required"`
	AccountNumber  string          `gorm:"size:50" json:"account_number"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_balance"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccount struct {
	OutletId      int             `json:"outlet_id"`
	AccountType   AccountType     `json:"account_type" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	AccountNumber string          `json:"account_number"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.CurrentBalance.GreaterThanOrEqual(amount)
}

func (input *NewAccount) validate(ctx context.Context, businessId string, id int) error {
	switch input.AccountType {
	case AccountTypeCash, AccountTypeBank, AccountTypeMobile:
	default:
		return errors.New("invalid account type")
	}
	return utils.ValidateUnique[Account](ctx, businessId, "name", input.Name, id)
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}
	account := Account{
		BusinessId:     businessId,
		OutletId:       input.OutletId,
		AccountType:    input.AccountType,
		Name:           input.Name,
		AccountNumber:  input.AccountNumber,
		CurrentBalance: input.OpeningBalance,
		IsActive:       utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func GetAccount(ctx context.Context, id int) (*Account, error) {
	var account Account
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &account, nil
}

func GetAccounts(ctx context.Context) ([]*Account, error) {
	var accounts []*Account
	db := config.GetDB()
	if err := db.WithContext(ctx).Order("id").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAccountForUpdate loads and row-locks the account inside tx.
// Callers performing a withdrawal check CanWithdraw on the locked row and
// fail the enclosing transaction before mutating anything.
func GetAccountForUpdate(tx *gorm.DB, ctx context.Context, id int) (*Account, error) {
	var account Account
	if err := tx.WithContext(ctx).Clauses(forUpdateClause()).
		Where("id = ?", id).First(&account).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &account, nil
}

// UpdateAccountBalance applies the single balance mutation. deposit/credit
// add, withdraw/debit subtract. It performs no sufficiency check itself.
func UpdateAccountBalance(tx *gorm.DB, ctx context.Context, accountId int, amount decimal.Decimal, direction BalanceDirection) error {
	var delta decimal.Decimal
	switch direction {
	case BalanceDirectionDeposit, BalanceDirectionCredit:
		delta = amount
	case BalanceDirectionWithdraw, BalanceDirectionDebit:
		delta = amount.Neg()
	default:
		return ErrInvalidBalanceDirection
	}
	result := tx.WithContext(ctx).Model(&Account{}).Where("id = ?", accountId).
		Update("current_balance", gorm.Expr("current_balance + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}
