package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
)

type ExpenseCategory struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	IsActive   *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Expense withdraws from an account at creation time.
type Expense struct {
	ID         int             `gorm:"primary_key" json:"id"`
	BusinessId string          `gorm:"index;not null" json:"business_id"`
	OutletId   int             `gorm:"index;not null" json:"outlet_id"`
	CategoryId int             `gorm:"index;not null" json:"category_id"`
	AccountId  int             `gorm:"index;not null" json:"account_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Note       string          `gorm:"size:255" json:"note"`
	ExpenseAt  time.Time       `json:"expense_at"`
	CreatedBy  string          `gorm:"size:100" json:"created_by"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewExpenseCategory struct {
	Name string `json:"name" binding:"required"`
}

type NewExpense struct {
	CategoryId int             `json:"category_id" binding:"required"`
	AccountId  int             `json:"account_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Note       string          `json:"note"`
	ExpenseAt  *time.Time      `json:"expense_at"`
}

func CreateExpenseCategory(ctx context.Context, input *NewExpenseCategory) (*ExpenseCategory, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := utils.ValidateUnique[ExpenseCategory](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}
	category := ExpenseCategory{
		BusinessId: businessId,
		Name:       input.Name,
		IsActive:   utils.NewTrue(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateExpense records the expense and withdraws its amount in one transaction.
func CreateExpense(ctx context.Context, input *NewExpense) (*Expense, error) {
	db := config.GetDB()
	logger := config.GetLogger()
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	outletId, _ := utils.GetOutletIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)

	if err := utils.ValidateResourceId[ExpenseCategory](ctx, businessId, input.CategoryId); err != nil {
		return nil, err
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("amount must be positive")
	}

	expenseAt := time.Now()
	if input.ExpenseAt != nil {
		expenseAt = *input.ExpenseAt
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	account, err := GetAccountForUpdate(tx, ctx, input.AccountId)
	if err != nil {
		return nil, err
	}
	if !account.CanWithdraw(input.Amount) {
		return nil, &utils.InsufficientBalanceError{
			Available: account.CurrentBalance,
			Requested: input.Amount,
		}
	}
	if err := UpdateAccountBalance(tx, ctx, account.ID, input.Amount, BalanceDirectionWithdraw); err != nil {
		config.LogError(logger, "expense", "CreateExpense", "withdraw", input, err)
		return nil, err
	}

	expense := Expense{
		BusinessId: businessId,
		OutletId:   outletId,
		CategoryId: input.CategoryId,
		AccountId:  input.AccountId,
		Amount:     input.Amount,
		Note:       input.Note,
		ExpenseAt:  expenseAt,
		CreatedBy:  userName,
	}
	if err := tx.Create(&expense).Error; err != nil {
		config.LogError(logger, "expense", "CreateExpense", "create", input, err)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func GetExpenses(ctx context.Context, categoryId *int, from, to *time.Time, offset int) ([]Expense, error) {
	var expenses []Expense
	db := config.GetDB()
	query := db.WithContext(ctx)
	if categoryId != nil {
		query = query.Where("category_id = ?", *categoryId)
	}
	if from != nil {
		query = query.Where("expense_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("expense_at <= ?", *to)
	}
	err := query.Order("expense_at DESC").Offset(offset).Limit(config.SearchLimit).Find(&expenses).Error
	return expenses, err
}
