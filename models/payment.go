package models

import (
	"context"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is immutable history once created, except for void transitions.
// Amount is signed: positive for inflows (sale payment, refund received),
// negative for outflows (purchase payment, expense, salary).
// AccountId is nil for advance adjustments, which never touch an Account.
type Payment struct {
	ID            int                  `gorm:"primary_key" json:"id"`
	BusinessId    string               `gorm:"index;not null" json:"business_id"`
	OutletId      int                  `gorm:"index;default:0" json:"outlet_id"`
	ReferenceType PaymentReferenceType `gorm:"size:20;not null" json:"reference_type"`
	SaleId        *int                 `gorm:"index" json:"sale_id"`
	PurchaseId    *int                 `gorm:"index" json:"purchase_id"`
	SalaryId      *int                 `gorm:"index" json:"salary_id"`
	CustomerId    *int                 `gorm:"index" json:"customer_id"`
	SupplierId    *int                 `gorm:"index" json:"supplier_id"`
	Amount        decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"amount"`
	PaymentType   PaymentType          `gorm:"size:20;not null" json:"payment_type"`
	AccountId     *int                 `gorm:"index" json:"account_id"`
	TxnRef        string               `gorm:"index;size:64;not null" json:"txn_ref"`
	Status        PaymentStatus        `gorm:"size:12;not null;default:'completed'" json:"status"`
	PaidAt        time.Time            `gorm:"not null" json:"paid_at"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewTxnRef issues the unique-ish payment reference string.
func NewTxnRef() string {
	return uuid.NewString()
}

func GetPayment(ctx context.Context, id int) (*Payment, error) {
	var payment Payment
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &payment, nil
}

func GetPayments(ctx context.Context, refType PaymentReferenceType, refId int) ([]*Payment, error) {
	var payments []*Payment
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Order("id DESC").Limit(config.SearchLimit * 10)
	if refType != "" {
		dbCtx = dbCtx.Where("reference_type = ?", refType)
	}
	if refId > 0 {
		switch refType {
		case PaymentReferenceTypeSale:
			dbCtx = dbCtx.Where("sale_id = ?", refId)
		case PaymentReferenceTypePurchase:
			dbCtx = dbCtx.Where("purchase_id = ?", refId)
		case PaymentReferenceTypeSalary:
			dbCtx = dbCtx.Where("salary_id = ?", refId)
		}
	}
	if err := dbCtx.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// ReverseAccountEffect puts the linked account balance back where it was
// before this payment. Inflows are withdrawn, outflows re-deposited.
// No-op for advance adjustments (nil account).
func (p *Payment) ReverseAccountEffect(tx *gorm.DB, ctx context.Context) error {
	if p.AccountId == nil {
		return nil
	}
	if p.Amount.IsPositive() {
		account, err := GetAccountForUpdate(tx, ctx, *p.AccountId)
		if err != nil {
			return err
		}
		if !account.CanWithdraw(p.Amount) {
			return &utils.InsufficientBalanceError{
				Available: account.CurrentBalance,
				Requested: p.Amount,
			}
		}
		return UpdateAccountBalance(tx, ctx, *p.AccountId, p.Amount, BalanceDirectionWithdraw)
	}
	return UpdateAccountBalance(tx, ctx, *p.AccountId, p.Amount.Abs(), BalanceDirectionDeposit)
}
