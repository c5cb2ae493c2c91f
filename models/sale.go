package models

import (
	"context"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale header. Every monetary field is a Valuation pair: the real price set
// and the shadow set presented to non-privileged user types. The real view
// holds the ledger invariant grand_total == paid_amount + due_amount after
// every mutation.
type Sale struct {
	ID         int               `gorm:"primary_key" json:"id"`
	BusinessId string            `gorm:"index;not null" json:"business_id"`
	OutletId   int               `gorm:"index;not null" json:"outlet_id"`
	WarehouseId int              `gorm:"index;not null" json:"warehouse_id"`
	CustomerId int               `gorm:"index;not null" json:"customer_id"`
	InvoiceNo  string            `gorm:"index;size:50;not null" json:"invoice_no"`
	SequenceNo int64             `gorm:"not null" json:"sequence_no"`
	SaleDate   time.Time         `gorm:"not null" json:"sale_date"`
	SubTotal   Valuation         `gorm:"embedded;embeddedPrefix:sub_total_" json:"sub_total"`
	Discount   Valuation         `gorm:"embedded;embeddedPrefix:discount_" json:"discount"`
	VatTax     Valuation         `gorm:"embedded;embeddedPrefix:vat_tax_" json:"vat_tax"`
	GrandTotal Valuation         `gorm:"embedded;embeddedPrefix:grand_total_" json:"grand_total"`
	PaidAmount Valuation         `gorm:"embedded;embeddedPrefix:paid_amount_" json:"paid_amount"`
	DueAmount  Valuation         `gorm:"embedded;embeddedPrefix:due_amount_" json:"due_amount"`
	Status     TransactionStatus `gorm:"size:12;not null;default:'pending'" json:"status"`
	Items      []SaleItem        `gorm:"foreignkey:SaleId" json:"items"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type SaleItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id"`
	SaleId       int             `gorm:"index;not null" json:"sale_id"`
	ProductId    int             `gorm:"index;not null" json:"product_id"`
	VariantId    int             `gorm:"index;default:0" json:"variant_id"`
	Unit         string          `gorm:"size:20;not null" json:"unit"`
	UnitQuantity decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_quantity"`
	BaseQuantity decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_quantity"`
	UnitPrice    Valuation       `gorm:"embedded;embeddedPrefix:unit_price_" json:"unit_price"`
	TotalPrice   Valuation       `gorm:"embedded;embeddedPrefix:total_price_" json:"total_price"`
	ItemType     ItemType        `gorm:"size:8;not null;default:'real'" json:"item_type"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSale struct {
	OutletId    int             `json:"outlet_id" binding:"required"`
	WarehouseId int             `json:"warehouse_id" binding:"required"`
	CustomerId  int             `json:"customer_id" binding:"required"`
	SaleDate    time.Time       `json:"sale_date" binding:"required"`
	Discount    decimal.Decimal `json:"discount"`
	VatTax      decimal.Decimal `json:"vat_tax"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	AccountId   int             `json:"account_id"`
	Items       []NewSaleItem   `json:"items" binding:"required,dive"`
}

type NewSaleItem struct {
	ProductId       int             `json:"product_id" binding:"required"`
	VariantId       int             `json:"variant_id"`
	StockId         *int            `json:"stock_id"`
	Unit            string          `json:"unit" binding:"required"`
	UnitQuantity    decimal.Decimal `json:"unit_quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	ShadowUnitPrice decimal.Decimal `json:"shadow_unit_price"`
	ItemType        ItemType        `json:"item_type"`
}

// RefreshStatus derives the header status from the real-view paid/due pair.
func (s *Sale) RefreshStatus() {
	switch {
	case s.DueAmount.Real.LessThanOrEqual(decimal.Zero) && s.GrandTotal.Real.IsPositive():
		s.Status = TransactionStatusPaid
	case s.PaidAmount.Real.IsPositive():
		s.Status = TransactionStatusPartial
	default:
		s.Status = TransactionStatusPending
	}
}

// ApplyPaymentAmount adds a cash amount to paid and removes it from due,
// per view, clamped so neither view's due goes negative.
func applyPaymentToPair(paid, due *Valuation, amount decimal.Decimal) decimal.Decimal {
	appliedReal := decimal.Min(due.Real, amount)
	appliedShadow := decimal.Min(due.Shadow, amount)
	paid.Real = paid.Real.Add(appliedReal)
	paid.Shadow = paid.Shadow.Add(appliedShadow)
	due.Real = due.Real.Sub(appliedReal)
	due.Shadow = due.Shadow.Sub(appliedShadow)
	return appliedReal
}

func (s *Sale) ApplyPaymentAmount(amount decimal.Decimal) decimal.Decimal {
	applied := applyPaymentToPair(&s.PaidAmount, &s.DueAmount, amount)
	s.RefreshStatus()
	return applied
}

// ReversePaymentAmount undoes a previously applied payment on the header.
func (s *Sale) ReversePaymentAmount(amount decimal.Decimal) {
	reversed := decimal.Min(s.PaidAmount.Real, amount)
	reversedShadow := decimal.Min(s.PaidAmount.Shadow, amount)
	s.PaidAmount.Real = s.PaidAmount.Real.Sub(reversed)
	s.PaidAmount.Shadow = s.PaidAmount.Shadow.Sub(reversedShadow)
	s.DueAmount.Real = s.DueAmount.Real.Add(reversed)
	s.DueAmount.Shadow = s.DueAmount.Shadow.Add(reversedShadow)
	s.RefreshStatus()
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	var sale Sale
	db := config.GetDB()
	if err := db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&sale).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &sale, nil
}

func GetSales(ctx context.Context, customerId int) ([]*Sale, error) {
	var sales []*Sale
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items").Order("id DESC").Limit(config.SearchLimit * 10)
	if customerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", customerId)
	}
	if err := dbCtx.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// GetOpenSalesForUpdate row-locks the customer's unpaid sales, oldest first,
// for FIFO due clearing.
func GetOpenSalesForUpdate(tx *gorm.DB, ctx context.Context, customerId int) ([]*Sale, error) {
	var sales []*Sale
	if err := tx.WithContext(ctx).Clauses(forUpdateClause()).
		Where("customer_id = ? AND due_amount_real > 0 AND status NOT IN ?",
			customerId, []TransactionStatus{TransactionStatusCancelled}).
		Order("created_at ASC, id ASC").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
