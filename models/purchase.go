package models

import (
	"context"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase header, the supplier-side mirror of Sale.
type Purchase struct {
	ID          int               `gorm:"primary_key" json:"id"`
	BusinessId  string            `gorm:"index;not null" json:"business_id"`
	OutletId    int               `gorm:"index;not null" json:"outlet_id"`
	WarehouseId int               `gorm:"index;not null" json:"warehouse_id"`
	SupplierId  int               `gorm:"index;not null" json:"supplier_id"`
	PurchaseNo  string            `gorm:"index;size:50;not null" json:"purchase_no"`
	SequenceNo  int64             `gorm:"not null" json:"sequence_no"`
	PurchaseDate time.Time        `gorm:"not null" json:"purchase_date"`
	SubTotal    Valuation         `gorm:"embedded;embeddedPrefix:sub_total_" json:"sub_total"`
	Discount    Valuation         `gorm:"embedded;embeddedPrefix:discount_" json:"discount"`
	VatTax      Valuation         `gorm:"embedded;embeddedPrefix:vat_tax_" json:"vat_tax"`
	GrandTotal  Valuation         `gorm:"embedded;embeddedPrefix:grand_total_" json:"grand_total"`
	PaidAmount  Valuation         `gorm:"embedded;embeddedPrefix:paid_amount_" json:"paid_amount"`
	DueAmount   Valuation         `gorm:"embedded;embeddedPrefix:due_amount_" json:"due_amount"`
	Status      TransactionStatus `gorm:"size:12;not null;default:'pending'" json:"status"`
	Items       []PurchaseItem    `gorm:"foreignkey:PurchaseId" json:"items"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id"`
	PurchaseId   int             `gorm:"index;not null" json:"purchase_id"`
	ProductId    int             `gorm:"index;not null" json:"product_id"`
	VariantId    int             `gorm:"index;default:0" json:"variant_id"`
	Unit         string          `gorm:"size:20;not null" json:"unit"`
	UnitQuantity decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_quantity"`
	BaseQuantity decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_quantity"`
	UnitPrice    Valuation       `gorm:"embedded;embeddedPrefix:unit_price_" json:"unit_price"`
	TotalPrice   Valuation       `gorm:"embedded;embeddedPrefix:total_price_" json:"total_price"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	ItemType     ItemType        `gorm:"size:8;not null;default:'real'" json:"item_type"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPurchase struct {
	OutletId     int               `json:"outlet_id" binding:"required"`
	WarehouseId  int               `json:"warehouse_id" binding:"required"`
	SupplierId   int               `json:"supplier_id" binding:"required"`
	PurchaseDate time.Time         `json:"purchase_date" binding:"required"`
	Discount     decimal.Decimal   `json:"discount"`
	VatTax       decimal.Decimal   `json:"vat_tax"`
	PaidAmount   decimal.Decimal   `json:"paid_amount"`
	AccountId    int               `json:"account_id"`
	Items        []NewPurchaseItem `json:"items" binding:"required,dive"`
}

type NewPurchaseItem struct {
	ProductId       int             `json:"product_id" binding:"required"`
	VariantId       int             `json:"variant_id"`
	Unit            string          `json:"unit" binding:"required"`
	UnitQuantity    decimal.Decimal `json:"unit_quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	ShadowUnitPrice decimal.Decimal `json:"shadow_unit_price"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	ItemType        ItemType        `json:"item_type"`
}

func (p *Purchase) RefreshStatus() {
	switch {
	case p.DueAmount.Real.LessThanOrEqual(decimal.Zero) && p.GrandTotal.Real.IsPositive():
		p.Status = TransactionStatusPaid
	case p.PaidAmount.Real.IsPositive():
		p.Status = TransactionStatusPartial
	default:
		p.Status = TransactionStatusPending
	}
}

func (p *Purchase) ApplyPaymentAmount(amount decimal.Decimal) decimal.Decimal {
	applied := applyPaymentToPair(&p.PaidAmount, &p.DueAmount, amount)
	p.RefreshStatus()
	return applied
}

func (p *Purchase) ReversePaymentAmount(amount decimal.Decimal) {
	reversed := decimal.Min(p.PaidAmount.Real, amount)
	reversedShadow := decimal.Min(p.PaidAmount.Shadow, amount)
	p.PaidAmount.Real = p.PaidAmount.Real.Sub(reversed)
	p.PaidAmount.Shadow = p.PaidAmount.Shadow.Sub(reversedShadow)
	p.DueAmount.Real = p.DueAmount.Real.Add(reversed)
	p.DueAmount.Shadow = p.DueAmount.Shadow.Add(reversedShadow)
	p.RefreshStatus()
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	var purchase Purchase
	db := config.GetDB()
	if err := db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&purchase).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &purchase, nil
}

func GetPurchases(ctx context.Context, supplierId int) ([]*Purchase, error) {
	var purchases []*Purchase
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Items").Order("id DESC").Limit(config.SearchLimit * 10)
	if supplierId > 0 {
		dbCtx = dbCtx.Where("supplier_id = ?", supplierId)
	}
	if err := dbCtx.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// GetOpenPurchasesForUpdate row-locks the supplier's unpaid purchases,
// oldest first, for FIFO due clearing.
func GetOpenPurchasesForUpdate(tx *gorm.DB, ctx context.Context, supplierId int) ([]*Purchase, error) {
	var purchases []*Purchase
	if err := tx.WithContext(ctx).Clauses(forUpdateClause()).
		Where("supplier_id = ? AND due_amount_real > 0 AND status NOT IN ?",
			supplierId, []TransactionStatus{TransactionStatusCancelled}).
		Order("created_at ASC, id ASC").
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}
