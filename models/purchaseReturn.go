package models

import (
	"context"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
)

// PurchaseReturn deducts stock at creation; completion settles money only.
type PurchaseReturn struct {
	ID          int          `gorm:"primary_key" json:"id"`
	BusinessId  string       `gorm:"index;not null" json:"business_id"`
	OutletId    int          `gorm:"index;not null" json:"outlet_id"`
	WarehouseId int          `gorm:"index;not null" json:"warehouse_id"`
	PurchaseId  int          `gorm:"index;not null" json:"purchase_id"`
	SupplierId  int          `gorm:"index;not null" json:"supplier_id"`
	ReturnNo    string       `gorm:"index;size:50;not null" json:"return_no"`
	SequenceNo  int64        `gorm:"not null" json:"sequence_no"`
	ReturnType  ReturnType   `gorm:"size:24;not null" json:"return_type"`
	ReturnTotal Valuation    `gorm:"embedded;embeddedPrefix:return_total_" json:"return_total"`
	ReplacementTotal Valuation `gorm:"embedded;embeddedPrefix:replacement_total_" json:"replacement_total"`
	Status      ReturnStatus `gorm:"size:12;not null;default:'pending'" json:"status"`
	Items       []PurchaseReturnItem `gorm:"foreignkey:PurchaseReturnId" json:"items"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseReturnItem struct {
	ID               int             `gorm:"primary_key" json:"id"`
	BusinessId       string          `gorm:"index;not null" json:"business_id"`
	PurchaseReturnId int             `gorm:"index;not null" json:"purchase_return_id"`
	PurchaseItemId   int             `gorm:"index;not null" json:"purchase_item_id"`
	ProductId        int             `gorm:"index;not null" json:"product_id"`
	VariantId        int             `gorm:"index;default:0" json:"variant_id"`
	Unit             string          `gorm:"size:20;not null" json:"unit"`
	ReturnQuantity   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"return_quantity"`
	BaseQuantity     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_quantity"`
	UnitPrice        Valuation       `gorm:"embedded;embeddedPrefix:unit_price_" json:"unit_price"`
	TotalPrice       Valuation       `gorm:"embedded;embeddedPrefix:total_price_" json:"total_price"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewPurchaseReturn struct {
	PurchaseId int                     `json:"purchase_id" binding:"required"`
	ReturnType ReturnType              `json:"return_type" binding:"required"`
	Items      []NewPurchaseReturnItem `json:"items" binding:"required,dive"`
}

type NewPurchaseReturnItem struct {
	PurchaseItemId int             `json:"purchase_item_id" binding:"required"`
	ReturnQuantity decimal.Decimal `json:"return_quantity" binding:"required"`
}

// ReturnedQuantityByPurchaseItem sums the quantity already returned against
// each item of a purchase, skipping cancelled returns.
func ReturnedQuantityByPurchaseItem(ctx context.Context, purchaseId int) (map[int]decimal.Decimal, error) {
	type row struct {
		PurchaseItemId int
		Returned       decimal.Decimal
	}
	var rows []row
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&PurchaseReturnItem{}).
		Select("purchase_return_items.purchase_item_id AS purchase_item_id, SUM(purchase_return_items.return_quantity) AS returned").
		Joins("JOIN purchase_returns ON purchase_returns.id = purchase_return_items.purchase_return_id").
		Where("purchase_returns.purchase_id = ? AND purchase_returns.status <> ?", purchaseId, ReturnStatusCancelled).
		Group("purchase_return_items.purchase_item_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	returned := make(map[int]decimal.Decimal, len(rows))
	for _, r := range rows {
		returned[r.PurchaseItemId] = r.Returned
	}
	return returned, nil
}

func GetPurchaseReturn(ctx context.Context, id int) (*PurchaseReturn, error) {
	var ret PurchaseReturn
	db := config.GetDB()
	if err := db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&ret).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &ret, nil
}
