package models

import (
	"context"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
)

// SalesReturn starts pending and settles on approval: stock is replenished
// and the customer's due/advance adjusted by the refund (money_back) or the
// replacement net difference (product_replacement).
type SalesReturn struct {
	ID          int          `gorm:"primary_key" json:"id"`
	BusinessId  string       `gorm:"index;not null" json:"business_id"`
	OutletId    int          `gorm:"index;not null" json:"outlet_id"`
	WarehouseId int          `gorm:"index;not null" json:"warehouse_id"`
	SaleId      int          `gorm:"index;not null" json:"sale_id"`
	CustomerId  int          `gorm:"index;not null" json:"customer_id"`
	ReturnNo    string       `gorm:"index;size:50;not null" json:"return_no"`
	SequenceNo  int64        `gorm:"not null" json:"sequence_no"`
	ReturnType  ReturnType   `gorm:"size:24;not null" json:"return_type"`
	ReturnTotal Valuation    `gorm:"embedded;embeddedPrefix:return_total_" json:"return_total"`
	ReplacementTotal Valuation `gorm:"embedded;embeddedPrefix:replacement_total_" json:"replacement_total"`
	Status      ReturnStatus `gorm:"size:12;not null;default:'pending'" json:"status"`
	Items       []SalesReturnItem `gorm:"foreignkey:SalesReturnId" json:"items"`
	Replacements []ReplacementProduct `gorm:"foreignkey:SalesReturnId" json:"replacements"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type SalesReturnItem struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	SalesReturnId  int             `gorm:"index;not null" json:"sales_return_id"`
	SaleItemId     int             `gorm:"index;not null" json:"sale_item_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	VariantId      int             `gorm:"index;default:0" json:"variant_id"`
	Unit           string          `gorm:"size:20;not null" json:"unit"`
	ReturnQuantity decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"return_quantity"`
	BaseQuantity   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_quantity"`
	UnitPrice      Valuation       `gorm:"embedded;embeddedPrefix:unit_price_" json:"unit_price"`
	TotalPrice     Valuation       `gorm:"embedded;embeddedPrefix:total_price_" json:"total_price"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// ReplacementProduct lines exist only for product_replacement returns.
type ReplacementProduct struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id"`
	SalesReturnId int             `gorm:"index;not null" json:"sales_return_id"`
	ProductId     int             `gorm:"index;not null" json:"product_id"`
	VariantId     int             `gorm:"index;default:0" json:"variant_id"`
	Unit          string          `gorm:"size:20;not null" json:"unit"`
	UnitQuantity  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_quantity"`
	BaseQuantity  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_quantity"`
	UnitPrice     Valuation       `gorm:"embedded;embeddedPrefix:unit_price_" json:"unit_price"`
	TotalPrice    Valuation       `gorm:"embedded;embeddedPrefix:total_price_" json:"total_price"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewSalesReturn struct {
	SaleId       int                    `json:"sale_id" binding:"required"`
	ReturnType   ReturnType             `json:"return_type" binding:"required"`
	Items        []NewSalesReturnItem   `json:"items" binding:"required,dive"`
	Replacements []NewReplacementProduct `json:"replacements"`
}

type NewSalesReturnItem struct {
	SaleItemId     int             `json:"sale_item_id" binding:"required"`
	ReturnQuantity decimal.Decimal `json:"return_quantity" binding:"required"`
}

type NewReplacementProduct struct {
	ProductId       int             `json:"product_id" binding:"required"`
	VariantId       int             `json:"variant_id"`
	Unit            string          `json:"unit" binding:"required"`
	UnitQuantity    decimal.Decimal `json:"unit_quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	ShadowUnitPrice decimal.Decimal `json:"shadow_unit_price"`
}

// ReturnedQuantityBySaleItem sums the quantity already returned against each
// item of a sale. Pending returns count too, because they replenish stock on
// approval; cancelled ones do not.
func ReturnedQuantityBySaleItem(ctx context.Context, saleId int) (map[int]decimal.Decimal, error) {
	type row struct {
		SaleItemId int
		Returned   decimal.Decimal
	}
	var rows []row
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&SalesReturnItem{}).
		Select("sales_return_items.sale_item_id AS sale_item_id, SUM(sales_return_items.return_quantity) AS returned").
		Joins("JOIN sales_returns ON sales_returns.id = sales_return_items.sales_return_id").
		Where("sales_returns.sale_id = ? AND sales_returns.status <> ?", saleId, ReturnStatusCancelled).
		Group("sales_return_items.sale_item_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	returned := make(map[int]decimal.Decimal, len(rows))
	for _, r := range rows {
		returned[r.SaleItemId] = r.Returned
	}
	return returned, nil
}

func GetSalesReturn(ctx context.Context, id int) (*SalesReturn, error) {
	var ret SalesReturn
	db := config.GetDB()
	if err := db.WithContext(ctx).Preload("Items").Preload("Replacements").
		Where("id = ?", id).First(&ret).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &ret, nil
}
