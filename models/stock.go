package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock is one batch: a quantity of a product variant received into a
// warehouse at one time, carrying its own prices and batch identifier.
// BaseQuantity is always re-derived from Quantity and Unit on mutation;
// the two never drift independently.
type Stock struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	WarehouseId    int             `gorm:"index;not null" json:"warehouse_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	VariantId      int             `gorm:"index;default:0" json:"variant_id"`
	PurchaseItemId *int            `gorm:"index" json:"purchase_item_id"`
	SalesReturnId  *int            `gorm:"index" json:"sales_return_id"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Unit           string          `gorm:"size:20;not null" json:"unit"`
	BaseQuantity   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_quantity"`
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price"`
	SalePrice      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	BatchNo        string          `gorm:"index;size:50;not null" json:"batch_no"`
	Barcode        string          `gorm:"index;size:50;not null" json:"barcode"`
	BarcodePath    string          `gorm:"size:255" json:"barcode_path"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// StockMovement is the append-only audit row written on every batch mutation.
type StockMovement struct {
	ID            int               `gorm:"primary_key" json:"id"`
	BusinessId    string            `gorm:"index;not null" json:"business_id"`
	WarehouseId   int               `gorm:"index;not null" json:"warehouse_id"`
	StockId       int               `gorm:"index;not null" json:"stock_id"`
	ProductId     int               `gorm:"index;not null" json:"product_id"`
	VariantId     int               `gorm:"index;default:0" json:"variant_id"`
	MovementType  StockMovementType `gorm:"size:4;not null" json:"movement_type"`
	BaseQuantity  decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"base_quantity"`
	ReferenceType StockReferenceType `gorm:"size:10;not null" json:"reference_type"`
	ReferenceId   int               `gorm:"index;not null" json:"reference_id"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// NewBatchNo formats the human/machine readable batch identifier,
// e.g. PO-341-K7Q2 or RTN-18-X0PA. The barcode string equals the batch number.
func NewBatchNo(prefix StockReferenceType, refId int) string {
	return fmt.Sprintf("%s-%d-%s", prefix, refId, utils.RandomUpperAlnum(4))
}

// re-derive base from native quantity, the single invariant of a batch row.
func (s *Stock) SetQuantity(qty decimal.Decimal, unitType UnitType) {
	s.Quantity = qty
	s.BaseQuantity = ConvertToBase(qty, s.Unit, unitType)
}

func GetStock(ctx context.Context, id int) (*Stock, error) {
	var stock Stock
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&stock).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &stock, nil
}

// batches with remaining quantity for a product/variant, oldest first.
// stockId pins the lookup to one batch when the caller sells from a
// scanned barcode.
func GetOpenStockBatches(tx *gorm.DB, ctx context.Context, warehouseId, productId, variantId int, stockId *int, forUpdate bool) ([]*Stock, error) {
	dbCtx := tx.WithContext(ctx).
		Where("warehouse_id = ? AND product_id = ? AND variant_id = ?", warehouseId, productId, variantId).
		Where("base_quantity > 0").
		Order("created_at ASC, id ASC")
	if stockId != nil {
		dbCtx = dbCtx.Where("id = ?", *stockId)
	}
	if forUpdate {
		dbCtx = dbCtx.Clauses(forUpdateClause())
	}
	var batches []*Stock
	if err := dbCtx.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func RecordStockMovement(tx *gorm.DB, ctx context.Context, stock *Stock, movementType StockMovementType, baseQty decimal.Decimal, refType StockReferenceType, refId int) error {
	movement := StockMovement{
		BusinessId:    stock.BusinessId,
		WarehouseId:   stock.WarehouseId,
		StockId:       stock.ID,
		ProductId:     stock.ProductId,
		VariantId:     stock.VariantId,
		MovementType:  movementType,
		BaseQuantity:  baseQty,
		ReferenceType: refType,
		ReferenceId:   refId,
	}
	return tx.WithContext(ctx).Create(&movement).Error
}

func GetStockMovements(ctx context.Context, warehouseId, productId, variantId int) ([]*StockMovement, error) {
	var movements []*StockMovement
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("product_id = ?", productId).Order("id DESC")
	if warehouseId > 0 {
		dbCtx = dbCtx.Where("warehouse_id = ?", warehouseId)
	}
	if variantId > 0 {
		dbCtx = dbCtx.Where("variant_id = ?", variantId)
	}
	if err := dbCtx.Limit(200).Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
