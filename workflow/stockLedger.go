package workflow

import (
	"context"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// batchDraw is one planned deduction against a single batch, in base units.
type batchDraw struct {
	Batch        *models.Stock
	BaseQuantity decimal.Decimal
}

// planFifoConsumption allocates requiredBase across the given batches in the
// order they arrive (callers pass them oldest first). It mutates nothing:
// a shortfall returns InsufficientStockError and no plan, so a failed
// request leaves every batch untouched.
func planFifoConsumption(batches []*models.Stock, requiredBase decimal.Decimal, unit string) ([]batchDraw, error) {
	available := decimal.Zero
	for _, b := range batches {
		available = available.Add(b.BaseQuantity)
	}
	if available.LessThan(requiredBase) {
		return nil, &utils.InsufficientStockError{
			Available: available,
			Requested: requiredBase,
			Unit:      unit,
		}
	}

	var draws []batchDraw
	remaining := requiredBase
	for _, b := range batches {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(b.BaseQuantity, remaining)
		if !take.IsPositive() {
			continue
		}
		draws = append(draws, batchDraw{Batch: b, BaseQuantity: take})
		remaining = remaining.Sub(take)
	}
	return draws, nil
}

// AvailableBaseQuantity sums remaining base quantity across open batches,
// optionally pinned to a single batch.
func AvailableBaseQuantity(ctx context.Context, warehouseId, productId, variantId int, stockId *int) (decimal.Decimal, error) {
	db := config.GetDB()
	batches, err := models.GetOpenStockBatches(db, ctx, warehouseId, productId, variantId, stockId, false)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, b := range batches {
		total = total.Add(b.BaseQuantity)
	}
	return total, nil
}

// ConsumeStockFIFO deducts quantity (in the caller's unit) from the oldest
// open batches first, inside tx, row-locking every candidate batch. The
// shortfall error reports available vs requested converted back to the
// caller's unit. Every touched batch gets an out movement referencing the
// consuming transaction.
func ConsumeStockFIFO(tx *gorm.DB, ctx context.Context, warehouseId int, product *models.Product, variantId int, stockId *int, quantity decimal.Decimal, unit string, refType models.StockReferenceType, refId int) error {
	logger := config.GetLogger()
	requiredBase := models.ConvertToBase(quantity, unit, product.UnitType)

	batches, err := models.GetOpenStockBatches(tx, ctx, warehouseId, product.ID, variantId, stockId, true)
	if err != nil {
		config.LogError(logger, "stockLedger.go", "ConsumeStockFIFO", "GetOpenStockBatches", product.ID, err)
		return err
	}

	draws, err := planFifoConsumption(batches, requiredBase, unit)
	if err != nil {
		if shortfall, ok := err.(*utils.InsufficientStockError); ok {
			return &utils.InsufficientStockError{
				Available: models.ConvertFromBase(shortfall.Available, unit, product.UnitType),
				Requested: quantity,
				Unit:      unit,
			}
		}
		return err
	}

	for _, draw := range draws {
		batch := draw.Batch
		newBase := batch.BaseQuantity.Sub(draw.BaseQuantity)
		batch.BaseQuantity = newBase
		batch.Quantity = models.ConvertFromBase(newBase, batch.Unit, product.UnitType)
		if err := tx.WithContext(ctx).Model(batch).
			Updates(map[string]interface{}{
				"quantity":      batch.Quantity,
				"base_quantity": batch.BaseQuantity,
			}).Error; err != nil {
			config.LogError(logger, "stockLedger.go", "ConsumeStockFIFO", "update batch", batch.ID, err)
			return err
		}
		if err := models.RecordStockMovement(tx, ctx, batch, models.StockMovementOut, draw.BaseQuantity, refType, refId); err != nil {
			config.LogError(logger, "stockLedger.go", "ConsumeStockFIFO", "RecordStockMovement", batch.ID, err)
			return err
		}
	}
	return nil
}

// CreateStockBatch inserts a fresh batch for a purchase item and records the
// in movement. The barcode string equals the batch number.
func CreateStockBatch(tx *gorm.DB, ctx context.Context, warehouseId int, product *models.Product, variantId int, purchaseItemId int, quantity decimal.Decimal, unit string, purchasePrice, salePrice decimal.Decimal) (*models.Stock, error) {
	logger := config.GetLogger()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	batchNo := models.NewBatchNo(models.StockReferenceTypePurchase, purchaseItemId)
	batch := models.Stock{
		BusinessId:     businessId,
		WarehouseId:    warehouseId,
		ProductId:      product.ID,
		VariantId:      variantId,
		PurchaseItemId: &purchaseItemId,
		Unit:           unit,
		PurchasePrice:  purchasePrice,
		SalePrice:      salePrice,
		BatchNo:        batchNo,
		Barcode:        batchNo,
	}
	batch.SetQuantity(quantity, product.UnitType)

	if err := tx.WithContext(ctx).Create(&batch).Error; err != nil {
		config.LogError(logger, "stockLedger.go", "CreateStockBatch", "create", purchaseItemId, err)
		return nil, err
	}
	if err := models.RecordStockMovement(tx, ctx, &batch, models.StockMovementIn, batch.BaseQuantity, models.StockReferenceTypePurchase, purchaseItemId); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ReplenishStock puts returned goods back: it tops up the newest matching
// batch, or opens an RTN batch when none remains.
func ReplenishStock(tx *gorm.DB, ctx context.Context, warehouseId int, product *models.Product, variantId int, quantity decimal.Decimal, unit string, salesReturnId int) error {
	logger := config.GetLogger()
	incomingBase := models.ConvertToBase(quantity, unit, product.UnitType)

	var batch models.Stock
	err := tx.WithContext(ctx).Clauses(forUpdate()).
		Where("warehouse_id = ? AND product_id = ? AND variant_id = ?", warehouseId, product.ID, variantId).
		Order("created_at DESC, id DESC").
		First(&batch).Error
	if err == nil {
		newBase := batch.BaseQuantity.Add(incomingBase)
		batch.BaseQuantity = newBase
		batch.Quantity = models.ConvertFromBase(newBase, batch.Unit, product.UnitType)
		if err := tx.WithContext(ctx).Model(&batch).
			Updates(map[string]interface{}{
				"quantity":      batch.Quantity,
				"base_quantity": batch.BaseQuantity,
			}).Error; err != nil {
			config.LogError(logger, "stockLedger.go", "ReplenishStock", "update batch", batch.ID, err)
			return err
		}
		return models.RecordStockMovement(tx, ctx, &batch, models.StockMovementIn, incomingBase, models.StockReferenceTypeSalesReturn, salesReturnId)
	}

	businessId, _ := utils.GetBusinessIdFromContext(ctx)
	batchNo := models.NewBatchNo(models.StockReferenceTypeSalesReturn, salesReturnId)
	fresh := models.Stock{
		BusinessId:    businessId,
		WarehouseId:   warehouseId,
		ProductId:     product.ID,
		VariantId:     variantId,
		SalesReturnId: &salesReturnId,
		Unit:          unit,
		BatchNo:       batchNo,
		Barcode:       batchNo,
	}
	fresh.SetQuantity(quantity, product.UnitType)
	if err := tx.WithContext(ctx).Create(&fresh).Error; err != nil {
		config.LogError(logger, "stockLedger.go", "ReplenishStock", "create RTN batch", salesReturnId, err)
		return err
	}
	return models.RecordStockMovement(tx, ctx, &fresh, models.StockMovementIn, fresh.BaseQuantity, models.StockReferenceTypeSalesReturn, salesReturnId)
}

// DeleteBatchesForPurchaseItem removes the batches a purchase item created,
// used when the item is deleted or re-priced. Fails if any batch was already
// partially consumed, so sold stock cannot silently vanish.
func DeleteBatchesForPurchaseItem(tx *gorm.DB, ctx context.Context, purchaseItemId int) error {
	var batches []*models.Stock
	if err := tx.WithContext(ctx).Clauses(forUpdate()).
		Where("purchase_item_id = ?", purchaseItemId).
		Find(&batches).Error; err != nil {
		return err
	}
	for _, batch := range batches {
		var consumed int64
		if err := tx.WithContext(ctx).Model(&models.StockMovement{}).
			Where("stock_id = ? AND movement_type = ?", batch.ID, models.StockMovementOut).
			Count(&consumed).Error; err != nil {
			return err
		}
		if consumed > 0 {
			return utils.NewStateConflict("batch %s already has outgoing stock", batch.BatchNo)
		}
		if err := models.RecordStockMovement(tx, ctx, batch, models.StockMovementOut, batch.BaseQuantity, models.StockReferenceTypePurchase, purchaseItemId); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Delete(batch).Error; err != nil {
			return err
		}
	}
	return nil
}
