package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreatePurchase posts a purchase as one unit: a fresh stock batch per item,
// supplier due for the unpaid portion, and the paid portion withdrawn from
// the account with a Payment row.
func CreatePurchase(ctx context.Context, input *models.NewPurchase) (*models.Purchase, error) {
	logger := config.GetLogger()
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateResourceId[models.Supplier](ctx, businessId, input.SupplierId); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[models.Warehouse](ctx, businessId, input.WarehouseId); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, errors.New("a purchase needs at least one item")
	}
	if input.PaidAmount.IsPositive() && input.AccountId == 0 {
		return nil, errors.New("account_id is required when paid_amount is set")
	}

	products := make(map[int]*models.Product, len(input.Items))
	for _, line := range input.Items {
		product, err := models.GetProduct(ctx, line.ProductId)
		if err != nil {
			return nil, err
		}
		if !models.KnownUnit(product.UnitType, line.Unit) {
			return nil, fmt.Errorf("unit %q is not valid for product %s", line.Unit, product.Code)
		}
		if !line.UnitQuantity.IsPositive() {
			return nil, fmt.Errorf("quantity must be positive for product %s", product.Code)
		}
		products[line.ProductId] = product
	}

	sequenceNo, err := utils.GetSequence[models.Purchase](ctx, businessId)
	if err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "CreatePurchase", "GetSequence", businessId, err)
		return nil, err
	}

	var purchase *models.Purchase
	err = runPosting(ctx, businessId, func(tx *gorm.DB) error {
		subTotal := models.Valuation{Real: decimal.Zero, Shadow: decimal.Zero}
		items := make([]models.PurchaseItem, 0, len(input.Items))

		for _, line := range input.Items {
			product := products[line.ProductId]
			baseQty := models.ConvertToBase(line.UnitQuantity, line.Unit, product.UnitType)

			shadowPrice := line.ShadowUnitPrice
			if shadowPrice.IsZero() {
				shadowPrice = line.UnitPrice
			}
			unitPrice := models.NewValuation(line.UnitPrice, shadowPrice)
			totalPrice := unitPrice.MulQty(line.UnitQuantity)
			subTotal = subTotal.Add(totalPrice)

			itemType := line.ItemType
			if itemType == "" {
				itemType = models.ItemTypeReal
			}
			items = append(items, models.PurchaseItem{
				BusinessId:   businessId,
				ProductId:    line.ProductId,
				VariantId:    line.VariantId,
				Unit:         line.Unit,
				UnitQuantity: line.UnitQuantity,
				BaseQuantity: baseQty,
				UnitPrice:    unitPrice,
				TotalPrice:   totalPrice,
				SalePrice:    line.SalePrice,
				ItemType:     itemType,
			})
		}

		discount := models.Uniform(input.Discount)
		vatTax := models.Uniform(input.VatTax)
		grandTotal := subTotal.Sub(discount).Add(vatTax)
		if grandTotal.Real.IsNegative() || grandTotal.Shadow.IsNegative() {
			return errors.New("discount exceeds sub total")
		}
		if input.PaidAmount.GreaterThan(grandTotal.Real) {
			return errors.New("paid amount exceeds grand total")
		}

		purchase = &models.Purchase{
			BusinessId:   businessId,
			OutletId:     input.OutletId,
			WarehouseId:  input.WarehouseId,
			SupplierId:   input.SupplierId,
			PurchaseNo:   fmt.Sprintf("PO-%d-%06d", input.OutletId, sequenceNo),
			SequenceNo:   sequenceNo,
			PurchaseDate: input.PurchaseDate,
			SubTotal:     subTotal,
			Discount:     discount,
			VatTax:       vatTax,
			GrandTotal:   grandTotal,
			DueAmount:    grandTotal,
			Items:        items,
		}
		purchase.RefreshStatus()
		if err := tx.WithContext(ctx).Create(purchase).Error; err != nil {
			config.LogError(logger, "purchaseWorkflow.go", "CreatePurchase", "create header", input, err)
			return err
		}

		for i := range purchase.Items {
			item := &purchase.Items[i]
			if item.ItemType == models.ItemTypePickup {
				continue
			}
			product := products[item.ProductId]
			if _, err := CreateStockBatch(tx, ctx, input.WarehouseId, product, item.VariantId, item.ID, item.UnitQuantity, item.Unit, item.UnitPrice.Real, item.SalePrice); err != nil {
				return err
			}
		}

		if input.PaidAmount.IsPositive() {
			purchase.ApplyPaymentAmount(input.PaidAmount)
			if err := tx.WithContext(ctx).Save(purchase).Error; err != nil {
				return err
			}
			account, err := models.GetAccountForUpdate(tx, ctx, input.AccountId)
			if err != nil {
				return err
			}
			if !account.CanWithdraw(input.PaidAmount) {
				return &utils.InsufficientBalanceError{
					Available: account.CurrentBalance,
					Requested: input.PaidAmount,
				}
			}
			if err := models.UpdateAccountBalance(tx, ctx, input.AccountId, input.PaidAmount, models.BalanceDirectionWithdraw); err != nil {
				return err
			}
			outletId, _ := utils.GetOutletIdFromContext(ctx)
			accountId := input.AccountId
			payment := models.Payment{
				BusinessId:    businessId,
				OutletId:      outletId,
				ReferenceType: models.PaymentReferenceTypePurchase,
				PurchaseId:    &purchase.ID,
				SupplierId:    &input.SupplierId,
				Amount:        input.PaidAmount.Neg(),
				PaymentType:   models.PaymentTypeCash,
				AccountId:     &accountId,
				TxnRef:        models.NewTxnRef(),
				Status:        models.PaymentStatusCompleted,
				PaidAt:        input.PurchaseDate,
			}
			if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
				return err
			}
		}

		return models.AddSupplierDue(tx, ctx, input.SupplierId, purchase.DueAmount.Real)
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// UpdatePurchaseItemInput re-prices or re-quantifies one purchase item.
type UpdatePurchaseItemInput struct {
	UnitQuantity    decimal.Decimal `json:"unit_quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	ShadowUnitPrice decimal.Decimal `json:"shadow_unit_price"`
	SalePrice       decimal.Decimal `json:"sale_price"`
}

// UpdatePurchaseItem replaces the item's batch with a fresh one and
// re-derives the header totals. Rejected once the old batch has outgoing
// stock or the header carries payments.
func UpdatePurchaseItem(ctx context.Context, itemId int, input *UpdatePurchaseItemInput) (*models.Purchase, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if !input.UnitQuantity.IsPositive() {
		return nil, errors.New("quantity must be positive")
	}

	var purchase *models.Purchase
	err := runPosting(ctx, businessId, func(tx *gorm.DB) error {
		var item models.PurchaseItem
		if err := tx.WithContext(ctx).Clauses(forUpdate()).
			Where("id = ?", itemId).First(&item).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		var header models.Purchase
		if err := tx.WithContext(ctx).Clauses(forUpdate()).
			Where("id = ?", item.PurchaseId).First(&header).Error; err != nil {
			return err
		}
		if header.PaidAmount.Real.IsPositive() {
			return utils.NewStateConflict("purchase %s already has payments", header.PurchaseNo)
		}

		product, err := models.GetProduct(ctx, item.ProductId)
		if err != nil {
			return err
		}

		if item.ItemType != models.ItemTypePickup {
			if err := DeleteBatchesForPurchaseItem(tx, ctx, item.ID); err != nil {
				return err
			}
		}

		oldTotal := item.TotalPrice
		shadowPrice := input.ShadowUnitPrice
		if shadowPrice.IsZero() {
			shadowPrice = input.UnitPrice
		}
		item.UnitQuantity = input.UnitQuantity
		item.BaseQuantity = models.ConvertToBase(input.UnitQuantity, item.Unit, product.UnitType)
		item.UnitPrice = models.NewValuation(input.UnitPrice, shadowPrice)
		item.TotalPrice = item.UnitPrice.MulQty(input.UnitQuantity)
		item.SalePrice = input.SalePrice
		if err := tx.WithContext(ctx).Save(&item).Error; err != nil {
			return err
		}

		if item.ItemType != models.ItemTypePickup {
			if _, err := CreateStockBatch(tx, ctx, header.WarehouseId, product, item.VariantId, item.ID, item.UnitQuantity, item.Unit, item.UnitPrice.Real, item.SalePrice); err != nil {
				return err
			}
		}

		delta := item.TotalPrice.Sub(oldTotal)
		header.SubTotal = header.SubTotal.Add(delta)
		header.GrandTotal = header.GrandTotal.Add(delta)
		header.DueAmount = header.DueAmount.Add(delta)
		header.RefreshStatus()
		if err := tx.WithContext(ctx).Save(&header).Error; err != nil {
			return err
		}

		if delta.Real.IsPositive() {
			if err := models.AddSupplierDue(tx, ctx, header.SupplierId, delta.Real); err != nil {
				return err
			}
		} else if delta.Real.IsNegative() {
			if err := models.ReduceSupplierDue(tx, ctx, header.SupplierId, delta.Real.Abs()); err != nil {
				return err
			}
		}

		purchase = &header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// DeletePurchaseItem removes the item and its batch and shrinks the header.
// Rejected once the batch has outgoing stock or the header carries payments.
func DeletePurchaseItem(ctx context.Context, itemId int) (*models.Purchase, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var purchase *models.Purchase
	err := runPosting(ctx, businessId, func(tx *gorm.DB) error {
		var item models.PurchaseItem
		if err := tx.WithContext(ctx).Clauses(forUpdate()).
			Where("id = ?", itemId).First(&item).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		var header models.Purchase
		if err := tx.WithContext(ctx).Clauses(forUpdate()).
			Where("id = ?", item.PurchaseId).First(&header).Error; err != nil {
			return err
		}
		if header.PaidAmount.Real.IsPositive() {
			return utils.NewStateConflict("purchase %s already has payments", header.PurchaseNo)
		}

		if item.ItemType != models.ItemTypePickup {
			if err := DeleteBatchesForPurchaseItem(tx, ctx, item.ID); err != nil {
				return err
			}
		}
		if err := tx.WithContext(ctx).Delete(&item).Error; err != nil {
			return err
		}

		header.SubTotal = header.SubTotal.Sub(item.TotalPrice)
		header.GrandTotal = header.GrandTotal.Sub(item.TotalPrice)
		header.DueAmount = header.DueAmount.Sub(item.TotalPrice)
		header.RefreshStatus()
		if err := tx.WithContext(ctx).Save(&header).Error; err != nil {
			return err
		}

		if err := models.ReduceSupplierDue(tx, ctx, header.SupplierId, item.TotalPrice.Real); err != nil {
			return err
		}

		purchase = &header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}
