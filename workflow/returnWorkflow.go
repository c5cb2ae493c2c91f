package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateSalesReturn records the return as pending. Stock and balances are
// untouched until approval.
func CreateSalesReturn(ctx context.Context, input *models.NewSalesReturn) (*models.SalesReturn, error) {
	logger := config.GetLogger()
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if len(input.Items) == 0 {
		return nil, errors.New("a return needs at least one item")
	}
	if input.ReturnType == models.ReturnTypeProductReplacement && len(input.Replacements) == 0 {
		return nil, errors.New("a replacement return needs replacement products")
	}
	if input.ReturnType == models.ReturnTypeMoneyBack && len(input.Replacements) > 0 {
		return nil, errors.New("a money back return cannot carry replacement products")
	}

	sale, err := models.GetSale(ctx, input.SaleId)
	if err != nil {
		return nil, err
	}

	saleItems := make(map[int]*models.SaleItem, len(sale.Items))
	for i := range sale.Items {
		saleItems[sale.Items[i].ID] = &sale.Items[i]
	}
	alreadyReturned, err := models.ReturnedQuantityBySaleItem(ctx, sale.ID)
	if err != nil {
		return nil, err
	}

	sequenceNo, err := utils.GetSequence[models.SalesReturn](ctx, businessId)
	if err != nil {
		config.LogError(logger, "returnWorkflow.go", "CreateSalesReturn", "GetSequence", businessId, err)
		return nil, err
	}

	returnTotal := models.Valuation{Real: decimal.Zero, Shadow: decimal.Zero}
	items := make([]models.SalesReturnItem, 0, len(input.Items))
	for _, line := range input.Items {
		saleItem, ok := saleItems[line.SaleItemId]
		if !ok {
			return nil, fmt.Errorf("sale item %d does not belong to sale %d", line.SaleItemId, input.SaleId)
		}
		returnable := saleItem.UnitQuantity.Sub(alreadyReturned[saleItem.ID])
		if !line.ReturnQuantity.IsPositive() || line.ReturnQuantity.GreaterThan(returnable) {
			return nil, fmt.Errorf("return quantity out of range for sale item %d: %s still returnable", line.SaleItemId, returnable)
		}
		alreadyReturned[saleItem.ID] = alreadyReturned[saleItem.ID].Add(line.ReturnQuantity)
		product, err := models.GetProduct(ctx, saleItem.ProductId)
		if err != nil {
			return nil, err
		}
		totalPrice := saleItem.UnitPrice.MulQty(line.ReturnQuantity)
		returnTotal = returnTotal.Add(totalPrice)
		items = append(items, models.SalesReturnItem{
			BusinessId:     businessId,
			SaleItemId:     saleItem.ID,
			ProductId:      saleItem.ProductId,
			VariantId:      saleItem.VariantId,
			Unit:           saleItem.Unit,
			ReturnQuantity: line.ReturnQuantity,
			BaseQuantity:   models.ConvertToBase(line.ReturnQuantity, saleItem.Unit, product.UnitType),
			UnitPrice:      saleItem.UnitPrice,
			TotalPrice:     totalPrice,
		})
	}

	replacementTotal := models.Valuation{Real: decimal.Zero, Shadow: decimal.Zero}
	replacements := make([]models.ReplacementProduct, 0, len(input.Replacements))
	for _, line := range input.Replacements {
		product, err := models.GetProduct(ctx, line.ProductId)
		if err != nil {
			return nil, err
		}
		if !models.KnownUnit(product.UnitType, line.Unit) {
			return nil, fmt.Errorf("unit %q is not valid for product %s", line.Unit, product.Code)
		}
		shadowPrice := line.ShadowUnitPrice
		if shadowPrice.IsZero() {
			shadowPrice = line.UnitPrice
		}
		unitPrice := models.NewValuation(line.UnitPrice, shadowPrice)
		totalPrice := unitPrice.MulQty(line.UnitQuantity)
		replacementTotal = replacementTotal.Add(totalPrice)
		replacements = append(replacements, models.ReplacementProduct{
			BusinessId:   businessId,
			ProductId:    line.ProductId,
			VariantId:    line.VariantId,
			Unit:         line.Unit,
			UnitQuantity: line.UnitQuantity,
			BaseQuantity: models.ConvertToBase(line.UnitQuantity, line.Unit, product.UnitType),
			UnitPrice:    unitPrice,
			TotalPrice:   totalPrice,
		})
	}

	outletId, _ := utils.GetOutletIdFromContext(ctx)
	ret := models.SalesReturn{
		BusinessId:       businessId,
		OutletId:         outletId,
		WarehouseId:      sale.WarehouseId,
		SaleId:           sale.ID,
		CustomerId:       sale.CustomerId,
		ReturnNo:         fmt.Sprintf("RTN-%d-%06d", outletId, sequenceNo),
		SequenceNo:       sequenceNo,
		ReturnType:       input.ReturnType,
		ReturnTotal:      returnTotal,
		ReplacementTotal: replacementTotal,
		Status:           models.ReturnStatusPending,
		Items:            items,
		Replacements:     replacements,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&ret).Error; err != nil {
		config.LogError(logger, "returnWorkflow.go", "CreateSalesReturn", "create", input, err)
		return nil, err
	}
	return &ret, nil
}

// refundAgainstSale clears the locked sale's open due first, shrinking
// grand total with it so the header keeps grand_total = paid + due, and
// mirrors the cleared amount on the customer's due. Any remainder of the
// refund becomes customer advance.
func refundAgainstSale(tx *gorm.DB, ctx context.Context, sale *models.Sale, customerId int, refund decimal.Decimal) error {
	cleared := decimal.Min(sale.DueAmount.Real, refund)
	if cleared.IsPositive() {
		sale.GrandTotal = sale.GrandTotal.Sub(models.Uniform(cleared))
		sale.DueAmount = sale.DueAmount.Sub(models.Uniform(cleared))
		sale.RefreshStatus()
		if err := tx.WithContext(ctx).Save(sale).Error; err != nil {
			return err
		}
		if err := models.ReduceCustomerDue(tx, ctx, customerId, cleared); err != nil {
			return err
		}
	}
	remainder := refund.Sub(cleared)
	if remainder.IsPositive() {
		if err := models.AddCustomerAdvance(tx, ctx, customerId, remainder); err != nil {
			return err
		}
	}
	return nil
}

// ApproveSalesReturn replenishes the returned stock, consumes replacement
// stock for replacement returns, and settles the money side against the
// sale header: a refund clears the sale's open due first (the customer due
// moves with it) and any remainder becomes advance; a replacement applies
// the net difference the same way.
func ApproveSalesReturn(ctx context.Context, returnId int) (*models.SalesReturn, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var ret *models.SalesReturn
	err := runPosting(ctx, businessId, func(tx *gorm.DB) error {
		var r models.SalesReturn
		if err := tx.WithContext(ctx).Clauses(forUpdate()).
			Preload("Items").Preload("Replacements").
			Where("id = ?", returnId).First(&r).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if r.Status != models.ReturnStatusPending {
			return utils.NewStateConflict("sales return %s is already %s", r.ReturnNo, r.Status)
		}

		for _, item := range r.Items {
			product, err := models.GetProduct(ctx, item.ProductId)
			if err != nil {
				return err
			}
			if err := ReplenishStock(tx, ctx, r.WarehouseId, product, item.VariantId, item.ReturnQuantity, item.Unit, r.ID); err != nil {
				return err
			}
		}

		var sale models.Sale
		if err := tx.WithContext(ctx).Clauses(forUpdate()).
			Where("id = ?", r.SaleId).First(&sale).Error; err != nil {
			return err
		}

		switch r.ReturnType {
		case models.ReturnTypeMoneyBack:
			if err := refundAgainstSale(tx, ctx, &sale, r.CustomerId, r.ReturnTotal.Real); err != nil {
				return err
			}
		case models.ReturnTypeProductReplacement:
			for _, repl := range r.Replacements {
				product, err := models.GetProduct(ctx, repl.ProductId)
				if err != nil {
					return err
				}
				if err := ConsumeStockFIFO(tx, ctx, r.WarehouseId, product, repl.VariantId, nil, repl.UnitQuantity, repl.Unit, models.StockReferenceTypeSalesReturn, r.ID); err != nil {
					return err
				}
			}
			netDifference := r.ReplacementTotal.Real.Sub(r.ReturnTotal.Real)
			switch {
			case netDifference.IsPositive():
				// more valuable replacement: the extra lives on the sale
				// header so it stays clearable like any other due
				sale.GrandTotal = sale.GrandTotal.Add(models.Uniform(netDifference))
				sale.DueAmount = sale.DueAmount.Add(models.Uniform(netDifference))
				sale.RefreshStatus()
				if err := tx.WithContext(ctx).Save(&sale).Error; err != nil {
					return err
				}
				if err := models.AddCustomerDue(tx, ctx, r.CustomerId, netDifference); err != nil {
					return err
				}
			case netDifference.IsNegative():
				if err := refundAgainstSale(tx, ctx, &sale, r.CustomerId, netDifference.Abs()); err != nil {
					return err
				}
			}
		default:
			return utils.NewStateConflict("unknown return type %q", r.ReturnType)
		}

		r.Status = models.ReturnStatusCompleted
		if err := tx.WithContext(ctx).Save(&r).Error; err != nil {
			return err
		}
		ret = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// CreatePurchaseReturn deducts the returned stock immediately; the goods
// leave the warehouse when the return is raised, not when the money settles.
func CreatePurchaseReturn(ctx context.Context, input *models.NewPurchaseReturn) (*models.PurchaseReturn, error) {
	logger := config.GetLogger()
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if len(input.Items) == 0 {
		return nil, errors.New("a return needs at least one item")
	}
	if input.ReturnType != models.ReturnTypeMoneyBack {
		return nil, errors.New("purchase returns support money_back only")
	}

	purchase, err := models.GetPurchase(ctx, input.PurchaseId)
	if err != nil {
		return nil, err
	}
	purchaseItems := make(map[int]*models.PurchaseItem, len(purchase.Items))
	for i := range purchase.Items {
		purchaseItems[purchase.Items[i].ID] = &purchase.Items[i]
	}
	alreadyReturned, err := models.ReturnedQuantityByPurchaseItem(ctx, purchase.ID)
	if err != nil {
		return nil, err
	}

	sequenceNo, err := utils.GetSequence[models.PurchaseReturn](ctx, businessId)
	if err != nil {
		config.LogError(logger, "returnWorkflow.go", "CreatePurchaseReturn", "GetSequence", businessId, err)
		return nil, err
	}

	var ret *models.PurchaseReturn
	err = runPosting(ctx, businessId, func(tx *gorm.DB) error {
		returnTotal := models.Valuation{Real: decimal.Zero, Shadow: decimal.Zero}
		items := make([]models.PurchaseReturnItem, 0, len(input.Items))

		outletId, _ := utils.GetOutletIdFromContext(ctx)
		r := models.PurchaseReturn{
			BusinessId:  businessId,
			OutletId:    outletId,
			WarehouseId: purchase.WarehouseId,
			PurchaseId:  purchase.ID,
			SupplierId:  purchase.SupplierId,
			ReturnNo:    fmt.Sprintf("PRTN-%d-%06d", outletId, sequenceNo),
			SequenceNo:  sequenceNo,
			ReturnType:  input.ReturnType,
			Status:      models.ReturnStatusPending,
		}
		if err := tx.WithContext(ctx).Create(&r).Error; err != nil {
			return err
		}

		for _, line := range input.Items {
			item, ok := purchaseItems[line.PurchaseItemId]
			if !ok {
				return fmt.Errorf("purchase item %d does not belong to purchase %d", line.PurchaseItemId, input.PurchaseId)
			}
			returnable := item.UnitQuantity.Sub(alreadyReturned[item.ID])
			if !line.ReturnQuantity.IsPositive() || line.ReturnQuantity.GreaterThan(returnable) {
				return fmt.Errorf("return quantity out of range for purchase item %d: %s still returnable", line.PurchaseItemId, returnable)
			}
			alreadyReturned[item.ID] = alreadyReturned[item.ID].Add(line.ReturnQuantity)
			product, err := models.GetProduct(ctx, item.ProductId)
			if err != nil {
				return err
			}

			if err := ConsumeStockFIFO(tx, ctx, purchase.WarehouseId, product, item.VariantId, nil, line.ReturnQuantity, item.Unit, models.StockReferenceTypePurchaseReturn, r.ID); err != nil {
				return err
			}

			totalPrice := item.UnitPrice.MulQty(line.ReturnQuantity)
			returnTotal = returnTotal.Add(totalPrice)
			items = append(items, models.PurchaseReturnItem{
				BusinessId:       businessId,
				PurchaseReturnId: r.ID,
				PurchaseItemId:   item.ID,
				ProductId:        item.ProductId,
				VariantId:        item.VariantId,
				Unit:             item.Unit,
				ReturnQuantity:   line.ReturnQuantity,
				BaseQuantity:     models.ConvertToBase(line.ReturnQuantity, item.Unit, product.UnitType),
				UnitPrice:        item.UnitPrice,
				TotalPrice:       totalPrice,
			})
		}

		if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
			return err
		}
		r.ReturnTotal = returnTotal
		if err := tx.WithContext(ctx).Save(&r).Error; err != nil {
			return err
		}
		r.Items = items
		ret = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// CompletePurchaseReturn settles the money side only; stock already moved at
// creation. The refund clears what we still owe the supplier first, any
// remainder becomes our advance with them, and an inbound Payment records
// the money received.
func CompletePurchaseReturn(ctx context.Context, returnId int, accountId int) (*models.PurchaseReturn, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var ret *models.PurchaseReturn
	err := runPosting(ctx, businessId, func(tx *gorm.DB) error {
		var r models.PurchaseReturn
		if err := tx.WithContext(ctx).Clauses(forUpdate()).
			Preload("Items").
			Where("id = ?", returnId).First(&r).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if r.Status != models.ReturnStatusPending {
			return utils.NewStateConflict("purchase return %s is already %s", r.ReturnNo, r.Status)
		}

		var purchase models.Purchase
		if err := tx.WithContext(ctx).Clauses(forUpdate()).
			Where("id = ?", r.PurchaseId).First(&purchase).Error; err != nil {
			return err
		}

		refund := r.ReturnTotal.Real
		clearedOnPurchase := decimal.Min(purchase.DueAmount.Real, refund)
		if clearedOnPurchase.IsPositive() {
			purchase.GrandTotal = purchase.GrandTotal.Sub(models.Uniform(clearedOnPurchase))
			purchase.DueAmount = purchase.DueAmount.Sub(models.Uniform(clearedOnPurchase))
			purchase.RefreshStatus()
			if err := tx.WithContext(ctx).Save(&purchase).Error; err != nil {
				return err
			}
		}
		if err := models.ReduceSupplierDue(tx, ctx, r.SupplierId, clearedOnPurchase); err != nil {
			return err
		}

		remainder := refund.Sub(clearedOnPurchase)
		if remainder.IsPositive() {
			if err := models.UpdateAccountBalance(tx, ctx, accountId, remainder, models.BalanceDirectionDeposit); err != nil {
				return err
			}
		}

		outletId, _ := utils.GetOutletIdFromContext(ctx)
		payment := models.Payment{
			BusinessId:    businessId,
			OutletId:      outletId,
			ReferenceType: models.PaymentReferenceTypePurchaseReturn,
			PurchaseId:    &r.PurchaseId,
			SupplierId:    &r.SupplierId,
			Amount:        refund,
			PaymentType:   models.PaymentTypeAccountAdjustment,
			TxnRef:        models.NewTxnRef(),
			Status:        models.PaymentStatusCompleted,
			PaidAt:        time.Now(),
		}
		if remainder.IsPositive() {
			payment.AccountId = &accountId
		}
		if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
			return err
		}

		r.Status = models.ReturnStatusCompleted
		if err := tx.WithContext(ctx).Save(&r).Error; err != nil {
			return err
		}
		ret = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
