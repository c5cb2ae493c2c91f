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

// validateSaleLineUnits enforces the product's unit rules on a sale line:
// the unit must belong to the product's unit family, the quantity must be a
// whole number unless fractions are allowed, and the quantity must not fall
// below the minimum sale unit.
func validateSaleLineUnits(product *models.Product, line *models.NewSaleItem) error {
	if !models.KnownUnit(product.UnitType, line.Unit) {
		return fmt.Errorf("unit %q is not valid for product %s", line.Unit, product.Code)
	}
	if !line.UnitQuantity.IsPositive() {
		return fmt.Errorf("quantity must be positive for product %s", product.Code)
	}
	if product.IsFractionAllowed == nil || !*product.IsFractionAllowed {
		if !line.UnitQuantity.Equal(line.UnitQuantity.Truncate(0)) {
			return fmt.Errorf("fractional quantity not allowed for product %s", product.Code)
		}
	}
	if product.MinSaleUnit != "" {
		minBase := models.ConvertToBase(decimal.NewFromInt(1), product.MinSaleUnit, product.UnitType)
		lineBase := models.ConvertToBase(line.UnitQuantity, line.Unit, product.UnitType)
		if lineBase.LessThan(minBase) {
			return fmt.Errorf("quantity below minimum sale unit %s for product %s", product.MinSaleUnit, product.Code)
		}
	}
	return nil
}

// CreateSale posts a sale as one unit: stock is consumed FIFO per line,
// the header and items are written, the unpaid portion becomes customer due
// and the paid portion is deposited into the account with a Payment row.
func CreateSale(ctx context.Context, input *models.NewSale) (*models.Sale, error) {
	logger := config.GetLogger()
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateResourceId[models.Customer](ctx, businessId, input.CustomerId); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[models.Warehouse](ctx, businessId, input.WarehouseId); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, errors.New("a sale needs at least one item")
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
		if err := validateSaleLineUnits(product, &line); err != nil {
			return nil, err
		}
		products[line.ProductId] = product
	}

	sequenceNo, err := utils.GetSequence[models.Sale](ctx, businessId)
	if err != nil {
		config.LogError(logger, "saleWorkflow.go", "CreateSale", "GetSequence", businessId, err)
		return nil, err
	}

	var sale *models.Sale
	err = runPosting(ctx, businessId, func(tx *gorm.DB) error {
		subTotal := models.Valuation{Real: decimal.Zero, Shadow: decimal.Zero}
		items := make([]models.SaleItem, 0, len(input.Items))

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
			items = append(items, models.SaleItem{
				BusinessId:   businessId,
				ProductId:    line.ProductId,
				VariantId:    line.VariantId,
				Unit:         line.Unit,
				UnitQuantity: line.UnitQuantity,
				BaseQuantity: baseQty,
				UnitPrice:    unitPrice,
				TotalPrice:   totalPrice,
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

		sale = &models.Sale{
			BusinessId:  businessId,
			OutletId:    input.OutletId,
			WarehouseId: input.WarehouseId,
			CustomerId:  input.CustomerId,
			InvoiceNo:   fmt.Sprintf("INV-%d-%06d", input.OutletId, sequenceNo),
			SequenceNo:  sequenceNo,
			SaleDate:    input.SaleDate,
			SubTotal:    subTotal,
			Discount:    discount,
			VatTax:      vatTax,
			GrandTotal:  grandTotal,
			DueAmount:   grandTotal,
			Items:       items,
		}
		sale.RefreshStatus()
		if err := tx.WithContext(ctx).Create(sale).Error; err != nil {
			config.LogError(logger, "saleWorkflow.go", "CreateSale", "create header", input, err)
			return err
		}

		for _, line := range input.Items {
			if line.ItemType == models.ItemTypePickup {
				continue
			}
			product := products[line.ProductId]
			if err := ConsumeStockFIFO(tx, ctx, input.WarehouseId, product, line.VariantId, line.StockId, line.UnitQuantity, line.Unit, models.StockReferenceTypeSale, sale.ID); err != nil {
				return err
			}
		}

		if input.PaidAmount.IsPositive() {
			sale.ApplyPaymentAmount(input.PaidAmount)
			if err := tx.WithContext(ctx).Save(sale).Error; err != nil {
				return err
			}
			if err := models.UpdateAccountBalance(tx, ctx, input.AccountId, input.PaidAmount, models.BalanceDirectionDeposit); err != nil {
				return err
			}
			outletId, _ := utils.GetOutletIdFromContext(ctx)
			accountId := input.AccountId
			payment := models.Payment{
				BusinessId:    businessId,
				OutletId:      outletId,
				ReferenceType: models.PaymentReferenceTypeSale,
				SaleId:        &sale.ID,
				CustomerId:    &input.CustomerId,
				Amount:        input.PaidAmount,
				PaymentType:   models.PaymentTypeCash,
				AccountId:     &accountId,
				TxnRef:        models.NewTxnRef(),
				Status:        models.PaymentStatusCompleted,
				PaidAt:        input.SaleDate,
			}
			if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
				return err
			}
		}

		return models.AddCustomerDue(tx, ctx, input.CustomerId, sale.DueAmount.Real)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}
