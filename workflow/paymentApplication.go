package workflow

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// planDueClearing allocates a lump payment across open dues in the order
// given (callers pass them oldest first). Pure. Returns the per-due applied
// amounts (zero entries for untouched dues) and the unapplied excess.
func planDueClearing(dues []decimal.Decimal, amount decimal.Decimal) ([]decimal.Decimal, decimal.Decimal) {
	applied := make([]decimal.Decimal, len(dues))
	remaining := amount
	for i, due := range dues {
		if !remaining.IsPositive() {
			applied[i] = decimal.Zero
			continue
		}
		take := decimal.Min(due, remaining)
		applied[i] = take
		remaining = remaining.Sub(take)
	}
	return applied, remaining
}

// NewDuePayment is a lump payment from/to a counterparty, cleared against
// their open transactions oldest first. Exactly one of CustomerId or
// SupplierId is set. AccountId is required for cash/bank payments and
// ignored for advance adjustments.
type NewDuePayment struct {
	CustomerId  int                `json:"customer_id"`
	SupplierId  int                `json:"supplier_id"`
	Amount      decimal.Decimal    `json:"amount" binding:"required"`
	PaymentType models.PaymentType `json:"payment_type" binding:"required"`
	AccountId   int                `json:"account_id"`
	PaidAt      *time.Time         `json:"paid_at"`
}

func (input *NewDuePayment) paidAt() time.Time {
	if input.PaidAt != nil {
		return *input.PaidAt
	}
	return time.Now()
}

func (input *NewDuePayment) validate() error {
	if !input.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	switch input.PaymentType {
	case models.PaymentTypeCash, models.PaymentTypeBank:
		if input.AccountId == 0 {
			return errors.New("account_id is required for cash/bank payments")
		}
	case models.PaymentTypeAdvanceAdjustment:
	default:
		return errors.New("unsupported payment type")
	}
	if (input.CustomerId == 0) == (input.SupplierId == 0) {
		return errors.New("exactly one of customer_id or supplier_id is required")
	}
	return nil
}

// ClearCustomerDue applies a customer payment across their unpaid sales,
// oldest first. Cash/bank payments deposit into the account; an advance
// adjustment draws the customer's advance instead and never touches an
// account. Excess beyond all open dues rolls into the customer's advance.
func ClearCustomerDue(ctx context.Context, input *NewDuePayment) ([]*models.Payment, error) {
	logger := config.GetLogger()
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if input.CustomerId == 0 {
		return nil, errors.New("customer_id is required")
	}
	outletId, _ := utils.GetOutletIdFromContext(ctx)

	var payments []*models.Payment
	err := runPosting(ctx, businessId, func(tx *gorm.DB) error {
		isAdvance := input.PaymentType == models.PaymentTypeAdvanceAdjustment
		if isAdvance {
			if err := models.DrawCustomerAdvance(tx, ctx, input.CustomerId, input.Amount); err != nil {
				return err
			}
		} else {
			if err := models.UpdateAccountBalance(tx, ctx, input.AccountId, input.Amount, models.BalanceDirectionDeposit); err != nil {
				config.LogError(logger, "paymentApplication.go", "ClearCustomerDue", "deposit", input, err)
				return err
			}
		}

		sales, err := models.GetOpenSalesForUpdate(tx, ctx, input.CustomerId)
		if err != nil {
			return err
		}
		dues := make([]decimal.Decimal, len(sales))
		for i, s := range sales {
			dues[i] = s.DueAmount.Real
		}
		applied, excess := planDueClearing(dues, input.Amount)

		for i, sale := range sales {
			if !applied[i].IsPositive() {
				continue
			}
			sale.ApplyPaymentAmount(applied[i])
			if err := tx.WithContext(ctx).Save(sale).Error; err != nil {
				return err
			}
			if err := models.ReduceCustomerDue(tx, ctx, input.CustomerId, applied[i]); err != nil {
				return err
			}
			payment := &models.Payment{
				BusinessId:    businessId,
				OutletId:      outletId,
				ReferenceType: models.PaymentReferenceTypeSale,
				SaleId:        &sale.ID,
				CustomerId:    &input.CustomerId,
				Amount:        applied[i],
				PaymentType:   input.PaymentType,
				TxnRef:        models.NewTxnRef(),
				Status:        models.PaymentStatusCompleted,
				PaidAt:        input.paidAt(),
			}
			if !isAdvance {
				accountId := input.AccountId
				payment.AccountId = &accountId
			}
			if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
				return err
			}
			payments = append(payments, payment)
		}

		if excess.IsPositive() {
			if err := models.AddCustomerAdvance(tx, ctx, input.CustomerId, excess); err != nil {
				return err
			}
			payment := &models.Payment{
				BusinessId:    businessId,
				OutletId:      outletId,
				ReferenceType: models.PaymentReferenceTypeAdvance,
				CustomerId:    &input.CustomerId,
				Amount:        excess,
				PaymentType:   input.PaymentType,
				TxnRef:        models.NewTxnRef(),
				Status:        models.PaymentStatusCompleted,
				PaidAt:        input.paidAt(),
			}
			if !isAdvance {
				accountId := input.AccountId
				payment.AccountId = &accountId
			}
			if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
				return err
			}
			payments = append(payments, payment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// ClearSupplierDue is the outflow mirror: cash/bank payments withdraw from
// the account (checked on the locked row first), advance adjustments draw
// the supplier advance. Excess rolls into the supplier's advance.
func ClearSupplierDue(ctx context.Context, input *NewDuePayment) ([]*models.Payment, error) {
	logger := config.GetLogger()
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if input.SupplierId == 0 {
		return nil, errors.New("supplier_id is required")
	}
	outletId, _ := utils.GetOutletIdFromContext(ctx)

	var payments []*models.Payment
	err := runPosting(ctx, businessId, func(tx *gorm.DB) error {
		isAdvance := input.PaymentType == models.PaymentTypeAdvanceAdjustment
		if isAdvance {
			if err := models.DrawSupplierAdvance(tx, ctx, input.SupplierId, input.Amount); err != nil {
				return err
			}
		} else {
			account, err := models.GetAccountForUpdate(tx, ctx, input.AccountId)
			if err != nil {
				return err
			}
			if !account.CanWithdraw(input.Amount) {
				return &utils.InsufficientBalanceError{
					Available: account.CurrentBalance,
					Requested: input.Amount,
				}
			}
			if err := models.UpdateAccountBalance(tx, ctx, input.AccountId, input.Amount, models.BalanceDirectionWithdraw); err != nil {
				config.LogError(logger, "paymentApplication.go", "ClearSupplierDue", "withdraw", input, err)
				return err
			}
		}

		purchases, err := models.GetOpenPurchasesForUpdate(tx, ctx, input.SupplierId)
		if err != nil {
			return err
		}
		dues := make([]decimal.Decimal, len(purchases))
		for i, p := range purchases {
			dues[i] = p.DueAmount.Real
		}
		applied, excess := planDueClearing(dues, input.Amount)

		for i, purchase := range purchases {
			if !applied[i].IsPositive() {
				continue
			}
			purchase.ApplyPaymentAmount(applied[i])
			if err := tx.WithContext(ctx).Save(purchase).Error; err != nil {
				return err
			}
			if err := models.ReduceSupplierDue(tx, ctx, input.SupplierId, applied[i]); err != nil {
				return err
			}
			payment := &models.Payment{
				BusinessId:    businessId,
				OutletId:      outletId,
				ReferenceType: models.PaymentReferenceTypePurchase,
				PurchaseId:    &purchase.ID,
				SupplierId:    &input.SupplierId,
				Amount:        applied[i].Neg(),
				PaymentType:   input.PaymentType,
				TxnRef:        models.NewTxnRef(),
				Status:        models.PaymentStatusCompleted,
				PaidAt:        input.paidAt(),
			}
			if !isAdvance {
				accountId := input.AccountId
				payment.AccountId = &accountId
			}
			if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
				return err
			}
			payments = append(payments, payment)
		}

		if excess.IsPositive() {
			if err := models.AddSupplierAdvance(tx, ctx, input.SupplierId, excess); err != nil {
				return err
			}
			payment := &models.Payment{
				BusinessId:    businessId,
				OutletId:      outletId,
				ReferenceType: models.PaymentReferenceTypeAdvance,
				SupplierId:    &input.SupplierId,
				Amount:        excess.Neg(),
				PaymentType:   input.PaymentType,
				TxnRef:        models.NewTxnRef(),
				Status:        models.PaymentStatusCompleted,
				PaidAt:        input.paidAt(),
			}
			if !isAdvance {
				accountId := input.AccountId
				payment.AccountId = &accountId
			}
			if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
				return err
			}
			payments = append(payments, payment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// NewAdvanceDeposit records a pre-paid credit for a counterparty, backed by
// an account movement on our side.
type NewAdvanceDeposit struct {
	CustomerId int             `json:"customer_id"`
	SupplierId int             `json:"supplier_id"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	AccountId  int             `json:"account_id" binding:"required"`
	PaidAt     *time.Time      `json:"paid_at"`
}

// RecordCustomerAdvance deposits money we received and books it as the
// customer's advance.
func RecordCustomerAdvance(ctx context.Context, input *NewAdvanceDeposit) (*models.Payment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}
	if input.CustomerId == 0 {
		return nil, errors.New("customer_id is required")
	}
	outletId, _ := utils.GetOutletIdFromContext(ctx)
	paidAt := time.Now()
	if input.PaidAt != nil {
		paidAt = *input.PaidAt
	}

	var payment *models.Payment
	err := runPosting(ctx, businessId, func(tx *gorm.DB) error {
		if err := models.UpdateAccountBalance(tx, ctx, input.AccountId, input.Amount, models.BalanceDirectionDeposit); err != nil {
			return err
		}
		if err := models.AddCustomerAdvance(tx, ctx, input.CustomerId, input.Amount); err != nil {
			return err
		}
		accountId := input.AccountId
		payment = &models.Payment{
			BusinessId:    businessId,
			OutletId:      outletId,
			ReferenceType: models.PaymentReferenceTypeAdvance,
			CustomerId:    &input.CustomerId,
			Amount:        input.Amount,
			PaymentType:   models.PaymentTypeCash,
			AccountId:     &accountId,
			TxnRef:        models.NewTxnRef(),
			Status:        models.PaymentStatusCompleted,
			PaidAt:        paidAt,
		}
		return tx.WithContext(ctx).Create(payment).Error
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// RecordSupplierAdvance withdraws money we paid ahead and books it as our
// advance with the supplier.
func RecordSupplierAdvance(ctx context.Context, input *NewAdvanceDeposit) (*models.Payment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}
	if input.SupplierId == 0 {
		return nil, errors.New("supplier_id is required")
	}
	outletId, _ := utils.GetOutletIdFromContext(ctx)
	paidAt := time.Now()
	if input.PaidAt != nil {
		paidAt = *input.PaidAt
	}

	var payment *models.Payment
	err := runPosting(ctx, businessId, func(tx *gorm.DB) error {
		account, err := models.GetAccountForUpdate(tx, ctx, input.AccountId)
		if err != nil {
			return err
		}
		if !account.CanWithdraw(input.Amount) {
			return &utils.InsufficientBalanceError{
				Available: account.CurrentBalance,
				Requested: input.Amount,
			}
		}
		if err := models.UpdateAccountBalance(tx, ctx, input.AccountId, input.Amount, models.BalanceDirectionWithdraw); err != nil {
			return err
		}
		if err := models.AddSupplierAdvance(tx, ctx, input.SupplierId, input.Amount); err != nil {
			return err
		}
		accountId := input.AccountId
		payment = &models.Payment{
			BusinessId:    businessId,
			OutletId:      outletId,
			ReferenceType: models.PaymentReferenceTypeAdvance,
			SupplierId:    &input.SupplierId,
			Amount:        input.Amount.Neg(),
			PaymentType:   models.PaymentTypeCash,
			AccountId:     &accountId,
			TxnRef:        models.NewTxnRef(),
			Status:        models.PaymentStatusCompleted,
			PaidAt:        paidAt,
		}
		return tx.WithContext(ctx).Create(payment).Error
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// VoidPayment reverses a payment's effect on its account and on the linked
// transaction header and counterparty, then marks the row voided. The row
// itself stays as history.
func VoidPayment(ctx context.Context, paymentId int) (*models.Payment, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var payment *models.Payment
	err := runPosting(ctx, businessId, func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.WithContext(ctx).Clauses(forUpdate()).
			Where("id = ?", paymentId).First(&p).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if p.Status == models.PaymentStatusVoided {
			return utils.NewStateConflict("payment %d is already voided", p.ID)
		}

		if err := p.ReverseAccountEffect(tx, ctx); err != nil {
			return err
		}

		magnitude := p.Amount.Abs()
		switch {
		case p.SaleId != nil:
			var sale models.Sale
			if err := tx.WithContext(ctx).Clauses(forUpdate()).
				Where("id = ?", *p.SaleId).First(&sale).Error; err != nil {
				return err
			}
			sale.ReversePaymentAmount(magnitude)
			if err := tx.WithContext(ctx).Save(&sale).Error; err != nil {
				return err
			}
			if p.CustomerId != nil {
				if err := models.AddCustomerDue(tx, ctx, *p.CustomerId, magnitude); err != nil {
					return err
				}
				// an advance adjustment funded this chunk from the
				// customer's advance; give that advance back
				if p.PaymentType == models.PaymentTypeAdvanceAdjustment {
					if err := models.AddCustomerAdvance(tx, ctx, *p.CustomerId, magnitude); err != nil {
						return err
					}
				}
			}
		case p.PurchaseId != nil:
			var purchase models.Purchase
			if err := tx.WithContext(ctx).Clauses(forUpdate()).
				Where("id = ?", *p.PurchaseId).First(&purchase).Error; err != nil {
				return err
			}
			purchase.ReversePaymentAmount(magnitude)
			if err := tx.WithContext(ctx).Save(&purchase).Error; err != nil {
				return err
			}
			if p.SupplierId != nil {
				if err := models.AddSupplierDue(tx, ctx, *p.SupplierId, magnitude); err != nil {
					return err
				}
				if p.PaymentType == models.PaymentTypeAdvanceAdjustment {
					if err := models.AddSupplierAdvance(tx, ctx, *p.SupplierId, magnitude); err != nil {
						return err
					}
				}
			}
		case p.ReferenceType == models.PaymentReferenceTypeAdvance:
			// excess from an advance adjustment went straight back into
			// the same advance it was drawn from; voiding it is a wash
			if p.PaymentType == models.PaymentTypeAdvanceAdjustment {
				break
			}
			if p.CustomerId != nil {
				if err := models.DrawCustomerAdvance(tx, ctx, *p.CustomerId, magnitude); err != nil {
					return err
				}
			}
			if p.SupplierId != nil {
				if err := models.DrawSupplierAdvance(tx, ctx, *p.SupplierId, magnitude); err != nil {
					return err
				}
			}
		}

		p.Status = models.PaymentStatusVoided
		if err := tx.WithContext(ctx).Save(&p).Error; err != nil {
			return err
		}
		payment = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}
