package models

import (
	"context"

	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counterpartyBalances is the shared advance/due pair carried by
// customers and suppliers. Both fields stay >= 0; sign is meaning,
// not storage.
type counterpartyBalances struct {
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"advance_amount"`
	DueAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"due_amount"`
}

func applyBalanceDelta(tx *gorm.DB, ctx context.Context, table string, id int, column string, delta decimal.Decimal) error {
	result := tx.WithContext(ctx).Table(table).Where("id = ?", id).
		Update(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// lockCounterpartyBalances row-locks the counterparty and returns its
// current advance/due pair inside tx.
func lockCounterpartyBalances(tx *gorm.DB, ctx context.Context, table string, id int) (*counterpartyBalances, error) {
	var balances counterpartyBalances
	if err := tx.WithContext(ctx).Table(table).Clauses(forUpdateClause()).
		Where("id = ?", id).Select("advance_amount, due_amount").
		Scan(&balances).Error; err != nil {
		return nil, err
	}
	return &balances, nil
}

// drawAdvance validates sufficiency on the locked row before decrementing.
func drawAdvance(tx *gorm.DB, ctx context.Context, table string, id int, amount decimal.Decimal) error {
	balances, err := lockCounterpartyBalances(tx, ctx, table, id)
	if err != nil {
		return err
	}
	if balances.AdvanceAmount.LessThan(amount) {
		return &utils.InsufficientAdvanceError{
			Available: balances.AdvanceAmount,
			Requested: amount,
		}
	}
	return applyBalanceDelta(tx, ctx, table, id, "advance_amount", amount.Neg())
}
