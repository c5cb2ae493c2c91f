package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ValuationView selects which of the two parallel price sets a reader sees.
// The shadow view is swapped in at presentation time for certain user types;
// workflows and ledgers always operate on pairs, never on a selected view.
type ValuationView string

const (
	ValuationViewReal   ValuationView = "real"
	ValuationViewShadow ValuationView = "shadow"
)

// Valuation is a monetary amount carried in both price sets.
// Embedded with a gorm embeddedPrefix, e.g. grand_total_real / grand_total_shadow.
type Valuation struct {
	Real   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"real"`
	Shadow decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"shadow"`
}

func NewValuation(real, shadow decimal.Decimal) Valuation {
	return Valuation{Real: real, Shadow: shadow}
}

// Uniform builds a valuation whose two views agree (discounts, taxes and
// payments apply identically to both price sets).
func Uniform(amount decimal.Decimal) Valuation {
	return Valuation{Real: amount, Shadow: amount}
}

func (v Valuation) View(view ValuationView) decimal.Decimal {
	if view == ValuationViewShadow {
		return v.Shadow
	}
	return v.Real
}

func (v Valuation) Add(o Valuation) Valuation {
	return Valuation{Real: v.Real.Add(o.Real), Shadow: v.Shadow.Add(o.Shadow)}
}

func (v Valuation) Sub(o Valuation) Valuation {
	return Valuation{Real: v.Real.Sub(o.Real), Shadow: v.Shadow.Sub(o.Shadow)}
}

func (v Valuation) MulQty(qty decimal.Decimal) Valuation {
	return Valuation{Real: v.Real.Mul(qty), Shadow: v.Shadow.Mul(qty)}
}

func (v Valuation) IsZero() bool {
	return v.Real.IsZero() && v.Shadow.IsZero()
}

var ErrInvalidValuationView = errors.New("invalid valuation view")

// ValuationViewForUserType maps the request's user type flag to a view.
// Anything other than the privileged "owner"/"manager" types sees the shadow set.
func ValuationViewForUserType(userType string) ValuationView {
	switch userType {
	case "owner", "manager", "admin":
		return ValuationViewReal
	default:
		return ValuationViewShadow
	}
}
