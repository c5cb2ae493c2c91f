package models

import "github.com/shopspring/decimal"

// factor tables anchored to one base unit per unit type family.
// factor = how many base units one unit represents.
var unitFactors = map[UnitType]map[string]decimal.Decimal{
	UnitTypeWeight: {
		"ton":   decimal.NewFromInt(1000),
		"kg":    decimal.NewFromInt(1),
		"gram":  decimal.NewFromFloat(0.001),
		"pound": decimal.NewFromFloat(0.453592),
	},
	UnitTypeVolume: {
		"liter": decimal.NewFromInt(1),
		"ml":    decimal.NewFromFloat(0.001),
	},
	UnitTypePiece: {
		"piece": decimal.NewFromInt(1),
		"dozen": decimal.NewFromInt(12),
		// "box" has no fixed content yet; treated as a single piece until
		// per-product box sizes exist.
		"box": decimal.NewFromInt(1),
	},
	UnitTypeLength: {
		"meter": decimal.NewFromInt(1),
		"cm":    decimal.NewFromFloat(0.01),
		"mm":    decimal.NewFromFloat(0.001),
	},
}

var baseUnits = map[UnitType]string{
	UnitTypeWeight: "kg",
	UnitTypeVolume: "liter",
	UnitTypePiece:  "piece",
	UnitTypeLength: "meter",
}

// BaseUnit returns the canonical unit of a unit type family ("" if unknown).
func BaseUnit(unitType UnitType) string {
	return baseUnits[unitType]
}

// KnownUnit reports whether the (unitType, unit) pair has a conversion factor.
// Conversion falls back to identity for unknown pairs, so callers that must
// not silently skip conversion check this first.
func KnownUnit(unitType UnitType, unit string) bool {
	factors, ok := unitFactors[unitType]
	if !ok {
		return false
	}
	_, ok = factors[unit]
	return ok
}

// ConvertToBase converts quantity from the given unit to the family's base unit.
// Unknown (unitType, unit) pairs return the quantity unchanged.
func ConvertToBase(quantity decimal.Decimal, unit string, unitType UnitType) decimal.Decimal {
	factors, ok := unitFactors[unitType]
	if !ok {
		return quantity
	}
	factor, ok := factors[unit]
	if !ok {
		return quantity
	}
	return quantity.Mul(factor)
}

// ConvertFromBase converts a base-unit quantity into the target unit.
// Unknown (unitType, unit) pairs return the quantity unchanged.
func ConvertFromBase(quantity decimal.Decimal, unit string, unitType UnitType) decimal.Decimal {
	factors, ok := unitFactors[unitType]
	if !ok {
		return quantity
	}
	factor, ok := factors[unit]
	if !ok || factor.IsZero() {
		return quantity
	}
	return quantity.DivRound(factor, 12)
}

// UnitsOf lists the units of a family (test/table introspection).
func UnitsOf(unitType UnitType) []string {
	factors := unitFactors[unitType]
	units := make([]string, 0, len(factors))
	for u := range factors {
		units = append(units, u)
	}
	return units
}
