package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvertToBase(t *testing.T) {
	cases := []struct {
		unitType UnitType
		unit     string
		qty      string
		expected string
	}{
		{UnitTypeWeight, "ton", "2", "2000"},
		{UnitTypeWeight, "kg", "3.5", "3.5"},
		{UnitTypeWeight, "gram", "500", "0.5"},
		{UnitTypeWeight, "pound", "1", "0.453592"},
		{UnitTypeVolume, "ml", "250", "0.25"},
		{UnitTypePiece, "dozen", "2", "24"},
		{UnitTypePiece, "box", "3", "3"},
		{UnitTypeLength, "cm", "150", "1.5"},
	}
	for _, tc := range cases {
		qty := decimal.RequireFromString(tc.qty)
		got := ConvertToBase(qty, tc.unit, tc.unitType)
		if got.String() != tc.expected {
			t.Fatalf("ConvertToBase(%s %s) expected %s, got %s", tc.qty, tc.unit, tc.expected, got.String())
		}
	}
}

func TestConvertRoundTripAllUnits(t *testing.T) {
	qty := decimal.RequireFromString("7.25")
	for _, unitType := range []UnitType{UnitTypeWeight, UnitTypeVolume, UnitTypePiece, UnitTypeLength} {
		for _, unit := range UnitsOf(unitType) {
			base := ConvertToBase(qty, unit, unitType)
			back := ConvertFromBase(base, unit, unitType)
			if !back.Equal(qty) {
				t.Fatalf("%s/%s round trip: %s -> %s -> %s", unitType, unit, qty, base, back)
			}
		}
	}
}

func TestConvertUnknownUnitIsIdentity(t *testing.T) {
	qty := decimal.NewFromInt(42)
	if got := ConvertToBase(qty, "bushel", UnitTypeWeight); !got.Equal(qty) {
		t.Fatalf("unknown unit should pass through, got %s", got.String())
	}
	if got := ConvertFromBase(qty, "bushel", UnitTypeWeight); !got.Equal(qty) {
		t.Fatalf("unknown unit should pass through, got %s", got.String())
	}
	if KnownUnit(UnitTypeWeight, "bushel") {
		t.Fatal("bushel should not be a known weight unit")
	}
}

func TestBaseUnits(t *testing.T) {
	cases := map[UnitType]string{
		UnitTypeWeight: "kg",
		UnitTypeVolume: "liter",
		UnitTypePiece:  "piece",
		UnitTypeLength: "meter",
	}
	for unitType, base := range cases {
		if got := BaseUnit(unitType); got != base {
			t.Fatalf("BaseUnit(%s) expected %s, got %s", unitType, base, got)
		}
		if !KnownUnit(unitType, base) {
			t.Fatalf("base unit %s should be known for %s", base, unitType)
		}
		if !ConvertToBase(decimal.NewFromInt(1), base, unitType).Equal(decimal.NewFromInt(1)) {
			t.Fatalf("base unit %s must have factor 1", base)
		}
	}
	if got := BaseUnit(UnitType("temperature")); got != "" {
		t.Fatalf("unknown unit type should have empty base, got %q", got)
	}
}
