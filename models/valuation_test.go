package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValuationView(t *testing.T) {
	v := NewValuation(decimal.NewFromInt(1000), decimal.NewFromInt(800))
	if got := v.View(ValuationViewReal); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("real view expected 1000, got %s", got.String())
	}
	if got := v.View(ValuationViewShadow); !got.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("shadow view expected 800, got %s", got.String())
	}
}

func TestValuationArithmeticKeepsSetsApart(t *testing.T) {
	a := NewValuation(decimal.NewFromInt(100), decimal.NewFromInt(80))
	b := NewValuation(decimal.NewFromInt(30), decimal.NewFromInt(20))

	sum := a.Add(b)
	if !sum.Real.Equal(decimal.NewFromInt(130)) || !sum.Shadow.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("Add expected 130/100, got %s/%s", sum.Real, sum.Shadow)
	}
	diff := a.Sub(b)
	if !diff.Real.Equal(decimal.NewFromInt(70)) || !diff.Shadow.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("Sub expected 70/60, got %s/%s", diff.Real, diff.Shadow)
	}
	scaled := a.MulQty(decimal.NewFromInt(3))
	if !scaled.Real.Equal(decimal.NewFromInt(300)) || !scaled.Shadow.Equal(decimal.NewFromInt(240)) {
		t.Fatalf("MulQty expected 300/240, got %s/%s", scaled.Real, scaled.Shadow)
	}
}

func TestUniformAppliesToBothSets(t *testing.T) {
	u := Uniform(decimal.NewFromInt(50))
	if !u.Real.Equal(u.Shadow) {
		t.Fatalf("uniform valuation must agree across sets, got %s/%s", u.Real, u.Shadow)
	}
}

func TestValuationViewForUserType(t *testing.T) {
	cases := map[string]ValuationView{
		"owner":   ValuationViewReal,
		"manager": ValuationViewReal,
		"admin":   ValuationViewReal,
		"staff":   ValuationViewShadow,
		"cashier": ValuationViewShadow,
		"":        ValuationViewShadow,
	}
	for userType, expected := range cases {
		if got := ValuationViewForUserType(userType); got != expected {
			t.Fatalf("user type %q expected %s view, got %s", userType, expected, got)
		}
	}
}
