package models

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewBatchNoFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^PO-341-[A-Z0-9]{4}$`)
	for i := 0; i < 20; i++ {
		batchNo := NewBatchNo(StockReferenceTypePurchase, 341)
		if !pattern.MatchString(batchNo) {
			t.Fatalf("batch number %q does not match %s", batchNo, pattern)
		}
	}
	rtn := NewBatchNo(StockReferenceTypeSalesReturn, 18)
	if !regexp.MustCompile(`^RTN-18-[A-Z0-9]{4}$`).MatchString(rtn) {
		t.Fatalf("return batch number %q malformed", rtn)
	}
}

func TestSetQuantityRederivesBase(t *testing.T) {
	s := &Stock{Unit: "dozen"}
	s.SetQuantity(decimal.NewFromInt(5), UnitTypePiece)
	if !s.Quantity.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("quantity expected 5, got %s", s.Quantity)
	}
	if !s.BaseQuantity.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("base quantity expected 60, got %s", s.BaseQuantity)
	}
}
