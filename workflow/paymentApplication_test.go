package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPlanDueClearingOldestFirst(t *testing.T) {
	dues := []decimal.Decimal{decimal.NewFromInt(100), decimal.NewFromInt(200)}

	applied, excess := planDueClearing(dues, decimal.NewFromInt(150))
	if !applied[0].Equal(decimal.NewFromInt(100)) {
		t.Fatalf("oldest due expected 100 applied, got %s", applied[0])
	}
	if !applied[1].Equal(decimal.NewFromInt(50)) {
		t.Fatalf("second due expected 50 applied, got %s", applied[1])
	}
	if !excess.IsZero() {
		t.Fatalf("expected no excess, got %s", excess)
	}
}

func TestPlanDueClearingExcess(t *testing.T) {
	dues := []decimal.Decimal{decimal.NewFromInt(100)}

	applied, excess := planDueClearing(dues, decimal.NewFromInt(130))
	if !applied[0].Equal(decimal.NewFromInt(100)) {
		t.Fatalf("due expected fully cleared, got %s", applied[0])
	}
	if !excess.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("excess expected 30, got %s", excess)
	}
}

func TestPlanDueClearingNoDues(t *testing.T) {
	applied, excess := planDueClearing(nil, decimal.NewFromInt(75))
	if len(applied) != 0 {
		t.Fatalf("expected empty plan, got %d entries", len(applied))
	}
	if !excess.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("full amount should be excess, got %s", excess)
	}
}

func TestPlanDueClearingZeroEntriesForUntouchedDues(t *testing.T) {
	dues := []decimal.Decimal{decimal.NewFromInt(40), decimal.NewFromInt(60), decimal.NewFromInt(80)}

	applied, excess := planDueClearing(dues, decimal.NewFromInt(40))
	if !applied[0].Equal(decimal.NewFromInt(40)) || !applied[1].IsZero() || !applied[2].IsZero() {
		t.Fatalf("expected 40/0/0, got %s/%s/%s", applied[0], applied[1], applied[2])
	}
	if !excess.IsZero() {
		t.Fatalf("expected no excess, got %s", excess)
	}
}
