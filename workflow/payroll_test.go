package workflow

import (
	"testing"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"github.com/shopspring/decimal"
)

func TestAttendanceBonusPctTiers(t *testing.T) {
	cases := []struct {
		present, paidLeave, working int
		expected                    int64
	}{
		{26, 0, 26, 15},  // 100%
		{25, 1, 26, 15},  // paid leave counts toward the ratio
		{25, 0, 26, 10},  // ~96.2%
		{24, 0, 26, 5},   // ~92.3%
		{23, 0, 26, 0},   // ~88.5%
		{49, 0, 50, 15},  // 98% exactly
		{19, 0, 20, 10},  // 95% exactly
		{18, 0, 20, 5},   // 90% exactly
		{0, 0, 0, 0},     // no working days
	}
	for _, tc := range cases {
		got := attendanceBonusPct(tc.present, tc.paidLeave, tc.working)
		if !got.Equal(decimal.NewFromInt(tc.expected)) {
			t.Fatalf("attendanceBonusPct(%d, %d, %d) expected %d, got %s",
				tc.present, tc.paidLeave, tc.working, tc.expected, got)
		}
	}
}

func TestComputeSalaryBreakdownFullAttendance(t *testing.T) {
	in := payrollInputs{
		BasicSalary:  decimal.NewFromInt(260000),
		PfPercentage: decimal.NewFromInt(5),
		WorkingDays:  26,
		PresentDays:  26,
	}
	out := computeSalaryBreakdown(in)

	// 100% attendance pays the 15% tier on basic.
	if !out.TotalBonus.Equal(decimal.NewFromInt(39000)) {
		t.Fatalf("bonus expected 39000, got %s", out.TotalBonus)
	}
	if !out.PfDeduction.Equal(decimal.NewFromInt(13000)) {
		t.Fatalf("pf expected 13000, got %s", out.PfDeduction)
	}
	if !out.PfEmployerShare.Equal(out.PfDeduction) {
		t.Fatalf("employer share must match employee pf, got %s vs %s", out.PfEmployerShare, out.PfDeduction)
	}
	if !out.TotalDeduction.IsZero() {
		t.Fatalf("no deductions expected, got %s", out.TotalDeduction)
	}
	// 260000 + 39000 - 13000
	if !out.NetPayable.Equal(decimal.NewFromInt(286000)) {
		t.Fatalf("net expected 286000, got %s", out.NetPayable)
	}
}

func TestComputeSalaryBreakdownDeductions(t *testing.T) {
	in := payrollInputs{
		BasicSalary: decimal.NewFromInt(260000),
		WorkingDays: 26,
		PresentDays: 22, // ~84.6%, below every bonus tier
		AbsentDays:  2,
		LateDays:    2,
	}
	out := computeSalaryBreakdown(in)

	// per-day rate 10000: absent 2*10000, late 2*5000
	if !out.TotalDeduction.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("deduction expected 30000, got %s", out.TotalDeduction)
	}
	if !out.TotalBonus.IsZero() {
		t.Fatalf("no bonus expected below 90%%, got %s", out.TotalBonus)
	}
	if !out.NetPayable.Equal(decimal.NewFromInt(230000)) {
		t.Fatalf("net expected 230000, got %s", out.NetPayable)
	}
}

func TestComputeSalaryBreakdownOvertime(t *testing.T) {
	in := payrollInputs{
		BasicSalary:   decimal.NewFromInt(208000),
		WorkingDays:   26,
		PresentDays:   26,
		OvertimeHours: decimal.NewFromInt(10),
	}
	out := computeSalaryBreakdown(in)

	// per-day rate 8000, per-hour 1000, 10 hours
	if !out.OvertimeAmount.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("overtime expected 10000, got %s", out.OvertimeAmount)
	}
}

func TestComputeSalaryBreakdownAllowancesAndBonuses(t *testing.T) {
	in := payrollInputs{
		BasicSalary: decimal.NewFromInt(100000),
		WorkingDays: 26,
		PresentDays: 22, // no performance tier
		Allowances: []models.AllowanceSetting{
			{Mode: models.AllowanceModePercentage, Value: decimal.NewFromInt(10)},
			{Mode: models.AllowanceModeFixed, Value: decimal.NewFromInt(15000)},
		},
		Bonuses: []models.BonusSetting{
			{Mode: models.AllowanceModeFixed, Value: decimal.NewFromInt(20000)},
		},
		AwardCash: decimal.NewFromInt(5000),
	}
	out := computeSalaryBreakdown(in)

	if !out.TotalAllowance.Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("allowance expected 25000, got %s", out.TotalAllowance)
	}
	if !out.TotalBonus.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("bonus expected 20000, got %s", out.TotalBonus)
	}
	// 100000 + 25000 + 20000 + 5000 award
	if !out.NetPayable.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("net expected 150000, got %s", out.NetPayable)
	}
}

func TestWorkingDaysInMonth(t *testing.T) {
	// June 2026 has 30 days and four Sundays (7, 14, 21, 28).
	if got := workingDaysInMonth(2026, time.June, 0); got != 26 {
		t.Fatalf("June 2026 excluding Sundays expected 26, got %d", got)
	}
	// February 2024 (leap) has 29 days and five Thursdays (1, 8, 15, 22, 29).
	if got := workingDaysInMonth(2024, time.February, 4); got != 24 {
		t.Fatalf("Feb 2024 excluding Thursdays expected 24, got %d", got)
	}
}

func TestPaidLeaveDaysClippedToMonth(t *testing.T) {
	// Leave spans May 30 to June 2; only June 1-2 land in June.
	leaves := []models.Leave{
		{
			Status:   models.LeaveStatusApproved,
			FromDate: time.Date(2026, time.May, 30, 0, 0, 0, 0, time.UTC),
			ToDate:   time.Date(2026, time.June, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			Status:   models.LeaveStatusPending,
			FromDate: time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
			ToDate:   time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC),
		},
	}
	if got := paidLeaveDays(leaves, 2026, time.June, 0); got != 2 {
		t.Fatalf("expected 2 paid leave days, got %d", got)
	}
}
