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

// payrollInputs is everything computeSalaryBreakdown needs, gathered up
// front so the computation itself stays pure.
type payrollInputs struct {
	BasicSalary   decimal.Decimal
	PfPercentage  decimal.Decimal
	WorkingDays   int
	PresentDays   int
	AbsentDays    int
	LateDays      int
	OvertimeHours decimal.Decimal
	PaidLeaveDays int
	Allowances    []models.AllowanceSetting
	Bonuses       []models.BonusSetting
	AwardCash     decimal.Decimal
}

type salaryBreakdown struct {
	TotalAllowance  decimal.Decimal
	TotalBonus      decimal.Decimal
	OvertimeAmount  decimal.Decimal
	TotalDeduction  decimal.Decimal
	PfDeduction     decimal.Decimal
	PfEmployerShare decimal.Decimal
	NetPayable      decimal.Decimal
}

// overtime pays the per-day rate split over an eight hour day.
var hoursPerWorkDay = decimal.NewFromInt(8)

// attendanceBonusPct returns the tiered performance bonus percentage for an
// attendance ratio: >=98% pays 15%, >=95% pays 10%, >=90% pays 5%.
func attendanceBonusPct(presentDays, paidLeaveDays, workingDays int) decimal.Decimal {
	if workingDays <= 0 {
		return decimal.Zero
	}
	ratio := decimal.NewFromInt(int64(presentDays + paidLeaveDays)).
		Div(decimal.NewFromInt(int64(workingDays))).
		Mul(decimal.NewFromInt(100))
	switch {
	case ratio.GreaterThanOrEqual(decimal.NewFromInt(98)):
		return decimal.NewFromInt(15)
	case ratio.GreaterThanOrEqual(decimal.NewFromInt(95)):
		return decimal.NewFromInt(10)
	case ratio.GreaterThanOrEqual(decimal.NewFromInt(90)):
		return decimal.NewFromInt(5)
	default:
		return decimal.Zero
	}
}

// computeSalaryBreakdown derives the month's pay from gathered inputs.
// Late days deduct half a day's rate, absent days a full day's rate.
func computeSalaryBreakdown(in payrollInputs) salaryBreakdown {
	hundred := decimal.NewFromInt(100)
	var out salaryBreakdown

	for _, a := range in.Allowances {
		switch a.Mode {
		case models.AllowanceModePercentage:
			out.TotalAllowance = out.TotalAllowance.Add(in.BasicSalary.Mul(a.Value).Div(hundred))
		case models.AllowanceModeFixed:
			out.TotalAllowance = out.TotalAllowance.Add(a.Value)
		}
	}

	for _, b := range in.Bonuses {
		switch b.Mode {
		case models.AllowanceModePercentage:
			out.TotalBonus = out.TotalBonus.Add(in.BasicSalary.Mul(b.Value).Div(hundred))
		case models.AllowanceModeFixed:
			out.TotalBonus = out.TotalBonus.Add(b.Value)
		}
	}
	performancePct := attendanceBonusPct(in.PresentDays, in.PaidLeaveDays, in.WorkingDays)
	out.TotalBonus = out.TotalBonus.Add(in.BasicSalary.Mul(performancePct).Div(hundred))

	var perDayRate decimal.Decimal
	if in.WorkingDays > 0 {
		perDayRate = in.BasicSalary.Div(decimal.NewFromInt(int64(in.WorkingDays)))
	}
	out.OvertimeAmount = in.OvertimeHours.Mul(perDayRate).Div(hoursPerWorkDay)

	lateDeduction := perDayRate.Div(decimal.NewFromInt(2)).Mul(decimal.NewFromInt(int64(in.LateDays)))
	absentDeduction := perDayRate.Mul(decimal.NewFromInt(int64(in.AbsentDays)))
	out.TotalDeduction = lateDeduction.Add(absentDeduction)

	out.PfDeduction = in.BasicSalary.Mul(in.PfPercentage).Div(hundred)
	out.PfEmployerShare = out.PfDeduction

	out.NetPayable = in.BasicSalary.
		Add(out.TotalAllowance).
		Add(out.TotalBonus).
		Add(out.OvertimeAmount).
		Add(in.AwardCash).
		Sub(out.TotalDeduction).
		Sub(out.PfDeduction)

	out.TotalAllowance = utils.RoundMoney(out.TotalAllowance)
	out.TotalBonus = utils.RoundMoney(out.TotalBonus)
	out.OvertimeAmount = utils.RoundMoney(out.OvertimeAmount)
	out.TotalDeduction = utils.RoundMoney(out.TotalDeduction)
	out.PfDeduction = utils.RoundMoney(out.PfDeduction)
	out.PfEmployerShare = utils.RoundMoney(out.PfEmployerShare)
	out.NetPayable = utils.RoundMoney(out.NetPayable)
	return out
}

// workingDaysInMonth counts the month's days excluding the employee's weekly
// off-day.
func workingDaysInMonth(year int, month time.Month, weeklyOffDay int) int {
	days := utils.DaysInMonth(year, month)
	working := 0
	for d := 1; d <= days; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		if int(date.Weekday()) != weeklyOffDay {
			working++
		}
	}
	return working
}

// paidLeaveDays counts the days of approved leaves overlapping the month,
// clipped to the month and excluding the weekly off-day.
func paidLeaveDays(leaves []models.Leave, year int, month time.Month, weeklyOffDay int) int {
	monthStart, monthEnd := utils.MonthBounds(year, month)
	lastDay := monthEnd.AddDate(0, 0, -1)
	count := 0
	for _, leave := range leaves {
		if leave.Status != models.LeaveStatusApproved {
			continue
		}
		from := leave.FromDate
		if from.Before(monthStart) {
			from = monthStart
		}
		to := leave.ToDate
		if to.After(lastDay) {
			to = lastDay
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if int(d.Weekday()) != weeklyOffDay {
				count++
			}
		}
	}
	return count
}

// gatherPayrollInputs pulls attendance, leave, settings and awards for the
// employee's month.
func gatherPayrollInputs(ctx context.Context, employee *models.Employee, year int, month time.Month) (payrollInputs, []models.Attendance, error) {
	db := config.GetDB()
	monthStart, monthEnd := utils.MonthBounds(year, month)

	var attendances []models.Attendance
	if err := db.WithContext(ctx).
		Where("employee_id = ? AND date >= ? AND date < ?", employee.ID, monthStart, monthEnd).
		Find(&attendances).Error; err != nil {
		return payrollInputs{}, nil, err
	}

	var leaves []models.Leave
	if err := db.WithContext(ctx).
		Where("employee_id = ? AND from_date < ? AND to_date >= ?", employee.ID, monthEnd, monthStart).
		Find(&leaves).Error; err != nil {
		return payrollInputs{}, nil, err
	}

	var allowances []models.AllowanceSetting
	if err := db.WithContext(ctx).Where("is_active = ?", true).Find(&allowances).Error; err != nil {
		return payrollInputs{}, nil, err
	}

	var bonuses []models.BonusSetting
	if err := db.WithContext(ctx).
		Where("is_active = ? AND effective_date >= ? AND effective_date < ?", true, monthStart, monthEnd).
		Find(&bonuses).Error; err != nil {
		return payrollInputs{}, nil, err
	}

	var awards []models.Award
	if err := db.WithContext(ctx).
		Where("employee_id = ? AND is_paid = ?", employee.ID, false).
		Find(&awards).Error; err != nil {
		return payrollInputs{}, nil, err
	}
	awardCash := decimal.Zero
	for _, a := range awards {
		awardCash = awardCash.Add(a.CashAmount)
	}

	in := payrollInputs{
		BasicSalary:  employee.BasicSalary,
		PfPercentage: employee.PfPercentage,
		WorkingDays:  workingDaysInMonth(year, month, employee.WeeklyOffDay),
		Allowances:   allowances,
		Bonuses:      bonuses,
		AwardCash:    awardCash,
	}
	for _, a := range attendances {
		switch a.Status {
		case models.AttendanceStatusPresent:
			in.PresentDays++
			in.OvertimeHours = in.OvertimeHours.Add(a.OvertimeHours)
		case models.AttendanceStatusLate:
			in.PresentDays++
			in.LateDays++
			in.OvertimeHours = in.OvertimeHours.Add(a.OvertimeHours)
		case models.AttendanceStatusAbsent:
			in.AbsentDays++
		}
	}
	in.PaidLeaveDays = paidLeaveDays(leaves, year, month, employee.WeeklyOffDay)
	return in, attendances, nil
}

// CalculateSalary computes and upserts the employee's salary for the month.
// Recalculation overwrites the pending row; a paid salary is immutable.
func CalculateSalary(ctx context.Context, employeeId, year, month int) (*models.Salary, error) {
	logger := config.GetLogger()
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if month < 1 || month > 12 {
		return nil, errors.New("month must be 1-12")
	}

	employee, err := models.GetEmployee(ctx, employeeId)
	if err != nil {
		return nil, err
	}

	in, _, err := gatherPayrollInputs(ctx, employee, year, time.Month(month))
	if err != nil {
		config.LogError(logger, "payroll.go", "CalculateSalary", "gather inputs", employeeId, err)
		return nil, err
	}
	breakdown := computeSalaryBreakdown(in)

	db := config.GetDB()
	var salary models.Salary
	err = db.WithContext(ctx).
		Where("employee_id = ? AND month = ? AND year = ?", employeeId, month, year).
		First(&salary).Error
	switch {
	case err == nil:
		if salary.Status == models.SalaryStatusPaid {
			return nil, utils.NewStateConflict("salary for %d/%d is already paid", month, year)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		salary = models.Salary{
			BusinessId: businessId,
			EmployeeId: employeeId,
			Month:      month,
			Year:       year,
			Status:     models.SalaryStatusPending,
		}
	default:
		return nil, err
	}

	salary.BasicSalary = employee.BasicSalary
	salary.TotalAllowance = breakdown.TotalAllowance
	salary.TotalBonus = breakdown.TotalBonus
	salary.AwardAmount = utils.RoundMoney(in.AwardCash)
	salary.OvertimeAmount = breakdown.OvertimeAmount
	salary.TotalDeduction = breakdown.TotalDeduction
	salary.PfDeduction = breakdown.PfDeduction
	salary.PfEmployerShare = breakdown.PfEmployerShare
	salary.NetPayable = breakdown.NetPayable
	salary.PresentDays = in.PresentDays
	salary.AbsentDays = in.AbsentDays
	salary.LateDays = in.LateDays
	salary.PaidLeaveDays = in.PaidLeaveDays
	salary.WorkingDays = in.WorkingDays
	salary.OvertimeHours = in.OvertimeHours

	if err := db.WithContext(ctx).Save(&salary).Error; err != nil {
		config.LogError(logger, "payroll.go", "CalculateSalary", "save", employeeId, err)
		return nil, err
	}
	return &salary, nil
}

// PaySalary withdraws the net payable from the account, books the employee
// and employer PF shares into the running balance, marks unpaid awards paid,
// and freezes the salary row.
func PaySalary(ctx context.Context, salaryId, accountId int) (*models.Salary, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var salary *models.Salary
	err := runPosting(ctx, businessId, func(tx *gorm.DB) error {
		var s models.Salary
		if err := tx.WithContext(ctx).Clauses(forUpdate()).
			Where("id = ?", salaryId).First(&s).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if s.Status == models.SalaryStatusPaid {
			return utils.NewStateConflict("salary %d is already paid", s.ID)
		}

		account, err := models.GetAccountForUpdate(tx, ctx, accountId)
		if err != nil {
			return err
		}
		if !account.CanWithdraw(s.NetPayable) {
			return &utils.InsufficientBalanceError{
				Available: account.CurrentBalance,
				Requested: s.NetPayable,
			}
		}
		if err := models.UpdateAccountBalance(tx, ctx, accountId, s.NetPayable, models.BalanceDirectionWithdraw); err != nil {
			return err
		}

		pfCredit := s.PfDeduction.Add(s.PfEmployerShare)
		if pfCredit.IsPositive() {
			if err := tx.WithContext(ctx).Model(&models.Employee{}).
				Where("id = ?", s.EmployeeId).
				Update("pf_balance", gorm.Expr("pf_balance + ?", pfCredit)).Error; err != nil {
				return err
			}
		}

		if s.AwardAmount.IsPositive() {
			if err := tx.WithContext(ctx).Model(&models.Award{}).
				Where("employee_id = ? AND is_paid = ?", s.EmployeeId, false).
				Update("is_paid", true).Error; err != nil {
				return err
			}
		}

		outletId, _ := utils.GetOutletIdFromContext(ctx)
		now := time.Now()
		acct := accountId
		payment := models.Payment{
			BusinessId:    businessId,
			OutletId:      outletId,
			ReferenceType: models.PaymentReferenceTypeSalary,
			SalaryId:      &s.ID,
			Amount:        s.NetPayable.Neg(),
			PaymentType:   models.PaymentTypeCash,
			AccountId:     &acct,
			TxnRef:        models.NewTxnRef(),
			Status:        models.PaymentStatusCompleted,
			PaidAt:        now,
		}
		if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
			return err
		}

		s.Status = models.SalaryStatusPaid
		s.PaidAt = &now
		if err := tx.WithContext(ctx).Save(&s).Error; err != nil {
			return err
		}
		salary = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return salary, nil
}
