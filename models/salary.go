package models

import (
	"context"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
)

// Salary holds one computed payout per (employee, month, year). It stays
// recalculable until it is paid.
type Salary struct {
	ID         int    `gorm:"primary_key" json:"id"`
	BusinessId string `gorm:"index;not null" json:"business_id"`
	EmployeeId int    `gorm:"index;not null" json:"employee_id"`
	Month      int    `gorm:"not null" json:"month"`
	Year       int    `gorm:"not null" json:"year"`

	BasicSalary     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"basic_salary"`
	TotalAllowance  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_allowance"`
	TotalBonus      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_bonus"`
	AwardAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"award_amount"`
	OvertimeAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"overtime_amount"`
	TotalDeduction  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_deduction"`
	PfDeduction     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"pf_deduction"`
	PfEmployerShare decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"pf_employer_share"`
	NetPayable      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_payable"`

	PresentDays   int             `gorm:"default:0" json:"present_days"`
	AbsentDays    int             `gorm:"default:0" json:"absent_days"`
	LateDays      int             `gorm:"default:0" json:"late_days"`
	PaidLeaveDays int             `gorm:"default:0" json:"paid_leave_days"`
	WorkingDays   int             `gorm:"default:0" json:"working_days"`
	OvertimeHours decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"overtime_hours"`

	Status    SalaryStatus `gorm:"size:12;not null;default:'pending'" json:"status"`
	PaidAt    *time.Time   `json:"paid_at"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetSalary(ctx context.Context, id int) (*Salary, error) {
	var salary Salary
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&salary).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &salary, nil
}

func GetSalaries(ctx context.Context, month, year int, offset int) ([]Salary, error) {
	var salaries []Salary
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("month = ? AND year = ?", month, year).
		Order("employee_id ASC").
		Offset(offset).Limit(config.SearchLimit).
		Find(&salaries).Error
	return salaries, err
}
