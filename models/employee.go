package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id"`
	OutletId     int             `gorm:"index;not null" json:"outlet_id"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	Phone        string          `gorm:"size:20" json:"phone"`
	Designation  string          `gorm:"size:100" json:"designation"`
	BasicSalary  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"basic_salary"`
	PfPercentage decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"pf_percentage"`
	PfBalance    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"pf_balance"`
	// WeeklyOffDay follows time.Weekday numbering, Sunday = 0.
	WeeklyOffDay int       `gorm:"default:5" json:"weekly_off_day"`
	JoinedAt     time.Time `json:"joined_at"`
	IsActive     *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Attendance struct {
	ID         int              `gorm:"primary_key" json:"id"`
	BusinessId string           `gorm:"index;not null" json:"business_id"`
	EmployeeId int              `gorm:"index;not null" json:"employee_id"`
	Date       time.Time        `gorm:"index;not null" json:"date"`
	Status     AttendanceStatus `gorm:"size:12;not null" json:"status"`
	// OvertimeHours only counts when Status is present or late.
	OvertimeHours decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"overtime_hours"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type Leave struct {
	ID         int         `gorm:"primary_key" json:"id"`
	BusinessId string      `gorm:"index;not null" json:"business_id"`
	EmployeeId int         `gorm:"index;not null" json:"employee_id"`
	FromDate   time.Time   `gorm:"not null" json:"from_date"`
	ToDate     time.Time   `gorm:"not null" json:"to_date"`
	Reason     string      `gorm:"size:255" json:"reason"`
	Status     LeaveStatus `gorm:"size:12;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// AllowanceSetting applies to every employee of the business.
type AllowanceSetting struct {
	ID         int             `gorm:"primary_key" json:"id"`
	BusinessId string          `gorm:"index;not null" json:"business_id"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	Mode       AllowanceMode   `gorm:"size:12;not null" json:"mode"`
	Value      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"value"`
	IsActive   *bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// BonusSetting pays out in the month its EffectiveDate falls in.
type BonusSetting struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Mode          AllowanceMode   `gorm:"size:12;not null" json:"mode"`
	Value         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"value"`
	EffectiveDate time.Time       `gorm:"not null" json:"effective_date"`
	IsActive      *bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type Award struct {
	ID         int             `gorm:"primary_key" json:"id"`
	BusinessId string          `gorm:"index;not null" json:"business_id"`
	EmployeeId int             `gorm:"index;not null" json:"employee_id"`
	Title      string          `gorm:"size:100;not null" json:"title"`
	CashAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cash_amount"`
	IsPaid     *bool           `gorm:"default:false" json:"is_paid"`
	AwardedAt  time.Time       `json:"awarded_at"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewEmployee struct {
	Name         string          `json:"name" binding:"required"`
	Phone        string          `json:"phone"`
	Designation  string          `json:"designation"`
	BasicSalary  decimal.Decimal `json:"basic_salary" binding:"required"`
	PfPercentage decimal.Decimal `json:"pf_percentage"`
	WeeklyOffDay int             `json:"weekly_off_day"`
	JoinedAt     *time.Time      `json:"joined_at"`
}

type NewAttendance struct {
	EmployeeId    int              `json:"employee_id" binding:"required"`
	Date          time.Time        `json:"date" binding:"required"`
	Status        AttendanceStatus `json:"status" binding:"required"`
	OvertimeHours decimal.Decimal  `json:"overtime_hours"`
}

type NewLeave struct {
	EmployeeId int       `json:"employee_id" binding:"required"`
	FromDate   time.Time `json:"from_date" binding:"required"`
	ToDate     time.Time `json:"to_date" binding:"required"`
	Reason     string    `json:"reason"`
}

func CreateEmployee(ctx context.Context, input *NewEmployee) (*Employee, error) {
	db := config.GetDB()
	joinedAt := time.Now()
	if input.JoinedAt != nil {
		joinedAt = *input.JoinedAt
	}
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	outletId, _ := utils.GetOutletIdFromContext(ctx)
	employee := Employee{
		BusinessId:   businessId,
		OutletId:     outletId,
		Name:         input.Name,
		Phone:        input.Phone,
		Designation:  input.Designation,
		BasicSalary:  input.BasicSalary,
		PfPercentage: input.PfPercentage,
		WeeklyOffDay: input.WeeklyOffDay,
		JoinedAt:     joinedAt,
		IsActive:     utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func GetEmployee(ctx context.Context, id int) (*Employee, error) {
	var employee Employee
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&employee).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &employee, nil
}

// RecordAttendance upserts the employee's attendance row for the day.
func RecordAttendance(ctx context.Context, input *NewAttendance) (*Attendance, error) {
	db := config.GetDB()
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := utils.ValidateResourceId[Employee](ctx, businessId, input.EmployeeId); err != nil {
		return nil, err
	}
	if !input.Status.Valid() {
		return nil, utils.NewStateConflict("invalid attendance status %q", input.Status)
	}
	day := input.Date.Truncate(24 * time.Hour)

	var attendance Attendance
	err := db.WithContext(ctx).
		Where("employee_id = ? AND date = ?", input.EmployeeId, day).
		First(&attendance).Error
	if err == nil {
		attendance.Status = input.Status
		attendance.OvertimeHours = input.OvertimeHours
		if err := db.WithContext(ctx).Save(&attendance).Error; err != nil {
			return nil, err
		}
		return &attendance, nil
	}

	attendance = Attendance{
		BusinessId:    businessId,
		EmployeeId:    input.EmployeeId,
		Date:          day,
		Status:        input.Status,
		OvertimeHours: input.OvertimeHours,
	}
	if err := db.WithContext(ctx).Create(&attendance).Error; err != nil {
		return nil, err
	}
	return &attendance, nil
}

func CreateLeave(ctx context.Context, input *NewLeave) (*Leave, error) {
	db := config.GetDB()
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := utils.ValidateResourceId[Employee](ctx, businessId, input.EmployeeId); err != nil {
		return nil, err
	}
	if input.ToDate.Before(input.FromDate) {
		return nil, utils.NewStateConflict("leave to_date is before from_date")
	}
	leave := Leave{
		BusinessId: businessId,
		EmployeeId: input.EmployeeId,
		FromDate:   input.FromDate,
		ToDate:     input.ToDate,
		Reason:     input.Reason,
		Status:     LeaveStatusPending,
	}
	if err := db.WithContext(ctx).Create(&leave).Error; err != nil {
		return nil, err
	}
	return &leave, nil
}

// UpdateLeaveStatus moves a pending leave to approved or rejected.
func UpdateLeaveStatus(ctx context.Context, id int, status LeaveStatus) (*Leave, error) {
	db := config.GetDB()
	var leave Leave
	if err := db.WithContext(ctx).Where("id = ?", id).First(&leave).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if leave.Status != LeaveStatusPending {
		return nil, utils.NewStateConflict("leave %d is already %s", leave.ID, leave.Status)
	}
	leave.Status = status
	if err := db.WithContext(ctx).Save(&leave).Error; err != nil {
		return nil, err
	}
	return &leave, nil
}
