package models

import "errors"

// UnitType groups compatible measurement units around one base unit.
type UnitType string

const (
	UnitTypePiece  UnitType = "piece"
	UnitTypeWeight UnitType = "weight"
	UnitTypeVolume UnitType = "volume"
	UnitTypeLength UnitType = "length"
)

func (t UnitType) Valid() bool {
	switch t {
	case UnitTypePiece, UnitTypeWeight, UnitTypeVolume, UnitTypeLength:
		return true
	}
	return false
}

type AccountType string

const (
	AccountTypeCash   AccountType = "cash"
	AccountTypeBank   AccountType = "bank"
	AccountTypeMobile AccountType = "mobile"
)

// BalanceDirection parameterizes the single account balance mutation.
// deposit/credit add to the balance, withdraw/debit subtract from it.
type BalanceDirection string

const (
	BalanceDirectionDeposit  BalanceDirection = "deposit"
	BalanceDirectionCredit   BalanceDirection = "credit"
	BalanceDirectionWithdraw BalanceDirection = "withdraw"
	BalanceDirectionDebit    BalanceDirection = "debit"
)

var ErrInvalidBalanceDirection = errors.New("invalid balance direction")

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusPartial   TransactionStatus = "partial"
	TransactionStatusPaid      TransactionStatus = "paid"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

type PaymentType string

const (
	PaymentTypeCash              PaymentType = "cash"
	PaymentTypeBank              PaymentType = "bank"
	PaymentTypeAdvanceAdjustment PaymentType = "advance_adjustment"
	PaymentTypeAccountAdjustment PaymentType = "account_adjustment"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusVoided    PaymentStatus = "voided"
)

type ReturnType string

const (
	ReturnTypeMoneyBack          ReturnType = "money_back"
	ReturnTypeProductReplacement ReturnType = "product_replacement"
)

type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusCompleted ReturnStatus = "completed"
	ReturnStatusCancelled ReturnStatus = "cancelled"
)

// ItemType distinguishes stock-backed lines from pickup (pass-through) lines.
type ItemType string

const (
	ItemTypeReal   ItemType = "real"
	ItemTypePickup ItemType = "pickup"
)

type StockMovementType string

const (
	StockMovementIn  StockMovementType = "in"
	StockMovementOut StockMovementType = "out"
)

type StockReferenceType string

const (
	StockReferenceTypePurchase       StockReferenceType = "PO"
	StockReferenceTypeSale           StockReferenceType = "INV"
	StockReferenceTypeSalesReturn    StockReferenceType = "RTN"
	StockReferenceTypePurchaseReturn StockReferenceType = "PRTN"
	StockReferenceTypeOpeningStock   StockReferenceType = "OPST"
)

type PaymentReferenceType string

const (
	PaymentReferenceTypeSale           PaymentReferenceType = "sale"
	PaymentReferenceTypePurchase       PaymentReferenceType = "purchase"
	PaymentReferenceTypeSalary         PaymentReferenceType = "salary"
	PaymentReferenceTypeExpense        PaymentReferenceType = "expense"
	PaymentReferenceTypeAdvance        PaymentReferenceType = "advance"
	PaymentReferenceTypeSalesReturn    PaymentReferenceType = "sales_return"
	PaymentReferenceTypePurchaseReturn PaymentReferenceType = "purchase_return"
)

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	}
	return false
}

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

type SalaryStatus string

const (
	SalaryStatusPending SalaryStatus = "pending"
	SalaryStatusPaid    SalaryStatus = "paid"
)

type AllowanceMode string

const (
	AllowanceModePercentage AllowanceMode = "percentage"
	AllowanceModeFixed      AllowanceMode = "fixed"
)
