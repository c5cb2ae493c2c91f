package models

import "gorm.io/gorm"

// MigrateTable keeps the schema in sync at startup.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Outlet{},
		&Warehouse{},
		&Product{},
		&ProductVariant{},
		&Stock{},
		&StockMovement{},
		&Account{},
		&Customer{},
		&Supplier{},
		&Sale{},
		&SaleItem{},
		&Purchase{},
		&PurchaseItem{},
		&SalesReturn{},
		&SalesReturnItem{},
		&ReplacementProduct{},
		&PurchaseReturn{},
		&PurchaseReturnItem{},
		&Payment{},
		&ExpenseCategory{},
		&Expense{},
		&Employee{},
		&Attendance{},
		&Leave{},
		&AllowanceSetting{},
		&BonusSetting{},
		&Award{},
		&Salary{},
	)
}
