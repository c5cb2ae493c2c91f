// seed-demo fills an empty database with a demo tenant: an outlet, a
// warehouse, cash and bank accounts, a couple of products, and one
// customer, supplier, and employee. Handy for manual API testing.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
//
// The tenant id defaults to "demo" and can be overridden with SEED_BUSINESS_ID.
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()

	businessId := os.Getenv("SEED_BUSINESS_ID")
	if businessId == "" {
		businessId = "demo"
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	ctx = utils.SetBusinessIdInContext(ctx, businessId)
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Seed")
	ctx = utils.SetUserTypeInContext(ctx, "owner")

	outlet, err := models.CreateOutlet(ctx, &models.NewOutlet{
		Name:          "Main Outlet",
		Phone:         "09111111111",
		Address:       "No. 1, Demo Street, Yangon",
		InvoicePrefix: "INV",
	})
	if err != nil {
		fail("create outlet", err)
	}
	ctx = utils.SetOutletIdInContext(ctx, outlet.ID)

	warehouse, err := models.CreateWarehouse(ctx, &models.NewWarehouse{
		OutletId: outlet.ID,
		Name:     "Main Warehouse",
		Address:  "No. 1, Demo Street, Yangon",
	})
	if err != nil {
		fail("create warehouse", err)
	}

	for _, acc := range []*models.NewAccount{
		{OutletId: outlet.ID, AccountType: models.AccountTypeCash, Name: "Cash Drawer"},
		{OutletId: outlet.ID, AccountType: models.AccountTypeBank, Name: "KBZ Current", AccountNumber: "0012-3456-7890"},
	} {
		if _, err := models.CreateAccount(ctx, acc); err != nil {
			fail("create account "+acc.Name, err)
		}
	}

	products := []*models.NewProduct{
		{
			Name:          "Jasmine Rice",
			Code:          "RICE-001",
			UnitType:      models.UnitTypeWeight,
			DefaultUnit:       "kg",
			MinSaleUnit:       "gram",
			IsFractionAllowed: true,
			SalesPrice:    decimal.NewFromInt(4500),
			PurchasePrice: decimal.NewFromInt(3800),
		},
		{
			Name:              "Drinking Water 1L",
			Code:              "WTR-1L",
			UnitType:          models.UnitTypePiece,
			DefaultUnit:       "dozen",
			MinSaleUnit:       "piece",
			IsFractionAllowed: false,
			SalesPrice:        decimal.NewFromInt(6000),
			PurchasePrice:     decimal.NewFromInt(4800),
		},
	}
	for _, p := range products {
		if _, err := models.CreateProduct(ctx, p); err != nil {
			fail("create product "+p.Code, err)
		}
	}

	if _, err := models.CreateCustomer(ctx, &models.NewCustomer{
		OutletId: outlet.ID,
		Name:     "U Mya",
		Phone:    "09222222222",
	}); err != nil {
		fail("create customer", err)
	}
	if _, err := models.CreateSupplier(ctx, &models.NewSupplier{
		Name:  "Golden Valley Trading",
		Phone: "09333333333",
	}); err != nil {
		fail("create supplier", err)
	}
	if _, err := models.CreateEmployee(ctx, &models.NewEmployee{
		Name:         "Ko Aung",
		Designation:  "Sales Staff",
		BasicSalary:  decimal.NewFromInt(350000),
		PfPercentage: decimal.NewFromInt(5),
		WeeklyOffDay: 0,
	}); err != nil {
		fail("create employee", err)
	}

	fmt.Printf("Seeded business %q: outlet=%d warehouse=%d\n", businessId, outlet.ID, warehouse.ID)
	fmt.Printf("Send X-Business-Id: %s and X-Outlet-Id: %d on API requests.\n", businessId, outlet.ID)
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", step, err)
	os.Exit(1)
}
