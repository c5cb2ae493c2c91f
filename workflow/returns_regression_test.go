package workflow_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"bitbucket.org/oryzasoft/backoffice_backend/workflow"
	"github.com/shopspring/decimal"
)

// Covers the settlement paths around returns and voids: voiding an advance
// adjustment gives the drawn advance back, a money back return closes the
// sale header before touching the customer ledger, and a sale item can
// never be returned beyond what was sold.
func TestReturnAndVoidSettlement(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	baseCtx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "backoffice_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if err := models.MigrateTable(config.GetDB()); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	businessId := fmt.Sprintf("biz-%d", time.Now().UnixNano())
	ctx := utils.SetBusinessIdInContext(baseCtx, businessId)
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUserTypeInContext(ctx, "owner")

	outlet, err := models.CreateOutlet(ctx, &models.NewOutlet{Name: "Returns Outlet"})
	if err != nil {
		t.Fatalf("CreateOutlet: %v", err)
	}
	ctx = utils.SetOutletIdInContext(ctx, outlet.ID)

	warehouse, err := models.CreateWarehouse(ctx, &models.NewWarehouse{OutletId: outlet.ID, Name: "Returns Warehouse"})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "Hilltop Mills"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}

	// stockedProduct creates a fresh product with 20 kg on hand so each
	// subtest owns its own batches.
	stockedProduct := func(t *testing.T, code string) *models.Product {
		t.Helper()
		product, err := models.CreateProduct(ctx, &models.NewProduct{
			Name:              "Rice " + code,
			Code:              code,
			UnitType:          models.UnitTypeWeight,
			DefaultUnit:       "kg",
			IsFractionAllowed: true,
		})
		if err != nil {
			t.Fatalf("CreateProduct: %v", err)
		}
		if _, err := workflow.CreatePurchase(ctx, &models.NewPurchase{
			OutletId:     outlet.ID,
			WarehouseId:  warehouse.ID,
			SupplierId:   supplier.ID,
			PurchaseDate: time.Now(),
			Items: []models.NewPurchaseItem{{
				ProductId:    product.ID,
				Unit:         "kg",
				UnitQuantity: decimal.NewFromInt(20),
				UnitPrice:    decimal.NewFromInt(3800),
			}},
		}); err != nil {
			t.Fatalf("CreatePurchase: %v", err)
		}
		return product
	}

	t.Run("voiding an advance adjustment restores the drawn advance", func(t *testing.T) {
		product := stockedProduct(t, "RTN-001")
		customer, err := models.CreateCustomer(ctx, &models.NewCustomer{OutletId: outlet.ID, Name: "Daw Hla"})
		if err != nil {
			t.Fatalf("CreateCustomer: %v", err)
		}
		account, err := models.CreateAccount(ctx, &models.NewAccount{
			OutletId:       outlet.ID,
			AccountType:    models.AccountTypeCash,
			Name:           "Void Drawer",
			OpeningBalance: decimal.NewFromInt(100000),
		})
		if err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}

		// Unpaid 45000 sale, then a 60000 cash payment: due clears and
		// 15000 lands in advance.
		if _, err := workflow.CreateSale(ctx, &models.NewSale{
			OutletId:    outlet.ID,
			WarehouseId: warehouse.ID,
			CustomerId:  customer.ID,
			SaleDate:    time.Now(),
			Items: []models.NewSaleItem{{
				ProductId:    product.ID,
				Unit:         "kg",
				UnitQuantity: decimal.NewFromInt(10),
				UnitPrice:    decimal.NewFromInt(4500),
			}},
		}); err != nil {
			t.Fatalf("CreateSale 1: %v", err)
		}
		if _, err := workflow.ClearCustomerDue(ctx, &workflow.NewDuePayment{
			CustomerId:  customer.ID,
			Amount:      decimal.NewFromInt(60000),
			PaymentType: models.PaymentTypeCash,
			AccountId:   account.ID,
		}); err != nil {
			t.Fatalf("ClearCustomerDue cash: %v", err)
		}

		// Second sale of 4500 settled entirely from the advance.
		sale2, err := workflow.CreateSale(ctx, &models.NewSale{
			OutletId:    outlet.ID,
			WarehouseId: warehouse.ID,
			CustomerId:  customer.ID,
			SaleDate:    time.Now(),
			Items: []models.NewSaleItem{{
				ProductId:    product.ID,
				Unit:         "kg",
				UnitQuantity: decimal.NewFromInt(1),
				UnitPrice:    decimal.NewFromInt(4500),
			}},
		})
		if err != nil {
			t.Fatalf("CreateSale 2: %v", err)
		}
		payments, err := workflow.ClearCustomerDue(ctx, &workflow.NewDuePayment{
			CustomerId:  customer.ID,
			Amount:      decimal.NewFromInt(4500),
			PaymentType: models.PaymentTypeAdvanceAdjustment,
		})
		if err != nil {
			t.Fatalf("ClearCustomerDue advance: %v", err)
		}
		if len(payments) != 1 {
			t.Fatalf("expected a single adjustment payment, got %d", len(payments))
		}

		before, err := models.GetCustomer(ctx, customer.ID)
		if err != nil {
			t.Fatalf("GetCustomer: %v", err)
		}
		if !before.AdvanceAmount.Equal(decimal.NewFromInt(10500)) {
			t.Fatalf("advance before void expected 10500, got %s", before.AdvanceAmount)
		}

		if _, err := workflow.VoidPayment(ctx, payments[0].ID); err != nil {
			t.Fatalf("VoidPayment: %v", err)
		}

		after, err := models.GetCustomer(ctx, customer.ID)
		if err != nil {
			t.Fatalf("GetCustomer after void: %v", err)
		}
		if !after.DueAmount.Equal(decimal.NewFromInt(4500)) {
			t.Fatalf("due should reopen to 4500, got %s", after.DueAmount)
		}
		if !after.AdvanceAmount.Equal(decimal.NewFromInt(15000)) {
			t.Fatalf("advance should be restored to 15000, got %s", after.AdvanceAmount)
		}

		sale2After, err := models.GetSale(ctx, sale2.ID)
		if err != nil {
			t.Fatalf("GetSale: %v", err)
		}
		if !sale2After.DueAmount.Real.Equal(decimal.NewFromInt(4500)) {
			t.Fatalf("sale due should reopen to 4500, got %s", sale2After.DueAmount.Real)
		}

		// Advance adjustments and their voids never move money.
		accountAfter, err := models.GetAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetAccount: %v", err)
		}
		if !accountAfter.CurrentBalance.Equal(decimal.NewFromInt(160000)) {
			t.Fatalf("account expected 160000, got %s", accountAfter.CurrentBalance)
		}
	})

	t.Run("money back return clears the sale header before the customer ledger", func(t *testing.T) {
		product := stockedProduct(t, "RTN-002")
		customer, err := models.CreateCustomer(ctx, &models.NewCustomer{OutletId: outlet.ID, Name: "U Kyaw"})
		if err != nil {
			t.Fatalf("CreateCustomer: %v", err)
		}
		account, err := models.CreateAccount(ctx, &models.NewAccount{
			OutletId:       outlet.ID,
			AccountType:    models.AccountTypeCash,
			Name:           "Return Drawer",
			OpeningBalance: decimal.NewFromInt(100000),
		})
		if err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}

		// 45000 sale with 40000 paid: 5000 stays due. A 4 kg return is
		// worth 18000, more than the open due.
		sale, err := workflow.CreateSale(ctx, &models.NewSale{
			OutletId:    outlet.ID,
			WarehouseId: warehouse.ID,
			CustomerId:  customer.ID,
			SaleDate:    time.Now(),
			PaidAmount:  decimal.NewFromInt(40000),
			AccountId:   account.ID,
			Items: []models.NewSaleItem{{
				ProductId:    product.ID,
				Unit:         "kg",
				UnitQuantity: decimal.NewFromInt(10),
				UnitPrice:    decimal.NewFromInt(4500),
			}},
		})
		if err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
		saleFull, err := models.GetSale(ctx, sale.ID)
		if err != nil {
			t.Fatalf("GetSale: %v", err)
		}

		ret, err := workflow.CreateSalesReturn(ctx, &models.NewSalesReturn{
			SaleId:     sale.ID,
			ReturnType: models.ReturnTypeMoneyBack,
			Items: []models.NewSalesReturnItem{{
				SaleItemId:     saleFull.Items[0].ID,
				ReturnQuantity: decimal.NewFromInt(4),
			}},
		})
		if err != nil {
			t.Fatalf("CreateSalesReturn: %v", err)
		}
		if _, err := workflow.ApproveSalesReturn(ctx, ret.ID); err != nil {
			t.Fatalf("ApproveSalesReturn: %v", err)
		}

		// 5000 of the refund closes the sale, 13000 becomes advance.
		saleAfter, err := models.GetSale(ctx, sale.ID)
		if err != nil {
			t.Fatalf("GetSale after return: %v", err)
		}
		if !saleAfter.DueAmount.Real.IsZero() {
			t.Fatalf("sale due should be closed by the refund, got %s", saleAfter.DueAmount.Real)
		}
		if !saleAfter.GrandTotal.Real.Equal(decimal.NewFromInt(40000)) {
			t.Fatalf("grand total should shrink to 40000, got %s", saleAfter.GrandTotal.Real)
		}
		if !saleAfter.GrandTotal.Real.Equal(saleAfter.PaidAmount.Real.Add(saleAfter.DueAmount.Real)) {
			t.Fatalf("grand total %s != paid %s + due %s",
				saleAfter.GrandTotal.Real, saleAfter.PaidAmount.Real, saleAfter.DueAmount.Real)
		}

		customerAfter, err := models.GetCustomer(ctx, customer.ID)
		if err != nil {
			t.Fatalf("GetCustomer: %v", err)
		}
		if !customerAfter.DueAmount.IsZero() {
			t.Fatalf("customer due should be zero, got %s", customerAfter.DueAmount)
		}
		if !customerAfter.AdvanceAmount.Equal(decimal.NewFromInt(13000)) {
			t.Fatalf("refund remainder expected 13000 in advance, got %s", customerAfter.AdvanceAmount)
		}

		// A later lump payment has nothing to clear and must not drive the
		// customer due negative.
		if _, err := workflow.ClearCustomerDue(ctx, &workflow.NewDuePayment{
			CustomerId:  customer.ID,
			Amount:      decimal.NewFromInt(2000),
			PaymentType: models.PaymentTypeCash,
			AccountId:   account.ID,
		}); err != nil {
			t.Fatalf("ClearCustomerDue: %v", err)
		}
		customerAfter, err = models.GetCustomer(ctx, customer.ID)
		if err != nil {
			t.Fatalf("GetCustomer after lump payment: %v", err)
		}
		if customerAfter.DueAmount.IsNegative() {
			t.Fatalf("customer due went negative: %s", customerAfter.DueAmount)
		}
		if !customerAfter.AdvanceAmount.Equal(decimal.NewFromInt(15000)) {
			t.Fatalf("lump payment should roll into advance, expected 15000, got %s", customerAfter.AdvanceAmount)
		}

		// Returned 4 kg came back on top of the 10 kg left in stock.
		available, err := workflow.AvailableBaseQuantity(ctx, warehouse.ID, product.ID, 0, nil)
		if err != nil {
			t.Fatalf("AvailableBaseQuantity: %v", err)
		}
		if !available.Equal(decimal.NewFromInt(14)) {
			t.Fatalf("stock expected 14 kg after replenishment, got %s", available)
		}
	})

	t.Run("cumulative returns cannot exceed the sold quantity", func(t *testing.T) {
		product := stockedProduct(t, "RTN-003")
		customer, err := models.CreateCustomer(ctx, &models.NewCustomer{OutletId: outlet.ID, Name: "Ma Su"})
		if err != nil {
			t.Fatalf("CreateCustomer: %v", err)
		}

		sale, err := workflow.CreateSale(ctx, &models.NewSale{
			OutletId:    outlet.ID,
			WarehouseId: warehouse.ID,
			CustomerId:  customer.ID,
			SaleDate:    time.Now(),
			Items: []models.NewSaleItem{{
				ProductId:    product.ID,
				Unit:         "kg",
				UnitQuantity: decimal.NewFromInt(10),
				UnitPrice:    decimal.NewFromInt(4500),
			}},
		})
		if err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
		saleFull, err := models.GetSale(ctx, sale.ID)
		if err != nil {
			t.Fatalf("GetSale: %v", err)
		}
		itemId := saleFull.Items[0].ID

		// First return of 6 kg stays pending; it still counts against the
		// returnable remainder.
		if _, err := workflow.CreateSalesReturn(ctx, &models.NewSalesReturn{
			SaleId:     sale.ID,
			ReturnType: models.ReturnTypeMoneyBack,
			Items: []models.NewSalesReturnItem{{
				SaleItemId:     itemId,
				ReturnQuantity: decimal.NewFromInt(6),
			}},
		}); err != nil {
			t.Fatalf("CreateSalesReturn 6 kg: %v", err)
		}

		if _, err := workflow.CreateSalesReturn(ctx, &models.NewSalesReturn{
			SaleId:     sale.ID,
			ReturnType: models.ReturnTypeMoneyBack,
			Items: []models.NewSalesReturnItem{{
				SaleItemId:     itemId,
				ReturnQuantity: decimal.NewFromInt(5),
			}},
		}); err == nil {
			t.Fatal("returning 5 kg after 6 of 10 kg should fail")
		}

		if _, err := workflow.CreateSalesReturn(ctx, &models.NewSalesReturn{
			SaleId:     sale.ID,
			ReturnType: models.ReturnTypeMoneyBack,
			Items: []models.NewSalesReturnItem{{
				SaleItemId:     itemId,
				ReturnQuantity: decimal.NewFromInt(4),
			}},
		}); err != nil {
			t.Fatalf("returning the remaining 4 kg should pass: %v", err)
		}

		// Duplicate lines inside a single request count together too.
		if _, err := workflow.CreateSalesReturn(ctx, &models.NewSalesReturn{
			SaleId:     sale.ID,
			ReturnType: models.ReturnTypeMoneyBack,
			Items: []models.NewSalesReturnItem{
				{SaleItemId: itemId, ReturnQuantity: decimal.NewFromInt(1)},
				{SaleItemId: itemId, ReturnQuantity: decimal.NewFromInt(1)},
			},
		}); err == nil {
			t.Fatal("nothing is left to return, duplicate lines should fail")
		}
	})
}
