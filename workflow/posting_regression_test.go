package workflow_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/config"
	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"bitbucket.org/oryzasoft/backoffice_backend/workflow"
	"github.com/shopspring/decimal"
)

// Covers the purchase -> FIFO sale -> due clearing chain end to end:
// batches deplete oldest first, counterparty dues track transaction dues,
// account balances move only by recorded payments, and excess payment
// lands in the customer's advance.
func TestPurchaseSaleDueClearingEndToEnd(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

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
	ctx = utils.SetBusinessIdInContext(ctx, businessId)
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUserTypeInContext(ctx, "owner")

	outlet, err := models.CreateOutlet(ctx, &models.NewOutlet{Name: "Test Outlet"})
	if err != nil {
		t.Fatalf("CreateOutlet: %v", err)
	}
	ctx = utils.SetOutletIdInContext(ctx, outlet.ID)

	warehouse, err := models.CreateWarehouse(ctx, &models.NewWarehouse{OutletId: outlet.ID, Name: "Test Warehouse"})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}
	account, err := models.CreateAccount(ctx, &models.NewAccount{
		OutletId:       outlet.ID,
		AccountType:    models.AccountTypeCash,
		Name:           "Cash Drawer",
		OpeningBalance: decimal.NewFromInt(1000000),
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:              "Rice",
		Code:              "RICE-001",
		UnitType:          models.UnitTypeWeight,
		DefaultUnit:       "kg",
		IsFractionAllowed: true,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{OutletId: outlet.ID, Name: "U Mya"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "Golden Valley"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}

	// Two unpaid purchases, 10 kg @ 3800 then 5 kg @ 4000.
	purchase1, err := workflow.CreatePurchase(ctx, &models.NewPurchase{
		OutletId:     outlet.ID,
		WarehouseId:  warehouse.ID,
		SupplierId:   supplier.ID,
		PurchaseDate: time.Now(),
		Items: []models.NewPurchaseItem{{
			ProductId:    product.ID,
			Unit:         "kg",
			UnitQuantity: decimal.NewFromInt(10),
			UnitPrice:    decimal.NewFromInt(3800),
		}},
	})
	if err != nil {
		t.Fatalf("CreatePurchase 1: %v", err)
	}
	if !regexp.MustCompile(`^PO-\d+-\d{6}$`).MatchString(purchase1.PurchaseNo) {
		t.Fatalf("purchase number %q malformed", purchase1.PurchaseNo)
	}
	if _, err := workflow.CreatePurchase(ctx, &models.NewPurchase{
		OutletId:     outlet.ID,
		WarehouseId:  warehouse.ID,
		SupplierId:   supplier.ID,
		PurchaseDate: time.Now(),
		Items: []models.NewPurchaseItem{{
			ProductId:    product.ID,
			Unit:         "kg",
			UnitQuantity: decimal.NewFromInt(5),
			UnitPrice:    decimal.NewFromInt(4000),
		}},
	}); err != nil {
		t.Fatalf("CreatePurchase 2: %v", err)
	}

	supplierAfter, err := models.GetSupplier(ctx, supplier.ID)
	if err != nil {
		t.Fatalf("GetSupplier: %v", err)
	}
	if !supplierAfter.DueAmount.Equal(decimal.NewFromInt(58000)) {
		t.Fatalf("supplier due expected 58000, got %s", supplierAfter.DueAmount)
	}

	available, err := workflow.AvailableBaseQuantity(ctx, warehouse.ID, product.ID, 0, nil)
	if err != nil {
		t.Fatalf("AvailableBaseQuantity: %v", err)
	}
	if !available.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("available stock expected 15 kg, got %s", available)
	}

	// Sale of 12 kg: must drain the 10 kg batch and take 2 kg from the next.
	// Grand total 54000, 20000 paid into cash, 34000 on the customer.
	sale, err := workflow.CreateSale(ctx, &models.NewSale{
		OutletId:    outlet.ID,
		WarehouseId: warehouse.ID,
		CustomerId:  customer.ID,
		SaleDate:    time.Now(),
		PaidAmount:  decimal.NewFromInt(20000),
		AccountId:   account.ID,
		Items: []models.NewSaleItem{{
			ProductId:    product.ID,
			Unit:         "kg",
			UnitQuantity: decimal.NewFromInt(12),
			UnitPrice:    decimal.NewFromInt(4500),
		}},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if !sale.GrandTotal.Real.Equal(decimal.NewFromInt(54000)) {
		t.Fatalf("grand total expected 54000, got %s", sale.GrandTotal.Real)
	}
	if !sale.GrandTotal.Real.Equal(sale.PaidAmount.Real.Add(sale.DueAmount.Real)) {
		t.Fatalf("grand total %s != paid %s + due %s",
			sale.GrandTotal.Real, sale.PaidAmount.Real, sale.DueAmount.Real)
	}

	available, err = workflow.AvailableBaseQuantity(ctx, warehouse.ID, product.ID, 0, nil)
	if err != nil {
		t.Fatalf("AvailableBaseQuantity after sale: %v", err)
	}
	if !available.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("remaining stock expected 3 kg, got %s", available)
	}

	batches, err := models.GetOpenStockBatches(config.GetDB(), ctx, warehouse.ID, product.ID, 0, nil, false)
	if err != nil {
		t.Fatalf("GetOpenStockBatches: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("oldest batch should be drained, got %d open batches", len(batches))
	}
	if !batches[0].PurchasePrice.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("surviving batch should be the newer one @4000, got @%s", batches[0].PurchasePrice)
	}

	// Overselling must fail atomically and leave stock untouched.
	if _, err := workflow.CreateSale(ctx, &models.NewSale{
		OutletId:    outlet.ID,
		WarehouseId: warehouse.ID,
		CustomerId:  customer.ID,
		SaleDate:    time.Now(),
		Items: []models.NewSaleItem{{
			ProductId:    product.ID,
			Unit:         "kg",
			UnitQuantity: decimal.NewFromInt(4),
			UnitPrice:    decimal.NewFromInt(4500),
		}},
	}); err == nil {
		t.Fatal("overselling 4 kg with 3 kg on hand should fail")
	}
	available, _ = workflow.AvailableBaseQuantity(ctx, warehouse.ID, product.ID, 0, nil)
	if !available.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("failed sale must not touch stock, got %s", available)
	}

	customerAfter, err := models.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if !customerAfter.DueAmount.Equal(decimal.NewFromInt(34000)) {
		t.Fatalf("customer due expected 34000, got %s", customerAfter.DueAmount)
	}

	// Pay 40000 against a 34000 due: due clears, 6000 rolls into advance.
	payments, err := workflow.ClearCustomerDue(ctx, &workflow.NewDuePayment{
		CustomerId:  customer.ID,
		Amount:      decimal.NewFromInt(40000),
		PaymentType: models.PaymentTypeCash,
		AccountId:   account.ID,
	})
	if err != nil {
		t.Fatalf("ClearCustomerDue: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected a clearing payment and an advance payment, got %d", len(payments))
	}

	customerAfter, err = models.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer after clearing: %v", err)
	}
	if !customerAfter.DueAmount.IsZero() {
		t.Fatalf("customer due should be cleared, got %s", customerAfter.DueAmount)
	}
	if !customerAfter.AdvanceAmount.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("excess should land in advance, expected 6000, got %s", customerAfter.AdvanceAmount)
	}

	saleAfter, err := models.GetSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if !saleAfter.DueAmount.Real.IsZero() {
		t.Fatalf("sale due should be cleared, got %s", saleAfter.DueAmount.Real)
	}

	// Opening 1000000 + 20000 at sale time + 40000 lump payment.
	accountAfter, err := models.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !accountAfter.CurrentBalance.Equal(decimal.NewFromInt(1060000)) {
		t.Fatalf("account balance expected 1060000, got %s", accountAfter.CurrentBalance)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("backoffice-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("backoffice-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=backoffice_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
