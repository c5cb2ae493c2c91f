package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the JSON API under /api/v1.
func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/products", createProduct)
	api.GET("/products", listProducts)
	api.GET("/products/:id", getProduct)
	api.PUT("/variants/:id", replaceProductVariant)

	api.POST("/outlets", createOutlet)
	api.GET("/outlets", listOutlets)
	api.POST("/warehouses", createWarehouse)

	api.GET("/stock/availability", stockAvailability)
	api.GET("/stock/movements", listStockMovements)

	api.POST("/accounts", createAccount)
	api.GET("/accounts", listAccounts)

	api.POST("/customers", createCustomer)
	api.GET("/customers", listCustomers)
	api.GET("/customers/:id", getCustomer)
	api.POST("/suppliers", createSupplier)
	api.GET("/suppliers", listSuppliers)
	api.GET("/suppliers/:id", getSupplier)

	api.POST("/sales", createSale)
	api.GET("/sales", listSales)
	api.GET("/sales/:id", getSale)

	api.POST("/purchases", createPurchase)
	api.GET("/purchases", listPurchases)
	api.GET("/purchases/:id", getPurchase)
	api.PUT("/purchase-items/:id", updatePurchaseItem)
	api.DELETE("/purchase-items/:id", deletePurchaseItem)

	api.POST("/sales-returns", createSalesReturn)
	api.GET("/sales-returns/:id", getSalesReturn)
	api.POST("/sales-returns/:id/approve", approveSalesReturn)
	api.POST("/purchase-returns", createPurchaseReturn)
	api.GET("/purchase-returns/:id", getPurchaseReturn)
	api.POST("/purchase-returns/:id/complete", completePurchaseReturn)

	api.POST("/payments/clear-due", clearDue)
	api.POST("/payments/advance", recordAdvance)
	api.POST("/payments/:id/void", voidPayment)
	api.GET("/payments", listPayments)

	api.POST("/employees", createEmployee)
	api.POST("/attendances", recordAttendance)
	api.POST("/leaves", createLeave)
	api.PUT("/leaves/:id/status", updateLeaveStatus)
	api.POST("/salaries/calculate", calculateSalary)
	api.POST("/salaries/:id/pay", paySalary)
	api.GET("/salaries", listSalaries)

	api.POST("/expense-categories", createExpenseCategory)
	api.POST("/expenses", createExpense)
	api.GET("/expenses", listExpenses)
}
