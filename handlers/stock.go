package handlers

import (
	"net/http"

	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/workflow"
	"github.com/gin-gonic/gin"
)

// stockAvailability answers "how much of this product/variant can the
// warehouse sell", in base units and in the product's default unit.
func stockAvailability(c *gin.Context) {
	warehouseId := queryInt(c, "warehouse_id")
	productId := queryInt(c, "product_id")
	variantId := queryInt(c, "variant_id")
	if warehouseId <= 0 || productId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "warehouse_id and product_id are required"})
		return
	}
	var stockId *int
	if id := queryInt(c, "stock_id"); id > 0 {
		stockId = &id
	}

	product, err := models.GetProduct(c.Request.Context(), productId)
	if err != nil {
		respondError(c, err)
		return
	}
	baseQty, err := workflow.AvailableBaseQuantity(c.Request.Context(), warehouseId, productId, variantId, stockId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id":       productId,
		"variant_id":       variantId,
		"warehouse_id":     warehouseId,
		"base_unit":        models.BaseUnit(product.UnitType),
		"base_quantity":    baseQty,
		"default_unit":     product.DefaultUnit,
		"default_quantity": models.ConvertFromBase(baseQty, product.DefaultUnit, product.UnitType),
	})
}

func listStockMovements(c *gin.Context) {
	productId := queryInt(c, "product_id")
	if productId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}
	movements, err := models.GetStockMovements(c.Request.Context(), queryInt(c, "warehouse_id"), productId, queryInt(c, "variant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}
