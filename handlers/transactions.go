package handlers

import (
	"net/http"

	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/workflow"
	"github.com/gin-gonic/gin"
)

func createSale(c *gin.Context) {
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	sale, err := workflow.CreateSale(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSaleView(sale, valuationView(c)))
}

func getSale(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	sale, err := models.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSaleView(sale, valuationView(c)))
}

func listSales(c *gin.Context) {
	sales, err := models.GetSales(c.Request.Context(), queryInt(c, "customer_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	view := valuationView(c)
	out := make([]saleView, 0, len(sales))
	for _, s := range sales {
		out = append(out, newSaleView(s, view))
	}
	c.JSON(http.StatusOK, out)
}

func createPurchase(c *gin.Context) {
	var input models.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	purchase, err := workflow.CreatePurchase(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPurchaseView(purchase, valuationView(c)))
}

func getPurchase(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	purchase, err := models.GetPurchase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPurchaseView(purchase, valuationView(c)))
}

func listPurchases(c *gin.Context) {
	purchases, err := models.GetPurchases(c.Request.Context(), queryInt(c, "supplier_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	view := valuationView(c)
	out := make([]purchaseView, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, newPurchaseView(p, view))
	}
	c.JSON(http.StatusOK, out)
}

func updatePurchaseItem(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input workflow.UpdatePurchaseItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	purchase, err := workflow.UpdatePurchaseItem(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPurchaseView(purchase, valuationView(c)))
}

func deletePurchaseItem(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	purchase, err := workflow.DeletePurchaseItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPurchaseView(purchase, valuationView(c)))
}
