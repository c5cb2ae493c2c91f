package handlers

import (
	"net/http"

	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/workflow"
	"github.com/gin-gonic/gin"
)

func createSalesReturn(c *gin.Context) {
	var input models.NewSalesReturn
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	ret, err := workflow.CreateSalesReturn(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSalesReturnView(ret, valuationView(c)))
}

func approveSalesReturn(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	ret, err := workflow.ApproveSalesReturn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSalesReturnView(ret, valuationView(c)))
}

func getSalesReturn(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	ret, err := models.GetSalesReturn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSalesReturnView(ret, valuationView(c)))
}

func createPurchaseReturn(c *gin.Context) {
	var input models.NewPurchaseReturn
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	ret, err := workflow.CreatePurchaseReturn(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPurchaseReturnView(ret, valuationView(c)))
}

type completePurchaseReturnInput struct {
	AccountId int `json:"account_id" binding:"required"`
}

func completePurchaseReturn(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input completePurchaseReturnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	ret, err := workflow.CompletePurchaseReturn(c.Request.Context(), id, input.AccountId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPurchaseReturnView(ret, valuationView(c)))
}

func getPurchaseReturn(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	ret, err := models.GetPurchaseReturn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPurchaseReturnView(ret, valuationView(c)))
}
