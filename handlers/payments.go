package handlers

import (
	"net/http"

	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/workflow"
	"github.com/gin-gonic/gin"
)

// clearDue applies a lump payment against the counterparty's open
// transactions, oldest first. Routes to the customer or supplier side based
// on which id the body carries.
func clearDue(c *gin.Context) {
	var input workflow.NewDuePayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	var (
		payments []*models.Payment
		err      error
	)
	if input.CustomerId > 0 {
		payments, err = workflow.ClearCustomerDue(c.Request.Context(), &input)
	} else {
		payments, err = workflow.ClearSupplierDue(c.Request.Context(), &input)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payments)
}

func recordAdvance(c *gin.Context) {
	var input workflow.NewAdvanceDeposit
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	var (
		payment *models.Payment
		err     error
	)
	if input.CustomerId > 0 {
		payment, err = workflow.RecordCustomerAdvance(c.Request.Context(), &input)
	} else {
		payment, err = workflow.RecordSupplierAdvance(c.Request.Context(), &input)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func voidPayment(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	payment, err := workflow.VoidPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func listPayments(c *gin.Context) {
	refType := models.PaymentReferenceType(c.Query("reference_type"))
	payments, err := models.GetPayments(c.Request.Context(), refType, queryInt(c, "reference_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
