package handlers

import (
	"net/http"
	"time"

	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"github.com/gin-gonic/gin"
)

func createExpenseCategory(c *gin.Context) {
	var input models.NewExpenseCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	category, err := models.CreateExpenseCategory(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func createExpense(c *gin.Context) {
	var input models.NewExpense
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}
	expense, err := models.CreateExpense(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func listExpenses(c *gin.Context) {
	var categoryId *int
	if id := queryInt(c, "category_id"); id > 0 {
		categoryId = &id
	}
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = &t
		}
	}
	expenses, err := models.GetExpenses(c.Request.Context(), categoryId, from, to, queryInt(c, "offset"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}
