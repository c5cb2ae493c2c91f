package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/oryzasoft/backoffice_backend/models"
	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps domain errors to HTTP statuses. Shortfall and state
// errors keep their specific messages; anything unexpected becomes a bare
// 500 so internals never leak.
func respondError(c *gin.Context, err error) {
	var stockErr *utils.InsufficientStockError
	var balanceErr *utils.InsufficientBalanceError
	var advanceErr *utils.InsufficientAdvanceError
	var stateErr *utils.StateConflictError

	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.As(err, &stockErr), errors.As(err, &balanceErr), errors.As(err, &advanceErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondBadRequest surfaces binding problems; validator tag failures come
// back per field instead of as the raw struct error.
func respondBadRequest(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = "failed on the '" + fe.Tag() + "' tag"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// valuationView resolves which price set this request's user type sees.
func valuationView(c *gin.Context) models.ValuationView {
	userType, _ := utils.GetUserTypeFromContext(c.Request.Context())
	return models.ValuationViewForUserType(userType)
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}
