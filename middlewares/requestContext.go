package middlewares

import (
	"net/http"
	"strconv"

	"bitbucket.org/oryzasoft/backoffice_backend/utils"
	"github.com/gin-gonic/gin"
)

// RequestContext copies the identity headers the gateway sets into the
// request context: X-Business-Id, X-User-Id, X-User-Name, X-Outlet-Id and
// X-User-Type. Core operations read identity from the context only, never
// from ambient globals.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId := c.GetHeader("X-Business-Id")
		if businessId == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Business-Id header is required"})
			return
		}
		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)

		if v := c.GetHeader("X-User-Id"); v != "" {
			if userId, err := strconv.Atoi(v); err == nil {
				ctx = utils.SetUserIdInContext(ctx, userId)
			}
		}
		if v := c.GetHeader("X-Outlet-Id"); v != "" {
			if outletId, err := strconv.Atoi(v); err == nil {
				ctx = utils.SetOutletIdInContext(ctx, outletId)
			}
		}
		if v := c.GetHeader("X-User-Name"); v != "" {
			ctx = utils.SetUserNameInContext(ctx, v)
		}
		if v := c.GetHeader("X-User-Type"); v != "" {
			ctx = utils.SetUserTypeInContext(ctx, v)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
