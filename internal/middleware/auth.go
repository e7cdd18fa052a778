package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	OperatorKey     = "operator"
	DefaultOperator = "desk"
)

// IdentifyOperator is a stubbed identity middleware that takes the operator
// name from the X-Operator header. Requests without one act as the desk.
func IdentifyOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := strings.TrimSpace(c.GetHeader("X-Operator"))
		if operator == "" {
			operator = DefaultOperator
		}
		c.Set(OperatorKey, operator)
		c.Next()
	}
}

// GetOperator retrieves the operator from the context
func GetOperator(c *gin.Context) string {
	if op, ok := c.Get(OperatorKey); ok {
		if s, ok := op.(string); ok && s != "" {
			return s
		}
	}
	return DefaultOperator
}

// RequireOperator rejects requests that did not name an operator. Workflow
// edits are audited, so they must be attributable.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("X-Operator")) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "X-Operator header required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
