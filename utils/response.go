package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends the API's success envelope: {status, message, data}.
// Every endpoint replies in this shape so clients parse one structure.
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends the failure envelope: {status, message, error}. The message
// is the client-facing summary; error carries the wrapped detail.
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	})
}
