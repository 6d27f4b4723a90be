package response

import (
	"github.com/gin-gonic/gin"
	domainerrors "store-bot.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if e, ok := err.(*domainerrors.AppError); ok {
		appErr = e
	} else {
		// Default to Internal Server Error if not an AppError
		appErr = domainerrors.InternalError(err)
	}

	c.JSON(appErr.Code, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
