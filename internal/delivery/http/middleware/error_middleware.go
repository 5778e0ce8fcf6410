package middleware

import (
	"errors"
	"net/http"

	"go-postulation-backend/internal/delivery/http/response"
	"go-postulation-backend/pkg/apperror"
	"go-postulation-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				if appErr.Kind == apperror.KindInternal {
					logger.Log.Error("internal error", "path", c.FullPath(), "error", appErr.Err)
				}
				response.Error(c, appErr.Code, string(appErr.Kind), appErr.Message, nil)
			} else {
				// Never expose internal error details to clients. Log
				// server-side, send a generic message.
				logger.Log.Error("unhandled error", "path", c.FullPath(), "error", err)
				response.Error(c, http.StatusInternalServerError, string(apperror.KindInternal),
					"An unexpected error occurred. Please try again later.", nil)
			}
		}
	}
}
