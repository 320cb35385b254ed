package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/avoronin/bidmarket-backend/internal/logger"
	"github.com/avoronin/bidmarket-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки, отложенные хэндлерами через c.Error.
// AppError превращается в ответ со своим статусом и сообщением, всё
// остальное маскируется как внутренняя ошибка.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				logger.Log.WithFields(logrus.Fields{
					"error":  appErr.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("request failed")
			}
			c.JSON(appErr.HTTPStatus, gin.H{"success": false, "message": appErr.Message})
			return
		}

		logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("request failed")

		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "внутренняя ошибка сервера"})
	}
}
