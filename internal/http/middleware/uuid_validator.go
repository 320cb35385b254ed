package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDValidator проверяет, что параметр с указанным именем является валидным UUID.
// Использование: router.GET("/projects/:id", UUIDValidator("id"), handler.GetProject)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, paramName := range paramNames {
			idStr := c.Param(paramName)
			if idStr == "" {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": "параметр " + paramName + " обязателен",
				})
				c.Abort()
				return
			}

			if _, err := uuid.Parse(idStr); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": "параметр " + paramName + " должен быть валидным UUID",
				})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
