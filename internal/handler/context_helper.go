package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushour/tutoring-api/internal/middleware"
	"github.com/campushour/tutoring-api/internal/models"
)

func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}
