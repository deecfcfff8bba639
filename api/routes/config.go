package routes

import (
	"github.com/gin-gonic/gin"

	"linkguard/internal/config"
	"linkguard/internal/handlers"
)

func InitConfigRoutes(router *gin.RouterGroup, cfg *config.Config) {
	h := handlers.NewConfigHandler(cfg)

	configRoutes := router.Group("/config")
	{
		configRoutes.GET("", h.GetConfig)
	}
}
