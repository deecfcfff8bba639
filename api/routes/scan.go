package routes

import (
	"github.com/gin-gonic/gin"

	"linkguard/internal/handlers"
	"linkguard/internal/services"
)

func InitScanRoutes(router *gin.RouterGroup, session services.SessionMethods, handoff *services.Handoff) {
	h := handlers.NewScanHandler(session, handoff)

	router.GET("/session", h.GetSession)
	router.POST("/scan", h.StartScan)
	router.POST("/reset", h.Reset)
	router.POST("/cards/:id/toggle", h.ToggleCard)
	router.POST("/pending", h.OfferPending)
}
