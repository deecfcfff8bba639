package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"linkguard/internal/config"
	"linkguard/internal/dao"
	"linkguard/internal/handlers/web"
	"linkguard/internal/services"
	"linkguard/pkg/logger"
	"linkguard/templates"
)

func InitRouter(cfg *config.Config, session services.SessionMethods, handoff *services.Handoff) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), requestLogger())

	indexHandlers := web.NewIndexHandler(session, handoff)
	scanWebHandlers := web.NewScanWebHandler(session)

	// REST APIs
	api := router.Group("/api")
	{
		InitScanRoutes(api, session, handoff)
		InitConfigRoutes(api, cfg)
	}

	router.StaticFS("/static", http.FS(templates.Static()))

	// web pages
	router.GET("/", indexHandlers.HomePage)
	router.POST("/scan", scanWebHandlers.Submit)
	router.POST("/reset", scanWebHandlers.Reset)
	router.POST("/cards/:id/toggle", scanWebHandlers.ToggleCard)

	return router
}

// RequestID tags every request with an id, reusing the caller's header when
// present, and stores it on the request context for the logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(dao.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(dao.RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.WithContext(c.Request.Context()).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		}).Debug("Handled request")
	}
}
