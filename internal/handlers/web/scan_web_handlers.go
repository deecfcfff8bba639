package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"linkguard/internal/services"
	"linkguard/pkg/logger"
)

type ScanWebHandler struct {
	session services.SessionMethods
	logger  *logger.Logger
}

func NewScanWebHandler(session services.SessionMethods) *ScanWebHandler {
	return &ScanWebHandler{
		session: session,
		logger:  logger.NewLogger(logrus.Level(logrus.InfoLevel)),
	}
}

func (h *ScanWebHandler) Submit(c *gin.Context) {
	target := c.PostForm("target")
	if _, ok := h.session.Submit(c.Request.Context(), target); ok {
		h.logger.WithFields(logger.Fields{"target": target}).Info("Scan submitted from form")
	}
	h.respond(c)
}

func (h *ScanWebHandler) Reset(c *gin.Context) {
	h.session.Reset()
	h.respond(c)
}

func (h *ScanWebHandler) ToggleCard(c *gin.Context) {
	id := c.Param("id")
	if err := h.session.ToggleCard(id); err != nil {
		h.logger.WithError(err).WithField("card", id).Warn("Toggle ignored")
	}
	h.respond(c)
}

// respond renders the partial for htmx callers and redirects plain form
// posts back to the index.
func (h *ScanWebHandler) respond(c *gin.Context) {
	if c.GetHeader("HX-Request") != "" {
		renderSession(c, h.session.Snapshot(), h.logger)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
