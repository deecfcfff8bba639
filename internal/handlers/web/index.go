package web

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"linkguard/internal/services"
	"linkguard/pkg/logger"
	"linkguard/templates"
)

type IndexHandler struct {
	session services.SessionMethods
	handoff *services.Handoff
	logger  *logger.Logger
}

func NewIndexHandler(session services.SessionMethods, handoff *services.Handoff) *IndexHandler {
	return &IndexHandler{
		session: session,
		handoff: handoff,
		logger:  logger.NewLogger(logrus.Level(logrus.InfoLevel)),
	}
}

// HomePage renders the session. A pending target handed over by the host is
// consumed here and scanned once.
func (h *IndexHandler) HomePage(c *gin.Context) {
	if h.handoff != nil {
		if target, ok := h.handoff.Consume(); ok {
			if _, started := h.session.Seed(c.Request.Context(), target); started {
				h.logger.WithFields(logger.Fields{"target": target}).Info("Auto-scanning pending target")
			}
		}
	}
	renderSession(c, h.session.Snapshot(), h.logger)
}

func renderSession(c *gin.Context, snap services.Snapshot, l *logger.Logger) {
	var component templ.Component
	if c.GetHeader("HX-Request") != "" {
		component = templates.Content(snap)
	} else {
		component = templates.Home(snap)
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		l.WithError(err).Error("Failed to render session template")
		c.Status(http.StatusInternalServerError)
	}
}
