package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"linkguard/internal/services"
	apperrors "linkguard/pkg/errors"
	"linkguard/pkg/logger"
)

type ScanHandler struct {
	session services.SessionMethods
	handoff *services.Handoff
	logger  *logger.Logger
}

func NewScanHandler(session services.SessionMethods, handoff *services.Handoff) *ScanHandler {
	return &ScanHandler{session: session, handoff: handoff, logger: logger.NewLogger(logrus.Level(logrus.InfoLevel))}
}

func (h *ScanHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// StartScan answers 202 when a scan was started and 200 when the submit was
// ignored (blank input or a scan already running).
func (h *ScanHandler) StartScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	_, accepted := h.session.Submit(c.Request.Context(), req.Target)
	snap := h.session.Snapshot()

	status := http.StatusOK
	if accepted {
		status = http.StatusAccepted
		h.logger.WithContext(c.Request.Context()).WithField("target", req.Target).Info("Scan started")
	}
	c.JSON(status, ScanResponse{Accepted: accepted, State: snap.State, SessionID: snap.SessionID})
}

func (h *ScanHandler) Reset(c *gin.Context) {
	h.session.Reset()
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *ScanHandler) ToggleCard(c *gin.Context) {
	id := c.Param("id")
	if err := h.session.ToggleCard(id); err != nil {
		if errors.Is(err, apperrors.ErrUnknownCard) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to toggle card")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle card"})
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// OfferPending stores a target for the next page open, like the host's
// storage write.
func (h *ScanHandler) OfferPending(c *gin.Context) {
	var req PendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if h.handoff == nil || !h.handoff.Offer(req.Target) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	c.Status(http.StatusNoContent)
}
