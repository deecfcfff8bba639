package handlers

import "linkguard/internal/services"

type ScanRequest struct {
	Target string `json:"target" binding:"required"`
}

type ScanResponse struct {
	Accepted  bool           `json:"accepted"`
	State     services.State `json:"state"`
	SessionID string         `json:"session_id"`
}

type PendingRequest struct {
	Target string `json:"target" binding:"required"`
}
