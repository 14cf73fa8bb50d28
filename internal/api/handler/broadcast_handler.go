package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/notifyhub/announcements/internal/api/middleware"
	"github.com/notifyhub/announcements/internal/domain"
)

// Broadcaster runs an announcement broadcast.
type Broadcaster interface {
	Broadcast(ctx context.Context, req domain.BroadcastRequest) (*domain.BroadcastResult, error)
}

// BroadcastHandler handles announcement broadcast endpoints.
type BroadcastHandler struct {
	svc    Broadcaster
	logger *zap.Logger
}

func NewBroadcastHandler(svc Broadcaster, logger *zap.Logger) *BroadcastHandler {
	return &BroadcastHandler{svc: svc, logger: logger}
}

// Broadcast handles POST /api/v1/announcements/broadcast
//
// The request blocks until the whole run has finished.
//
// @Summary  Broadcast an announcement to an audience segment
// @Tags     announcements
// @Accept   json
// @Produce  json
// @Param    X-API-Key         header    string                   true   "API key"
// @Param    X-Correlation-ID  header    string                   false  "Correlation ID"
// @Param    body              body      domain.BroadcastRequest  true   "Broadcast payload"
// @Success  200               {object}  map[string]any
// @Failure  400               {object}  map[string]string
// @Failure  413               {object}  map[string]string
// @Router   /api/v1/announcements/broadcast [post]
func (h *BroadcastHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req domain.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR: invalid JSON body")
		return
	}

	correlationID := apimw.GetCorrelationID(r.Context())
	req.CorrelationID = correlationID

	res, err := h.svc.Broadcast(r.Context(), req)
	if err != nil {
		h.logger.Warn("broadcast failed",
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	if res.Preview != nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"requestId": correlationID,
			"dryRun":    true,
			"targets":   res.Preview.Targets,
			"sample":    res.Preview.Sample,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"requestId": correlationID,
		"dryRun":    false,
		"targets":   res.Totals.Targets,
		"sent":      res.Totals.Sent,
		"failed":    res.Totals.Failed,
	})
}
