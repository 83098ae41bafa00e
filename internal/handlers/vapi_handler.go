package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"prepwise/internal/metrics"
	"prepwise/internal/middleware"
	"prepwise/internal/models"
	"prepwise/internal/utils"
	"prepwise/internal/vapi"
)

type CallStarter interface {
	CreateCall(ctx context.Context, userName, userID string) (json.RawMessage, error)
	StartWebCall(ctx context.Context, userName, userID string) (*vapi.WebCall, error)
}

type VapiHandler struct {
	calls  CallStarter
	logger *zap.Logger
}

func NewVapiHandler(calls CallStarter, logger *zap.Logger) *VapiHandler {
	return &VapiHandler{calls: calls, logger: logger}
}

func (h *VapiHandler) CreateCallHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CallRequest](r)

	call, err := h.calls.CreateCall(r.Context(), req.UserName, req.UserID)
	metrics.VapiCall("assistant", err)
	if err != nil {
		h.writeCallError(w, "assistant", req.UserID, err)
		return
	}

	h.logger.Info("Assistant call created", zap.String("user_id", req.UserID))
	utils.JSON(w, http.StatusOK, models.CreateCallResponse{Success: true, Call: call})
}

func (h *VapiHandler) StartCallHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CallRequest](r)

	call, err := h.calls.StartWebCall(r.Context(), req.UserName, req.UserID)
	metrics.VapiCall("web", err)
	if err != nil {
		h.writeCallError(w, "web", req.UserID, err)
		return
	}

	h.logger.Info("Web call started", zap.String("user_id", req.UserID), zap.String("call_id", call.ID))
	utils.JSON(w, http.StatusOK, models.StartCallResponse{
		Success:    true,
		WebCallURL: call.WebCallURL,
		CallID:     call.ID,
	})
}

// Upstream rejections keep their status and body; anything else is a 500.
func (h *VapiHandler) writeCallError(w http.ResponseWriter, kind, userID string, err error) {
	var upErr *vapi.UpstreamError
	if errors.As(err, &upErr) {
		h.logger.Warn("Vapi rejected call",
			zap.String("kind", kind),
			zap.String("user_id", userID),
			zap.Int("status", upErr.Status),
			zap.ByteString("body", upErr.Body))
		utils.JSON(w, upErr.Status, models.NewErrorResponse(upErr.Body))
		return
	}

	h.logger.Error("Vapi call failed", zap.String("kind", kind), zap.String("user_id", userID), zap.Error(err))
	writeAppError(w, err)
}
