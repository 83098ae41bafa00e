package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prepwise/internal/apperr"
	"prepwise/internal/models"
	"prepwise/internal/session"
	storemongo "prepwise/internal/store/mongo"
	"prepwise/internal/utils"
)

const interviewListLimit = 50

type InterviewReader interface {
	GetByID(ctx context.Context, id string) (*models.InterviewRecord, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.InterviewRecord, error)
}

// InterviewHandler lists and fetches the signed-in user's interviews.
type InterviewHandler struct {
	store  InterviewReader
	logger *zap.Logger
}

func NewInterviewHandler(store InterviewReader, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{store: store, logger: logger}
}

func (h *InterviewHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := session.UserFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, session.MsgNotSignedIn)
		return
	}

	items, err := h.store.ListByUser(r.Context(), user.ID, interviewListLimit)
	if err != nil {
		h.logger.Error("Failed to list interviews", zap.String("user_id", user.ID), zap.Error(err))
		writeAppError(w, apperr.Persistence("Failed to load interviews", err))
		return
	}
	utils.JSON(w, http.StatusOK, models.InterviewsResponse{Total: len(items), Items: items})
}

// GetHandler hides other users' interviews behind a 404.
func (h *InterviewHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := session.UserFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, session.MsgNotSignedIn)
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, storemongo.ErrInterviewNotFound) || (err == nil && rec.UserID != user.ID) {
		utils.JSONError(w, http.StatusNotFound, "Interview not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load interview", zap.String("interview_id", id), zap.Error(err))
		writeAppError(w, apperr.Persistence("Failed to load interview", err))
		return
	}
	utils.JSON(w, http.StatusOK, rec)
}
