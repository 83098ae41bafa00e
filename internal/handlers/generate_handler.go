package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"prepwise/internal/apperr"
	"prepwise/internal/llm"
	"prepwise/internal/metrics"
	"prepwise/internal/middleware"
	"prepwise/internal/models"
	"prepwise/internal/prompts"
	"prepwise/internal/questions"
	"prepwise/internal/utils"
)

const (
	promptMode    = "interview_questions"
	promptVariant = "default"
)

type InterviewWriter interface {
	Create(ctx context.Context, record *models.InterviewRecord) (string, error)
}

// GenerateHandler serves the voice platform's tool callback that produces an interview.
type GenerateHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	store         InterviewWriter
	logger        *zap.Logger
	now           func() time.Time
}

func NewGenerateHandler(provider llm.Provider, promptManager prompts.PromptProvider, store InterviewWriter, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		provider:      provider,
		promptManager: promptManager,
		store:         store,
		logger:        logger,
		now:           time.Now,
	}
}

func (h *GenerateHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.GenerateRequest](r)
	reqID := requestID(r)
	logger := h.logger.With(zap.String("request_id", reqID), zap.String("user_id", req.UserID))

	id, err := h.generate(r.Context(), req, reqID, logger)
	if err != nil {
		writeAppError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, models.GenerateResponse{Success: true, InterviewID: id})
}

// generate runs prompt, model, parser and store in order. Every failure it
// returns is an *apperr.Error; nothing is written unless all earlier steps passed.
func (h *GenerateHandler) generate(ctx context.Context, req *models.GenerateRequest, reqID string, logger *zap.Logger) (string, error) {
	data := map[string]interface{}{
		"Role":      req.Role,
		"Level":     req.Level,
		"Techstack": strings.Join(req.Techstack, ", "),
		"Type":      req.Type,
		"Amount":    req.Amount,
	}

	prompt, err := h.promptManager.BuildPrompt(promptMode, promptVariant, data)
	if err != nil {
		logger.Error("Failed to build prompt", zap.Error(err))
		metrics.GenerationFailed("prompt")
		return "", apperr.Internal(err)
	}

	out, err := h.provider.GenerateContent(ctx, prompt, reqID)
	if err != nil {
		var provErr *llm.ProviderError
		temporary := errors.As(err, &provErr) && provErr.Temporary()
		logger.Error("AI provider error",
			zap.String("code", llm.ErrorCode(err)),
			zap.Bool("temporary", temporary),
			zap.Error(err))
		metrics.GenerationFailed("model")
		if temporary {
			return "", apperr.Upstream(http.StatusBadGateway, "AI provider is temporarily unavailable, please try again", err)
		}
		return "", apperr.Upstream(http.StatusBadGateway, "Failed to generate interview questions", err)
	}

	parsed := questions.Parse(out.Content, req.QuestionLimit())
	if len(parsed.Questions) == 0 {
		logger.Error("Model returned no questions")
		metrics.GenerationFailed("empty")
		return "", apperr.Upstream(http.StatusBadGateway, "Model returned no questions", nil)
	}
	if parsed.Mode == questions.ModeDegraded {
		logger.Warn("Model output was not a JSON array, used line parser",
			zap.Error(apperr.New(apperr.KindParse, 0, "strict parse failed", parsed.ParseErr)),
			zap.Int("questions", len(parsed.Questions)))
	}

	record := models.NewInterviewRecord(req, parsed.Questions, h.now())
	id, err := h.store.Create(ctx, record)
	if err != nil {
		logger.Error("Failed to store interview", zap.Error(err))
		metrics.GenerationFailed("store")
		return "", apperr.Persistence("Failed to save interview", err)
	}

	metrics.InterviewGenerated(string(parsed.Mode))
	logger.Info("Interview generated",
		zap.String("interview_id", id),
		zap.String("parse_mode", string(parsed.Mode)),
		zap.Int("questions", len(parsed.Questions)),
		zap.Int("model_ms", out.Metadata.ProcessingTime))
	return id, nil
}

// HealthHandler answers GET on the callback URL so the voice platform can probe it.
func (h *GenerateHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, models.GenerateHealthResponse{
		Success:   true,
		Message:   "Thank you!",
		Timestamp: h.now().UTC(),
	})
}
