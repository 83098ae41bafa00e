package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"text/template"

	"prepwise/internal/models"
	"prepwise/internal/session"
	storemongo "prepwise/internal/store/mongo"
)

type mockProvider struct {
	generateContentFn func(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error)
}

func (m *mockProvider) GenerateContent(ctx context.Context, prompt string, requestID string) (*models.GenerationResponse, error) {
	if m.generateContentFn == nil {
		return &models.GenerationResponse{Content: `["Q1"]`}, nil
	}
	return m.generateContentFn(ctx, prompt, requestID)
}

func (m *mockProvider) GetProviderName() string { return "mock" }

type mockPromptManager struct {
	buildPromptFn func(mode, variant string, data interface{}) (string, error)
}

func (m *mockPromptManager) BuildPrompt(mode, variant string, data interface{}) (string, error) {
	if m.buildPromptFn == nil {
		return "mock prompt", nil
	}
	return m.buildPromptFn(mode, variant, data)
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]*template.Template {
	return map[string]map[string]*template.Template{
		"interview_questions": {"default": template.Must(template.New("test").Parse("test"))},
	}
}

// memoryInterviews is an in-memory interview store.
type memoryInterviews struct {
	records   map[string]*models.InterviewRecord
	createErr error
	listErr   error
}

func newMemoryInterviews() *memoryInterviews {
	return &memoryInterviews{records: make(map[string]*models.InterviewRecord)}
}

func (m *memoryInterviews) Create(_ context.Context, rec *models.InterviewRecord) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	rec.ID = "665f1c2e9b1d4a0012345678"
	m.records[rec.ID] = rec
	return rec.ID, nil
}

func (m *memoryInterviews) GetByID(_ context.Context, id string) (*models.InterviewRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, storemongo.ErrInterviewNotFound
	}
	return rec, nil
}

func (m *memoryInterviews) ListByUser(_ context.Context, userID string, _ int64) ([]models.InterviewRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.InterviewRecord{}
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func withUser(req *http.Request, id string) *http.Request {
	return req.WithContext(session.WithUser(req.Context(), &models.User{ID: id, Name: "Ada", Email: "ada@example.com"}))
}

func performRequest(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}
