package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prepwise/internal/middleware"
	"prepwise/internal/models"
	"prepwise/internal/vapi"
)

type mockCalls struct {
	createFn func(ctx context.Context, userName, userID string) (json.RawMessage, error)
	webFn    func(ctx context.Context, userName, userID string) (*vapi.WebCall, error)
}

func (m *mockCalls) CreateCall(ctx context.Context, userName, userID string) (json.RawMessage, error) {
	return m.createFn(ctx, userName, userID)
}

func (m *mockCalls) StartWebCall(ctx context.Context, userName, userID string) (*vapi.WebCall, error) {
	return m.webFn(ctx, userName, userID)
}

func callRoute(h http.HandlerFunc) http.Handler {
	return middleware.ValidateRequest[*models.CallRequest]()(h)
}

func TestCreateCallHandler(t *testing.T) {
	calls := &mockCalls{createFn: func(_ context.Context, userName, userID string) (json.RawMessage, error) {
		assert.Equal(t, "Ada", userName)
		assert.Equal(t, "u1", userID)
		return json.RawMessage(`{"id":"call-1","status":"queued"}`), nil
	}}
	h := NewVapiHandler(calls, zap.NewNop())

	rec := performRequest(callRoute(h.CreateCallHandler), http.MethodPost, "/api/vapi/create-call", `{"userName":"Ada","userId":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"call":{"id":"call-1","status":"queued"}}`, rec.Body.String())
}

func TestStartCallHandler(t *testing.T) {
	calls := &mockCalls{webFn: func(context.Context, string, string) (*vapi.WebCall, error) {
		return &vapi.WebCall{ID: "call-2", WebCallURL: "https://vapi.daily.co/abc"}, nil
	}}
	h := NewVapiHandler(calls, zap.NewNop())

	rec := performRequest(callRoute(h.StartCallHandler), http.MethodPost, "/api/vapi/start-call", `{"userName":"Ada","userId":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"webCallUrl":"https://vapi.daily.co/abc","callId":"call-2"}`, rec.Body.String())
}

func TestCallHandlerUpstreamPassthrough(t *testing.T) {
	calls := &mockCalls{webFn: func(context.Context, string, string) (*vapi.WebCall, error) {
		return nil, &vapi.UpstreamError{Status: http.StatusUnauthorized, Body: json.RawMessage(`{"message":"Invalid Key"}`)}
	}}
	h := NewVapiHandler(calls, zap.NewNop())

	rec := performRequest(callRoute(h.StartCallHandler), http.MethodPost, "/api/vapi/start-call", `{"userName":"Ada","userId":"u1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":{"message":"Invalid Key"}}`, rec.Body.String())
}

func TestCallHandlerLocalFailure(t *testing.T) {
	calls := &mockCalls{createFn: func(context.Context, string, string) (json.RawMessage, error) {
		return nil, errors.New("vapi request failed: connection refused")
	}}
	h := NewVapiHandler(calls, zap.NewNop())

	rec := performRequest(callRoute(h.CreateCallHandler), http.MethodPost, "/api/vapi/create-call", `{"userName":"Ada","userId":"u1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "vapi request failed: connection refused", decodeBody(rec)["error"])
}

func TestCallHandlerValidation(t *testing.T) {
	h := NewVapiHandler(&mockCalls{}, zap.NewNop())

	rec := performRequest(callRoute(h.CreateCallHandler), http.MethodPost, "/api/vapi/create-call", `{"userName":"Ada"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"userId"}, decodeBody(rec)["missingFields"])

	rec = performRequest(callRoute(h.CreateCallHandler), http.MethodPost, "/api/vapi/create-call", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
