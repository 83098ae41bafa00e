package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"text/template"
	"time"

	"go.uber.org/zap"

	"prepwise/internal/config"
	"prepwise/internal/handlers"
	"prepwise/internal/llm"
	appmw "prepwise/internal/middleware"
	"prepwise/internal/models"
	"prepwise/internal/prompts"
)

type fakeProvider struct{}

func (fakeProvider) GenerateContent(context.Context, string, string) (*models.GenerationResponse, error) {
	return &models.GenerationResponse{Content: `["Q1"]`}, nil
}
func (fakeProvider) GetProviderName() string { return "fake" }

type fakePrompt struct{}

func (fakePrompt) BuildPrompt(string, string, interface{}) (string, error) { return "prompt", nil }
func (fakePrompt) GetTemplates() map[string]map[string]*template.Template {
	return map[string]map[string]*template.Template{"interview_questions": {}}
}

type fakeInterviews struct {
	mu      sync.Mutex
	records []*models.InterviewRecord
}

func (f *fakeInterviews) Create(_ context.Context, rec *models.InterviewRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return fmt.Sprintf("iv-%d", len(f.records)), nil
}

var (
	_ llm.Provider           = (*fakeProvider)(nil)
	_ prompts.PromptProvider = (*fakePrompt)(nil)
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:    "development",
		AllowedOrigins: []string{"http://localhost:3000"},
		Limits:         config.RateLimitConfig{Limit: 2, Window: time.Minute},
	}
}

func testDeps() routeDeps {
	logger := zap.NewNop()
	return routeDeps{
		vapi:       handlers.NewVapiHandler(nil, logger),
		generate:   handlers.NewGenerateHandler(fakeProvider{}, fakePrompt{}, &fakeInterviews{}, logger),
		auth:       handlers.NewAuthHandler(nil, nil),
		interviews: handlers.NewInterviewHandler(nil, logger),
		health:     handlers.NewHealthHandler(fakeProvider{}, fakePrompt{}, testConfig(), nil),
		limiter:    appmw.NewRateLimiter(nil, logger),
		session:    func(context.Context, *http.Request) *models.User { return nil },
	}
}

func TestBuildRouterHealth(t *testing.T) {
	router := buildRouter(testConfig(), testDeps())

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/api/vapi/generate"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", path, rec.Code)
		}
	}
}

func TestBuildRouterCORSPreflight(t *testing.T) {
	router := buildRouter(testConfig(), testDeps())

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/sign-in", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials allowed, got %q", got)
	}
}

func TestBuildRouterRateLimitsCallEndpoints(t *testing.T) {
	router := buildRouter(testConfig(), testDeps())

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/vapi/create-call", strings.NewReader(`{}`)))
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %d", last)
	}
}

func TestBuildRouterHealthNotLimited(t *testing.T) {
	router := buildRouter(testConfig(), testDeps())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
}

func generateCallback(userID string) *http.Request {
	body := `{"message":{"type":"Technical","role":"Backend","level":"Junior","techstack":"Go","amount":"2","userid":"` + userID + `"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/vapi/generate", strings.NewReader(body))
	req.RemoteAddr = "44.0.0.1:443"
	return req
}

func TestBuildRouterGenerateLimitedPerUser(t *testing.T) {
	router := buildRouter(testConfig(), testDeps())

	for _, user := range []string{"alice", "bob", "carol", "alice"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, generateCallback(user))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", user, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, generateCallback("alice"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected alice's third callback to be limited, got %d", rec.Code)
	}
}

func createCallFrom(remote, forwarded string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/vapi/create-call", strings.NewReader(`{}`))
	req.RemoteAddr = remote
	req.Header.Set("X-Forwarded-For", forwarded)
	return req
}

func TestBuildRouterIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	router := buildRouter(testConfig(), testDeps())

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, createCallFrom("44.0.0.1:5000", fmt.Sprintf("203.0.113.%d", i+1)))
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected rotating X-Forwarded-For to be ignored, got %d", last)
	}
}

func TestBuildRouterHonoursTrustedProxy(t *testing.T) {
	deps := testDeps()
	proxies, err := appmw.ParseTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("ParseTrustedProxies returned error: %v", err)
	}
	deps.proxies = proxies
	router := buildRouter(testConfig(), deps)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, createCallFrom("10.0.0.5:5000", fmt.Sprintf("203.0.113.%d", i+1)))
		if rec.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d: distinct clients behind a trusted proxy should not share a bucket", i)
		}
	}
}
