package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"prepwise/internal/apperr"
)

// app config, everything except the LLM provider's own settings
type Config struct {
	Environment      string
	Port             string
	Provider         string
	IdentityProvider string
	AllowedOrigins   []string
	// TrustedProxies lists the IPs or CIDRs whose forwarding headers are honoured.
	TrustedProxies []string

	Firebase FirebaseConfig
	Local    LocalAuthConfig
	Vapi     VapiConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Limits   RateLimitConfig
}

type FirebaseConfig struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string
	APIKey      string
}

// local identity emulator, only used when IDENTITY_PROVIDER=local
type LocalAuthConfig struct {
	JWTSecret string
	Issuer    string
}

type VapiConfig struct {
	BaseURL      string
	PrivateKey   string
	AssistantID  string
	WorkflowID   string
	ServerSecret string
}

type MongoConfig struct {
	URI                  string
	Database             string
	UsersCollection      string
	InterviewsCollection string
}

type RedisConfig struct {
	URL string
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// IsProduction drives the Secure flag on the session cookie.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// loads configuration from environment variables, reading .env first when present
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Environment:      strings.ToLower(getEnvOrDefault("APP_ENV", "development")),
		Port:             getEnvOrDefault("PORT", "8080"),
		Provider:         getEnvOrDefault("AI_PROVIDER", "gemini"),
		IdentityProvider: getEnvOrDefault("IDENTITY_PROVIDER", "firebase"),
		AllowedOrigins:   splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		TrustedProxies:   splitList(os.Getenv("TRUSTED_PROXIES")),
		Firebase: FirebaseConfig{
			ProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
			ClientEmail: os.Getenv("FIREBASE_CLIENT_EMAIL"),
			PrivateKey:  strings.ReplaceAll(os.Getenv("FIREBASE_PRIVATE_KEY"), `\n`, "\n"),
			APIKey:      os.Getenv("FIREBASE_API_KEY"),
		},
		Local: LocalAuthConfig{
			JWTSecret: os.Getenv("LOCAL_AUTH_JWT_SECRET"),
			Issuer:    getEnvOrDefault("LOCAL_AUTH_ISSUER", "prepwise-local"),
		},
		Vapi: VapiConfig{
			BaseURL:      strings.TrimRight(getEnvOrDefault("VAPI_BASE_URL", "https://api.vapi.ai"), "/"),
			PrivateKey:   os.Getenv("VAPI_PRIVATE_KEY"),
			AssistantID:  os.Getenv("VAPI_ASSISTANT_ID"),
			WorkflowID:   os.Getenv("VAPI_WORKFLOW_ID"),
			ServerSecret: os.Getenv("VAPI_SERVER_SECRET"),
		},
		Mongo: MongoConfig{
			URI:                  os.Getenv("MONGO_URI"),
			Database:             getEnvOrDefault("MONGO_DB_NAME", "prepwise"),
			UsersCollection:      getEnvOrDefault("USERS_COLLECTION", "users"),
			InterviewsCollection: getEnvOrDefault("INTERVIEWS_COLLECTION", "interviews"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Limits: RateLimitConfig{
			Limit:  getEnvInt("RATE_LIMIT_REQUESTS", 30),
			Window: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return apperr.New(apperr.KindConfiguration, 0,
			"unsupported AI provider: "+config.Provider+". Currently supported: gemini", nil)
	}
	// Gemini validation is handled by gemini.NewConfig()

	var missing []string
	require := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	switch config.IdentityProvider {
	case "firebase":
		require("FIREBASE_PROJECT_ID", config.Firebase.ProjectID)
		require("FIREBASE_CLIENT_EMAIL", config.Firebase.ClientEmail)
		require("FIREBASE_PRIVATE_KEY", config.Firebase.PrivateKey)
		require("FIREBASE_API_KEY", config.Firebase.APIKey)
	case "local":
		require("LOCAL_AUTH_JWT_SECRET", config.Local.JWTSecret)
		require("REDIS_URL", config.Redis.URL)
	default:
		return apperr.New(apperr.KindConfiguration, 0,
			"unsupported identity provider: "+config.IdentityProvider+". Currently supported: firebase, local", nil)
	}

	require("VAPI_PRIVATE_KEY", config.Vapi.PrivateKey)
	require("VAPI_ASSISTANT_ID", config.Vapi.AssistantID)
	require("VAPI_WORKFLOW_ID", config.Vapi.WorkflowID)
	require("MONGO_URI", config.Mongo.URI)

	if len(missing) > 0 {
		return &apperr.ConfigError{Missing: missing}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
