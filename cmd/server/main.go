package main

import (
	"context"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"prepwise/internal/authform"
	"prepwise/internal/cache"
	"prepwise/internal/config"
	"prepwise/internal/handlers"
	"prepwise/internal/identity"
	_ "prepwise/internal/identity/firebase"
	_ "prepwise/internal/identity/local"
	"prepwise/internal/llm"
	_ "prepwise/internal/llm/gemini"
	"prepwise/internal/metrics"
	appmw "prepwise/internal/middleware"
	"prepwise/internal/models"
	"prepwise/internal/prompts"
	"prepwise/internal/routers"
	"prepwise/internal/session"
	storemongo "prepwise/internal/store/mongo"
	"prepwise/internal/utils"
	"prepwise/internal/vapi"
)

type routeDeps struct {
	vapi       *handlers.VapiHandler
	generate   *handlers.GenerateHandler
	auth       *handlers.AuthHandler
	interviews *handlers.InterviewHandler
	health     *handlers.HealthHandler
	limiter    *appmw.RateLimiter
	session    appmw.CurrentUserFunc
	proxies    []netip.Prefix
}

func buildRouter(cfg *config.Config, deps routeDeps) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", appmw.VapiSecretHeader},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, appmw.RealIP(deps.proxies), middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware)

	limit := func(scope string) func(http.Handler) http.Handler {
		return deps.limiter.Limit(appmw.RateLimitConfig{
			Limit:  cfg.Limits.Limit,
			Window: cfg.Limits.Window,
			Scope:  scope,
		})
	}
	// every generation callback arrives from the voice platform's servers, so
	// the bucket is the interview's user rather than the caller's address
	generateLimit := deps.limiter.Limit(appmw.RateLimitConfig{
		Limit:   cfg.Limits.Limit,
		Window:  cfg.Limits.Window,
		Scope:   "generate",
		KeyFunc: func(r *http.Request) string {
			return appmw.GetValidatedRequest[*models.GenerateRequest](r).UserID
		},
	})
	requireSession := appmw.RequireSession(deps.session)

	routers.HealthRoutes(router, deps.health)
	routers.VapiRoutes(router, deps.vapi, deps.generate, limit("vapi"), generateLimit, cfg.Vapi.ServerSecret)
	routers.AuthRoutes(router, deps.auth, requireSession, limit("auth"))
	routers.InterviewRoutes(router, deps.interviews, requireSession)
	return router
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	utils.InitLogger(cfg.IsProduction())
	logger := utils.GetLogger()
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Environment),
		zap.String("provider", cfg.Provider),
		zap.String("identity_provider", cfg.IdentityProvider))

	ctx := context.Background()

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider",
			zap.Strings("registered", llm.Registered()),
			zap.Error(err))
	}

	mongoClient, err := storemongo.Shared(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	usersCol, err := mongoClient.Collection(cfg.Mongo.UsersCollection)
	if err != nil {
		logger.Fatal("Failed to open users collection", zap.Error(err))
	}
	interviewsCol, err := mongoClient.Collection(cfg.Mongo.InterviewsCollection)
	if err != nil {
		logger.Fatal("Failed to open interviews collection", zap.Error(err))
	}
	userRepo := storemongo.NewUserRepo(usersCol)
	interviewRepo := storemongo.NewInterviewRepo(interviewsCol)

	indexCtx, cancelIndex := context.WithTimeout(ctx, 10*time.Second)
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Warn("Failed to ensure user indexes", zap.Error(err))
	}
	if err := interviewRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Warn("Failed to ensure interview indexes", zap.Error(err))
	}
	cancelIndex()

	// Redis backs the local identity provider and the rate limiter; the limiter
	// works without it.
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		rdb, err = cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			if cfg.IdentityProvider == "local" {
				logger.Fatal("Redis is required by the local identity provider", zap.Error(err))
			}
			logger.Warn("Redis unavailable, rate limiting falls back to memory", zap.Error(err))
			rdb = nil
		}
	}

	idp, err := identity.NewProvider(ctx, cfg.IdentityProvider, identity.Deps{Config: cfg, Redis: rdb})
	if err != nil {
		logger.Fatal("Failed to initialize identity provider",
			zap.Strings("registered", identity.Registered()),
			zap.Error(err))
	}

	gateway := session.NewGateway(idp, userRepo, cfg.IsProduction(), logger)
	forms := authform.NewController(idp, gateway, logger)

	pings := map[string]handlers.PingFunc{"mongo": mongoClient.Ping}
	if rdb != nil {
		pings["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	proxies, err := appmw.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}

	limiter := appmw.NewRateLimiter(rdb, logger)
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	go limiter.RunSweeper(sweepCtx, 5*time.Minute)

	router := buildRouter(cfg, routeDeps{
		vapi:       handlers.NewVapiHandler(vapi.NewClient(cfg.Vapi), logger),
		generate:   handlers.NewGenerateHandler(aiProvider, promptManager, interviewRepo, logger),
		auth:       handlers.NewAuthHandler(forms, gateway),
		interviews: handlers.NewInterviewHandler(interviewRepo, logger),
		health:     handlers.NewHealthHandler(aiProvider, promptManager, cfg, pings),
		limiter:    limiter,
		session:    gateway.CurrentUser,
		proxies:    proxies,
	})

	serverAddr := ":" + cfg.Port

	// model calls can take a while, WriteTimeout sits above the router's 60s timeout
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("PrepWise service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("PrepWise service shutting down...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Warn("MongoDB disconnect failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("PrepWise service exited")
}
