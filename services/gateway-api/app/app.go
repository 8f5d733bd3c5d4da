package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg/cache"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg/database"
	middleware "github.com/nimeshabuddhika/payment-gateway-api/pkg/middlewares"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg/ratelimit"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg/utils"
	"github.com/nimeshabuddhika/payment-gateway-api/services/gateway-api/configs"
	"github.com/nimeshabuddhika/payment-gateway-api/services/gateway-api/internal/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "ratelimit:auth:"

// Deps are the collaborators NewHandler wires into the router.
type Deps struct {
	Config     *configs.Config
	Logger     *zap.Logger
	DB         handlers.Pinger // optional; readiness reports ok without it
	LimitStore ratelimit.Store // optional; defaults to an in-memory store
}

// NewApp wires dependencies, builds the HTTP handler, and returns an *http.Server and a cleanup func.
func NewApp(ctx context.Context, logger *zap.Logger, cfg *configs.Config) (*http.Server, func(), error) {
	gin.SetMode(GinMode(cfg.Mode()))

	// Initialize postgres db
	db, disconnect, err := database.New(ctx, logger, database.Config{
		DSN:            cfg.DatabaseURL,
		MaxConns:       cfg.MaxDbCons,
		MinConns:       cfg.MinDbCons,
		ConnectRetries: cfg.DbConnectRetries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	closers := []func(){disconnect}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Rate limit counters are shared through Redis when configured
	var store ratelimit.Store = ratelimit.NewMemoryStore(cfg.AuthRateLimitWindow)
	if !utils.IsEmpty(cfg.RedisAddr) {
		client, closeRedis, err := cache.New(ctx, logger, cache.Config{Addr: cfg.RedisAddr})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, closeRedis)
		store = ratelimit.NewRedisStore(client, rateLimitKeyPrefix, cfg.AuthRateLimitWindow)
	}

	handler, err := NewHandler(Deps{Config: cfg, Logger: logger, DB: db, LimitStore: store})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, cleanup, nil
}

// NewHandler builds the Gin engine with the full middleware chain and wraps it with CORS.
func NewHandler(deps Deps) (http.Handler, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := deps.LimitStore
	if store == nil {
		store = ratelimit.NewMemoryStore(cfg.AuthRateLimitWindow)
	}

	responder := pkg.NewResponder(cfg.Mode(), logger)
	baseHandler := handlers.NewBaseHandler(logger, responder, deps.DB)

	r := gin.New()

	// Client IPs come from X-Forwarded-For only behind trusted proxies in production
	proxies := cfg.TrustedProxyList()
	if cfg.Mode() != pkg.ModeProduction {
		proxies = nil
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// Logging and metrics wrap Recovery so panicked requests are still recorded as 500s
	r.Use(middleware.TraceID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Recovery(responder))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Throttle(ratelimit.NewLimiter(cfg.GlobalRateLimitRPS, cfg.GlobalRateLimitBurst), responder))
	r.Use(middleware.WindowLimiter(middleware.WindowLimitConfig{
		Max:                    cfg.AuthRateLimitMax,
		Store:                  store,
		Message:                pkg.RateLimitedMessage,
		SkipSuccessfulRequests: true, // only failed requests count
	}, responder, logger))
	r.Use(middleware.BodyLimit(cfg.BodyLimitBytes))
	r.Use(middleware.ErrorHandler(responder))

	baseHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 404 fallback goes last
	baseHandler.RegisterFallback(r)

	return middleware.CORS(r, cfg.AllowedOrigins()), nil
}

// GinMode maps the deployment mode onto Gin's run mode.
func GinMode(mode pkg.Mode) string {
	switch mode {
	case pkg.ModeDevelopment:
		return gin.DebugMode
	case pkg.ModeTest:
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
