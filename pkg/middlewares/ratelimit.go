package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg/ratelimit"
	"go.uber.org/zap"
)

const (
	HeaderRateLimitLimit     = "RateLimit-Limit"
	HeaderRateLimitRemaining = "RateLimit-Remaining"
	HeaderRateLimitReset     = "RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// WindowLimitConfig configures WindowLimiter.
type WindowLimitConfig struct {
	Max     int64           // hits allowed per key and window
	Store   ratelimit.Store // window counters
	Message string          // 429 message; defaults to pkg.RateLimitedMessage
	// SkipSuccessfulRequests stops counting responses with a status below 400.
	SkipSuccessfulRequests bool
	// KeyFunc picks the counter key; defaults to the client IP.
	KeyFunc func(c *gin.Context) string
}

// WindowLimiter returns Gin middleware enforcing a fixed-window hit limit per key.
// Store failures are logged and the request is let through.
func WindowLimiter(cfg WindowLimitConfig, responder *pkg.Responder, logger *zap.Logger) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := keyFunc(c)

		count, resetAt, err := cfg.Store.Increment(ctx, key)
		if err != nil {
			logger.Error("rate limit store error; allowing request", zap.String(pkg.TraceId, c.GetString(pkg.TraceId)), zap.Error(err))
			c.Next()
			return
		}

		resetIn := secondsUntil(resetAt)
		c.Header(HeaderRateLimitLimit, strconv.FormatInt(cfg.Max, 10))
		c.Header(HeaderRateLimitRemaining, strconv.FormatInt(max(cfg.Max-count, 0), 10))
		c.Header(HeaderRateLimitReset, strconv.Itoa(resetIn))

		if count > cfg.Max {
			logger.Warn("rate limit exceeded", zap.String("key", key), zap.Int64("count", count))
			c.Header(HeaderRetryAfter, strconv.Itoa(resetIn))
			responder.Respond(c, pkg.NewTooManyRequestsError(cfg.Message))
			c.Abort()
			return
		}

		c.Next()

		if cfg.SkipSuccessfulRequests && c.Writer.Status() < http.StatusBadRequest {
			if err := cfg.Store.Decrement(ctx, key); err != nil {
				logger.Error("rate limit store error on decrement", zap.Error(err))
			}
		}
	}
}

// Throttle returns Gin middleware rejecting requests once the process-wide token bucket is empty.
func Throttle(limiter *ratelimit.Limiter, responder *pkg.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			responder.Respond(c, pkg.NewTooManyRequestsError("Server is busy, please try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func secondsUntil(t time.Time) int {
	return max(int(math.Ceil(time.Until(t).Seconds())), 0)
}
