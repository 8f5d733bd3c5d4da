package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type BaseHandler struct {
	logger    *zap.Logger
	responder *pkg.Responder
	db        Pinger
}

func NewBaseHandler(logger *zap.Logger, responder *pkg.Responder, db Pinger) *BaseHandler {
	return &BaseHandler{logger: logger, responder: responder, db: db}
}

func (b *BaseHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", b.GetHealth)
	r.GET("/health/ready", b.GetReadiness)
}

// RegisterFallback installs NotFound for every request no route matched. Call it after all routes.
func (b *BaseHandler) RegisterFallback(r *gin.Engine) {
	r.NoRoute(b.NotFound)
}

func (b *BaseHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (b *BaseHandler) GetReadiness(c *gin.Context) {
	if b.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := b.db.Ping(ctx); err != nil {
		b.logger.Error("readiness check failed", zap.String(pkg.TraceId, c.GetString(pkg.TraceId)), zap.Error(err))
		b.responder.Respond(c, pkg.NewAppError("Database unavailable", http.StatusServiceUnavailable, pkg.WithCause(err)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

// NotFound answers requests that matched no route. The request body is never read.
func (b *BaseHandler) NotFound(c *gin.Context) {
	b.responder.Respond(c, pkg.NewNotFoundError("Endpoint"))
}
