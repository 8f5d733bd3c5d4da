package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg"
)

const maxTraceIDLength = 64

// TraceID returns Gin middleware that tags each request with a trace id. An incoming X-Trace-Id,
// or X-Request-Id from proxies that only set that, is reused when it is a safe token; otherwise a
// uuid is generated. The id is stored under pkg.TraceId and echoed in the X-Trace-Id header.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(pkg.HeaderTraceId)
		if traceID == "" {
			traceID = c.GetHeader(pkg.HeaderRequestId)
		}
		if !validTraceID(traceID) {
			traceID = uuid.NewString()
		}
		c.Set(pkg.TraceId, traceID)
		c.Header(pkg.HeaderTraceId, traceID)
		c.Next()
	}
}

// validTraceID accepts short ids made of letters, digits and -_.: so client input cannot forge log lines.
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
