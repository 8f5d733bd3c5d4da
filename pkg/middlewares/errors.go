package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg"
)

// ErrorHandler returns Gin middleware that responds with the last error a handler attached via
// c.Error, unless a response was already written.
func ErrorHandler(responder *pkg.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		responder.Respond(c, c.Errors.Last().Err)
	}
}

// Recovery returns Gin middleware that turns panics into a 500 response. A recovered value that is
// not already an AppError is reported as a non-operational error; only error values keep their message.
func Recovery(responder *pkg.Responder) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if c.Writer.Written() {
			c.Abort()
			return
		}
		responder.Respond(c, asProgrammerError(recovered))
		c.Abort()
	})
}

func asProgrammerError(recovered any) any {
	switch v := recovered.(type) {
	case *pkg.AppError:
		return v
	case error:
		return pkg.NewProgrammerError(v.Error(), http.StatusInternalServerError, pkg.WithCause(v))
	default:
		return pkg.NewProgrammerError("", http.StatusInternalServerError)
	}
}
