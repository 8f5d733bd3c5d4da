package middleware

import (
	"net/http"

	"github.com/nimeshabuddhika/payment-gateway-api/pkg"
	"github.com/rs/cors"
)

// CORS wraps h so cross-origin preflights are answered before routing. An empty origin list
// or a "*" entry allows every origin.
func CORS(h http.Handler, allowedOrigins []string) http.Handler {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut,
			http.MethodPatch, http.MethodPost, http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			pkg.HeaderTraceId,
			HeaderRateLimitLimit, HeaderRateLimitRemaining, HeaderRateLimitReset,
		},
	}
	if len(allowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.New(opts).Handler(h)
}
