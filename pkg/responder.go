package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	GenericErrorMessage = "Something went wrong"
	ContentTypeJSON     = "application/json; charset=utf-8"

	unknownKind = "unknown"
)

// genericBody is emitted when the real body cannot be produced.
var genericBody = []byte(`{"success":false,"message":"` + GenericErrorMessage + `"}`)

// ResponseSink receives the encoded error response. *gin.Context satisfies it.
type ResponseSink interface {
	Data(code int, contentType string, data []byte)
}

// ErrorBody is the JSON error envelope returned to clients.
type ErrorBody struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Errors        []any  `json:"errors,omitzero"`
	Stack         string `json:"stack,omitempty"`
	IsOperational *bool  `json:"isOperational,omitempty"`
}

type statusCoder interface {
	StatusCode() int
}

type stackTracer interface {
	StackTrace() string
}

// Responder turns arbitrary error values into a single JSON response.
type Responder struct {
	mode   Mode
	logger *zap.Logger
}

func NewResponder(mode Mode, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{mode: mode, logger: logger}
}

// Mode returns the deployment mode the responder formats for.
func (r *Responder) Mode() Mode {
	return r.mode
}

// Respond writes exactly one JSON error response for v to sink. It never panics; input it cannot
// understand becomes a generic 500.
func (r *Responder) Respond(sink ResponseSink, v any) {
	if sink == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("error responder failed to emit response", zap.Any("panic", rec))
		}
	}()

	status, kind, body := r.build(sink, v)
	data, err := json.Marshal(body)
	if err != nil {
		r.logger.Error("failed to encode error response", zap.Error(err), zap.String("kind", kind))
		status, kind, data = http.StatusInternalServerError, unknownKind, genericBody
	}
	errorResponsesTotal.WithLabelValues(strconv.Itoa(status), kind).Inc()
	sink.Data(status, ContentTypeJSON, data)
}

func (r *Responder) build(sink ResponseSink, v any) (status int, kind string, body ErrorBody) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("error responder recovered while shaping response", zap.Any("panic", rec))
			status, kind, body = http.StatusInternalServerError, unknownKind, ErrorBody{Message: GenericErrorMessage}
		}
	}()

	if r.mode.IsDevelopment() {
		r.logger.Error("request failed", zap.Any("error", v), zap.String(TraceId, traceIDOf(sink)))
	}

	d := describe(v)
	body = ErrorBody{Success: false, Message: d.message}
	if body.Message == "" {
		body.Message = GenericErrorMessage
	}

	kind = unknownKind
	if d.appErr != nil {
		kind = string(d.appErr.Kind)
		if d.appErr.Kind == KindValidation {
			body.Errors = d.appErr.Details
			if body.Errors == nil {
				body.Errors = []any{}
			}
		}
	}

	if r.mode.IsDevelopment() {
		body.Stack = d.stack
		if body.Stack == "" {
			body.Stack = string(debug.Stack())
		}
		if d.appErr != nil {
			operational := d.appErr.Operational
			body.IsOperational = &operational
		}
	}

	status = http.StatusInternalServerError
	if isErrorStatus(d.status) {
		status = d.status
	}
	return status, kind, body
}

type description struct {
	message string
	status  int
	stack   string
	appErr  *AppError
}

// describe extracts the optional message, status and stack of v without assuming its shape.
func describe(v any) description {
	var d description
	switch t := v.(type) {
	case nil:
		return d
	case *AppError:
		if t == nil {
			return d
		}
		d.appErr = t
	case AppError:
		d.appErr = &t
	case error:
		var appErr *AppError
		if errors.As(t, &appErr) && appErr != nil {
			d.appErr = appErr
		} else {
			d.message = t.Error()
		}
	case map[string]any:
		d.message, _ = t["message"].(string)
		d.stack, _ = t["stack"].(string)
		d.status = numberOf(t["statusCode"])
	}

	if d.appErr != nil {
		d.message = d.appErr.Message
		d.status = d.appErr.StatusCode
		d.stack = d.appErr.Stack
		return d
	}
	if sc, ok := v.(statusCoder); ok {
		d.status = sc.StatusCode()
	}
	if st, ok := v.(stackTracer); ok && d.stack == "" {
		d.stack = st.StackTrace()
	}
	return d
}

func numberOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}

func isErrorStatus(code int) bool {
	return code >= http.StatusBadRequest && code <= 599
}

func traceIDOf(sink ResponseSink) string {
	if c, ok := sink.(*gin.Context); ok && c != nil {
		return c.GetString(TraceId)
	}
	return ""
}
