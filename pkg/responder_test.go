package pkg_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	calls       int
	status      int
	contentType string
	data        []byte
}

func (s *recordingSink) Data(code int, contentType string, data []byte) {
	s.calls++
	s.status = code
	s.contentType = contentType
	s.data = data
}

func (s *recordingSink) body(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(s.data, &out))
	return out
}

type statusError struct{ code int }

func (e statusError) Error() string   { return "payment declined" }
func (e statusError) StatusCode() int { return e.code }

type explodingError struct{}

func (*explodingError) Error() string { panic("boom") }

func respond(t *testing.T, mode pkg.Mode, v any) (*recordingSink, map[string]any) {
	t.Helper()
	sink := &recordingSink{}
	pkg.NewResponder(mode, zap.NewNop()).Respond(sink, v)
	require.Equal(t, 1, sink.calls, "exactly one response must be emitted")
	assert.Equal(t, pkg.ContentTypeJSON, sink.contentType)
	return sink, sink.body(t)
}

func TestRespond_NotFoundInProduction(t *testing.T) {
	sink, body := respond(t, pkg.ModeProduction, pkg.NewNotFoundError("Endpoint"))

	assert.Equal(t, http.StatusNotFound, sink.status)
	assert.Equal(t, map[string]any{"success": false, "message": "Endpoint not found"}, body)
}

func TestRespond_NotFoundInDevelopment(t *testing.T) {
	sink, body := respond(t, pkg.ModeDevelopment, pkg.NewNotFoundError("Endpoint"))

	assert.Equal(t, http.StatusNotFound, sink.status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Endpoint not found", body["message"])
	assert.Equal(t, true, body["isOperational"])
	assert.NotEmpty(t, body["stack"])
	assert.NotContains(t, body, "errors")
}

func TestRespond_ValidationErrorInProduction(t *testing.T) {
	details := []any{map[string]any{"field": "email", "issue": "invalid"}}
	sink, body := respond(t, pkg.ModeProduction, pkg.NewValidationError(details))

	assert.Equal(t, http.StatusBadRequest, sink.status)
	assert.Equal(t, map[string]any{
		"success": false,
		"message": "Validation failed",
		"errors":  []any{map[string]any{"field": "email", "issue": "invalid"}},
	}, body)
}

func TestRespond_ValidationErrorKeepsDetailOrder(t *testing.T) {
	details := []any{
		pkg.FieldIssue{Field: "email", Issue: "invalid"},
		pkg.FieldIssue{Field: "amount", Issue: "must be at least 1"},
		pkg.FieldIssue{Field: "currency", Issue: "is required"},
	}
	sink := &recordingSink{}
	pkg.NewResponder(pkg.ModeProduction, nil).Respond(sink, pkg.NewValidationError(details))

	assert.JSONEq(t, `{"success":false,"message":"Validation failed","errors":[
		{"field":"email","issue":"invalid"},
		{"field":"amount","issue":"must be at least 1"},
		{"field":"currency","issue":"is required"}]}`, string(sink.data))
}

func TestRespond_EmptyValidationStillCarriesErrors(t *testing.T) {
	sink := &recordingSink{}
	pkg.NewResponder(pkg.ModeProduction, nil).Respond(sink, pkg.NewValidationError(nil))

	assert.Equal(t, `{"success":false,"message":"Validation failed","errors":[]}`, string(sink.data))
}

func TestRespond_PlainValueFallsBackToGeneric500(t *testing.T) {
	for _, v := range []any{map[string]any{}, struct{}{}, nil, "boom", 42} {
		t.Run(fmt.Sprintf("%T", v), func(t *testing.T) {
			sink, body := respond(t, pkg.ModeProduction, v)

			assert.Equal(t, http.StatusInternalServerError, sink.status)
			assert.Equal(t, map[string]any{"success": false, "message": "Something went wrong"}, body)
		})
	}
}

func TestRespond_EmptyMessageFallsBack(t *testing.T) {
	_, body := respond(t, pkg.ModeProduction, errors.New(""))
	assert.Equal(t, pkg.GenericErrorMessage, body["message"])

	_, body = respond(t, pkg.ModeProduction, pkg.NewAppError("", http.StatusConflict))
	assert.Equal(t, pkg.GenericErrorMessage, body["message"])
}

func TestRespond_NativeErrorMessageIsSurfaced(t *testing.T) {
	sink, body := respond(t, pkg.ModeProduction, errors.New("razorpay: order id missing"))

	assert.Equal(t, http.StatusInternalServerError, sink.status)
	assert.Equal(t, map[string]any{"success": false, "message": "razorpay: order id missing"}, body)
}

func TestRespond_HonorsCustomStatusCode(t *testing.T) {
	sink, body := respond(t, pkg.ModeProduction, pkg.NewAppError("Payment required", http.StatusPaymentRequired))
	assert.Equal(t, http.StatusPaymentRequired, sink.status)
	assert.Equal(t, "Payment required", body["message"])

	sink, _ = respond(t, pkg.ModeProduction, statusError{code: http.StatusPaymentRequired})
	assert.Equal(t, http.StatusPaymentRequired, sink.status)

	sink, _ = respond(t, pkg.ModeProduction, map[string]any{"message": "duplicate", "statusCode": float64(409)})
	assert.Equal(t, http.StatusConflict, sink.status)
}

func TestRespond_InvalidStatusCodeFallsBackTo500(t *testing.T) {
	for _, code := range []int{0, 200, 302, 600, -1} {
		sink, _ := respond(t, pkg.ModeProduction, pkg.NewAppError("odd", code))
		assert.Equal(t, http.StatusInternalServerError, sink.status, "code %d", code)
	}
}

func TestRespond_WrappedAppErrorUsesPublicMessage(t *testing.T) {
	err := fmt.Errorf("charge order: %w", pkg.NewNotFoundError("Order"))
	sink, body := respond(t, pkg.ModeProduction, err)

	assert.Equal(t, http.StatusNotFound, sink.status)
	assert.Equal(t, "Order not found", body["message"])
}

func TestRespond_ProductionNeverLeaksDiagnostics(t *testing.T) {
	values := []any{
		pkg.NewNotFoundError("Endpoint"),
		pkg.NewValidationError([]any{"x"}),
		pkg.NewProgrammerError("nil pointer", http.StatusInternalServerError),
		errors.New("native"),
		map[string]any{"message": "m", "stack": "at somewhere"},
	}
	for _, mode := range []pkg.Mode{pkg.ModeProduction, pkg.ModeTest, pkg.Mode("")} {
		for _, v := range values {
			_, body := respond(t, mode, v)
			assert.NotContains(t, body, "stack")
			assert.NotContains(t, body, "isOperational")
		}
	}
}

func TestRespond_DevelopmentAlwaysHasStack(t *testing.T) {
	values := []any{
		pkg.NewValidationError(nil),
		errors.New("native"),
		map[string]any{},
		nil,
	}
	for _, v := range values {
		_, body := respond(t, pkg.ModeDevelopment, v)
		assert.NotEmpty(t, body["stack"])
	}
}

func TestRespond_DevelopmentOperationalFlagOnlyForAppErrors(t *testing.T) {
	_, body := respond(t, pkg.ModeDevelopment, pkg.NewProgrammerError("defect", http.StatusInternalServerError))
	assert.Equal(t, false, body["isOperational"])

	_, body = respond(t, pkg.ModeDevelopment, errors.New("native"))
	assert.NotContains(t, body, "isOperational")
}

func TestRespond_DevelopmentUsesProvidedStack(t *testing.T) {
	_, body := respond(t, pkg.ModeDevelopment, map[string]any{"message": "m", "stack": "Error: m\n    at handler"})
	assert.Equal(t, "Error: m\n    at handler", body["stack"])
}

func TestRespond_ErrorsOnlyForValidation(t *testing.T) {
	_, body := respond(t, pkg.ModeDevelopment, pkg.NewValidationError([]any{"x"}))
	assert.Contains(t, body, "errors")

	for _, v := range []any{pkg.NewNotFoundError(""), errors.New("x"), map[string]any{"errors": []any{"x"}}} {
		_, body = respond(t, pkg.ModeDevelopment, v)
		assert.NotContains(t, body, "errors")
	}
}

func TestRespond_NeverPanics(t *testing.T) {
	sink, body := respond(t, pkg.ModeProduction, &explodingError{})
	assert.Equal(t, http.StatusInternalServerError, sink.status)
	assert.Equal(t, pkg.GenericErrorMessage, body["message"])

	var typedNil *pkg.AppError
	sink, body = respond(t, pkg.ModeProduction, typedNil)
	assert.Equal(t, http.StatusInternalServerError, sink.status)
	assert.Equal(t, pkg.GenericErrorMessage, body["message"])
}

func TestRespond_UnencodableDetailsDegradeToGeneric500(t *testing.T) {
	sink, body := respond(t, pkg.ModeProduction, pkg.NewValidationError([]any{make(chan int)}))

	assert.Equal(t, http.StatusInternalServerError, sink.status)
	assert.Equal(t, map[string]any{"success": false, "message": "Something went wrong"}, body)
}

func TestRespond_NilSinkIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		pkg.NewResponder(pkg.ModeDevelopment, nil).Respond(nil, errors.New("x"))
	})
}

func TestRespond_LogsOnlyInDevelopment(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	pkg.NewResponder(pkg.ModeProduction, logger).Respond(&recordingSink{}, errors.New("x"))
	assert.Equal(t, 0, logs.FilterMessage("request failed").Len())

	pkg.NewResponder(pkg.ModeDevelopment, logger).Respond(&recordingSink{}, errors.New("x"))
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestRespond_GinContextSink(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(pkg.TraceId, "trace-123")

	pkg.NewResponder(pkg.ModeDevelopment, zap.New(core)).Respond(c, pkg.NewNotFoundError("Endpoint"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, pkg.ContentTypeJSON, w.Header().Get("Content-Type"))
	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "trace-123", entries[0].ContextMap()[pkg.TraceId])
}

func TestResponder_Mode(t *testing.T) {
	assert.Equal(t, pkg.ModeDevelopment, pkg.NewResponder(pkg.ModeDevelopment, nil).Mode())
}
