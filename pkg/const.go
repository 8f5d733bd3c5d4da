package pkg

const (
	HeaderTraceId   string = "X-Trace-Id"
	HeaderRequestId string = "X-Request-Id"
)

const (
	TraceId   string = "trace_id"
	RequestId string = "request_id"
)

// Mode is the deployment mode the process was started in.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeTest        Mode = "test"
	ModeProduction  Mode = "production"
)

// IsDevelopment reports whether verbose diagnostics may be exposed to clients.
func (m Mode) IsDevelopment() bool {
	return m == ModeDevelopment
}
