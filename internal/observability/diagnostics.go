package observability

import (
	"context"
	"errors"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// Diagnostics receives failures that must never reach the caller, such as audit write errors.
type Diagnostics interface {
	Capture(ctx context.Context, err error, message string, fields map[string]string)
}

type diagnostics struct {
	logger zerolog.Logger
	hub    *sentry.Hub
}

// NewDiagnostics logs every captured failure and forwards it to Sentry when hub is non-nil.
func NewDiagnostics(logger zerolog.Logger, hub *sentry.Hub) Diagnostics {
	return &diagnostics{
		logger: logger.With().Str("component", "diagnostics").Logger(),
		hub:    hub,
	}
}

func (d *diagnostics) Capture(ctx context.Context, err error, message string, fields map[string]string) {
	event := d.logger.Warn()
	if err != nil {
		event = d.logger.Error().Err(err)
	}
	for key, value := range fields {
		event = event.Str(key, value)
	}
	event.Msg(message)

	if d.hub == nil {
		return
	}

	hub := d.hub
	if fromCtx := sentry.GetHubFromContext(ctx); fromCtx != nil {
		hub = fromCtx
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range fields {
			scope.SetTag(key, value)
		}
		if err != nil {
			scope.SetContext("diagnostic", sentry.Context{"message": message})
			hub.CaptureException(err)
			return
		}
		hub.CaptureMessage(message)
	})
}

// Capture is a single captured diagnostic.
type Capture struct {
	Err     error
	Message string
	Fields  map[string]string
}

// RecordingDiagnostics keeps captures in memory; used by tests and local tooling.
type RecordingDiagnostics struct {
	mu       sync.Mutex
	captures []Capture
}

// Capture stores the diagnostic.
func (r *RecordingDiagnostics) Capture(ctx context.Context, err error, message string, fields map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.captures = append(r.captures, Capture{Err: err, Message: message, Fields: copied})
}

// Captures returns a snapshot of everything captured so far.
func (r *RecordingDiagnostics) Captures() []Capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Capture(nil), r.captures...)
}

// Has reports whether any capture wraps target.
func (r *RecordingDiagnostics) Has(target error) bool {
	for _, capture := range r.Captures() {
		if errors.Is(capture.Err, target) {
			return true
		}
	}
	return false
}
