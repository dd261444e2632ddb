// Package llm defines the injectable text-generation capability used
// for overview summaries and AI code examples. The core never imports
// a concrete provider: deployments hand in an Engine, tests use Func,
// and everything works without one.
package llm

import (
	"context"
	"errors"
	"time"
)

// Request is one generation call.
type Request struct {
	// System sets the assistant's role and output constraints.
	System string
	// Prompt carries the instruction and its context.
	Prompt string
}

// Engine produces text for a request. Implementations must honor the
// context deadline; callers bound every invocation with WithTimeout or
// their own context.
type Engine interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a bare function to the Engine interface.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ErrEngine matches any engine failure via errors.Is. Engine failures
// are always recoverable: callers fall back to deterministic output.
var ErrEngine = errors.New("engine failure")

// Reason classifies an engine failure for logging.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonTimeout
	ReasonQuota
	ReasonMalformed
)

func (r Reason) String() string {
	switch r {
	case ReasonTimeout:
		return "timeout"
	case ReasonQuota:
		return "quota"
	case ReasonMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// EngineError wraps a generation failure with its classification.
type EngineError struct {
	Reason Reason
	Cause  error
}

func (e *EngineError) Error() string {
	msg := "engine failure (" + e.Reason.String() + ")"
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *EngineError) Unwrap() error { return e.Cause }

func (e *EngineError) Is(target error) bool { return target == ErrEngine }

// WithTimeout bounds every call through the engine with a deadline.
// Expired calls come back as an EngineError with ReasonTimeout. A
// non-positive duration leaves the engine unwrapped.
func WithTimeout(engine Engine, d time.Duration) Engine {
	if d <= 0 {
		return engine
	}
	return &timeoutEngine{engine: engine, timeout: d}
}

type timeoutEngine struct {
	engine  Engine
	timeout time.Duration
}

func (t *timeoutEngine) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	out, err := t.engine.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &EngineError{Reason: ReasonTimeout, Cause: err}
		}
		return "", err
	}
	return out, nil
}
