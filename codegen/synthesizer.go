package codegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pkoster/apiref/llm"
	"github.com/pkoster/apiref/openapi"
)

// Synthesizer produces code examples. Without an engine it renders the
// stack template directly; with one it asks the engine first and falls
// back to the template whenever the engine fails, rate-limits, or
// returns an empty reply. Generate never fails because of the engine.
type Synthesizer struct {
	engine      llm.Engine
	limiter     *rate.Limiter
	logger      *slog.Logger
	templateDir string
	tmpl        *templateEngine
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithEngine enables AI-backed generation. A nil engine keeps the
// synthesizer in template-only mode.
func WithEngine(engine llm.Engine) Option {
	return func(s *Synthesizer) { s.engine = engine }
}

// WithLimiter throttles engine calls. Attempts rejected by the limiter
// fall back to the template immediately.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Synthesizer) { s.limiter = l }
}

// WithLogger sets the logger for fallback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) { s.logger = logger }
}

// WithTemplateDir overlays templates from dir on top of the embedded
// set, matched by file name.
func WithTemplateDir(dir string) Option {
	return func(s *Synthesizer) { s.templateDir = dir }
}

// NewSynthesizer loads the stack templates and applies options.
func NewSynthesizer(opts ...Option) (*Synthesizer, error) {
	s := &Synthesizer{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	tmpl, err := newTemplateEngine(s.templateDir)
	if err != nil {
		return nil, fmt.Errorf("loading stack templates: %w", err)
	}
	s.tmpl = tmpl
	return s, nil
}

// exampleData is the rendering context shared by all stack templates.
type exampleData struct {
	Method      string
	MethodLower string
	Path        string
	URL         string
	BaseURL     string
	NeedsAuth   bool
	HasBody     bool
	Body        string
	BodyInline  string
}

// Generate returns a code example for the operation in the given stack.
// A nil operation reports openapi.ErrOperationNotFound; an unregistered
// stack reports an UnknownStackError. Engine trouble is logged and
// degrades to the deterministic template, never to an error.
func (s *Synthesizer) Generate(ctx context.Context, op *openapi.Operation, stackValue, baseURL string) (string, error) {
	if op == nil {
		return "", openapi.ErrOperationNotFound
	}
	stack, ok := LookupStack(stackValue)
	if !ok {
		return "", &UnknownStackError{Stack: stackValue}
	}

	data := buildExampleData(op, baseURL)
	rendered, err := s.tmpl.execute(stack.Value+".tmpl", data)
	if err != nil {
		return "", fmt.Errorf("rendering %s example: %w", stack.Value, err)
	}
	if s.engine == nil {
		return rendered, nil
	}

	code, genErr := s.tryEngine(ctx, op, stack, baseURL)
	if genErr != nil {
		s.logger.Warn("example generation fell back to template",
			"stack", stack.Value,
			"method", op.Method,
			"path", op.Path,
			"error", genErr)
		return rendered, nil
	}
	return code, nil
}

func (s *Synthesizer) tryEngine(ctx context.Context, op *openapi.Operation, stack Stack, baseURL string) (string, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return "", &llm.EngineError{Reason: llm.ReasonQuota, Cause: errors.New("rate limit exceeded")}
	}
	reply, err := s.engine.Generate(ctx, llm.Request{
		System: generateSystemPrompt,
		Prompt: BuildPrompt(op, stack.Value, baseURL),
	})
	if err != nil {
		return "", err
	}
	code := StripFences(reply)
	if code == "" {
		return "", &llm.EngineError{Reason: llm.ReasonMalformed, Cause: errors.New("empty reply")}
	}
	return code, nil
}

// StripFences removes a surrounding markdown code fence from an engine
// reply. The first line goes when it opens a fence, the last when it
// closes one; everything else passes through untouched.
func StripFences(reply string) string {
	code := strings.TrimSpace(reply)
	if !strings.HasPrefix(code, "```") {
		return code
	}
	lines := strings.Split(code, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func buildExampleData(op *openapi.Operation, baseURL string) exampleData {
	base := strings.TrimRight(baseURL, "/")
	url := op.Path
	if base != "" {
		url = base + op.Path
	}
	d := exampleData{
		Method:      op.Method,
		MethodLower: strings.ToLower(op.Method),
		Path:        op.Path,
		URL:         url,
		BaseURL:     base,
		NeedsAuth:   op.NeedsAuth(),
	}
	if op.HasBody() && op.RequestBody != nil && op.RequestBody.Schema != nil {
		d.HasBody = true
		d.Body, d.BodyInline = sampleBody(op.RequestBody.Schema)
	}
	return d
}
