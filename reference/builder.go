package reference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkoster/apiref/codegen"
	"github.com/pkoster/apiref/llm"
	"github.com/pkoster/apiref/openapi"
)

// defaultTitle fills in for documents whose info block has no title.
const defaultTitle = "API Reference"

type builder struct {
	overview llm.Engine
	logger   *slog.Logger
}

// Option configures Build.
type Option func(*builder)

// WithOverviewEngine enables the generated overview paragraph. Engine
// failures are logged and leave the overview empty; they never fail the
// build.
func WithOverviewEngine(e llm.Engine) Option {
	return func(b *builder) { b.overview = e }
}

// WithLogger sets the logger for degradation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) { b.logger = logger }
}

// Build assembles the reference model for a parsed document. Operations
// group under their first tag, or under "default" when untagged, in
// first-appearance order. Endpoint ids are unique across the document;
// a colliding slug takes the first free numeric suffix. Build never
// fails: broken schemas degrade to opaque entries and a missing
// overview engine just leaves the summary out.
func Build(ctx context.Context, doc *openapi.Document, baseURL string, opts ...Option) *Model {
	b := &builder{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(b)
	}

	info := doc.Info()
	title := info.Title
	if title == "" {
		title = defaultTitle
	}

	trimmedBase := strings.TrimRight(baseURL, "/")
	displayBase := trimmedBase
	if displayBase == "" {
		displayBase = baseURL
	}

	var names []string
	groups := make(map[string][]Endpoint)
	seen := make(map[string]bool)
	for _, op := range openapi.BuildIndex(doc).Operations() {
		tag := "default"
		if len(op.Tags) > 0 {
			tag = op.Tags[0]
		}
		if _, ok := groups[tag]; !ok {
			names = append(names, tag)
		}
		groups[tag] = append(groups[tag], buildEndpoint(op, trimmedBase, seen))
	}

	model := &Model{
		Title:       title,
		Version:     info.Version,
		Description: info.Description,
		BaseURL:     displayBase,
		Tags:        make([]TagGroup, 0, len(names)),
		Stacks:      codegen.Stacks(),
	}
	for _, name := range names {
		model.Tags = append(model.Tags, TagGroup{Name: name, Endpoints: groups[name]})
	}

	if b.overview != nil {
		model.OverviewSummary = b.generateOverview(ctx, doc)
	}
	return model
}

func buildEndpoint(op *openapi.Operation, base string, seen map[string]bool) Endpoint {
	key := "endpoint-" + slugify(strings.ToLower(op.Method)+"-"+op.Path)
	id := key
	for n := 2; seen[id]; n++ {
		id = fmt.Sprintf("%s-%d", key, n)
	}
	seen[id] = true

	params := make([]ParameterData, 0, len(op.Parameters))
	for _, p := range op.Parameters {
		params = append(params, ParameterData{
			Name:        p.Name,
			In:          p.In,
			Required:    p.Required,
			Description: strings.ReplaceAll(p.Description, "\n", " "),
		})
	}

	var body *RequestBodyData
	if op.RequestBody != nil {
		body = &RequestBodyData{
			Description: op.RequestBody.Description,
			Schema:      buildSchemaData(op.RequestBody.Schema),
		}
	}

	responses := make([]ResponseData, 0, len(op.Responses))
	for _, r := range op.Responses {
		responses = append(responses, ResponseData{
			Code:        r.Code,
			Description: r.Description,
			BodySchema:  buildSchemaData(r.Schema),
		})
	}

	fullURL := op.Path
	if base != "" {
		fullURL = base + op.Path
	}

	return Endpoint{
		ID:          id,
		Path:        op.Path,
		Method:      op.Method,
		Summary:     op.Summary,
		Description: op.Description,
		HowToCall: HowToCall{
			FullURL:   fullURL,
			NeedsAuth: op.NeedsAuth(),
			HasBody:   op.HasBody(),
		},
		Parameters:  params,
		RequestBody: body,
		Responses:   responses,
	}
}

func (b *builder) generateOverview(ctx context.Context, doc *openapi.Document) string {
	reply, err := b.overview.Generate(ctx, llm.Request{
		System: overviewSystemPrompt,
		Prompt: "Write a short introduction/overview for this API:\n\n" + SummaryText(doc),
	})
	if err != nil {
		b.logger.Warn("overview generation skipped", "error", err)
		return ""
	}
	return strings.TrimSpace(reply)
}
