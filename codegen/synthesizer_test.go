package codegen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/pkoster/apiref/llm"
	"github.com/pkoster/apiref/openapi"
)

const petstore = `
openapi: 3.0.0
info:
  title: Pets
  version: 1.0.0
security:
  - bearerAuth: []
paths:
  /users:
    post:
      summary: Create a user
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [id]
              properties:
                id:
                  type: integer
                name:
                  type: string
                tags:
                  type: array
                  items:
                    type: string
      responses:
        "201":
          description: Created
    get:
      summary: List users
      security: []
      responses:
        "200":
          description: OK
  /ping:
    get:
      summary: Liveness probe
      security: []
      responses:
        "200":
          description: pong
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
`

const testBaseURL = "https://api.example.com"

func fixtureOperation(t *testing.T, method, path string) *openapi.Operation {
	t.Helper()
	doc, err := openapi.Parse([]byte(petstore))
	require.NoError(t, err)
	op, err := openapi.FindOperation(doc, method, path)
	require.NoError(t, err)
	return op
}

func newTemplateSynthesizer(t *testing.T, opts ...Option) *Synthesizer {
	t.Helper()
	s, err := NewSynthesizer(opts...)
	require.NoError(t, err)
	return s
}

func TestGenerateAllStacks(t *testing.T) {
	s := newTemplateSynthesizer(t)
	post := fixtureOperation(t, "POST", "/users")
	get := fixtureOperation(t, "GET", "/ping")

	for _, stack := range Stacks() {
		for _, op := range []*openapi.Operation{post, get} {
			code, err := s.Generate(context.Background(), op, stack.Value, testBaseURL)
			require.NoError(t, err, "stack %s %s", stack.Value, op.Method)
			require.NotEmpty(t, code, "stack %s %s", stack.Value, op.Method)
			require.Contains(t, code, testBaseURL, "stack %s", stack.Value)
			require.Contains(t, code, op.Path, "stack %s", stack.Value)
			require.NotContains(t, code, "<no value>", "stack %s", stack.Value)
		}
	}
}

func TestGenerateVanillaWithoutAuthOrBody(t *testing.T) {
	s := newTemplateSynthesizer(t)
	op := fixtureOperation(t, "GET", "/ping")

	code, err := s.Generate(context.Background(), op, "vanilla", testBaseURL)
	require.NoError(t, err)
	require.Equal(t, `const url = "https://api.example.com/ping";

fetch(url, {
  method: "GET",
})
  .then((res) => res.json())
  .then((data) => console.log(data))
  .catch((err) => console.error(err));
`, code)
}

func TestGenerateVanillaWithAuthAndBody(t *testing.T) {
	s := newTemplateSynthesizer(t)
	op := fixtureOperation(t, "POST", "/users")

	code, err := s.Generate(context.Background(), op, "vanilla", testBaseURL)
	require.NoError(t, err)
	require.Equal(t, `// Get your token after login and keep it client-side
const token = "YOUR_JWT_TOKEN";
const url = "https://api.example.com/users";
const payload = {
  "id": 0,
  "name": "string",
  "tags": [
    "string"
  ]
};

fetch(url, {
  method: "POST",
  headers: {
    "Authorization": "Bearer " + token,
    "Content-Type": "application/json",
  },
  body: JSON.stringify(payload),
})
  .then((res) => res.json())
  .then((data) => console.log(data))
  .catch((err) => console.error(err));
`, code)
}

func TestGenerateSampleBodyInEveryBodyStack(t *testing.T) {
	s := newTemplateSynthesizer(t)
	op := fixtureOperation(t, "POST", "/users")

	for _, stack := range Stacks() {
		code, err := s.Generate(context.Background(), op, stack.Value, testBaseURL)
		require.NoError(t, err)
		keys := []string{`"id"`, `"name"`, `"string"`}
		if stack.Value == "swift-ios" {
			// Swift carries the body as an escaped string literal.
			keys = []string{`\"id\"`, `\"name\"`, `\"string\"`}
		}
		for _, key := range keys {
			require.Contains(t, code, key, "stack %s", stack.Value)
		}
	}
}

func TestGenerateSwiftBodyEscaping(t *testing.T) {
	const doc = `
openapi: 3.0.0
info:
  title: T
  version: "1"
paths:
  /styles:
    post:
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [color]
              properties:
                color:
                  type: string
                  enum: ["#ff0000", "#00ff00"]
      responses:
        "201":
          description: Created
`
	parsed, err := openapi.Parse([]byte(doc))
	require.NoError(t, err)
	op, err := openapi.FindOperation(parsed, "POST", "/styles")
	require.NoError(t, err)

	s := newTemplateSynthesizer(t)
	code, err := s.Generate(context.Background(), op, "swift-ios", testBaseURL)
	require.NoError(t, err)
	require.Contains(t, code, `request.httpBody = "{\"color\":\"#ff0000\"}".data(using: .utf8)`)
	require.NotContains(t, code, `#"`)
}

func TestGenerateKotlinBodylessPost(t *testing.T) {
	const doc = `
openapi: 3.0.0
info:
  title: T
  version: "1"
paths:
  /jobs/{id}/retry:
    post:
      responses:
        "202":
          description: Accepted
`
	parsed, err := openapi.Parse([]byte(doc))
	require.NoError(t, err)
	op, err := openapi.FindOperation(parsed, "POST", "/jobs/{id}/retry")
	require.NoError(t, err)

	s := newTemplateSynthesizer(t)
	code, err := s.Generate(context.Background(), op, "kotlin-android", testBaseURL)
	require.NoError(t, err)
	require.Contains(t, code, `.method("POST", "".toRequestBody())`)
	require.NotContains(t, code, `.method("POST", null)`)

	get := fixtureOperation(t, "GET", "/ping")
	code, err = s.Generate(context.Background(), get, "kotlin-android", testBaseURL)
	require.NoError(t, err)
	require.Contains(t, code, `.method("GET", null)`)
}

func TestGenerateAuthOnlyWhenRequired(t *testing.T) {
	s := newTemplateSynthesizer(t)
	authed := fixtureOperation(t, "POST", "/users")
	open := fixtureOperation(t, "GET", "/users")

	for _, stack := range Stacks() {
		code, err := s.Generate(context.Background(), authed, stack.Value, testBaseURL)
		require.NoError(t, err)
		require.Contains(t, code, "Bearer", "stack %s should carry auth", stack.Value)

		code, err = s.Generate(context.Background(), open, stack.Value, testBaseURL)
		require.NoError(t, err)
		require.NotContains(t, code, "Bearer", "stack %s should not carry auth", stack.Value)
	}
}

func TestGenerateUnknownStack(t *testing.T) {
	s := newTemplateSynthesizer(t)
	op := fixtureOperation(t, "GET", "/ping")

	_, err := s.Generate(context.Background(), op, "cobol", testBaseURL)
	require.ErrorIs(t, err, ErrUnknownStack)
	var unknownErr *UnknownStackError
	require.ErrorAs(t, err, &unknownErr)
	require.Equal(t, "cobol", unknownErr.Stack)
}

func TestGenerateNilOperation(t *testing.T) {
	s := newTemplateSynthesizer(t)

	// The missing operation wins over the bad stack value.
	_, err := s.Generate(context.Background(), nil, "cobol", testBaseURL)
	require.ErrorIs(t, err, openapi.ErrOperationNotFound)
}

func TestGenerateEngineReplyWins(t *testing.T) {
	engine := llm.Func(func(ctx context.Context, req llm.Request) (string, error) {
		require.NotEmpty(t, req.System)
		require.Contains(t, req.Prompt, "GET /ping")
		return "```js\nconsole.log(\"from engine\");\n```", nil
	})
	s := newTemplateSynthesizer(t, WithEngine(engine))
	op := fixtureOperation(t, "GET", "/ping")

	code, err := s.Generate(context.Background(), op, "vanilla", testBaseURL)
	require.NoError(t, err)
	require.Equal(t, `console.log("from engine");`, code)
}

func TestGenerateEngineErrorFallsBack(t *testing.T) {
	engine := llm.Func(func(ctx context.Context, req llm.Request) (string, error) {
		return "", errors.New("boom")
	})
	s := newTemplateSynthesizer(t, WithEngine(engine))
	op := fixtureOperation(t, "GET", "/ping")

	code, err := s.Generate(context.Background(), op, "vanilla", testBaseURL)
	require.NoError(t, err)
	require.Contains(t, code, "fetch(url", "fallback should be the template")
}

func TestGenerateEngineEmptyReplyFallsBack(t *testing.T) {
	engine := llm.Func(func(ctx context.Context, req llm.Request) (string, error) {
		return "```\n```", nil
	})
	s := newTemplateSynthesizer(t, WithEngine(engine))
	op := fixtureOperation(t, "GET", "/ping")

	code, err := s.Generate(context.Background(), op, "vanilla", testBaseURL)
	require.NoError(t, err)
	require.Contains(t, code, "fetch(url")
}

func TestGenerateRateLimitSkipsEngine(t *testing.T) {
	called := false
	engine := llm.Func(func(ctx context.Context, req llm.Request) (string, error) {
		called = true
		return "engine code", nil
	})
	limiter := rate.NewLimiter(rate.Every(time.Hour), 0)
	s := newTemplateSynthesizer(t, WithEngine(engine), WithLimiter(limiter))
	op := fixtureOperation(t, "GET", "/ping")

	code, err := s.Generate(context.Background(), op, "vanilla", testBaseURL)
	require.NoError(t, err)
	require.False(t, called)
	require.Contains(t, code, "fetch(url")
}

func TestGenerateCustomTemplateOverride(t *testing.T) {
	dir := t.TempDir()
	custom := "// custom {{.Method}} {{.URL}}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vanilla.tmpl"), []byte(custom), 0o644))

	s := newTemplateSynthesizer(t, WithTemplateDir(dir))
	op := fixtureOperation(t, "GET", "/ping")

	code, err := s.Generate(context.Background(), op, "vanilla", testBaseURL)
	require.NoError(t, err)
	require.Equal(t, "// custom GET https://api.example.com/ping\n", code)

	// Untouched stacks still come from the embedded set.
	code, err = s.Generate(context.Background(), op, "svelte", testBaseURL)
	require.NoError(t, err)
	require.Contains(t, code, "await fetch(url")
}

func TestGenerateMissingTemplateDirIgnored(t *testing.T) {
	s := newTemplateSynthesizer(t, WithTemplateDir(filepath.Join(t.TempDir(), "absent")))
	op := fixtureOperation(t, "GET", "/ping")

	_, err := s.Generate(context.Background(), op, "vanilla", testBaseURL)
	require.NoError(t, err)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"bare code", "const a = 1;", "const a = 1;"},
		{"fence with language", "```js\nconst a = 1;\n```", "const a = 1;"},
		{"fence without language", "```\nconst a = 1;\n```", "const a = 1;"},
		{"unterminated fence", "```js\nconst a = 1;", "const a = 1;"},
		{"surrounding whitespace", "\n\n  const a = 1;  \n", "const a = 1;"},
		{"only fences", "```\n```", ""},
		{"internal fence kept", "const s = \"```\";", "const s = \"```\";"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, StripFences(tt.reply))
		})
	}
}
