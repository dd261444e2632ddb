package openapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const usersDoc = `
openapi: 3.0.0
info:
  title: Users API
  version: "1.0"
security:
  - bearerAuth: []
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
  schemas:
    User:
      type: object
      properties:
        id:
          type: integer
        name:
          type: string
      required: [id, name]
paths:
  /users:
    post:
      summary: Create user
      requestBody:
        description: The user to create
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/User'
      responses:
        "201":
          description: Created
    get:
      tags: [Users]
      summary: List users
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/User'
  /users/{id}:
    parameters:
      - name: id
        in: path
        required: true
        description: "User id\nsecond line"
    get:
      tags: [Users]
      summary: Get user
      security: []
      responses:
        "200":
          description: OK
  /ping:
    get:
      summary: Ping
      security:
        - {}
      responses:
        "204":
          description: No content
`

func TestBuildIndexOrder(t *testing.T) {
	ops := BuildIndex(mustParse(t, usersDoc)).Operations()
	require.Len(t, ops, 4)

	var got [][2]string
	for _, op := range ops {
		got = append(got, [2]string{op.Method, op.Path})
	}
	// Paths in document order, methods in the fixed order within a path
	// item even when the document declares post first.
	require.Equal(t, [][2]string{
		{"GET", "/users"},
		{"POST", "/users"},
		{"GET", "/users/{id}"},
		{"GET", "/ping"},
	}, got)
}

func TestFindExactAndTemplate(t *testing.T) {
	idx := BuildIndex(mustParse(t, usersDoc))

	op, ok := idx.Find("get", "/users")
	require.True(t, ok)
	require.Equal(t, "GET", op.Method)
	require.Equal(t, "/users", op.Path)

	op, ok = idx.Find("get", "/users/42")
	require.True(t, ok, "literal path should match the {id} template")
	require.Equal(t, "/users/{id}", op.Path)
	require.Equal(t, []string{"Users"}, op.Tags)

	op, ok = idx.Find("GET", "/users/42")
	require.True(t, ok, "method comparison is case-insensitive")
	require.Equal(t, "/users/{id}", op.Path)

	_, ok = idx.Find("get", "/users/42/posts")
	require.False(t, ok, "segment counts must align")

	_, ok = idx.Find("delete", "/users")
	require.False(t, ok)
}

func TestFindPrefersExactOverTemplate(t *testing.T) {
	idx := BuildIndex(mustParse(t, `
openapi: 3.0.0
paths:
  /files/{name}:
    get:
      summary: One file
  /files/latest:
    get:
      summary: Latest file
`))
	op, ok := idx.Find("get", "/files/latest")
	require.True(t, ok)
	require.Equal(t, "/files/latest", op.Path, "a later exact match beats an earlier template")

	op, ok = idx.Find("get", "/files/report.csv")
	require.True(t, ok)
	require.Equal(t, "/files/{name}", op.Path)
}

func TestFindFirstTemplateWins(t *testing.T) {
	idx := BuildIndex(mustParse(t, `
openapi: 3.0.0
paths:
  /things/{a}:
    get:
      summary: First
  /things/{b}:
    get:
      summary: Second
`))
	op, ok := idx.Find("get", "/things/1")
	require.True(t, ok)
	require.Equal(t, "/things/{a}", op.Path)
}

func TestFindOperationNotFound(t *testing.T) {
	doc := mustParse(t, usersDoc)

	op, err := FindOperation(doc, "post", "/users")
	require.NoError(t, err)
	require.Equal(t, "POST", op.Method)

	_, err = FindOperation(doc, "get", "/nope")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrOperationNotFound))
	require.Contains(t, err.Error(), "GET /nope")
}

func TestNeedsAuth(t *testing.T) {
	idx := BuildIndex(mustParse(t, usersDoc))

	tests := []struct {
		path   string
		method string
		want   bool
	}{
		{path: "/users", method: "get", want: true},       // inherits the global requirement
		{path: "/users", method: "post", want: true},      // inherits the global requirement
		{path: "/users/{id}", method: "get", want: false}, // explicit empty list disables it
		{path: "/ping", method: "get", want: false},       // empty requirement grants anonymous access
	}
	for _, tt := range tests {
		op, ok := idx.Find(tt.method, tt.path)
		require.True(t, ok, "%s %s", tt.method, tt.path)
		require.Equal(t, tt.want, op.NeedsAuth(), "%s %s", tt.method, tt.path)
	}
}

func TestNeedsAuthWithoutGlobal(t *testing.T) {
	idx := BuildIndex(mustParse(t, `
openapi: 3.0.0
paths:
  /open:
    get:
      summary: Open
  /locked:
    get:
      summary: Locked
      security:
        - apiKey: []
`))
	op, _ := idx.Find("get", "/open")
	require.False(t, op.NeedsAuth())

	op, _ = idx.Find("get", "/locked")
	require.True(t, op.NeedsAuth())
}

func TestHasBody(t *testing.T) {
	idx := BuildIndex(mustParse(t, usersDoc))

	op, _ := idx.Find("post", "/users")
	require.True(t, op.HasBody())
	require.NotNil(t, op.RequestBody)
	require.Equal(t, "The user to create", op.RequestBody.Description)
	require.True(t, op.RequestBody.Required)
	require.Equal(t, KindObject, op.RequestBody.Schema.Kind)

	op, _ = idx.Find("get", "/users")
	require.False(t, op.HasBody())
	require.Nil(t, op.RequestBody)
}

func TestHasBodyRequiresBodyMethod(t *testing.T) {
	// A body declared on a GET does not count.
	idx := BuildIndex(mustParse(t, `
openapi: 3.0.0
paths:
  /odd:
    get:
      summary: Odd
      requestBody:
        content:
          application/json:
            schema:
              type: object
  /empty:
    post:
      summary: Empty body object
      requestBody: {}
`))
	op, _ := idx.Find("get", "/odd")
	require.False(t, op.HasBody())

	op, _ = idx.Find("post", "/empty")
	require.False(t, op.HasBody(), "an empty requestBody object is not a body")
}

func TestOAS2BodyParameter(t *testing.T) {
	idx := BuildIndex(mustParse(t, `
swagger: "2.0"
definitions:
  Pet:
    type: object
    properties:
      name:
        type: string
paths:
  /pets:
    post:
      summary: Add pet
      parameters:
        - name: body
          in: body
          required: true
          description: The pet to add
          schema:
            $ref: '#/definitions/Pet'
        - name: verbose
          in: query
          description: More output
      responses:
        "200":
          description: OK
          schema:
            $ref: '#/definitions/Pet'
`))
	op, ok := idx.Find("post", "/pets")
	require.True(t, ok)

	require.True(t, op.HasBody())
	require.NotNil(t, op.RequestBody)
	require.Equal(t, "The pet to add", op.RequestBody.Description)
	require.Equal(t, KindObject, op.RequestBody.Schema.Kind)

	// The body parameter folds into the request body, not the list.
	require.Len(t, op.Parameters, 1)
	require.Equal(t, "verbose", op.Parameters[0].Name)
	require.Equal(t, "query", op.Parameters[0].In)

	// OAS2 responses carry their schema directly.
	require.Len(t, op.Responses, 1)
	require.NotNil(t, op.Responses[0].Schema)
	require.Equal(t, KindObject, op.Responses[0].Schema.Kind)
}

func TestParameterMerging(t *testing.T) {
	idx := BuildIndex(mustParse(t, usersDoc))
	op, _ := idx.Find("get", "/users/{id}")

	require.Len(t, op.Parameters, 1)
	p := op.Parameters[0]
	require.Equal(t, "id", p.Name)
	require.Equal(t, "path", p.In)
	require.True(t, p.Required)
	require.Equal(t, "User id\nsecond line", p.Description)
}

func TestParameterOperationOverride(t *testing.T) {
	idx := BuildIndex(mustParse(t, `
openapi: 3.0.0
paths:
  /items/{id}:
    parameters:
      - name: id
        in: path
        required: true
        description: shared
    get:
      summary: Get item
      parameters:
        - name: id
          in: path
          required: true
          description: overridden
        - name: expand
          in: query
`))
	op, _ := idx.Find("get", "/items/{id}")
	require.Len(t, op.Parameters, 2)
	require.Equal(t, "overridden", op.Parameters[0].Description)
	require.Equal(t, "expand", op.Parameters[1].Name)
	require.Equal(t, "query", op.Parameters[1].In, "missing in defaults to query")
}

func TestResponseMediaPreference(t *testing.T) {
	ops := BuildIndex(mustParse(t, `
openapi: 3.0.0
paths:
  /a:
    get:
      summary: Both media types
      responses:
        "200":
          description: OK
          content:
            application/json; charset=utf-8:
              schema:
                type: integer
            application/json:
              schema:
                type: string
  /b:
    get:
      summary: Charset only
      responses:
        "200":
          description: OK
          content:
            application/json; charset=utf-8:
              schema:
                type: integer
  /c:
    get:
      summary: Plain json present but schemaless
      responses:
        "200":
          description: OK
          content:
            application/json: {}
            application/json; charset=utf-8:
              schema:
                type: integer
  /d:
    get:
      summary: No json media
      responses:
        "200":
          description: OK
          content:
            text/plain:
              schema:
                type: string
`)).Operations()

	require.Equal(t, "string", firstResponseSchema(t, ops, 0).Type, "exact media type wins")
	require.Equal(t, "integer", firstResponseSchema(t, ops, 1).Type, "charset variant is the fallback")
	require.Nil(t, ops[2].Responses[0].Schema, "the first json media type present settles it")
	require.Nil(t, ops[3].Responses[0].Schema)
}

func firstResponseSchema(t *testing.T, ops []*Operation, i int) *ResolvedSchema {
	t.Helper()
	require.NotNil(t, ops[i].Responses[0].Schema)
	return ops[i].Responses[0].Schema
}

func TestRequestBodyMediaFallback(t *testing.T) {
	// Unlike responses, a schemaless json media type does not stop the
	// request body search.
	idx := BuildIndex(mustParse(t, `
openapi: 3.0.0
paths:
  /a:
    post:
      summary: Fallback
      requestBody:
        content:
          application/json: {}
          application/json; charset=utf-8:
            schema:
              type: object
              properties:
                x:
                  type: integer
`))
	op, _ := idx.Find("post", "/a")
	require.NotNil(t, op.RequestBody)
	require.Equal(t, KindObject, op.RequestBody.Schema.Kind)
}

func TestResponsesKeepDocumentOrderAndScalars(t *testing.T) {
	idx := BuildIndex(mustParse(t, `
openapi: 3.0.0
paths:
  /a:
    get:
      summary: A
      responses:
        "404":
          description: Missing
        "200":
          description: OK
        "500": oops
`))
	op, _ := idx.Find("get", "/a")
	require.Len(t, op.Responses, 3)
	require.Equal(t, "404", op.Responses[0].Code)
	require.Equal(t, "200", op.Responses[1].Code)
	require.Equal(t, "500", op.Responses[2].Code)
	require.Equal(t, "oops", op.Responses[2].Description)
}

func TestPrimaryResponseSchema(t *testing.T) {
	idx := BuildIndex(mustParse(t, `
openapi: 3.0.0
paths:
  /a:
    get:
      summary: Error first
      responses:
        "404":
          description: Missing
          content:
            application/json:
              schema:
                type: string
        "200":
          description: OK
          content:
            application/json:
              schema:
                type: integer
  /b:
    get:
      summary: Only an error body
      responses:
        "404":
          description: Missing
          content:
            application/json:
              schema:
                type: string
  /c:
    get:
      summary: No bodies
      responses:
        "204":
          description: Empty
`))
	ops := idx.Operations()

	require.Equal(t, "integer", ops[0].PrimaryResponseSchema().Type, "2xx preferred over an earlier error body")
	require.Equal(t, "string", ops[1].PrimaryResponseSchema().Type, "first body wins when no 2xx has one")
	require.Nil(t, ops[2].PrimaryResponseSchema())
}
