package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gaborage/restdoc/model"
	"github.com/gaborage/restdoc/tags"
)

func updateOperation() *model.Operation {
	return &model.Operation{
		Method:         "POST",
		Path:           "/items/{id: [0-9]+}",
		Consumes:       []string{"application/json"},
		Produces:       []string{"application/json"},
		RequestHeaders: []tags.Header{{Name: "X-Trace"}},
		Params: []model.Parameter{
			{Name: "id", Source: model.SourcePath, Type: model.Ref(builtin("int64"))},
			{Name: "page-size", Source: model.SourceQuery, Type: model.Ref(builtin("int"))},
			{Name: "X-Tenant", Source: model.SourceHeader, Type: model.Ref(builtin("string"))},
			{Name: "session", Source: model.SourceCookie, Type: model.Ref(builtin("string"))},
			{Name: "item", Source: model.SourceBody, Type: model.Ref(named("Widget"))},
		},
	}
}

func TestHTTPExample(t *testing.T) {
	want := "POST /items/{id}?page-size={page-size} HTTP/1.1\n" +
		"Accept: application/json\n" +
		"X-Trace: {X-Trace}\n" +
		"X-Tenant: {X-Tenant}\n" +
		"Cookie: session={session}\n" +
		"Content-Type: application/json\n" +
		"\n" +
		"<Widget>\n"
	assert.Equal(t, want, examples{}.http(updateOperation()))
}

func TestHTTPExampleForm(t *testing.T) {
	op := &model.Operation{
		Method: "POST",
		Path:   "/login",
		Params: []model.Parameter{
			{Name: "user", Source: model.SourceForm},
			{Name: "pass", Source: model.SourceForm},
			{Name: "lang", Source: model.SourceMatrix},
		},
	}
	want := "POST /login;lang={lang} HTTP/1.1\n" +
		"Content-Type: application/x-www-form-urlencoded\n" +
		"\n" +
		"user={user}&pass={pass}\n"
	assert.Equal(t, want, examples{}.http(op))
}

func TestHTTPExampleDeclaredWins(t *testing.T) {
	op := updateOperation()
	op.Example = "POST /items/7 HTTP/1.1\n\n{\"name\":\"bolt\"}"

	assert.Equal(t, op.Example, examples{}.http(op))
	assert.Empty(t, examples{disableHTTP: true}.http(op))
}

func TestJSExample(t *testing.T) {
	want := "const response = await fetch(`/items/${encodeURIComponent(id)}?page-size=${encodeURIComponent(pageSize)}`, {\n" +
		"  method: \"POST\",\n" +
		"  headers: {\n" +
		"    \"Accept\": \"application/json\",\n" +
		"    \"X-Trace\": XTrace,\n" +
		"    \"X-Tenant\": XTenant,\n" +
		"    \"Content-Type\": \"application/json\",\n" +
		"  },\n" +
		"  credentials: \"include\",\n" +
		"  body: JSON.stringify(item),\n" +
		"});\n"
	assert.Equal(t, want, examples{}.js(updateOperation()))
	assert.Empty(t, examples{disableJS: true}.js(updateOperation()))
}

func TestJSExampleMinimal(t *testing.T) {
	op := &model.Operation{Method: "DELETE", Path: "/items/{id}"}
	want := "const response = await fetch(`/items/${encodeURIComponent(id)}`, {\n" +
		"  method: \"DELETE\",\n" +
		"});\n"
	assert.Equal(t, want, examples{}.js(op))
}

func TestJSIdent(t *testing.T) {
	tests := map[string]string{
		"id":           "id",
		"page-size":    "pageSize",
		"X-Request-Id": "XRequestId",
		"2fa":          "_2fa",
		"--":           "value",
		"a b":          "aB",
	}
	for in, want := range tests {
		assert.Equal(t, want, jsIdent(in), in)
	}
}

func TestSubstitute(t *testing.T) {
	upper := func(s string) string { return "<" + s + ">" }
	assert.Equal(t, "/a/<x>/b/<y>", substitute("/a/{x}/b/{ y : [0-9]+ }", upper))
	assert.Equal(t, "/plain", substitute("/plain", upper))
	assert.Equal(t, "/open/{x", substitute("/open/{x", upper))
}
