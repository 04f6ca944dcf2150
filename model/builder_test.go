package model

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/diagnostic"
	"github.com/gaborage/restdoc/docerrors"
	"github.com/gaborage/restdoc/tags"
)

const testPkg = "example.com/shop/api"

func tid(name string) declaration.TypeID {
	return declaration.TypeID(testPkg + "." + name)
}

func named(name string, args ...declaration.TypeExpr) declaration.TypeExpr {
	return declaration.Named(tid(name), args...)
}

func ann(name string, value ...string) declaration.Annotation {
	a := declaration.Annotation{Name: name}
	if len(value) > 0 {
		a.Value = value[0]
	}
	return a
}

func resource(name, path string, methods ...declaration.Method) *declaration.Type {
	t := &declaration.Type{ID: tid(name), Kind: declaration.KindStruct, Methods: methods}
	if path != "" {
		t.Annotations = declaration.Annotations{ann(declaration.AnnotationPath, path)}
	}
	return t
}

func method(name string, annotations ...declaration.Annotation) declaration.Method {
	return declaration.Method{
		Name:        name,
		Annotations: annotations,
		Position:    declaration.Position{File: "api.go", Line: 1},
	}
}

func withResult(m declaration.Method, result declaration.TypeExpr) declaration.Method {
	m.Result = &result
	return m
}

func withDoc(m declaration.Method, doc string) declaration.Method {
	m.Doc = doc
	return m
}

func withParams(m declaration.Method, params ...declaration.Param) declaration.Method {
	m.Params = params
	return m
}

func param(name string, typ declaration.TypeExpr, annotations ...declaration.Annotation) declaration.Param {
	return declaration.Param{Name: name, Type: typ, Annotations: annotations}
}

func build(t *testing.T, opts Options, types ...*declaration.Type) (*Application, *diagnostic.Collector) {
	t.Helper()
	rep := diagnostic.NewCollector(nil)
	app, err := Build(declaration.MustCatalog(types...), opts, tags.Default(), rep)
	require.NoError(t, err)
	return app, rep
}

func paths(app *Application) []string {
	var out []string
	for _, r := range app.Resources() {
		out = append(out, r.Path)
	}
	return out
}

func operationKeys(app *Application) []string {
	var out []string
	for _, op := range app.Operations() {
		out = append(out, op.Method+" "+op.Path)
	}
	return out
}

func requireSingleWarning(t *testing.T, rep *diagnostic.Collector, kind diagnostic.Kind) diagnostic.Diagnostic {
	t.Helper()
	diags := rep.Diagnostics()
	require.Len(t, diags, 1, "warnings: %v", diags)
	assert.Equal(t, kind, diags[0].Kind)
	return diags[0]
}

var stringType = declaration.Named("string")

func itemsFixture() []*declaration.Type {
	items := resource("ItemsResource", "/items",
		withResult(method("List", ann("GET")), declaration.SliceOf(named("Widget"))),
		withResult(method("Item", ann(declaration.AnnotationPath, "{id}")), named("ItemResource")),
	)
	item := resource("ItemResource", "",
		withParams(
			withResult(method("Get", ann("GET")), named("Widget")),
			param("id", stringType, ann(declaration.AnnotationPathParam, "id")),
		),
	)
	widget := &declaration.Type{ID: tid("Widget"), Kind: declaration.KindStruct}
	return []*declaration.Type{items, item, widget}
}

func TestBuildSubResourceLocator(t *testing.T) {
	app, rep := build(t, Options{}, itemsFixture()...)

	assert.Zero(t, rep.Count())
	assert.Equal(t, []string{"/", "/items", "/items/{id}"}, paths(app))

	items := app.Root.Children[0]
	assert.Equal(t, "/items", items.Template)
	assert.Equal(t, tid("ItemsResource"), items.DeclaringType)
	assert.Same(t, app.Root, items.Parent())

	item := items.Children[0]
	assert.Equal(t, "{id}", item.Template)
	assert.Equal(t, "/items/{id}", item.Path)
	assert.Equal(t, tid("ItemResource"), item.DeclaringType)
	require.Len(t, item.Operations, 1)

	get := item.Operations[0]
	assert.Equal(t, "GET", get.Method)
	assert.Equal(t, "ItemResource.Get", get.Declaration)
	require.Len(t, get.Params, 1)
	assert.Equal(t, Parameter{Name: "id", Source: SourcePath, Type: Ref(stringType)}, get.Params[0])
	require.NotNil(t, get.Response)
	assert.Equal(t, "Widget", get.Response.Unwrap().String())
}

func TestBuildEffectivePathIsAncestorConcatenation(t *testing.T) {
	app, _ := build(t, Options{ContextPath: "/api/"}, itemsFixture()...)

	for _, r := range app.Resources() {
		var templates []string
		for n := r; n != nil; n = n.Parent() {
			templates = append([]string{n.Template}, templates...)
		}
		assert.Equal(t, JoinPath(templates...), r.Path)
	}
	assert.Equal(t, []string{"/api", "/api/items", "/api/items/{id}"}, paths(app))
	assert.Equal(t, "/api", app.ContextPath)
}

func TestBuildResponseHeadersInOrder(t *testing.T) {
	doc := "Lists items.\n@responseheader X-Rate-Limit — requests per minute\n@responseheader X-Request-Id — correlation id"
	app, rep := build(t, Options{},
		resource("ItemsResource", "/items", withDoc(method("List", ann("GET")), doc)),
	)

	assert.Zero(t, rep.Count())
	ops := app.Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, []tags.Header{
		{Name: "X-Rate-Limit", Description: "requests per minute"},
		{Name: "X-Request-Id", Description: "correlation id"},
	}, ops[0].ResponseHeaders)
	assert.Equal(t, "Lists items.", ops[0].Doc)
}

func TestBuildTypeHeadersArePrepended(t *testing.T) {
	items := resource("ItemsResource", "/items",
		withDoc(method("List", ann("GET")), "@requestheader X-Tenant — tenant"),
		method("Count", ann("HEAD")),
	)
	items.Doc = "Items.\n@requestheader Authorization — bearer token"

	app, _ := build(t, Options{}, items)
	ops := app.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, []tags.Header{
		{Name: "Authorization", Description: "bearer token"},
		{Name: "X-Tenant", Description: "tenant"},
	}, ops[0].RequestHeaders)
	assert.Equal(t, []tags.Header{{Name: "Authorization", Description: "bearer token"}}, ops[1].RequestHeaders)
	assert.Equal(t, "Items.", app.Root.Children[0].Doc)
}

func TestBuildPathExcludeIsSubtreeAbsolute(t *testing.T) {
	internal := resource("InternalResource", "/internal",
		method("Status", ann("GET")),
		withResult(method("Debug", ann(declaration.AnnotationPath, "debug")), named("DebugResource")),
	)
	debug := resource("DebugResource", "",
		method("Dump", ann("GET")),
		withResult(method("Deeper", ann(declaration.AnnotationPath, "deeper")), named("DeeperResource")),
	)
	deeper := resource("DeeperResource", "", method("Get", ann("GET")))
	public := resource("PublicResource", "/public/items", method("List", ann("GET")))
	direct := resource("DirectDebug", "/internal/debug/direct", method("Get", ann("GET")))

	opts := Options{PathExclude: []*regexp.Regexp{regexp.MustCompile(`^/internal/.*`)}}
	app, rep := build(t, opts, internal, debug, deeper, public, direct)

	assert.Zero(t, rep.Count())
	assert.Equal(t, []string{"GET /internal", "GET /public/items"}, operationKeys(app))
	assert.Nil(t, app.Root.Find("/internal/debug"))
	assert.NotNil(t, app.Root.Find("/public/items"))

	again, _ := build(t, opts, internal, debug, deeper, public, direct)
	assert.Equal(t, operationKeys(app), operationKeys(again), "filtering is idempotent")
}

func TestBuildPathExcludeOnMethodSubPath(t *testing.T) {
	items := resource("ItemsResource", "/items",
		method("List", ann("GET")),
		method("Reindex", ann("POST"), ann(declaration.AnnotationPath, "admin/reindex")),
	)
	opts := Options{PathExclude: []*regexp.Regexp{regexp.MustCompile(`/admin(/|$)`)}}
	app, _ := build(t, opts, items)
	assert.Equal(t, []string{"GET /items"}, operationKeys(app))
	assert.Equal(t, []string{"/", "/items"}, paths(app))
}

func TestBuildMatchingResourcesOnly(t *testing.T) {
	items := resource("ItemsResource", "/items",
		method("List", ann("GET")),
		withResult(method("Item", ann(declaration.AnnotationPath, "{id}")), named("ItemResource")),
	)
	item := resource("ItemResource", "", method("Get", ann("GET")))
	orders := resource("OrdersResource", "/orders", method("List", ann("GET")))

	opts := Options{MatchingResources: regexp.MustCompile(`\{id\}$`)}
	app, _ := build(t, opts, items, item, orders)

	assert.Equal(t, []string{"GET /items/{id}"}, operationKeys(app))
	assert.Equal(t, []string{"/", "/items", "/items/{id}"}, paths(app), "empty branches are removed, ancestors of matches kept")
}

func TestBuildExcludeInheritedWithIncludeOverride(t *testing.T) {
	items := resource("ItemsResource", "/items",
		method("List", ann("GET")),
		withDoc(method("Create", ann("POST")), "@include"),
		withResult(method("Item", ann(declaration.AnnotationPath, "{id}")), named("ItemResource")),
	)
	items.Doc = "Hidden.\n@exclude"
	item := resource("ItemResource", "", method("Get", ann("GET")))

	app, _ := build(t, Options{}, items, item)
	assert.Equal(t, []string{"POST /items"}, operationKeys(app))
	assert.Equal(t, InclusionIncluded, app.Operations()[0].Inclusion)
	assert.Nil(t, app.Root.Find("/items/{id}"), "excluded descendant without content is removed")
}

func TestBuildExcludeWinsOverIncludeOnSameDeclaration(t *testing.T) {
	app, _ := build(t, Options{},
		resource("ItemsResource", "/items",
			withDoc(method("List", ann("GET")), "@include\n@exclude"),
			method("Count", ann("HEAD")),
		),
	)
	assert.Equal(t, []string{"HEAD /items"}, operationKeys(app))
	assert.Equal(t, InclusionInherited, app.Operations()[0].Inclusion)
}

func TestBuildExcludedResourceIsRemoved(t *testing.T) {
	hidden := resource("HiddenResource", "/hidden", method("Get", ann("GET")))
	hidden.Doc = "@exclude"
	app, _ := build(t, Options{}, hidden, resource("ShownResource", "/shown", method("Get", ann("GET"))))
	assert.Equal(t, []string{"/", "/shown"}, paths(app))
}

func TestBuildMergesEqualTemplates(t *testing.T) {
	app, _ := build(t, Options{},
		resource("ItemsRead", "/items", method("List", ann("GET"))),
		resource("ItemsWrite", "items/", method("Create", ann("POST"))),
	)

	require.Len(t, app.Root.Children, 1)
	node := app.Root.Children[0]
	assert.Equal(t, tid("ItemsRead"), node.DeclaringType)
	assert.Equal(t, []string{"GET /items", "POST /items"}, operationKeys(app))
}

func TestBuildMethodSubPathsShareNode(t *testing.T) {
	app, _ := build(t, Options{},
		resource("ItemsResource", "/items",
			withParams(method("Get", ann("GET"), ann(declaration.AnnotationPath, "{id}")),
				param("id", stringType, ann(declaration.AnnotationPathParam, "id"))),
			withParams(method("Delete", ann("DELETE"), ann(declaration.AnnotationPath, "/{id}")),
				param("id", stringType, ann(declaration.AnnotationPathParam, "id"))),
		),
	)
	assert.Equal(t, []string{"/", "/items", "/items/{id}"}, paths(app))
	assert.Len(t, app.Root.Find("/items/{id}").Operations, 2)
}

func TestBuildMediaTypesInherited(t *testing.T) {
	items := resource("ItemsResource", "/items",
		method("List", ann("GET")),
		method("Create", ann("POST"), ann(declaration.AnnotationConsumes, "application/json, application/xml")),
	)
	items.Annotations = append(items.Annotations,
		ann(declaration.AnnotationProduces, "application/json"),
		ann(declaration.AnnotationConsumes, "text/plain"),
	)

	app, _ := build(t, Options{}, items)
	ops := app.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, []string{"text/plain"}, ops[0].Consumes)
	assert.Equal(t, []string{"application/json"}, ops[0].Produces)
	assert.Equal(t, []string{"application/json", "application/xml"}, ops[1].Consumes)
}

func TestBuildParameters(t *testing.T) {
	m := withParams(method("Search", ann("GET"), ann(declaration.AnnotationPath, "{shop}/search")),
		param("ctx", named("Context"), ann(declaration.AnnotationContext)),
		param("shop", stringType, ann(declaration.AnnotationPathParam, "shop")),
		param("q", stringType, ann(declaration.AnnotationQueryParam, "q"), ann(declaration.AnnotationDefaultValue, "*")),
		param("tenant", stringType, ann(declaration.AnnotationHeaderParam, "X-Tenant")),
		param("session", stringType, ann(declaration.AnnotationCookieParam)),
		param("filter", named("Filter")),
	)
	app, rep := build(t, Options{}, resource("ItemsResource", "/items", m))

	assert.Zero(t, rep.Count())
	op := app.Operations()[0]
	assert.Equal(t, []Parameter{
		{Name: "shop", Source: SourcePath, Type: Ref(stringType)},
		{Name: "q", Source: SourceQuery, Type: Ref(stringType), Default: "*"},
		{Name: "X-Tenant", Source: SourceHeader, Type: Ref(stringType)},
		{Name: "session", Source: SourceCookie, Type: Ref(stringType)},
		{Name: "filter", Source: SourceBody, Type: Ref(named("Filter"))},
	}, op.Params)

	body, ok := op.Body()
	assert.True(t, ok)
	assert.Equal(t, "filter", body.Name)
}

func TestBuildInconsistentOperations(t *testing.T) {
	tests := []struct {
		name    string
		method  declaration.Method
		message string
	}{
		{
			name:    "multiple_http_methods",
			method:  method("Both", ann("GET"), ann("POST")),
			message: "multiple HTTP methods GET, POST",
		},
		{
			name: "several_sources",
			method: withParams(method("Get", ann("GET")),
				param("id", stringType, ann(declaration.AnnotationQueryParam, "id"), ann(declaration.AnnotationHeaderParam, "id"))),
			message: "several source annotations",
		},
		{
			name: "two_bodies",
			method: withParams(method("Create", ann("POST")),
				param("a", named("Widget")), param("b", named("Widget"))),
			message: "more than one body parameter",
		},
		{
			name: "path_param_missing_from_template",
			method: withParams(method("Get", ann("GET")),
				param("id", stringType, ann(declaration.AnnotationPathParam, "id"))),
			message: `path parameter "id" is not in template /items`,
		},
		{
			name:    "return_wrapped_without_type_argument",
			method:  withDoc(withResult(method("Get", ann("GET")), named("Widget")), "@returnWrapped"),
			message: "exactly one inner type",
		},
		{
			name:    "return_wrapped_without_result",
			method:  withDoc(method("Delete", ann("DELETE")), "@returnWrapped"),
			message: "method has no result",
		},
		{
			name:    "input_wrapped_without_body",
			method:  withDoc(method("Get", ann("GET")), "@inputWrapped"),
			message: "method has no body parameter",
		},
		{
			name:    "return_wrapped_unknown_type",
			method:  withDoc(withResult(method("Get", ann("GET")), named("Response")), "@returnWrapped Nope"),
			message: "unknown type Nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, rep := build(t, Options{},
				resource("ItemsResource", "/items", tt.method, method("Ok", ann("HEAD"))),
				&declaration.Type{ID: tid("Widget"), Kind: declaration.KindStruct},
			)

			d := requireSingleWarning(t, rep, diagnostic.KindInconsistentOperation)
			assert.ErrorIs(t, d.Err, docerrors.ErrInconsistentOperation)
			assert.Contains(t, d.Err.Error(), tt.message)
			assert.Equal(t, "ItemsResource."+tt.method.Name, d.Declaration)
			assert.Equal(t, []string{"HEAD /items"}, operationKeys(app), "operation dropped, resource kept")
		})
	}
}

func TestBuildLocatorToNonResourceIsIgnored(t *testing.T) {
	app, rep := build(t, Options{},
		resource("ItemsResource", "/items",
			withResult(method("Widget", ann(declaration.AnnotationPath, "w")), named("Widget")),
			method("List", ann("GET")),
		),
		&declaration.Type{ID: tid("Widget"), Kind: declaration.KindStruct},
	)

	d := requireSingleWarning(t, rep, diagnostic.KindInconsistentOperation)
	assert.Contains(t, d.Err.Error(), "not a resource")
	assert.Equal(t, []string{"/", "/items"}, paths(app))
}

func TestBuildRecursiveLocatorIsCut(t *testing.T) {
	app, rep := build(t, Options{},
		resource("NodeResource", "/nodes",
			method("Get", ann("GET")),
			withResult(method("Child", ann(declaration.AnnotationPath, "child")), named("ChildResource")),
		),
		resource("ChildResource", "",
			method("Get", ann("GET")),
			withResult(method("Parent", ann(declaration.AnnotationPath, "parent")), named("NodeResource")),
		),
	)

	d := requireSingleWarning(t, rep, diagnostic.KindInconsistentOperation)
	assert.Contains(t, d.Err.Error(), "recursive sub-resource locator")
	assert.Equal(t, []string{"GET /nodes", "GET /nodes/child"}, operationKeys(app))
}

func TestBuildWrapping(t *testing.T) {
	envelope := &declaration.Type{ID: tid("Envelope"), Kind: declaration.KindStruct, TypeParams: []string{"T"}}
	widget := &declaration.Type{ID: tid("Widget"), Kind: declaration.KindStruct}
	items := resource("ItemsResource", "/items",
		withDoc(withResult(method("List", ann("GET")), named("Envelope", named("Widget"))), "@returnWrapped"),
		withDoc(withResult(method("Raw", ann("GET"), ann(declaration.AnnotationPath, "raw")), named("Response")), "@returnWrapped Widget"),
		withDoc(withParams(method("Create", ann("POST")), param("in", named("Envelope", named("Widget")))), "@inputWrapped"),
	)

	app, rep := build(t, Options{}, items, envelope, widget)
	assert.Zero(t, rep.Count())

	ops := app.Operations()
	require.Len(t, ops, 3)
	assert.True(t, ops[0].Response.Wrapped)
	assert.Equal(t, named("Widget"), ops[0].Response.Unwrap())
	assert.Equal(t, named("Widget"), ops[2].Response.Unwrap(), "explicit payload type")

	body, ok := ops[1].Body()
	require.True(t, ok)
	assert.Equal(t, named("Widget"), body.Type.Unwrap())
}

func TestBuildMalformedDirectiveKeepsOperation(t *testing.T) {
	app, rep := build(t, Options{},
		resource("ItemsResource", "/items",
			withDoc(method("List", ann("GET")), "@responseheader\n@responseheader ETag"),
		),
	)
	requireSingleWarning(t, rep, diagnostic.KindMalformedDirective)
	require.Len(t, app.Operations(), 1)
	assert.Equal(t, []tags.Header{{Name: "ETag"}}, app.Operations()[0].ResponseHeaders)
}

func TestBuildDisableHTTPExample(t *testing.T) {
	items := resource("ItemsResource", "/items", withDoc(method("List", ann("GET")), "@HTTP\nGET /items"))

	app, _ := build(t, Options{}, items)
	assert.Equal(t, "GET /items", app.Operations()[0].Example)

	app, _ = build(t, Options{Tags: tags.Options{DisableHTTPExample: true}}, items)
	assert.Empty(t, app.Operations()[0].Example)
}

func TestBuildIsDeterministic(t *testing.T) {
	fixture := itemsFixture()
	fixture = append(fixture, resource("OrdersResource", "/orders", method("List", ann("GET")), method("Create", ann("POST"))))

	first, _ := build(t, Options{}, fixture...)
	second, _ := build(t, Options{}, fixture...)
	assert.Equal(t, paths(first), paths(second))
	assert.Equal(t, operationKeys(first), operationKeys(second))
	assert.Equal(t, []string{"/", "/items", "/items/{id}", "/orders"}, paths(first))
}

func TestBuildRequiresSource(t *testing.T) {
	_, err := Build(nil, Options{}, nil, nil)
	assert.Error(t, err)
}

func TestIsResourceBearing(t *testing.T) {
	assert.True(t, IsResourceBearing(resource("A", "/a")))
	assert.True(t, IsResourceBearing(resource("B", "", method("Get", ann("GET")))))
	assert.True(t, IsResourceBearing(resource("C", "", method("Sub", ann(declaration.AnnotationPath, "x")))))
	assert.False(t, IsResourceBearing(&declaration.Type{ID: tid("Widget")}))
}
