package analyzer

import (
	"go/ast"
	"slices"
	"strings"

	"github.com/gaborage/restdoc/declaration"
)

const directivePrefix = "//rest:"

// directive is one //rest: comment line.
type directive struct {
	keyword string
	args    string
	pos     declaration.Position
}

// paramDirectives maps parameter directives to their annotation.
var paramDirectives = map[string]string{
	"pathparam":   declaration.AnnotationPathParam,
	"queryparam":  declaration.AnnotationQueryParam,
	"headerparam": declaration.AnnotationHeaderParam,
	"formparam":   declaration.AnnotationFormParam,
	"cookieparam": declaration.AnnotationCookieParam,
	"matrixparam": declaration.AnnotationMatrixParam,
}

// splitComment separates the documentation text of a comment group from its
// //rest: directives. One leading space of each line comment is removed; the
// rest of the indentation is kept so verbatim blocks survive.
func (a *SourceAnalyzer) splitComment(group *ast.CommentGroup) (doc string, directives []directive) {
	if group == nil {
		return "", nil
	}

	var lines []string
	for _, c := range group.List {
		if strings.HasPrefix(c.Text, directivePrefix) {
			keyword, args, _ := strings.Cut(strings.TrimPrefix(c.Text, directivePrefix), " ")
			directives = append(directives, directive{
				keyword: strings.ToLower(strings.TrimSpace(keyword)),
				args:    strings.TrimSpace(args),
				pos:     a.position(c.Pos()),
			})
			continue
		}
		if text, ok := strings.CutPrefix(c.Text, "//"); ok {
			lines = append(lines, strings.TrimPrefix(text, " "))
			continue
		}
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(c.Text, "/*"), "*/"))
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimPrefix(strings.TrimLeft(line, " \t"), "* ")
			lines = append(lines, strings.TrimRight(line, " \t"))
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), directives
}

// typeAnnotations applies the directives accepted on a type declaration.
func (a *SourceAnalyzer) typeAnnotations(name string, directives []directive) declaration.Annotations {
	var anns declaration.Annotations
	for _, d := range directives {
		switch d.keyword {
		case "path":
			anns = append(anns, declaration.Annotation{Name: declaration.AnnotationPath, Value: d.args})
		case "produces":
			anns = append(anns, declaration.Annotation{Name: declaration.AnnotationProduces, Value: mediaList(d.args)})
		case "consumes":
			anns = append(anns, declaration.Annotation{Name: declaration.AnnotationConsumes, Value: mediaList(d.args)})
		default:
			a.malformed(d, name, "unsupported on a type")
		}
	}
	return anns
}

// methodAnnotations applies the directives of a method: annotations of the
// method itself, and parameter annotations attached to the matching params.
func (a *SourceAnalyzer) methodAnnotations(name string, m *declaration.Method, directives []directive) {
	for _, d := range directives {
		verb := strings.ToUpper(d.keyword)
		switch {
		case slices.Contains(declaration.HTTPMethods, verb):
			m.Annotations = append(m.Annotations, declaration.Annotation{Name: verb})
		case d.keyword == "path":
			m.Annotations = append(m.Annotations, declaration.Annotation{Name: declaration.AnnotationPath, Value: d.args})
		case d.keyword == "produces":
			m.Annotations = append(m.Annotations, declaration.Annotation{Name: declaration.AnnotationProduces, Value: mediaList(d.args)})
		case d.keyword == "consumes":
			m.Annotations = append(m.Annotations, declaration.Annotation{Name: declaration.AnnotationConsumes, Value: mediaList(d.args)})
		case paramDirectives[d.keyword] != "":
			a.paramDirective(name, m, d, paramDirectives[d.keyword])
		case d.keyword == "context":
			a.attach(name, m, d, d.args, declaration.Annotation{Name: declaration.AnnotationContext})
		case d.keyword == "default":
			param, value, _ := strings.Cut(d.args, " ")
			a.attach(name, m, d, param, declaration.Annotation{Name: declaration.AnnotationDefaultValue, Value: strings.TrimSpace(value)})
		default:
			a.malformed(d, name, "unknown directive")
		}
	}
}

// paramDirective handles "//rest:queryparam wire [goParam]". Without goParam
// the Go parameter with the wire name is used.
func (a *SourceAnalyzer) paramDirective(name string, m *declaration.Method, d directive, annotation string) {
	fields := strings.Fields(d.args)
	switch len(fields) {
	case 1:
		a.attach(name, m, d, fields[0], declaration.Annotation{Name: annotation})
	case 2:
		a.attach(name, m, d, fields[1], declaration.Annotation{Name: annotation, Value: fields[0]})
	default:
		a.malformed(d, name, "expected a name and an optional parameter")
	}
}

func (a *SourceAnalyzer) attach(name string, m *declaration.Method, d directive, param string, ann declaration.Annotation) {
	if param == "" {
		a.malformed(d, name, "missing parameter name")
		return
	}
	for i := range m.Params {
		if m.Params[i].Name == param {
			m.Params[i].Annotations = append(m.Params[i].Annotations, ann)
			return
		}
	}
	a.malformed(d, name, "no parameter named "+param)
}

// mediaList normalizes "a/b, c/d" and "a/b c/d" to "a/b,c/d".
func mediaList(args string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(args, ",", " ")), ",")
}
