package writer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gaborage/restdoc/model"
)

const formMediaType = "application/x-www-form-urlencoded"

// examples renders the request examples of an operation page.
type examples struct {
	disableHTTP bool
	disableJS   bool
}

// http returns the raw HTTP request example. A declared example wins over the
// generated one.
func (e examples) http(op *model.Operation) string {
	if e.disableHTTP {
		return ""
	}
	if op.Example != "" {
		return op.Example
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s HTTP/1.1\n", op.Method, requestTarget(op, placeholder))
	if len(op.Produces) > 0 {
		fmt.Fprintf(&sb, "Accept: %s\n", strings.Join(op.Produces, ", "))
	}
	for _, h := range op.RequestHeaders {
		fmt.Fprintf(&sb, "%s: %s\n", h.Name, placeholder(h.Name))
	}
	for _, p := range op.ParamsBySource(model.SourceHeader) {
		fmt.Fprintf(&sb, "%s: %s\n", p.Name, placeholder(p.Name))
	}
	if cookies := op.ParamsBySource(model.SourceCookie); len(cookies) > 0 {
		pairs := make([]string, len(cookies))
		for i, c := range cookies {
			pairs[i] = c.Name + "=" + placeholder(c.Name)
		}
		fmt.Fprintf(&sb, "Cookie: %s\n", strings.Join(pairs, "; "))
	}

	body, contentType := requestBody(op)
	if contentType != "" {
		fmt.Fprintf(&sb, "Content-Type: %s\n", contentType)
	}
	if body != "" {
		sb.WriteString("\n")
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	return sb.String()
}

// js returns a fetch call performing the operation.
func (e examples) js(op *model.Operation) string {
	if e.disableJS {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "const response = await fetch(`%s`, {\n", requestTarget(op, jsInterpolation))
	fmt.Fprintf(&sb, "  method: %q,\n", op.Method)

	var headers []string
	if len(op.Produces) > 0 {
		headers = append(headers, fmt.Sprintf("%q: %q", "Accept", strings.Join(op.Produces, ", ")))
	}
	for _, h := range op.RequestHeaders {
		headers = append(headers, fmt.Sprintf("%q: %s", h.Name, jsIdent(h.Name)))
	}
	for _, p := range op.ParamsBySource(model.SourceHeader) {
		headers = append(headers, fmt.Sprintf("%q: %s", p.Name, jsIdent(p.Name)))
	}

	body, contentType := "", ""
	if b, ok := op.Body(); ok {
		body = fmt.Sprintf("JSON.stringify(%s)", jsIdent(b.Name))
		contentType = firstOr(op.Consumes, "application/json")
	} else if form := op.ParamsBySource(model.SourceForm); len(form) > 0 {
		pairs := make([]string, len(form))
		for i, p := range form {
			pairs[i] = fmt.Sprintf("%q: %s", p.Name, jsIdent(p.Name))
		}
		body = "new URLSearchParams({ " + strings.Join(pairs, ", ") + " })"
		contentType = firstOr(op.Consumes, formMediaType)
	}
	if contentType != "" {
		headers = append(headers, fmt.Sprintf("%q: %q", "Content-Type", contentType))
	}

	if len(headers) > 0 {
		sb.WriteString("  headers: {\n")
		for _, h := range headers {
			fmt.Fprintf(&sb, "    %s,\n", h)
		}
		sb.WriteString("  },\n")
	}
	if len(op.ParamsBySource(model.SourceCookie)) > 0 {
		sb.WriteString("  credentials: \"include\",\n")
	}
	if body != "" {
		fmt.Fprintf(&sb, "  body: %s,\n", body)
	}
	sb.WriteString("});\n")
	return sb.String()
}

// requestTarget renders path, matrix and query parameters, substituting each
// variable through value.
func requestTarget(op *model.Operation, value func(string) string) string {
	target := substitute(op.Path, value)
	for _, p := range op.ParamsBySource(model.SourceMatrix) {
		target += ";" + p.Name + "=" + value(p.Name)
	}
	for i, p := range op.ParamsBySource(model.SourceQuery) {
		sep := "&"
		if i == 0 {
			sep = "?"
		}
		target += sep + p.Name + "=" + value(p.Name)
	}
	return target
}

func requestBody(op *model.Operation) (body, contentType string) {
	if b, ok := op.Body(); ok {
		return "<" + b.Type.Unwrap().String() + ">", firstOr(op.Consumes, "")
	}
	form := op.ParamsBySource(model.SourceForm)
	if len(form) == 0 {
		return "", ""
	}
	pairs := make([]string, len(form))
	for i, p := range form {
		pairs[i] = p.Name + "=" + placeholder(p.Name)
	}
	return strings.Join(pairs, "&"), firstOr(op.Consumes, formMediaType)
}

// substitute replaces every {name} or {name: regex} variable of a path template.
func substitute(template string, value func(string) string) string {
	var sb strings.Builder
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(template[open:], '}')
		if end < 0 {
			break
		}
		name, _, _ := strings.Cut(template[open+1:open+end], ":")
		sb.WriteString(template[:open])
		sb.WriteString(value(strings.TrimSpace(name)))
		template = template[open+end+1:]
	}
	sb.WriteString(template)
	return sb.String()
}

func placeholder(name string) string {
	return "{" + name + "}"
}

func jsInterpolation(name string) string {
	return "${encodeURIComponent(" + jsIdent(name) + ")}"
}

// jsIdent turns a parameter name into a JavaScript identifier.
func jsIdent(name string) string {
	var sb strings.Builder
	upper := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$':
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			sb.WriteRune(r)
		case sb.Len() > 0:
			upper = true
		}
	}
	ident := sb.String()
	if ident == "" {
		return "value"
	}
	if unicode.IsDigit(rune(ident[0])) {
		ident = "_" + ident
	}
	return ident
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 {
		return values[0]
	}
	return fallback
}
