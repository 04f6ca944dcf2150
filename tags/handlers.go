package tags

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gaborage/restdoc/docerrors"
)

var (
	// headerNamePattern is an RFC 7230 token
	headerNamePattern = regexp.MustCompile("^[!#$%&'*+\\-.^_`|~0-9A-Za-z]+$")
	typeNamePattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_./\[\]]*$`)
)

// headerSeparators may sit between a header name and its description.
var headerSeparators = []string{"—", "–", "-", ":"}

func malformed(c Comment, keyword string, b block, format string, args ...any) error {
	return &docerrors.MalformedDirectiveError{
		Directive:   "@" + keyword,
		Declaration: c.Target,
		Position:    c.Position.Offset(b.line),
		Message:     fmt.Sprintf(format, args...),
	}
}

// headerHandler parses "@responseheader <name> — <description>" style tags.
type headerHandler struct {
	keyword string
	kind    Kind
}

func (h headerHandler) Keyword() string { return h.keyword }
func (h headerHandler) Kind() Kind      { return h.kind }

func (h headerHandler) Scan(c Comment) ([]Fact, []error) {
	var facts []Fact
	var errs []error
	for _, b := range blocksFor(c, h.keyword) {
		name, desc := splitHeader(b.text())
		switch {
		case name == "":
			errs = append(errs, malformed(c, h.keyword, b, "missing header name"))
		case !headerNamePattern.MatchString(name):
			errs = append(errs, malformed(c, h.keyword, b, "invalid header name %q", name))
		default:
			facts = append(facts, Fact{
				Kind:     h.kind,
				Target:   c.Target,
				Position: c.Position.Offset(b.line),
				Name:     name,
				Value:    desc,
			})
		}
	}
	return facts, errs
}

// splitHeader splits "X-Total-Count — number of items" into name and
// description. A dash glued to the name ("X-Total—count") also separates.
func splitHeader(payload string) (string, string) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ""
	}

	name, rest, _ := strings.Cut(payload, " ")
	for _, sep := range []string{"—", "–"} {
		if before, after, found := strings.Cut(name, sep); found {
			name = before
			rest = after + " " + rest
			break
		}
	}
	if strings.HasSuffix(name, ":") && utf8.RuneCountInString(name) > 1 {
		name = strings.TrimSuffix(name, ":")
	}

	rest = strings.TrimSpace(rest)
	for _, sep := range headerSeparators {
		if strings.HasPrefix(rest, sep) {
			rest = strings.TrimSpace(strings.TrimPrefix(rest, sep))
			break
		}
	}
	return name, rest
}

// exampleHandler captures the verbatim "@HTTP" request/response example. The
// first occurrence wins; later ones are reported and dropped.
type exampleHandler struct{}

const exampleKeyword = "HTTP"

func (exampleHandler) Keyword() string { return exampleKeyword }
func (exampleHandler) Kind() Kind      { return KindHTTPExample }

func (exampleHandler) Scan(c Comment) ([]Fact, []error) {
	var facts []Fact
	var errs []error
	for _, b := range blocksFor(c, exampleKeyword) {
		text := b.verbatim()
		switch {
		case text == "":
			errs = append(errs, malformed(c, exampleKeyword, b, "empty example"))
		case len(facts) > 0:
			errs = append(errs, malformed(c, exampleKeyword, b, "duplicate example, keeping the first one"))
		default:
			facts = append(facts, Fact{
				Kind:     KindHTTPExample,
				Target:   c.Target,
				Position: c.Position.Offset(b.line),
				Value:    text,
			})
		}
	}
	return facts, errs
}

// wrapHandler parses "@returnWrapped [Type]" and "@inputWrapped [Type]".
type wrapHandler struct {
	keyword string
	kind    Kind
}

func (h wrapHandler) Keyword() string { return h.keyword }
func (h wrapHandler) Kind() Kind      { return h.kind }

func (h wrapHandler) Scan(c Comment) ([]Fact, []error) {
	var facts []Fact
	var errs []error
	for _, b := range blocksFor(c, h.keyword) {
		fields := strings.Fields(b.text())
		switch {
		case len(fields) > 1:
			errs = append(errs, malformed(c, h.keyword, b, "expected at most one type name, got %q", b.text()))
		case len(fields) == 1 && !typeNamePattern.MatchString(fields[0]):
			errs = append(errs, malformed(c, h.keyword, b, "invalid type name %q", fields[0]))
		case len(facts) > 0:
			errs = append(errs, malformed(c, h.keyword, b, "duplicate wrapping hint"))
		default:
			f := Fact{Kind: h.kind, Target: c.Target, Position: c.Position.Offset(b.line)}
			if len(fields) == 1 {
				f.Name = fields[0]
			}
			facts = append(facts, f)
		}
	}
	return facts, errs
}

// markerHandler recognizes payload-less flags such as @include and @exclude.
type markerHandler struct {
	keyword string
	kind    Kind
}

func (h markerHandler) Keyword() string { return h.keyword }
func (h markerHandler) Kind() Kind      { return h.kind }

func (h markerHandler) Scan(c Comment) ([]Fact, []error) {
	bs := blocksFor(c, h.keyword)
	if len(bs) == 0 {
		return nil, nil
	}
	return []Fact{{Kind: h.kind, Target: c.Target, Position: c.Position.Offset(bs[0].line)}}, nil
}
