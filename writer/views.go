package writer

import (
	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/model"
	"github.com/gaborage/restdoc/pojo"
	"github.com/gaborage/restdoc/tags"
	"github.com/gaborage/restdoc/validation"
)

// Link points at another page. File is relative to the output directory.
type Link struct {
	Path string `json:"path" yaml:"path"`
	File string `json:"file" yaml:"file"`
}

// ResourcePage is the page of one resource.
type ResourcePage struct {
	Path          string          `json:"path" yaml:"path"`
	Template      string          `json:"template,omitempty" yaml:"template,omitempty"`
	DeclaringType string          `json:"declaringType,omitempty" yaml:"declaringType,omitempty"`
	Doc           string          `json:"doc,omitempty" yaml:"doc,omitempty"`
	Parent        *Link           `json:"parent,omitempty" yaml:"parent,omitempty"`
	Children      []Link          `json:"children,omitempty" yaml:"children,omitempty"`
	Operations    []OperationView `json:"operations,omitempty" yaml:"operations,omitempty"`
}

// OperationView documents one operation of a resource page.
type OperationView struct {
	Method          string        `json:"method" yaml:"method"`
	Path            string        `json:"path" yaml:"path"`
	Declaration     string        `json:"declaration" yaml:"declaration"`
	Position        string        `json:"position,omitempty" yaml:"position,omitempty"`
	Doc             string        `json:"doc,omitempty" yaml:"doc,omitempty"`
	Inclusion       string        `json:"inclusion" yaml:"inclusion"`
	Consumes        []string      `json:"consumes,omitempty" yaml:"consumes,omitempty"`
	Produces        []string      `json:"produces,omitempty" yaml:"produces,omitempty"`
	Params          []ParamView   `json:"params,omitempty" yaml:"params,omitempty"`
	Response        *TypeView     `json:"response,omitempty" yaml:"response,omitempty"`
	RequestHeaders  []tags.Header `json:"requestHeaders,omitempty" yaml:"requestHeaders,omitempty"`
	ResponseHeaders []tags.Header `json:"responseHeaders,omitempty" yaml:"responseHeaders,omitempty"`
	HTTPExample     string        `json:"httpExample,omitempty" yaml:"httpExample,omitempty"`
	JSExample       string        `json:"jsExample,omitempty" yaml:"jsExample,omitempty"`
}

// ParamView documents one operation input.
type ParamView struct {
	Name    string   `json:"name" yaml:"name"`
	Source  string   `json:"source" yaml:"source"`
	Type    TypeView `json:"type" yaml:"type"`
	Default string   `json:"default,omitempty" yaml:"default,omitempty"`
}

// TypeView renders a type reference. Declared is only set for wrapped types.
type TypeView struct {
	Type     string `json:"type" yaml:"type"`
	Declared string `json:"declared,omitempty" yaml:"declared,omitempty"`
}

// IndexPage lists every resource of the application.
type IndexPage struct {
	ContextPath string       `json:"contextPath" yaml:"contextPath"`
	Resources   []IndexEntry `json:"resources" yaml:"resources"`
}

// IndexEntry is one resource of the index.
type IndexEntry struct {
	Path       string   `json:"path" yaml:"path"`
	File       string   `json:"file" yaml:"file"`
	Operations []string `json:"operations,omitempty" yaml:"operations,omitempty"`
}

// SummaryPage is the flat summary of a run.
type SummaryPage struct {
	RunID      string             `json:"runId" yaml:"runId"`
	Resources  int                `json:"resources" yaml:"resources"`
	Operations int                `json:"operations" yaml:"operations"`
	Types      int                `json:"types" yaml:"types"`
	Warnings   int                `json:"warnings" yaml:"warnings"`
	Endpoints  []OperationSummary `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
}

// OperationSummary is one line of the summary.
type OperationSummary struct {
	Method  string `json:"method" yaml:"method"`
	Path    string `json:"path" yaml:"path"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
	File    string `json:"file" yaml:"file"`
}

// TypeIndexPage lists the data-object types.
type TypeIndexPage struct {
	Types []TypeLink `json:"types" yaml:"types"`
}

// TypeLink points at a type page. File is empty when the type has no page.
type TypeLink struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// TypePage is the page of one data-object type.
type TypePage struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Kind       string      `json:"kind,omitempty" yaml:"kind,omitempty"`
	Doc        string      `json:"doc,omitempty" yaml:"doc,omitempty"`
	Fields     []FieldView `json:"fields,omitempty" yaml:"fields,omitempty"`
	Supertypes []TypeLink  `json:"supertypes,omitempty" yaml:"supertypes,omitempty"`
	Subclasses []TypeLink  `json:"subclasses,omitempty" yaml:"subclasses,omitempty"`
	UsedBy     []Usage     `json:"usedBy,omitempty" yaml:"usedBy,omitempty"`
}

// FieldView documents one exported field of a type.
type FieldView struct {
	Name        string                  `json:"name" yaml:"name"`
	JSONName    string                  `json:"jsonName" yaml:"jsonName"`
	Type        string                  `json:"type" yaml:"type"`
	Required    bool                    `json:"required" yaml:"required"`
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Example     string                  `json:"example,omitempty" yaml:"example,omitempty"`
	Constraints []validation.Constraint `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Usage links an operation that references a type.
type Usage struct {
	Method      string `json:"method" yaml:"method"`
	Path        string `json:"path" yaml:"path"`
	Declaration string `json:"declaration" yaml:"declaration"`
	File        string `json:"file" yaml:"file"`
}

func typeView(ref model.TypeRef) TypeView {
	v := TypeView{Type: ref.Unwrap().String()}
	if ref.Wrapped {
		v.Declared = ref.Declared.String()
	}
	return v
}

func (w *FileWriter) resourcePage(r *model.Resource, ex examples) ResourcePage {
	page := ResourcePage{
		Path:          r.Path,
		Template:      r.Template,
		DeclaringType: string(r.DeclaringType),
		Doc:           r.Doc,
	}
	if p := r.Parent(); p != nil {
		page.Parent = &Link{Path: p.Path, File: w.resourceFile(p.Path)}
	}
	for _, c := range r.Children {
		page.Children = append(page.Children, Link{Path: c.Path, File: w.resourceFile(c.Path)})
	}
	for _, op := range r.Operations {
		page.Operations = append(page.Operations, operationView(op, ex))
	}
	return page
}

func operationView(op *model.Operation, ex examples) OperationView {
	v := OperationView{
		Method:          op.Method,
		Path:            op.Path,
		Declaration:     op.Declaration,
		Doc:             op.Doc,
		Inclusion:       string(op.Inclusion),
		Consumes:        op.Consumes,
		Produces:        op.Produces,
		RequestHeaders:  op.RequestHeaders,
		ResponseHeaders: op.ResponseHeaders,
	}
	if op.Position.IsValid() {
		v.Position = op.Position.String()
	}
	for _, p := range op.Params {
		v.Params = append(v.Params, ParamView{
			Name:    p.Name,
			Source:  string(p.Source),
			Type:    typeView(p.Type),
			Default: p.Default,
		})
	}
	if op.Response != nil {
		rv := typeView(*op.Response)
		v.Response = &rv
	}
	v.HTTPExample = ex.http(op)
	v.JSExample = ex.js(op)
	return v
}

func (w *FileWriter) typeLink(id declaration.TypeID, types *pojo.Set) TypeLink {
	l := TypeLink{ID: string(id), Name: id.Name()}
	if types != nil {
		if _, ok := types.Lookup(id); ok {
			l.File = w.typeFile(id)
		}
	}
	return l
}

func (w *FileWriter) typePage(entry *pojo.Entry, types *pojo.Set, root *model.Resource) TypePage {
	page := TypePage{
		ID:   string(entry.ID),
		Name: entry.Name(),
		Kind: string(entry.Type.Kind),
		Doc:  entry.Type.Doc,
	}
	for _, f := range entry.Type.Fields {
		if !pojo.Exported(f) {
			continue
		}
		info := validation.ParseField(f.Name, f.Tag)
		typ := f.Type.String()
		description := info.Description
		if description == "" {
			description = f.Doc
		}
		page.Fields = append(page.Fields, FieldView{
			Name:        f.Name,
			JSONName:    info.JSONName,
			Type:        typ,
			Required:    info.Required,
			Description: description,
			Example:     info.Example,
			Constraints: info.SchemaConstraints(typ),
		})
	}
	for _, id := range entry.Supertypes {
		page.Supertypes = append(page.Supertypes, w.typeLink(id, types))
	}
	for _, id := range entry.Subclasses {
		page.Subclasses = append(page.Subclasses, w.typeLink(id, types))
	}
	for _, op := range entry.UsedBy {
		file := ""
		if r := root.Find(op.Path); r != nil {
			file = w.resourceFile(r.Path)
		}
		page.UsedBy = append(page.UsedBy, Usage{
			Method:      op.Method,
			Path:        op.Path,
			Declaration: op.Declaration,
			File:        file,
		})
	}
	return page
}
