// Package writer persists the documentation pages of a generation run as
// YAML or JSON files under the output directory:
//
//	index.<ext>                  resource index
//	summary.<ext>                run summary
//	resources/<path>/index.<ext> one page per resource
//	types/index.<ext>            data-object type index
//	types/<type id>.<ext>        one page per data-object type
package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gaborage/restdoc/config"
	"github.com/gaborage/restdoc/declaration"
	"github.com/gaborage/restdoc/model"
	"github.com/gaborage/restdoc/pipeline"
	"github.com/gaborage/restdoc/pojo"
)

const (
	resourcesDir = "resources"
	typesDir     = "types"
	indexName    = "index"
	summaryName  = "summary"
)

// FileWriter writes every page kind of the pipeline to the file system.
type FileWriter struct {
	dir    string
	format string
}

// Ensure FileWriter implements the pipeline interfaces
var (
	_ pipeline.ResourceWriter  = (*FileWriter)(nil)
	_ pipeline.IndexWriter     = (*FileWriter)(nil)
	_ pipeline.SummaryWriter   = (*FileWriter)(nil)
	_ pipeline.TypeIndexWriter = (*FileWriter)(nil)
	_ pipeline.TypeWriter      = (*FileWriter)(nil)
)

// New creates a writer for the output section of cfg.
func New(cfg *config.Config) *FileWriter {
	format := cfg.Output.Format
	if format == "" {
		format = config.FormatYAML
	}
	return &FileWriter{dir: cfg.Output.Dir, format: format}
}

// Writers returns w wired into every pipeline step.
func (w *FileWriter) Writers() pipeline.Writers {
	return pipeline.Writers{Resource: w, Index: w, Summary: w, TypeIndex: w, Type: w}
}

// Dir returns the output directory.
func (w *FileWriter) Dir() string {
	return w.dir
}

// WriteResource writes the page of r.
func (w *FileWriter) WriteResource(ctx context.Context, cfg *config.Config, _ *model.Application, r *model.Resource) error {
	return w.write(ctx, w.resourceFile(r.Path), "resource", w.resourcePage(r, examplesFor(cfg)))
}

// WriteIndex writes the resource index.
func (w *FileWriter) WriteIndex(ctx context.Context, _ *config.Config, app *model.Application) error {
	page := IndexPage{ContextPath: app.ContextPath, Resources: []IndexEntry{}}
	for _, r := range app.Resources() {
		entry := IndexEntry{Path: r.Path, File: w.resourceFile(r.Path)}
		for _, op := range r.Operations {
			entry.Operations = append(entry.Operations, op.Method+" "+op.Path)
		}
		page.Resources = append(page.Resources, entry)
	}
	return w.write(ctx, w.file(indexName), "index", page)
}

// WriteSummary writes the run summary.
func (w *FileWriter) WriteSummary(ctx context.Context, _ *config.Config, app *model.Application, run pipeline.RunInfo) error {
	page := SummaryPage{
		RunID:      run.ID,
		Resources:  run.Resources,
		Operations: run.Operations,
		Types:      run.Types,
		Warnings:   run.Warnings,
	}
	for _, op := range app.Operations() {
		page.Endpoints = append(page.Endpoints, OperationSummary{
			Method:  op.Method,
			Path:    op.Path,
			Summary: firstSentence(op.Doc),
			File:    w.resourceFile(op.Path),
		})
	}
	return w.write(ctx, w.file(summaryName), "summary", page)
}

// WriteTypeIndex writes the data-object type index.
func (w *FileWriter) WriteTypeIndex(ctx context.Context, _ *config.Config, _ *model.Application, types *pojo.Set) error {
	page := TypeIndexPage{Types: []TypeLink{}}
	for _, e := range types.Entries() {
		page.Types = append(page.Types, w.typeLink(e.ID, types))
	}
	return w.write(ctx, w.file(typesDir, indexName), "types", page)
}

// WriteType writes the page of one data-object type.
func (w *FileWriter) WriteType(ctx context.Context, _ *config.Config, _ *model.Application, entry *pojo.Entry, types *pojo.Set, root *model.Resource) error {
	return w.write(ctx, w.typeFile(entry.ID), "type", w.typePage(entry, types, root))
}

func examplesFor(cfg *config.Config) examples {
	if cfg == nil {
		return examples{}
	}
	return examples{disableHTTP: cfg.Doc.DisableHTTPExample, disableJS: cfg.Doc.DisableJSExample}
}

// write encodes data under a single top-level section key and stores it at
// rel, relative to the output directory.
func (w *FileWriter) write(ctx context.Context, rel, section string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := w.encodeSection(section, data)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", rel, err)
	}

	path := filepath.Join(w.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

func (w *FileWriter) encodeSection(section string, data any) ([]byte, error) {
	doc := map[string]any{section: data}
	if w.format == config.FormatJSON {
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to close YAML encoder: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *FileWriter) file(parts ...string) string {
	return strings.Join(parts, "/") + "." + w.format
}

// resourceFile maps an effective path to its page, e.g. "/items/{id}" to
// "resources/items/%7Bid%7D/index.yaml".
func (w *FileWriter) resourceFile(path string) string {
	parts := []string{resourcesDir}
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			parts = append(parts, escapeName(seg))
		}
	}
	return w.file(append(parts, indexName)...)
}

// typeFile maps a type ID to its page. An ID spelled like the type index
// gets its first byte encoded.
func (w *FileWriter) typeFile(id declaration.TypeID) string {
	name := escapeName(string(id))
	if name == indexName {
		name = fmt.Sprintf("%%%02X", name[0]) + name[1:]
	}
	return w.file(typesDir, name)
}

// escapeName percent-encodes every byte outside [A-Za-z0-9._-], so distinct
// names never share a file. Dot-only names have their dots encoded as well.
func escapeName(s string) string {
	dotsOnly := strings.Trim(s, ".") == ""
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '.' && !dotsOnly,
			c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "%%%02X", c)
		}
	}
	return sb.String()
}

// firstSentence returns the text up to the first period followed by a space
// or the end of the first paragraph.
func firstSentence(doc string) string {
	doc = strings.TrimSpace(doc)
	if i := strings.Index(doc, "\n\n"); i >= 0 {
		doc = doc[:i]
	}
	if i := strings.Index(doc, ". "); i >= 0 {
		doc = doc[:i+1]
	}
	return strings.Join(strings.Fields(doc), " ")
}
