// Package validation reads the metadata carried by data-object field tags:
// the wire name from the json tag, constraints from the go-playground validate
// tag, and documentation from doc/description/example tags. The result feeds
// the per-type documentation pages.
package validation

import (
	"reflect"
	"strconv"
	"strings"
)

const (
	trueValue = "true"
)

// FieldInfo is the parsed tag metadata of one data-object field
type FieldInfo struct {
	Name        string            // Go field name
	JSONName    string            // Wire name (json tag name, or Name when untagged)
	Skipped     bool              // json:"-"
	OmitEmpty   bool              // json omitempty or validate omitempty
	Required    bool              // Whether the field must be present
	Constraints map[string]string // Validation constraints from validate tag
	Description string            // Documentation from doc tag
	Example     string            // Example value from example tag
}

// ParseField extracts the metadata of a field from its raw struct tag, as
// written in source without the surrounding backquotes.
func ParseField(name, rawTag string) FieldInfo {
	tag := reflect.StructTag(rawTag)
	info := FieldInfo{
		Name:        name,
		JSONName:    name,
		Constraints: make(map[string]string),
	}

	if json, ok := tag.Lookup("json"); ok {
		parts := strings.Split(json, ",")
		switch parts[0] {
		case "-":
			if len(parts) == 1 {
				info.Skipped = true
			} else {
				// json:"-," names the field "-"
				info.JSONName = "-"
			}
		case "":
		default:
			info.JSONName = parts[0]
		}
		for _, part := range parts[1:] {
			if strings.TrimSpace(part) == "omitempty" {
				info.OmitEmpty = true
			}
		}
	}

	if validate := tag.Get("validate"); validate != "" {
		parseValidateTag(validate, info.Constraints)
	}
	if _, ok := info.Constraints["omitempty"]; ok {
		info.OmitEmpty = true
	}
	info.Required = isFieldRequired(info)

	if doc := tag.Get("doc"); doc != "" {
		info.Description = doc
	} else if description := tag.Get("description"); description != "" {
		info.Description = description
	}
	info.Example = tag.Get("example")

	return info
}

// parseValidateTag parses a validate tag into constraint map
func parseValidateTag(validate string, constraints map[string]string) {
	for _, part := range strings.Split(validate, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Handle simple flags like "required"
		key, value, found := strings.Cut(part, "=")
		if !found {
			constraints[part] = trueValue
			continue
		}

		// Handle key=value constraints like "min=1", "max=100"
		constraints[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
}

// isFieldRequired reports required status. An explicit omission wins over an
// explicit requirement.
func isFieldRequired(info FieldInfo) bool {
	if info.Skipped || info.OmitEmpty {
		return false
	}
	_, required := info.Constraints["required"]
	return required
}

// Min returns the minimum value constraint if present
func (f *FieldInfo) Min() (int, bool) {
	return f.intConstraint("min")
}

// Max returns the maximum value constraint if present
func (f *FieldInfo) Max() (int, bool) {
	return f.intConstraint("max")
}

func (f *FieldInfo) intConstraint(key string) (int, bool) {
	if raw, ok := f.Constraints[key]; ok {
		if val, err := strconv.Atoi(raw); err == nil {
			return val, true
		}
	}
	return 0, false
}

// Pattern returns the regex pattern constraint if present
func (f *FieldInfo) Pattern() (string, bool) {
	pattern, ok := f.Constraints["regexp"]
	return pattern, ok
}

// Enum returns enum values if present
func (f *FieldInfo) Enum() ([]string, bool) {
	if enum, ok := f.Constraints["oneof"]; ok {
		if values := strings.Fields(enum); len(values) > 0 {
			return values, true
		}
	}
	return nil, false
}

// HasFormat returns true if the field has a specific format constraint
func (f *FieldInfo) HasFormat(format string) bool {
	constraint, exists := f.Constraints[format]
	return exists && constraint == trueValue
}

// IsEmail returns true if the field has email validation
func (f *FieldInfo) IsEmail() bool {
	return f.HasFormat("email")
}
