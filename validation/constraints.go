package validation

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Constraint is a single schema constraint derived from a validate tag
type Constraint struct {
	Name  string `json:"name" yaml:"name"`   // Schema property name (e.g., "minLength", "minimum", "format")
	Value any    `json:"value" yaml:"value"` // Constraint value (string, number, bool, []any for enum)
}

// SchemaConstraints converts the field's validate constraints into schema
// properties for a field of the given type name. Keys are visited in sorted
// order so the output is stable across runs.
func (f *FieldInfo) SchemaConstraints(fieldType string) []Constraint {
	return MapConstraints(fieldType, f.Constraints)
}

// MapConstraints converts validation constraints to schema properties.
func MapConstraints(fieldType string, constraints map[string]string) []Constraint {
	var result []Constraint

	// Determine base type (strip pointer prefix if present)
	baseType := strings.TrimPrefix(fieldType, "*")

	keys := make([]string, 0, len(constraints))
	for key := range constraints {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := constraints[key]
		// required and omitempty are reported on the field itself
		if key == "required" || key == "omitempty" {
			continue
		}

		handled := handleFormatConstraint(key)
		if handled == nil {
			handled = handleMinConstraint(key, value, baseType)
		}
		if handled == nil {
			handled = handleMaxConstraint(key, value, baseType)
		}
		if handled == nil {
			handled = handleLenConstraint(key, value, baseType)
		}
		if handled == nil {
			handled = handleNumericComparison(key, value, baseType)
		}
		if handled == nil {
			handled = handleEnumConstraint(key, value, baseType)
		}
		if handled == nil {
			handled = handlePatternConstraint(key, value)
		}

		result = append(result, handled...)
	}

	return result
}

var formatMap = map[string]string{
	"email":    "email",
	"url":      "uri",
	"uri":      "uri",
	"uuid":     "uuid",
	"uuid4":    "uuid",
	"date":     "date",
	"datetime": "date-time",
}

func handleFormatConstraint(key string) []Constraint {
	if format, ok := formatMap[key]; ok {
		return []Constraint{{Name: "format", Value: format}}
	}
	return nil
}

// handleMinConstraint maps 'min' to minLength (strings), minItems (slices) or minimum (numbers)
func handleMinConstraint(key, value, baseType string) []Constraint {
	if key != "min" {
		return nil
	}
	return boundConstraint(value, baseType, "minLength", "minItems", "minimum")
}

// handleMaxConstraint maps 'max' to maxLength (strings), maxItems (slices) or maximum (numbers)
func handleMaxConstraint(key, value, baseType string) []Constraint {
	if key != "max" {
		return nil
	}
	return boundConstraint(value, baseType, "maxLength", "maxItems", "maximum")
}

func boundConstraint(value, baseType, lengthName, itemsName, numericName string) []Constraint {
	switch {
	case isStringType(baseType):
		if length, err := strconv.Atoi(value); err == nil {
			return []Constraint{{Name: lengthName, Value: length}}
		}
	case isCollectionType(baseType):
		if length, err := strconv.Atoi(value); err == nil {
			return []Constraint{{Name: itemsName, Value: length}}
		}
	case isNumericType(baseType):
		if num, err := parseNumeric(value); err == nil {
			return []Constraint{{Name: numericName, Value: num}}
		}
	}
	return nil
}

// handleLenConstraint maps 'len' constraint to exact length (minLength + maxLength)
func handleLenConstraint(key, value, baseType string) []Constraint {
	if key != "len" || !isStringType(baseType) {
		return nil
	}

	length, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}

	return []Constraint{
		{Name: "minLength", Value: length},
		{Name: "maxLength", Value: length},
	}
}

// handleNumericComparison maps gt/gte/lt/lte constraints to range constraints
func handleNumericComparison(key, value, baseType string) []Constraint {
	if !isNumericType(baseType) {
		return nil
	}

	numVal, err := parseNumeric(value)
	if err != nil {
		return nil
	}

	switch key {
	case "gt":
		return []Constraint{
			{Name: "minimum", Value: numVal},
			{Name: "exclusiveMinimum", Value: true},
		}
	case "gte":
		return []Constraint{{Name: "minimum", Value: numVal}}
	case "lt":
		return []Constraint{
			{Name: "maximum", Value: numVal},
			{Name: "exclusiveMaximum", Value: true},
		}
	case "lte":
		return []Constraint{{Name: "maximum", Value: numVal}}
	}

	return nil
}

// handleEnumConstraint maps 'oneof' to an enum array. Numeric fields get numeric values.
func handleEnumConstraint(key, value, baseType string) []Constraint {
	if key != "oneof" {
		return nil
	}

	enumValues := strings.Fields(value)
	if len(enumValues) == 0 {
		return nil
	}

	enumArray := make([]any, len(enumValues))
	for i, v := range enumValues {
		enumArray[i] = v
		if isNumericType(baseType) {
			if num, err := parseNumeric(v); err == nil {
				enumArray[i] = num
			}
		}
	}

	return []Constraint{{Name: "enum", Value: enumArray}}
}

func handlePatternConstraint(key, value string) []Constraint {
	if key != "regexp" {
		return nil
	}
	return []Constraint{{Name: "pattern", Value: value}}
}

func isStringType(typeName string) bool {
	return typeName == "string"
}

func isCollectionType(typeName string) bool {
	return strings.HasPrefix(typeName, "[]") || strings.HasPrefix(typeName, "map[")
}

var numericTypes = []string{
	"int", "int8", "int16", "int32", "int64",
	"uint", "uint8", "uint16", "uint32", "uint64",
	"float32", "float64",
}

func isNumericType(typeName string) bool {
	return slices.Contains(numericTypes, typeName)
}

// parseNumeric converts a string to an int64, falling back to float64
func parseNumeric(value string) (any, error) {
	if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
		return intVal, nil
	}
	return strconv.ParseFloat(value, 64)
}
