package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/gaborage/restdoc/docerrors"
	"github.com/gaborage/restdoc/model"
	"github.com/gaborage/restdoc/pojo"
	"github.com/gaborage/restdoc/tags"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks cfg and compiles its filter patterns. A pattern that does
// not compile yields a *docerrors.InvalidFilterPatternError.
func Validate(cfg *Config) error {
	if err := structValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}

	filters, err := compileFilters(&cfg.Doc)
	if err != nil {
		return err
	}
	cfg.filters = filters
	return nil
}

// fieldError maps a validator failure onto a ConfigError named by config key.
func fieldError(fe validator.FieldError) *ConfigError {
	key := configKey(fe.Namespace())
	switch fe.Tag() {
	case "required", "required_without":
		return NewMissingFieldError(key)
	case "excluded_with":
		return NewInvalidFieldError(key, fmt.Sprintf("cannot be combined with %s", strings.ToLower(fe.Param())), nil)
	case "oneof":
		return NewInvalidFieldError(key, fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param()))
	case "min", "max":
		return NewInvalidFieldError(key, fmt.Sprintf("%v is out of range (%s %s)", fe.Value(), fe.Tag(), fe.Param()), nil)
	default:
		return NewInvalidFieldError(key, fmt.Sprintf("failed %s validation", fe.Tag()), nil)
	}
}

// configKey converts "Config.Output.Dir" to "output.dir".
func configKey(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		rest = namespace
	}
	return strings.ToLower(rest)
}

func compileFilters(doc *DocConfig) (*Filters, error) {
	f := &Filters{}
	for _, p := range doc.PathExclude {
		re, err := compile("doc.pathexclude", p)
		if err != nil {
			return nil, err
		}
		f.PathExclude = append(f.PathExclude, re)
	}

	var err error
	if f.MatchingResources, err = compile("doc.matchingresources", doc.MatchingResources); err != nil {
		return nil, err
	}
	if f.MatchingPOJOs, err = compile("doc.matchingpojos", doc.MatchingPOJOs); err != nil {
		return nil, err
	}
	return f, nil
}

// compile returns nil for an empty pattern.
func compile(option, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &docerrors.InvalidFilterPatternError{Option: option, Pattern: pattern, Cause: err}
	}
	return re, nil
}

// CompileFilters compiles the filter patterns of a Config that did not go
// through Validate, e.g. one built in code. It is a no-op once compiled.
func (c *Config) CompileFilters() error {
	if c.filters != nil {
		return nil
	}
	filters, err := compileFilters(&c.Doc)
	if err != nil {
		return err
	}
	c.filters = filters
	return nil
}

// Filters returns the compiled filter patterns, empty before Validate or
// CompileFilters.
func (c *Config) Filters() Filters {
	if c.filters == nil {
		return Filters{}
	}
	return *c.filters
}

// ModelOptions returns the options of the resource model builder.
func (c *Config) ModelOptions() model.Options {
	f := c.Filters()
	return model.Options{
		ContextPath:       c.Doc.ContextPath,
		PathExclude:       f.PathExclude,
		MatchingResources: f.MatchingResources,
		Tags:              tags.Options{DisableHTTPExample: c.Doc.DisableHTTPExample},
	}
}

// PojoOptions returns the options of the data-object type resolver.
func (c *Config) PojoOptions() pojo.Options {
	return pojo.Options{MatchingNames: c.Filters().MatchingPOJOs}
}
