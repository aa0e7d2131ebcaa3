package schema

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a problem found in a table descriptor.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of descriptor validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, errs []*ValidationError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range errs {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures descriptor diffing.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowNullToNotNull bool
}

// AllowDropColumn reports dropped columns as warnings instead of errors.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowNullToNotNull reports nullable columns becoming NOT NULL as warnings.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) {
		c.allowNullToNotNull = true
	}
}

// ValidateTable checks the invariants of a single table descriptor: column
// names are unique and non-empty, and each column carries at most one facet,
// the one matching its value type.
func ValidateTable(t *Table) *ValidationResult {
	result := &ValidationResult{}
	seen := make(map[string]bool, len(t.columns))
	for _, c := range t.columns {
		switch {
		case c.Name == "":
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.name,
				Message: "column without a name",
			})
		case seen[c.Name]:
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.name,
				Column:  c.Name,
				Message: "duplicate column name",
			})
		}
		seen[c.Name] = true
		if msg := facetProblem(c); msg != "" {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.name,
				Column:  c.Name,
				Message: msg,
			})
		}
		if !c.Resolved() {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   t.name,
				Column:  c.Name,
				Message: fmt.Sprintf("type %q has no value type", c.Type),
			})
		}
	}
	return result
}

func facetProblem(c Column) string {
	n := 0
	if c.Length != nil {
		n++
		if !c.ValueType.Textual() {
			return fmt.Sprintf("length set on %s column", c.ValueType)
		}
	}
	if c.Precision != nil {
		n++
		if !c.ValueType.Temporal() {
			return fmt.Sprintf("precision set on %s column", c.ValueType)
		}
	}
	if c.Values != nil {
		n++
		if !c.ValueType.Enumerated() {
			return fmt.Sprintf("values set on %s column", c.ValueType)
		}
	}
	if n > 1 {
		return "more than one type facet set"
	}
	return ""
}

// ValidateDiff compares two descriptors of the same table and reports
// changes that may fail or lose data when moving from current to desired.
//
// Example:
//
//	result := schema.ValidateDiff(live, expected)
//	if result.HasBreakingChanges() {
//	    log.Fatal("Breaking changes detected:", result)
//	}
func ValidateDiff(current, desired *Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}

	for _, c := range current.columns {
		if _, ok := desired.Column(c.Name); ok {
			continue
		}
		err := &ValidationError{
			Table:    current.name,
			Column:   c.Name,
			Message:  "column will be dropped",
			Breaking: true,
		}
		if cfg.allowDropColumn {
			result.Warnings = append(result.Warnings, err)
		} else {
			result.Errors = append(result.Errors, err)
		}
	}

	for _, want := range desired.columns {
		have, exists := current.Column(want.Name)
		if !exists {
			if !want.Nullable && want.Default == nil {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   current.name,
					Column:  want.Name,
					Message: "new NOT NULL column without default value may fail if table has data",
				})
			}
			continue
		}
		if have.Type != want.Type {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.name,
				Column:  want.Name,
				Message: fmt.Sprintf("column type changing from %s to %s", have.Type, want.Type),
			})
		}
		if have.Nullable && !want.Nullable {
			err := &ValidationError{
				Table:    current.name,
				Column:   want.Name,
				Message:  "column changing from NULL to NOT NULL may fail if column has NULL values",
				Breaking: true,
			}
			if cfg.allowNullToNotNull {
				result.Warnings = append(result.Warnings, err)
			} else {
				result.Errors = append(result.Errors, err)
			}
		}
		if have.Length != nil && want.Length != nil && *want.Length < *have.Length {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.name,
				Column:  want.Name,
				Message: fmt.Sprintf("column length reducing from %d to %d may truncate data", *have.Length, *want.Length),
			})
		}
		for _, v := range have.Values {
			if !slices.Contains(want.Values, v) {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   current.name,
					Column:  want.Name,
					Message: fmt.Sprintf("value %q will no longer be allowed", v),
				})
			}
		}
	}
	return result
}
