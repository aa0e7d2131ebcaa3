package sql

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/veloxsql/dialect"
	"github.com/syssam/veloxsql/dialect/sql/schema"
	"github.com/syssam/veloxsql/schema/field"
)

// Config is the document form of a dialect configuration:
//
//	dialect: mysql
//	quote: "`"
//	divider: "."
//	true_literal: "1"
//	false_literal: "0"
//	types:
//	  tinyint: bool
//	  geometry: other
//
// Empty fields keep the dialect's current value. Types entries are added to
// the dialect's type map; their keys are type names without size parameters,
// matched case-insensitively, and their values are field type names.
type Config struct {
	Dialect string                `yaml:"dialect,omitempty"`
	Quote   string                `yaml:"quote,omitempty"`
	Divider string                `yaml:"divider,omitempty"`
	True    string                `yaml:"true_literal,omitempty"`
	False   string                `yaml:"false_literal,omitempty"`
	Types   map[string]field.Type `yaml:"types,omitempty"`
}

// ParseConfig decodes a YAML configuration document. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dialect/sql: parse config: %w", err)
	}
	switch cfg.Dialect {
	case "", dialect.MySQL, dialect.Postgres, dialect.SQLite:
	default:
		return nil, fmt.Errorf("dialect/sql: parse config: unknown dialect %q", cfg.Dialect)
	}
	types := make(map[string]field.Type, len(cfg.Types))
	for name, t := range cfg.Types {
		if !t.Valid() {
			return nil, fmt.Errorf("dialect/sql: parse config: invalid type for %q", name)
		}
		key := schema.TypeName(name)
		if strings.ContainsAny(name, "()") || key == "" {
			return nil, fmt.Errorf("dialect/sql: parse config: type %q must be a name without parameters", name)
		}
		if _, ok := types[key]; ok {
			return nil, fmt.Errorf("dialect/sql: parse config: type %q is mapped twice", key)
		}
		types[key] = t
	}
	if len(types) > 0 {
		cfg.Types = types
	}
	return cfg, nil
}

// Setting is a single option assignment.
type Setting struct {
	Name  Option
	Value string
}

// Settings returns the options set by the document, in a fixed order.
func (c *Config) Settings() []Setting {
	var set []Setting
	for _, s := range []Setting{{OptionQuote, c.Quote}, {OptionDivider, c.Divider}, {OptionTrue, c.True}, {OptionFalse, c.False}} {
		if s.Value != "" {
			set = append(set, s)
		}
	}
	return set
}

// Apply sets the options of cfg on d. The document must name d's engine,
// if it names one. Options are applied one at a time through SetOption.
func (d *Dialect) Apply(cfg *Config) error {
	if cfg.Dialect != "" && cfg.Dialect != d.name {
		return fmt.Errorf("dialect/sql: config for %q applied to dialect %q", cfg.Dialect, d.name)
	}
	for _, s := range cfg.Settings() {
		if err := d.SetOption(s.Name, s.Value); err != nil {
			return err
		}
	}
	if len(cfg.Types) > 0 {
		d.mu.Lock()
		d.types = d.types.With(cfg.Types)
		d.mu.Unlock()
	}
	return nil
}
