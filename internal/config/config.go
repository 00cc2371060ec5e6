// Package config loads and validates the sqlfront configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/electwix/sqlfront/internal/script"
	"github.com/electwix/sqlfront/internal/types"
)

// Dialect names the SQL flavour of the configured sources and database.
type Dialect string

const (
	DialectGeneric   Dialect = "generic"
	DialectSQLite    Dialect = "sqlite"
	DialectPostgres  Dialect = "postgres"
	DialectMySQL     Dialect = "mysql"
	DialectSQLServer Dialect = "sqlserver"
	DialectOracle    Dialect = "oracle"
)

var validDialects = map[Dialect]struct{}{
	DialectGeneric:   {},
	DialectSQLite:    {},
	DialectPostgres:  {},
	DialectMySQL:     {},
	DialectSQLServer: {},
	DialectOracle:    {},
}

// defaultDrivers maps a dialect to the database/sql driver registered by
// internal/runner.
var defaultDrivers = map[Dialect]string{
	DialectGeneric:  "sqlite",
	DialectSQLite:   "sqlite",
	DialectPostgres: "pgx",
	DialectMySQL:    "mysql",
}

// DefaultMaxInputBytes caps a single source file when max_input_bytes is unset.
const DefaultMaxInputBytes = 8 << 20

// TypeOverride defines a column type alias such as money = DECIMAL(19,4).
type TypeOverride struct {
	Name    string `toml:"name" yaml:"name"`
	SQLType string `toml:"sql_type" yaml:"sql_type"`
}

// Config mirrors the sqlfront TOML/YAML schema.
type Config struct {
	Dialect       Dialect        `toml:"dialect" yaml:"dialect"`
	Separator     string         `toml:"separator" yaml:"separator"`
	Driver        string         `toml:"driver" yaml:"driver"`
	DSN           string         `toml:"dsn" yaml:"dsn"`
	Sources       []string       `toml:"sources" yaml:"sources"`
	MaxInputBytes int64          `toml:"max_input_bytes" yaml:"max_input_bytes"`
	Workers       int            `toml:"workers" yaml:"workers"`
	Types         []TypeOverride `toml:"types" yaml:"types"`

	// BaseDir is the directory source globs are resolved against. Load sets
	// it to the directory of the configuration file.
	BaseDir string `toml:"-" yaml:"-"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Dialect:       DialectGeneric,
		MaxInputBytes: DefaultMaxInputBytes,
		BaseDir:       ".",
	}
}

// LoadOptions tunes config loading behavior.
type LoadOptions struct {
	Strict bool
}

// Result wraps a loaded configuration alongside any non-fatal warnings.
type Result struct {
	Config   Config
	Warnings []string
}

// Load reads and validates a configuration file. Files ending in .yaml or
// .yml are decoded as YAML, everything else as TOML.
func Load(path string, opts LoadOptions) (Result, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := Parse(path, data, opts)
	if err != nil {
		return Result{}, err
	}
	res.Config.BaseDir = filepath.Dir(path)
	return res, nil
}

// Parse decodes and validates configuration bytes. path selects the format
// and prefixes errors.
func Parse(path string, data []byte, opts LoadOptions) (Result, error) {
	var res Result

	cfg := Default()
	var raw map[string]any
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	}

	for _, unknown := range [][]string{collectUnknownKeys(raw), collectUnknownTypeKeys(raw)} {
		if len(unknown) == 0 {
			continue
		}
		message := fmt.Sprintf("%s: unknown configuration keys: %s", path, strings.Join(unknown, ", "))
		if opts.Strict {
			return res, errors.New(message)
		}
		res.Warnings = append(res.Warnings, message)
	}

	if err := cfg.validate(path); err != nil {
		return res, err
	}
	res.Config = cfg
	return res, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

var knownKeys = map[string]struct{}{
	"dialect":         {},
	"separator":       {},
	"driver":          {},
	"dsn":             {},
	"sources":         {},
	"max_input_bytes": {},
	"workers":         {},
	"types":           {},
}

var knownTypeKeys = map[string]struct{}{
	"name":     {},
	"sql_type": {},
}

func collectUnknownKeys(raw map[string]any) []string {
	unknown := make([]string, 0)
	for key := range raw {
		if _, ok := knownKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	return unknown
}

func collectUnknownTypeKeys(raw map[string]any) []string {
	entries, ok := raw["types"].([]any)
	if !ok {
		return nil
	}
	unknown := make([]string, 0)
	for i, entry := range entries {
		record, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		for key := range record {
			if _, ok := knownTypeKeys[key]; !ok {
				unknown = append(unknown, fmt.Sprintf("types[%d].%s", i, key))
			}
		}
	}
	slices.Sort(unknown)
	return unknown
}

func (c *Config) validate(path string) error {
	if c.Dialect == "" {
		c.Dialect = DialectGeneric
	}
	c.Dialect = Dialect(strings.ToLower(string(c.Dialect)))
	if _, ok := validDialects[c.Dialect]; !ok {
		return fmt.Errorf("%s: unsupported dialect %q", path, c.Dialect)
	}
	if _, err := script.ParseSeparator(c.Separator); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if c.MaxInputBytes < 0 {
		return fmt.Errorf("%s: max_input_bytes must not be negative", path)
	}
	if c.MaxInputBytes == 0 {
		c.MaxInputBytes = DefaultMaxInputBytes
	}
	if c.Workers < 0 {
		return fmt.Errorf("%s: workers must not be negative", path)
	}
	if _, err := c.TypeRegistry(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// SplitSeparator returns the script separator: the explicit separator when
// set, otherwise GO for sqlserver and / for oracle.
func (c Config) SplitSeparator() script.Separator {
	if sep, err := script.ParseSeparator(c.Separator); err == nil && sep != script.SeparatorNone {
		return sep
	}
	switch c.Dialect {
	case DialectSQLServer:
		return script.SeparatorGo
	case DialectOracle:
		return script.SeparatorSlash
	}
	return script.SeparatorNone
}

// SplitOptions returns the splitter options implied by the configuration.
func (c Config) SplitOptions() []script.Option {
	return []script.Option{script.WithSeparator(c.SplitSeparator())}
}

// TypeRegistry returns the built-in type table extended with the configured
// overrides. Overrides are applied in order, so one may build on another.
func (c Config) TypeRegistry() (*types.Registry, error) {
	reg := types.NewRegistry()
	for i, override := range c.Types {
		if err := reg.Define(override.Name, override.SQLType); err != nil {
			return nil, fmt.Errorf("types[%d]: %w", i, err)
		}
	}
	return reg, nil
}

// DriverName returns the configured database/sql driver, falling back to the
// dialect default. It is empty when neither applies.
func (c Config) DriverName() string {
	if c.Driver != "" {
		return c.Driver
	}
	return defaultDrivers[c.Dialect]
}
