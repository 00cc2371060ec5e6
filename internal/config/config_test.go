package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/electwix/sqlfront/internal/script"
	"github.com/electwix/sqlfront/internal/types"
)

func TestLoadSuccess(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := writeConfig(t, tempDir, "sqlfront.toml", `
dialect = "postgres"
dsn = "postgres://localhost/app"
sources = ["migrations/*.sql"]
workers = 4

[[types]]
name = "money"
sql_type = "DECIMAL(19, 4)"
`)

	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}

	want := Config{
		Dialect:       DialectPostgres,
		DSN:           "postgres://localhost/app",
		Sources:       []string{"migrations/*.sql"},
		MaxInputBytes: DefaultMaxInputBytes,
		Workers:       4,
		Types:         []TypeOverride{{Name: "money", SQLType: "DECIMAL(19, 4)"}},
		BaseDir:       tempDir,
	}
	if diff := cmp.Diff(want, result.Config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if got := result.Config.DriverName(); got != "pgx" {
		t.Fatalf("driver = %q, want pgx", got)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := writeConfig(t, tempDir, "sqlfront.yaml", `
dialect: sqlserver
driver: sqlite
max_input_bytes: 1024
types:
  - name: flag
    sql_type: boolean
`)

	result, err := Load(configPath, LoadOptions{Strict: true})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cfg := result.Config
	if cfg.Dialect != DialectSQLServer || cfg.MaxInputBytes != 1024 || cfg.DriverName() != "sqlite" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got := cfg.SplitSeparator(); got != script.SeparatorGo {
		t.Fatalf("separator = %v, want go", got)
	}

	reg, err := cfg.TypeRegistry()
	if err != nil {
		t.Fatalf("TypeRegistry: %v", err)
	}
	if got := reg.Resolve("FLAG"); got != types.Boolean {
		t.Fatalf("flag resolves to %s, want BOOLEAN", got)
	}
}

func TestSplitSeparator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cfg  Config
		want script.Separator
	}{
		{Config{Dialect: DialectGeneric}, script.SeparatorNone},
		{Config{Dialect: DialectSQLServer}, script.SeparatorGo},
		{Config{Dialect: DialectOracle}, script.SeparatorSlash},
		{Config{Dialect: DialectSQLServer, Separator: "slash"}, script.SeparatorSlash},
		{Config{Dialect: DialectPostgres, Separator: "go"}, script.SeparatorGo},
	}
	for _, tc := range tests {
		if got := tc.cfg.SplitSeparator(); got != tc.want {
			t.Fatalf("%+v: got %v, want %v", tc.cfg, got, tc.want)
		}
		if opts := tc.cfg.SplitOptions(); len(opts) != 1 {
			t.Fatalf("got %d split options, want 1", len(opts))
		}
	}
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
		want     string
	}{
		{"dialect", `dialect = "db2"`, `unsupported dialect "db2"`},
		{"separator", `separator = "semicolon"`, `unknown separator "semicolon"`},
		{"max input", `max_input_bytes = -1`, "max_input_bytes must not be negative"},
		{"workers", `workers = -2`, "workers must not be negative"},
		{"type base", "[[types]]\nname = \"money\"\nsql_type = \"currency(2)\"", "types[0]"},
		{"type size", "[[types]]\nname = \"n\"\nsql_type = \"integer(4)\"", "types[0]"},
		{"syntax", `dialect = `, "sqlfront.toml"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			configPath := writeConfig(t, t.TempDir(), "sqlfront.toml", tc.contents)
			_, err := Load(configPath, LoadOptions{})
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadStrictUnknownKeys(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), "sqlfront.toml", `
dialect = "sqlite"
extra = true
`)
	_, err := Load(configPath, LoadOptions{Strict: true})
	if err == nil {
		t.Fatal("expected strict mode to reject unknown keys")
	}
	if !strings.Contains(err.Error(), "unknown configuration keys: extra") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadNonStrictUnknownKeysWarning(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), "sqlfront.toml", `
dialect = "sqlite"
extra = true

[[types]]
name = "money"
sql_type = "decimal(19,4)"
go_type = "decimal.Decimal"
`)
	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{
		configPath + ": unknown configuration keys: extra",
		configPath + ": unknown configuration keys: types[0].go_type",
	}
	if diff := cmp.Diff(want, result.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), LoadOptions{})
	if err == nil || !strings.Contains(err.Error(), "read ") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Dialect != DialectGeneric || cfg.MaxInputBytes != DefaultMaxInputBytes {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DriverName() != "sqlite" {
		t.Fatalf("default driver = %q, want sqlite", cfg.DriverName())
	}
	if (Config{Dialect: DialectOracle}).DriverName() != "" {
		t.Fatalf("oracle has no bundled driver")
	}
}

func writeConfig(tb testing.TB, dir, name, contents string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	clean := strings.TrimSpace(contents) + "\n"
	if err := os.WriteFile(path, []byte(clean), 0o600); err != nil {
		tb.Fatalf("write config: %v", err)
	}
	return path
}
