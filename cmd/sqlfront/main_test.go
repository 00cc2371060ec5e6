package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/electwix/sqlfront/internal/types"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func runWith(t *testing.T, stdin string, lines []string, args ...string) (int, string, string) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := runEnv(context.Background(), args, env{
		stdin:  strings.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
		lineReader: func(string, io.Reader, io.Writer, io.Writer) (lineReader, error) {
			return &scriptedReader{lines: lines}, nil
		},
	})
	return code, stdout.String(), stderr.String()
}

type scriptedReader struct {
	lines []string
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) Close() error { return nil }

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.sql", "CREATE TABLE t (id INT PRIMARY KEY, name VARCHAR(20))")
	code, stdout, stderr := runWith(t, "", nil, "parse", "--ast", "--summary", schema)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", code, stderr)
	}
	for _, want := range []string{schema + ": DDL errors=0", "CreateTable t", "Column id INTEGER primary key", "KIND"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout %q missing %q", stdout, want)
		}
	}
}

func TestParseCommandReportsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.sql", "SELECT a FROM t WHERE")
	code, stdout, _ := runWith(t, "", nil, "parse", "--context", "1", filepath.Join(dir, "*.sql"))
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stdout, "bad.sql - [1, ") || !strings.Contains(stdout, "ERROR: Expecting a term") {
		t.Fatalf("stdout %q missing diagnostic", stdout)
	}
	if !strings.Contains(stdout, "> 1 | SELECT a FROM t WHERE\n") {
		t.Fatalf("stdout %q missing source context", stdout)
	}
}

func TestParseCommandStdinAndVars(t *testing.T) {
	code, stdout, stderr := runWith(t, "SELECT a FROM t WHERE id = @id", nil, "parse", "--var", "id:int", "-")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; stdout=%q stderr=%q", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "<stdin>: SELECT errors=0") {
		t.Fatalf("unexpected stdout %q", stdout)
	}

	code, _, stderr = runWith(t, "", nil, "parse", "--var", "broken", "-")
	if code != 1 || !strings.Contains(stderr, `invalid variable "broken"`) {
		t.Fatalf("code=%d stderr=%q, want invalid variable error", code, stderr)
	}
}

func TestParseCommandUsesConfigSources(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sql"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "sql"), "a.sql", "CREATE TABLE a (price money)")
	configPath := writeFile(t, dir, "sqlfront.toml", `
dialect = "sqlite"
sources = ["sql/*.sql"]

[[types]]
name = "money"
sql_type = "DECIMAL(19,4)"
`)
	code, stdout, stderr := runWith(t, "", nil, "--config", configPath, "parse", "--ast")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", code, stderr)
	}
	if !strings.Contains(stdout, "Column price DECIMAL(19,4)") {
		t.Fatalf("stdout %q missing custom type column", stdout)
	}
}

func TestStrictConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "sqlfront.toml", "dialect = \"sqlite\"\nbogus = 1\n")
	writeFile(t, dir, "a.sql", "SELECT a FROM t")

	code, _, stderr := runWith(t, "", nil, "--config", configPath, "parse", filepath.Join(dir, "a.sql"))
	if code != 0 || !strings.Contains(stderr, "unknown configuration keys: bogus") {
		t.Fatalf("code=%d stderr=%q, want warning", code, stderr)
	}
	code, _, stderr = runWith(t, "", nil, "--config", configPath, "--strict", "parse", filepath.Join(dir, "a.sql"))
	if code != 1 || !strings.Contains(stderr, "unknown configuration keys: bogus") {
		t.Fatalf("code=%d stderr=%q, want strict failure", code, stderr)
	}
}

func TestSplitCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "script.sql", "CREATE TABLE t (a INT)\nGO\nINSERT INTO t VALUES (1)\nGO\n")

	code, stdout, stderr := runWith(t, "", nil, "split", "--separator", "go", path)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", code, stderr)
	}
	want := "CREATE TABLE t (a INT)\n;\nINSERT INTO t VALUES (1)\n;\n"
	if stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}

	code, stdout, _ = runWith(t, "", nil, "split", "--table", path)
	if code != 0 || !strings.Contains(stdout, "COMMAND") {
		t.Fatalf("code=%d stdout=%q, want table", code, stdout)
	}
}

func TestSplitCommandUnbalanced(t *testing.T) {
	code, _, stderr := runWith(t, "SELECT 1;\nEND;", nil, "split", "-")
	if code != 1 || !strings.Contains(stderr, "<stdin>:2:1: unbalanced BEGIN/CASE ... END") {
		t.Fatalf("code=%d stderr=%q, want unbalanced error", code, stderr)
	}
}

func TestExecCommand(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "app.db")
	script := writeFile(t, dir, "init.sql", "CREATE TABLE t (a INTEGER);\nINSERT INTO t VALUES (1);\nINSERT INTO t VALUES (2);")

	code, stdout, stderr := runWith(t, "", nil, "exec", "--driver", "sqlite", "--dsn", dsn, script)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", code, stderr)
	}
	if !strings.Contains(stdout, "init.sql: executed 3 commands") {
		t.Fatalf("unexpected stdout %q", stdout)
	}

	bad := writeFile(t, dir, "bad.sql", "INSERT INTO t VALUES (3);\nINSERT INTO missing VALUES (1);")
	code, _, stderr = runWith(t, "", nil, "exec", "--driver", "sqlite", "--dsn", dsn, bad)
	if code != 1 || !strings.Contains(stderr, "rolled back after 1 of 2 commands") {
		t.Fatalf("code=%d stderr=%q, want rollback error", code, stderr)
	}
}

func TestExecCommandNeedsDSN(t *testing.T) {
	code, _, stderr := runWith(t, "SELECT 1", nil, "exec", "-")
	if code != 1 || !strings.Contains(stderr, "no data source") {
		t.Fatalf("code=%d stderr=%q, want missing dsn error", code, stderr)
	}
}

func TestReplParsesLines(t *testing.T) {
	lines := []string{
		"SELECT a FROM t WHERE id = @id:int",
		"",
		"DELETE FROM t WHERE id = @id",
		"SELECT FROM",
		`\q`,
		"SELECT never FROM reached",
	}
	code, stdout, stderr := runWith(t, "", lines, "repl")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", code, stderr)
	}
	for _, want := range []string{"Select", "Delete", "ERROR: "} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout %q missing %q", stdout, want)
		}
	}
	if strings.Contains(stdout, "reached") {
		t.Fatalf("repl kept reading after \\q: %q", stdout)
	}
	if strings.Contains(stdout, "Variable id has no type") {
		t.Fatalf("variable declaration did not carry over: %q", stdout)
	}
}

func TestReplCachesParsedLines(t *testing.T) {
	out := &bytes.Buffer{}
	s := newSession(out, types.NewRegistry())
	ctx := context.Background()

	s.eval(ctx, "SELECT a FROM t")
	s.eval(ctx, "SELECT a FROM t")
	if hits, misses := s.cache.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("cache stats = %d hits, %d misses, want 1, 1", hits, misses)
	}

	s.eval(ctx, "SELECT a FROM t WHERE a = @v")
	s.eval(ctx, "SELECT b FROM t WHERE b = @v:int")
	out.Reset()
	s.eval(ctx, "SELECT a FROM t WHERE a = @v")
	if strings.Contains(out.String(), "ERROR") {
		t.Fatalf("stale result served after a declaration: %q", out.String())
	}
	if hits, _ := s.cache.Stats(); hits != 1 {
		t.Fatalf("cache hits = %d, want 1", hits)
	}
	if _, ok := s.vars.Lookup("v"); !ok {
		t.Fatalf("declaration of v lost")
	}
}

func TestReplExecutes(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "repl.db")
	lines := []string{
		"CREATE TABLE t (id INTEGER, name VARCHAR(10))",
		"INSERT INTO t (id, name) VALUES (1, 'ann')",
		"SELECT id, name FROM t",
	}
	code, stdout, stderr := runWith(t, "", lines, "repl", "--driver", "sqlite", "--dsn", dsn)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", code, stderr)
	}
	for _, want := range []string{"ok (1 commands)", "ann", "(1 rows)"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout %q missing %q", stdout, want)
		}
	}
}

