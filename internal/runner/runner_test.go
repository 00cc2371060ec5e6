package runner

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/electwix/sqlfront/internal/script"
)

func openSQLite(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	r, err := Open(context.Background(), "sqlite", dsn, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestExec(t *testing.T) {
	t.Parallel()

	r := openSQLite(t)
	ctx := context.Background()
	src := `
CREATE TABLE books (id INTEGER PRIMARY KEY, title TEXT NOT NULL);
-- seed
INSERT INTO books (id, title) VALUES (1, 'Dune; Messiah');
CREATE TRIGGER books_upper AFTER INSERT ON books
BEGIN
  UPDATE books SET title = upper(title) WHERE id = NEW.id;
END;
INSERT INTO books (id, title) VALUES (2, 'emma');
`
	report, err := r.Exec(ctx, src)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if report.Commands != 4 || report.Executed != 4 {
		t.Fatalf("report = %+v, want 4 commands executed", report)
	}
	if report.RunID == uuid.Nil {
		t.Fatalf("report has no run id")
	}

	rows, err := r.Query(ctx, "SELECT id, title FROM books ORDER BY id")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	want := Rows{
		Columns: []string{"id", "title"},
		Values:  [][]string{{"1", "Dune; Messiah"}, {"2", "EMMA"}},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	r := openSQLite(t)
	ctx := context.Background()
	if _, err := r.Exec(ctx, "CREATE TABLE t (a INTEGER NOT NULL)"); err != nil {
		t.Fatalf("Exec schema: %v", err)
	}

	report, err := r.Exec(ctx, "INSERT INTO t VALUES (1); INSERT INTO t VALUES (NULL); INSERT INTO t VALUES (3)")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %T: %v", err, err)
	}
	if cmdErr.Index != 1 || cmdErr.Command != "INSERT INTO t VALUES (NULL)" {
		t.Fatalf("unexpected command error: %+v", cmdErr)
	}
	if cmdErr.Unwrap() == nil {
		t.Fatalf("command error does not wrap the driver error")
	}
	if report.Executed != 1 || report.Commands != 3 {
		t.Fatalf("report = %+v, want 1 of 3 executed", report)
	}

	rows, err := r.Query(ctx, "SELECT count(*) FROM t")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got := rows.Values[0][0]; got != "0" {
		t.Fatalf("row count after rollback = %s, want 0", got)
	}
}

func TestExecUnbalanced(t *testing.T) {
	t.Parallel()

	r := openSQLite(t)
	_, err := r.Exec(context.Background(), "SELECT 1;\nEND;")
	var unbalanced *script.UnbalancedError
	if !errors.As(err, &unbalanced) {
		t.Fatalf("expected UnbalancedError, got %v", err)
	}
}

func TestExecGoSeparator(t *testing.T) {
	t.Parallel()

	r := openSQLite(t, WithSplitter(script.NewSplitter(script.WithSeparator(script.SeparatorGo))))
	report, err := r.Exec(context.Background(), "CREATE TABLE t (a INTEGER)\nGO\nINSERT INTO t VALUES (1)\nGO\n")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if report.Executed != 2 {
		t.Fatalf("executed = %d, want 2", report.Executed)
	}
}

func TestExecParseCheck(t *testing.T) {
	t.Parallel()

	r := openSQLite(t, WithParseCheck(nil))
	ctx := context.Background()
	if _, err := r.Exec(ctx, "CREATE TABLE t (a INTEGER, b VARCHAR(10))"); err != nil {
		t.Fatalf("Exec: %v", err)
	}

	report, err := r.Exec(ctx, "INSERT INTO t (a, b) VALUES (1, 'x'); INSERT INTO t (a b) VALUES (2)")
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected SyntaxError, got %T: %v", err, err)
	}
	if syntaxErr.Index != 1 {
		t.Fatalf("syntax error index = %d, want 1", syntaxErr.Index)
	}
	if report.Executed != 0 {
		t.Fatalf("executed = %d, want 0", report.Executed)
	}
}

func TestExecEmptyScript(t *testing.T) {
	t.Parallel()

	r := openSQLite(t)
	report, err := r.Exec(context.Background(), "-- nothing here\n;;")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if report.Commands != 0 {
		t.Fatalf("commands = %d, want 0", report.Commands)
	}
}

func TestQueryNull(t *testing.T) {
	t.Parallel()

	r := openSQLite(t)
	rows, err := r.Query(context.Background(), "SELECT NULL AS n, 'x' AS s")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if diff := cmp.Diff([][]string{{"NULL", "x"}}, rows.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, err := Open(ctx, "", "x"); !errors.Is(err, ErrNoDriver) {
		t.Fatalf("expected ErrNoDriver, got %v", err)
	}
	_, err := Open(ctx, "nosuchdriver", "x")
	if err == nil || !strings.Contains(err.Error(), `unknown driver "nosuchdriver"`) {
		t.Fatalf("unexpected error for unknown driver: %v", err)
	}
}

func TestCommandErrorMessage(t *testing.T) {
	t.Parallel()

	err := &CommandError{Index: 0, Command: "INSERT INTO t\n  VALUES (1)", Err: errors.New("boom")}
	if got, want := err.Error(), "command 1 (INSERT INTO t VALUES (1)): boom"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
