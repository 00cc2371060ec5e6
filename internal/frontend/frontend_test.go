package frontend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/electwix/sqlfront/internal/cache"
	"github.com/electwix/sqlfront/internal/fileset"
	"github.com/electwix/sqlfront/internal/script"
	"github.com/electwix/sqlfront/internal/sql/ast"
	"github.com/electwix/sqlfront/internal/sql/parser"
	"github.com/electwix/sqlfront/internal/types"
)

func TestParseFiles(t *testing.T) {
	t.Parallel()

	sources := []fileset.Source{
		{Path: "schema.sql", Data: []byte("CREATE TABLE t (id INT PRIMARY KEY, name VARCHAR(20));")},
		{Path: "bad.sql", Data: []byte("SELECT a FROM t WHERE")},
		{Path: "insert.sql", Data: []byte("INSERT INTO t (id) VALUES (1)")},
		{Path: "empty.sql", Data: nil},
	}

	results, err := ParseFiles(context.Background(), sources, Options{Workers: 2})
	if err != nil {
		t.Fatalf("ParseFiles returned error: %v", err)
	}

	var got []string
	for _, r := range results {
		got = append(got, fmt.Sprintf("%s %s %t", r.Path, r.Kind(), r.Result.HasErrors()))
	}
	want := []string{"schema.sql DDL false", "bad.sql SELECT true", "insert.sql INSERT false", "empty.sql EMPTY true"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	if got := ErrorCount(results); got < 2 {
		t.Fatalf("ErrorCount = %d, want at least 2", got)
	}
}

func TestParseFilesUsesTypeRegistry(t *testing.T) {
	t.Parallel()

	reg := types.NewRegistry()
	if err := reg.Define("money", "DECIMAL(19,4)"); err != nil {
		t.Fatalf("Define: %v", err)
	}
	sources := []fileset.Source{{Path: "a.sql", Data: []byte("CREATE TABLE t (price money)")}}

	results, err := ParseFiles(context.Background(), sources, Options{Types: reg})
	if err != nil {
		t.Fatalf("ParseFiles returned error: %v", err)
	}
	ddl, ok := results[0].Result.Root.(*ast.DDL)
	if !ok || len(ddl.Tables) != 1 {
		t.Fatalf("root = %T, want DDL with one table", results[0].Result.Root)
	}
	col := ddl.Tables[0].Columns()[0]
	if col.Type != types.Decimal {
		t.Fatalf("column type = %v, want DECIMAL", col.Type)
	}
}

func TestParseFilesVariablesAreIsolated(t *testing.T) {
	t.Parallel()

	seed := ast.NewVarTable()
	seed.Declare("id", "int")
	sources := []fileset.Source{
		{Path: "a.sql", Data: []byte("SELECT a FROM t WHERE id = @id AND x = @x:varchar")},
		{Path: "b.sql", Data: []byte("SELECT a FROM t WHERE y = @x")},
	}

	results, err := ParseFiles(context.Background(), sources, Options{Variables: seed})
	if err != nil {
		t.Fatalf("ParseFiles returned error: %v", err)
	}
	if results[0].Result.HasErrors() {
		t.Fatalf("a.sql: unexpected errors %v", results[0].Result.Errors())
	}
	if !results[1].Result.HasErrors() {
		t.Fatalf("b.sql: expected undeclared variable error")
	}
	if _, ok := seed.Lookup("x"); ok {
		t.Fatalf("seed table was modified")
	}
}

func TestParseFilesCache(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[*parser.Result](0)
	sources := []fileset.Source{
		{Path: "a.sql", Data: []byte("SELECT a FROM t")},
		{Path: "b.sql", Data: []byte("DELETE FROM t")},
	}
	first, err := ParseFiles(context.Background(), sources, Options{Cache: c})
	if err != nil {
		t.Fatalf("ParseFiles returned error: %v", err)
	}

	sources[1].Data = []byte("DELETE FROM t WHERE id = 1")
	second, err := ParseFiles(context.Background(), sources, Options{Cache: c})
	if err != nil {
		t.Fatalf("ParseFiles returned error: %v", err)
	}
	if first[0].Result.Root != second[0].Result.Root {
		t.Fatalf("unchanged file was parsed again")
	}
	if first[0].Result.Variables == second[0].Result.Variables {
		t.Fatalf("cache hit shares the variable table with the cached result")
	}
	if first[1].Result.Root == second[1].Result.Root {
		t.Fatalf("changed file was served from the cache")
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 3 {
		t.Fatalf("cache stats = %d hits, %d misses, want 1, 3", hits, misses)
	}
}

func TestParseFilesCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParseFiles(ctx, []fileset.Source{{Path: "a.sql", Data: []byte("SELECT 1 FROM t")}}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSplitFiles(t *testing.T) {
	t.Parallel()

	sources := []fileset.Source{
		{Path: "ok.sql", Data: []byte("SELECT 1;\nGO\nSELECT 2")},
		{Path: "bad.sql", Data: []byte("SELECT 1;\nEND;")},
	}
	splitter := script.NewSplitter(script.WithSeparator(script.SeparatorGo))

	results, err := SplitFiles(context.Background(), sources, splitter, Options{})
	if err != nil {
		t.Fatalf("SplitFiles returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"SELECT 1", "SELECT 2"}, results[0].Commands); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
	var unbalanced *script.UnbalancedError
	if !errors.As(results[1].Err, &unbalanced) {
		t.Fatalf("expected UnbalancedError, got %v", results[1].Err)
	}
	if results[1].Commands != nil {
		t.Fatalf("rejected script returned commands %v", results[1].Commands)
	}
}

func BenchmarkParseFiles(b *testing.B) {
	sources := make([]fileset.Source, 32)
	for i := range sources {
		sources[i] = fileset.Source{
			Path: fmt.Sprintf("q%d.sql", i),
			Data: []byte("SELECT a.x, b.y FROM a JOIN b ON a.id = b.id WHERE a.x > 10 AND b.y LIKE 'z%' ORDER BY a.x"),
		}
	}
	ctx := context.Background()
	b.ResetTimer()
	for range b.N {
		if _, err := ParseFiles(ctx, sources, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
