package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/electwix/sqlfront/internal/cache"
	"github.com/electwix/sqlfront/internal/runner"
	"github.com/electwix/sqlfront/internal/sql/ast"
	"github.com/electwix/sqlfront/internal/sql/parser"
	"github.com/electwix/sqlfront/internal/types"
)

const (
	replPrompt = "sql> "
	// replCacheSize bounds the per-session cache of parsed lines.
	replCacheSize = 256
)

type lineReader interface {
	Readline() (string, error)
	Close() error
}

func newReadline(prompt string, in io.Reader, out, errOut io.Writer) (lineReader, error) {
	return readline.NewEx(&readline.Config{
		Prompt: prompt,
		Stdin:  io.NopCloser(in),
		Stdout: out,
		Stderr: errOut,
	})
}

func newReplCmd(e *env, g *globalOptions) *cobra.Command {
	var (
		driver string
		dsn    string
	)
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively parse statements, optionally running them",
		Long: `repl reads one statement per line, prints its tree or diagnostics
and, when a data source is configured, runs statements that parsed
cleanly. Variable declarations carry over between lines. Type \q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := g.cfg.TypeRegistry()
			if err != nil {
				return err
			}
			s := newSession(cmd.OutOrStdout(), reg)
			if dsn != "" || g.cfg.DSN != "" {
				r, err := g.openRunner(cmd, driver, dsn, false)
				if err != nil {
					return err
				}
				defer func() { _ = r.Close() }()
				s.runner = r
			}

			rl, err := e.lineReader(replPrompt, e.stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("start line editor: %w", err)
			}
			defer func() { _ = rl.Close() }()
			return s.loop(cmd.Context(), rl)
		},
	}
	addDatabaseFlags(cmd, &driver, &dsn)
	return cmd
}

type session struct {
	out    io.Writer
	types  *types.Registry
	vars   *ast.VarTable
	runner *runner.Runner
	cache  *cache.Memory[*parser.Result]
}

func newSession(out io.Writer, reg *types.Registry) *session {
	return &session{
		out:   out,
		types: reg,
		vars:  ast.NewVarTable(),
		cache: cache.NewMemory[*parser.Result](replCacheSize),
	}
}

func (s *session) loop(ctx context.Context, rl lineReader) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case `\q`, "exit", "quit":
			return nil
		}
		s.eval(ctx, line)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *session) eval(ctx context.Context, line string) {
	res := s.parse(line)
	if res.HasErrors() {
		for _, msg := range res.Errors() {
			_, _ = fmt.Fprintln(s.out, msg)
		}
		return
	}
	s.vars = res.Variables
	_, _ = io.WriteString(s.out, ast.Format(res.Root))
	if s.runner == nil {
		return
	}

	if _, ok := res.Root.(*ast.SelectStatement); ok {
		rows, err := s.runner.Query(ctx, line)
		if err != nil {
			_, _ = fmt.Fprintln(s.out, "error:", err)
			return
		}
		table := tablewriter.NewWriter(s.out)
		table.SetHeader(rows.Columns)
		table.AppendBulk(rows.Values)
		table.Render()
		_, _ = fmt.Fprintf(s.out, "(%d rows)\n", len(rows.Values))
		return
	}
	report, err := s.runner.Exec(ctx, line)
	if err != nil {
		_, _ = fmt.Fprintln(s.out, "error:", err)
		return
	}
	_, _ = fmt.Fprintf(s.out, "ok (%d commands)\n", report.Executed)
}

// parse returns the result for line, reusing an earlier parse of the same
// line made with the same variable declarations in scope.
func (s *session) parse(line string) *parser.Result {
	key := cache.ComputeKey([]byte(line), s.varsSnapshot())
	if res, ok := s.cache.Get(key); ok {
		return res.Clone()
	}
	res := parser.ParseString("", line, parser.WithTypes(s.types), parser.WithVariables(s.vars))
	s.cache.Set(key, res)
	return res
}

func (s *session) varsSnapshot() []byte {
	var b []byte
	for _, name := range s.vars.Names() {
		typ, _ := s.vars.Lookup(name)
		b = append(b, name...)
		b = append(b, 0)
		b = append(b, typ...)
		b = append(b, 0)
	}
	return b
}
