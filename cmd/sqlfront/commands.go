package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/electwix/sqlfront/internal/diagnostics"
	"github.com/electwix/sqlfront/internal/frontend"
	"github.com/electwix/sqlfront/internal/runner"
	"github.com/electwix/sqlfront/internal/script"
	"github.com/electwix/sqlfront/internal/sql/ast"
	"github.com/electwix/sqlfront/internal/sql/parser"
)

func newParseCmd(e *env, g *globalOptions) *cobra.Command {
	var (
		printAST bool
		summary  bool
		ctxLines int
		vars     []string
	)
	cmd := &cobra.Command{
		Use:   "parse [file|glob|-]...",
		Short: "Parse SQL files and report diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := parseVars(vars)
			if err != nil {
				return err
			}
			reg, err := g.cfg.TypeRegistry()
			if err != nil {
				return err
			}
			sources, err := g.loadSources(e, args)
			if err != nil {
				return err
			}
			results, err := frontend.ParseFiles(cmd.Context(), sources, frontend.Options{
				Workers:   g.cfg.Workers,
				Types:     reg,
				Variables: seed,
				Logger:    g.logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, r := range results {
				_, _ = fmt.Fprintf(out, "%s: %s errors=%d\n", r.Path, r.Kind(), r.Result.ErrorCount)
				for _, d := range r.Result.Diagnostics {
					_, _ = fmt.Fprintln(out, "  "+d.String())
					if ctxLines > 0 {
						printContext(out, sources[i].Data, d, ctxLines)
					}
				}
				if printAST {
					_, _ = io.WriteString(out, ast.Format(r.Result.Root))
				}
			}
			if summary {
				renderParseSummary(out, results)
			}
			if frontend.ErrorCount(results) > 0 {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&printAST, "ast", false, "print the parsed tree")
	cmd.Flags().BoolVar(&summary, "summary", false, "print a per-file summary table")
	cmd.Flags().IntVar(&ctxLines, "context", 0, "print this many source lines around each diagnostic")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "predeclare a variable as name:type (repeatable)")
	return cmd
}

func printContext(w io.Writer, src []byte, d parser.Diagnostic, lines int) {
	ctx, err := diagnostics.Extract(src, d.Line, d.Column, lines)
	if err != nil {
		return
	}
	_, _ = io.WriteString(w, ctx.Format())
}

func renderParseSummary(w io.Writer, results []frontend.FileResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Kind", "Errors", "Variables"})
	for _, r := range results {
		table.Append([]string{
			r.Path,
			r.Kind(),
			strconv.Itoa(r.Result.ErrorCount),
			strconv.Itoa(r.Result.Variables.Len()),
		})
	}
	table.Render()
}

func newSplitCmd(e *env, g *globalOptions) *cobra.Command {
	var (
		separator string
		asTable   bool
	)
	cmd := &cobra.Command{
		Use:   "split [file|glob|-]...",
		Short: "Split SQL scripts into executable commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			sep := g.cfg.SplitSeparator()
			if cmd.Flags().Changed("separator") {
				parsed, err := script.ParseSeparator(separator)
				if err != nil {
					return err
				}
				sep = parsed
			}
			sources, err := g.loadSources(e, args)
			if err != nil {
				return err
			}
			results, err := frontend.SplitFiles(cmd.Context(), sources,
				script.NewSplitter(script.WithSeparator(sep)),
				frontend.Options{Workers: g.cfg.Workers, Logger: g.logger})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := false
			for _, r := range results {
				if r.Err != nil {
					failed = true
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s:%v\n", r.Path, r.Err)
					continue
				}
				if asTable {
					renderCommands(out, r)
					continue
				}
				for _, c := range r.Commands {
					_, _ = fmt.Fprintf(out, "%s\n;\n", c)
				}
			}
			if failed {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&separator, "separator", "", "extra command separator: go, slash or none")
	cmd.Flags().BoolVar(&asTable, "table", false, "print commands as a table")
	return cmd
}

func renderCommands(w io.Writer, r frontend.SplitResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "File", "Command"})
	table.SetAutoWrapText(false)
	for i, c := range r.Commands {
		table.Append([]string{strconv.Itoa(i + 1), r.Path, c})
	}
	table.Render()
}

func newExecCmd(e *env, g *globalOptions) *cobra.Command {
	var (
		driver string
		dsn    string
		check  bool
	)
	cmd := &cobra.Command{
		Use:   "exec [file|glob|-]...",
		Short: "Execute SQL scripts in a transaction per file",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.openRunner(cmd, driver, dsn, check)
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			sources, err := g.loadSources(e, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, src := range sources {
				report, err := r.Exec(cmd.Context(), string(src.Data))
				if err != nil {
					var cmdErr *runner.CommandError
					if errors.As(err, &cmdErr) {
						return fmt.Errorf("%s: %w (rolled back after %d of %d commands)", src.Path, err, report.Executed, report.Commands)
					}
					return fmt.Errorf("%s: %w", src.Path, err)
				}
				_, _ = fmt.Fprintf(out, "%s: executed %d commands in %s\n", src.Path, report.Executed, report.Elapsed.Round(time.Millisecond))
			}
			return nil
		},
	}
	addDatabaseFlags(cmd, &driver, &dsn)
	cmd.Flags().BoolVar(&check, "check", false, "parse every command first and refuse scripts with syntax errors")
	return cmd
}

func addDatabaseFlags(cmd *cobra.Command, driver, dsn *string) {
	cmd.Flags().StringVar(driver, "driver", "", "database/sql driver: sqlite, pgx, postgres or mysql (default from dialect)")
	cmd.Flags().StringVar(dsn, "dsn", "", "data source name (default from config)")
}

func (o *globalOptions) openRunner(cmd *cobra.Command, driver, dsn string, check bool) (*runner.Runner, error) {
	if driver == "" {
		driver = o.cfg.DriverName()
	}
	if dsn == "" {
		dsn = o.cfg.DSN
	}
	if dsn == "" {
		return nil, errors.New("no data source: pass --dsn or set dsn in the configuration")
	}
	opts := []runner.Option{
		runner.WithLogger(o.logger),
		runner.WithSplitter(script.NewSplitter(o.cfg.SplitOptions()...)),
	}
	if check {
		reg, err := o.cfg.TypeRegistry()
		if err != nil {
			return nil, err
		}
		opts = append(opts, runner.WithParseCheck(reg))
	}
	return runner.Open(cmd.Context(), driver, dsn, opts...)
}
