// Package runner executes SQL scripts through database/sql. Scripts are
// split into commands by internal/script and run in one transaction.
package runner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	// Registered drivers: sqlite, pgx, postgres and mysql.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/electwix/sqlfront/internal/logging"
	"github.com/electwix/sqlfront/internal/script"
	"github.com/electwix/sqlfront/internal/sql/parser"
	"github.com/electwix/sqlfront/internal/types"
)

// ErrNoDriver is returned by Open when no driver name is given.
var ErrNoDriver = errors.New("runner: no database driver configured")

// CommandError reports the command that aborted a script.
type CommandError struct {
	// Index is the zero-based position of the command in the script.
	Index   int
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %d (%s): %v", e.Index+1, abbreviate(e.Command), e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// SyntaxError is returned when WithParseCheck is enabled and a command has
// parse errors. Nothing is executed in that case.
type SyntaxError struct {
	Index       int
	Diagnostics []parser.Diagnostic
}

func (e *SyntaxError) Error() string {
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("command %d: syntax error", e.Index+1)
	}
	return fmt.Sprintf("command %d: %s", e.Index+1, e.Diagnostics[0])
}

// Report summarizes one Exec call.
type Report struct {
	RunID    uuid.UUID
	Commands int
	Executed int
	Elapsed  time.Duration
}

// Rows is a fully read query result.
type Rows struct {
	Columns []string
	Values  [][]string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.OrNop(l)
	}
}

// WithSplitter sets the splitter used by Exec.
func WithSplitter(s *script.Splitter) Option {
	return func(r *Runner) {
		if s != nil {
			r.splitter = s
		}
	}
}

// WithParseCheck parses every command before the transaction starts and
// refuses scripts with syntax errors. reg may be nil.
func WithParseCheck(reg *types.Registry) Option {
	return func(r *Runner) {
		r.parseCheck = true
		r.types = reg
	}
}

// Runner executes scripts against one database handle.
type Runner struct {
	db         *sql.DB
	splitter   *script.Splitter
	logger     logging.Logger
	parseCheck bool
	types      *types.Registry
}

// New wraps an open database handle. The Runner does not take ownership
// of db unless it was created by Open.
func New(db *sql.DB, opts ...Option) *Runner {
	r := &Runner{
		db:       db,
		splitter: script.NewSplitter(),
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open opens and pings a database with the named driver.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Runner, error) {
	if driver == "" {
		return nil, ErrNoDriver
	}
	if !slices.Contains(sql.Drivers(), driver) {
		return nil, fmt.Errorf("runner: unknown driver %q (registered: %s)", driver, strings.Join(sql.Drivers(), ", "))
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return New(db, opts...), nil
}

// DB returns the underlying handle.
func (r *Runner) DB() *sql.DB { return r.db }

// Close closes the underlying handle.
func (r *Runner) Close() error { return r.db.Close() }

// Exec splits src and runs every command in order inside one transaction.
// The first failing command rolls the transaction back and is returned as
// a *CommandError. An unbalanced script returns *script.UnbalancedError
// before anything runs.
func (r *Runner) Exec(ctx context.Context, src string) (Report, error) {
	report := Report{RunID: uuid.New()}
	start := time.Now()
	logger := r.logger.With("run_id", report.RunID.String())

	commands, err := r.splitter.Split(src)
	if err != nil {
		return report, err
	}
	report.Commands = len(commands)
	if r.parseCheck {
		if err := r.check(commands); err != nil {
			return report, err
		}
	}
	if len(commands) == 0 {
		logger.Debug("empty script")
		return report, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, cmd := range commands {
		if _, err := tx.ExecContext(ctx, cmd); err != nil {
			logger.Error("command failed", "index", i, "error", err)
			report.Elapsed = time.Since(start)
			return report, &CommandError{Index: i, Command: cmd, Err: err}
		}
		report.Executed++
		logger.Debug("command executed", "index", i)
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit: %w", err)
	}
	report.Elapsed = time.Since(start)
	logger.Info("script executed", "commands", report.Executed, "elapsed", report.Elapsed)
	return report, nil
}

func (r *Runner) check(commands []string) error {
	for i, cmd := range commands {
		res := parser.ParseString("", cmd, parser.WithTypes(r.types))
		if res.HasErrors() {
			return &SyntaxError{Index: i, Diagnostics: res.Diagnostics}
		}
	}
	return nil
}

// Query runs a single statement and reads every row as text. NULL is
// rendered as "NULL".
func (r *Runner) Query(ctx context.Context, query string) (Rows, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return Rows{}, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return Rows{}, fmt.Errorf("read columns: %w", err)
	}
	out := Rows{Columns: cols}
	for rows.Next() {
		raw := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return Rows{}, fmt.Errorf("scan row: %w", err)
		}
		record := make([]string, len(cols))
		for i, v := range raw {
			if v.Valid {
				record[i] = v.String
			} else {
				record[i] = "NULL"
			}
		}
		out.Values = append(out.Values, record)
	}
	if err := rows.Err(); err != nil {
		return Rows{}, fmt.Errorf("read rows: %w", err)
	}
	return out, nil
}

func abbreviate(cmd string) string {
	cmd = strings.Join(strings.Fields(cmd), " ")
	const limit = 60
	if len(cmd) <= limit {
		return cmd
	}
	return cmd[:limit] + "..."
}
