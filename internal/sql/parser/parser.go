// Package parser implements a recursive-descent SQL parser with
// per-construct error recovery.
package parser

import (
	"fmt"
	"slices"

	"github.com/electwix/sqlfront/internal/logging"
	"github.com/electwix/sqlfront/internal/sql/ast"
	"github.com/electwix/sqlfront/internal/sql/tokenizer"
	"github.com/electwix/sqlfront/internal/types"
)

// maxReportedErrors caps recorded diagnostics. Errors past the cap are
// still counted.
const maxReportedErrors = 25

var defaultTypes = types.NewRegistry()

// Diagnostic is one recorded syntax error.
type Diagnostic struct {
	Path    string
	Line    int
	Column  int
	Offset  int
	Message string
}

func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("[%d, %d] - ERROR: %s", d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s - [%d, %d] - ERROR: %s", d.Path, d.Line, d.Column, d.Message)
}

// Result is the outcome of a parse. Root is never nil.
type Result struct {
	Root        ast.SQL
	Diagnostics []Diagnostic
	// ErrorCount counts every error, including those not recorded as
	// diagnostics.
	ErrorCount int
	// Variables holds every @name:type declaration seen, on top of any
	// table supplied through WithVariables.
	Variables *ast.VarTable
	// References lists variable references in source order.
	References []*ast.VariableTerm
}

// Errors returns the diagnostics formatted as "<file> - [line, col] - ERROR: <message>".
func (r *Result) Errors() []string {
	out := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		out[i] = d.String()
	}
	return out
}

// HasErrors reports whether any error was counted.
func (r *Result) HasErrors() bool { return r.ErrorCount > 0 }

// Clone returns a copy of r with its own variable table and slices. Root
// and the referenced terms are shared and must be treated as read-only.
func (r *Result) Clone() *Result {
	cp := *r
	cp.Diagnostics = slices.Clone(r.Diagnostics)
	cp.References = slices.Clone(r.References)
	cp.Variables = r.Variables.Clone()
	return &cp
}

// Option configures a Parser.
type Option func(*Parser)

// WithTypes replaces the built-in column type table. The registry is only read.
func WithTypes(reg *types.Registry) Option {
	return func(p *Parser) {
		if reg != nil {
			p.types = reg
		}
	}
}

// WithVariables seeds variable declarations. The table is copied; the
// caller's table is never modified.
func WithVariables(vars *ast.VarTable) Option {
	return func(p *Parser) {
		p.vars = vars.Clone()
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logging.Logger) Option {
	return func(p *Parser) {
		p.logger = logging.OrNop(l)
	}
}

// Parser turns a token stream into a single AST root. A Parser consumes
// its tokenizer and is meant to be used for one Parse call.
type Parser struct {
	tz  *tokenizer.Tokenizer
	tok tokenizer.Token

	types  *types.Registry
	vars   *ast.VarTable
	refs   []*ast.VariableTerm
	logger logging.Logger

	diagnostics   []Diagnostic
	errCount      int
	lastErrOffset int
}

// New returns a parser reading from t.
func New(t *tokenizer.Tokenizer, opts ...Option) *Parser {
	p := &Parser{
		tz:            t,
		types:         defaultTypes,
		vars:          ast.NewVarTable(),
		logger:        logging.NewNopLogger(),
		lastErrOffset: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseString parses src. name is only used to prefix diagnostics.
func ParseString(name, src string, opts ...Option) *Result {
	return New(tokenizer.NewString(name, src), opts...).Parse()
}

// Parse parses one statement, or a batch of DDL statements when the input
// starts with CREATE. It never fails: syntax errors are reported through
// the returned diagnostics.
func (p *Parser) Parse() *Result {
	p.next()
	if !p.atStart() {
		p.errorf(p.tok, "Expecting a SQL statement (CREATE, ALTER, DROP, UPDATE, INSERT, DELETE, WITH or SELECT) but found '%s'.", describe(p.tok))
		p.skipToStart()
	}
	root := p.parseStatement()
	p.logger.Debug("parsed sql",
		"path", p.tz.Name(),
		"kind", ast.KindOf(root),
		"errors", p.errCount,
		"variables", p.vars.Len(),
	)
	return &Result{
		Root:        root,
		Diagnostics: p.diagnostics,
		ErrorCount:  p.errCount,
		Variables:   p.vars,
		References:  p.refs,
	}
}

func (p *Parser) parseStatement() ast.SQL {
	switch p.tok.Kind {
	case tokenizer.CREATE:
		return p.parseDDL()
	case tokenizer.ALTER:
		change := p.parseAlterTable()
		p.endStatement()
		return change
	case tokenizer.DROP:
		change := p.parseDropTable()
		p.endStatement()
		return change
	case tokenizer.UPDATE:
		stmt := p.parseUpdate()
		p.endStatement()
		return stmt
	case tokenizer.INSERT:
		stmt := p.parseInsert()
		p.endStatement()
		return stmt
	case tokenizer.DELETE:
		stmt := p.parseDelete()
		p.endStatement()
		return stmt
	case tokenizer.SELECT, tokenizer.WITH:
		pos := p.tok.Pos
		var stmt *ast.SelectStatement
		if p.at(tokenizer.WITH) {
			stmt = p.parseRecursiveQuery()
		} else {
			stmt = p.parseSelect()
		}
		if isEmptySelect(stmt) {
			return &ast.Empty{Loc: ast.At(pos)}
		}
		p.endStatement()
		return stmt
	}
	return &ast.Empty{Loc: ast.At(p.tok.Pos)}
}

// endStatement checks that nothing but ';' or EOF follows a statement.
// Tokens after the ';' are ignored.
func (p *Parser) endStatement() {
	if !p.at(tokenizer.EOF) && !p.at(tokenizer.Semicolon) {
		p.errorf(p.tok, "Garbage tokens at the end of the statement")
	}
}

func isEmptySelect(s *ast.SelectStatement) bool {
	return s.Primary == nil || len(s.Primary.Columns) == 0 || len(s.Primary.From) == 0
}

func (p *Parser) next() {
	p.tok = p.tz.Next()
}

func (p *Parser) at(k tokenizer.Kind) bool {
	return p.tok.Kind == k
}

func (p *Parser) atAny(kinds ...tokenizer.Kind) bool {
	for _, k := range kinds {
		if p.tok.Kind == k {
			return true
		}
	}
	return false
}

var startKinds = []tokenizer.Kind{
	tokenizer.CREATE,
	tokenizer.ALTER,
	tokenizer.DROP,
	tokenizer.UPDATE,
	tokenizer.INSERT,
	tokenizer.DELETE,
	tokenizer.WITH,
	tokenizer.SELECT,
	tokenizer.EOF,
}

func (p *Parser) atStart() bool {
	return p.atAny(startKinds...)
}

// skipToStart discards tokens until a statement start or EOF.
func (p *Parser) skipToStart() {
	for !p.atStart() {
		p.next()
	}
}

// skipUntil discards tokens until one of kinds or EOF.
func (p *Parser) skipUntil(kinds ...tokenizer.Kind) {
	for !p.at(tokenizer.EOF) && !p.atAny(kinds...) {
		p.next()
	}
}

// match consumes the current token, recording a diagnostic when it is not
// of kind k. It always advances.
func (p *Parser) match(k tokenizer.Kind) tokenizer.Token {
	tok := p.tok
	if tok.Kind != k {
		p.errorf(tok, "Expecting '%s' but found '%s'.", k, describe(tok))
	}
	p.next()
	return tok
}

// pass consumes the fixed sequence kinds, but only when the current token
// is kinds[0].
func (p *Parser) pass(kinds ...tokenizer.Kind) bool {
	if len(kinds) == 0 || !p.at(kinds[0]) {
		return false
	}
	for _, k := range kinds {
		p.match(k)
	}
	return true
}

func isName(tok tokenizer.Token) bool {
	return tok.Kind == tokenizer.Ident || tok.Kind.IsSoft()
}

// name matches an identifier. Soft keywords are accepted as names.
func (p *Parser) name() string {
	tok := p.tok
	if !isName(tok) {
		p.errorf(tok, "Expecting 'IDENT' but found '%s'.", describe(tok))
	}
	p.next()
	return tok.Text
}

// list parses a comma separated list of names.
func (p *Parser) list() []string {
	names := []string{p.name()}
	for p.at(tokenizer.Comma) {
		p.next()
		names = append(names, p.name())
	}
	return names
}

func (p *Parser) qualifiedName() ast.QualifiedName {
	first := p.name()
	if !p.at(tokenizer.Period) {
		return ast.QualifiedName{Name: first}
	}
	p.next()
	return ast.QualifiedName{Schema: first, Name: p.name()}
}

// optionalAlias reads "AS name" or a bare identifier.
func (p *Parser) optionalAlias() string {
	if p.at(tokenizer.AS) {
		p.next()
		return p.name()
	}
	if p.at(tokenizer.Ident) {
		alias := p.tok.Text
		p.next()
		return alias
	}
	return ""
}

// integer reads an integer literal. A mismatch is reported without
// advancing.
func (p *Parser) integer() int64 {
	switch p.tok.Kind {
	case tokenizer.Integer:
		n := p.tok.Int
		p.next()
		return n
	case tokenizer.Float:
		n := int64(p.tok.Float)
		p.next()
		return n
	}
	p.errorf(p.tok, "Expecting a number but found '%s'.", describe(p.tok))
	return 0
}

// errorf counts an error and records it unless it sits at or before the
// last error position or the report cap is reached.
func (p *Parser) errorf(tok tokenizer.Token, format string, args ...any) {
	offset := tok.Pos.Offset
	if offset > p.lastErrOffset && p.errCount < maxReportedErrors {
		p.diagnostics = append(p.diagnostics, Diagnostic{
			Path:    p.tz.Name(),
			Line:    tok.Pos.Line,
			Column:  tok.Pos.Column,
			Offset:  offset,
			Message: fmt.Sprintf(format, args...),
		})
	}
	p.errCount++
	if offset > p.lastErrOffset {
		p.lastErrOffset = offset
	}
}

func describe(tok tokenizer.Token) string {
	switch tok.Kind {
	case tokenizer.EOF:
		return "EOF"
	case tokenizer.Ident, tokenizer.String, tokenizer.Integer, tokenizer.Float, tokenizer.Illegal:
		return tok.Text
	}
	return tok.String()
}
