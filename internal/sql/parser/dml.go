package parser

import (
	"github.com/electwix/sqlfront/internal/sql/ast"
	"github.com/electwix/sqlfront/internal/sql/tokenizer"
)

var insertResume = []tokenizer.Kind{
	tokenizer.SET,
	tokenizer.LParen,
	tokenizer.DIRECT,
	tokenizer.SORTED,
	tokenizer.VALUES,
	tokenizer.SELECT,
}

var updateResume = []tokenizer.Kind{
	tokenizer.SET,
	tokenizer.LParen,
}

func (p *Parser) parseInsert() *ast.InsertStatement {
	stmt := &ast.InsertStatement{Loc: ast.At(p.tok.Pos)}
	p.match(tokenizer.INSERT)
	p.match(tokenizer.INTO)
	stmt.Table = p.qualifiedName()

	if !p.atAny(insertResume...) {
		p.errorf(p.tok, "Expecting a token to start a list of columns but found '%s'.", describe(p.tok))
		p.skipUntil(insertResume...)
	}

	switch p.tok.Kind {
	case tokenizer.SET:
		p.next()
		stmt.Assignments = p.parseAssignments()
	case tokenizer.LParen:
		p.next()
		stmt.Columns = p.list()
		p.match(tokenizer.RParen)
		if p.at(tokenizer.VALUES) {
			stmt.Rows = p.parseValues()
		} else {
			stmt.Mode = p.parseInsertMode()
			stmt.Select = p.parseSelect()
		}
	case tokenizer.VALUES:
		stmt.Rows = p.parseValues()
	case tokenizer.DIRECT, tokenizer.SORTED, tokenizer.SELECT:
		stmt.Mode = p.parseInsertMode()
		stmt.Select = p.parseSelect()
	default:
		p.errorf(p.tok, "Unexpected token in insert statement: '%s'.", describe(p.tok))
	}
	return stmt
}

func (p *Parser) parseInsertMode() ast.InsertMode {
	mode := ast.InsertDefault
	if p.at(tokenizer.DIRECT) {
		p.next()
		mode = ast.InsertDirect
	}
	if p.at(tokenizer.SORTED) {
		p.next()
		mode = ast.InsertSorted
	}
	return mode
}

// parseValues reads VALUES (...), (...). Every row must have the width of
// the first one.
func (p *Parser) parseValues() [][]*ast.Expression {
	p.match(tokenizer.VALUES)
	rows := [][]*ast.Expression{p.parseParenList()}
	for p.at(tokenizer.Comma) {
		p.next()
		row := p.parseParenList()
		if len(row) != len(rows[0]) {
			p.errorf(p.tok, "All parenthesized lists of expressions in VALUES must have equal size.")
		}
		rows = append(rows, row)
	}
	return rows
}

func (p *Parser) parseParenList() []*ast.Expression {
	p.match(tokenizer.LParen)
	list := p.parseExprList()
	p.match(tokenizer.RParen)
	return list
}

func (p *Parser) parseAssignments() []*ast.Assignment {
	list := []*ast.Assignment{p.parseAssignment()}
	for p.at(tokenizer.Comma) {
		p.next()
		list = append(list, p.parseAssignment())
	}
	return list
}

func (p *Parser) parseAssignment() *ast.Assignment {
	a := &ast.Assignment{Loc: ast.At(p.tok.Pos)}
	a.Column = p.name()
	p.match(tokenizer.Eq)
	a.Value = p.parseExpr()
	return a
}

func (p *Parser) parseUpdate() *ast.UpdateStatement {
	stmt := &ast.UpdateStatement{Loc: ast.At(p.tok.Pos)}
	p.match(tokenizer.UPDATE)
	stmt.Table = p.qualifiedName()
	stmt.Alias = p.optionalAlias()

	if !p.atAny(updateResume...) {
		p.errorf(p.tok, "Expecting 'SET' or '(' but found '%s'.", describe(p.tok))
		p.skipUntil(updateResume...)
	}

	switch p.tok.Kind {
	case tokenizer.SET:
		p.next()
		stmt.Assignments = p.parseAssignments()
	case tokenizer.LParen:
		p.next()
		stmt.Columns = p.list()
		p.match(tokenizer.RParen)
		p.match(tokenizer.Eq)
		p.match(tokenizer.LParen)
		stmt.Select = p.parseSelect()
		p.match(tokenizer.RParen)
	}

	if p.at(tokenizer.WHERE) {
		p.next()
		stmt.Where = p.parseExpr()
	}
	if p.at(tokenizer.LIMIT) {
		p.next()
		stmt.Limit = p.parseExpr()
	}
	return stmt
}

func (p *Parser) parseDelete() *ast.DeleteStatement {
	stmt := &ast.DeleteStatement{Loc: ast.At(p.tok.Pos)}
	p.match(tokenizer.DELETE)
	p.match(tokenizer.FROM)
	stmt.Table = p.qualifiedName()
	if p.at(tokenizer.WHERE) {
		p.next()
		stmt.Where = p.parseExpr()
	}
	if p.at(tokenizer.LIMIT) {
		p.next()
		stmt.Limit = p.parseTerm()
	}
	return stmt
}
