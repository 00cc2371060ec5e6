package parser

import (
	"github.com/electwix/sqlfront/internal/sql/ast"
	"github.com/electwix/sqlfront/internal/sql/tokenizer"
)

func (p *Parser) parseSelect() *ast.SelectStatement {
	stmt := &ast.SelectStatement{Loc: ast.At(p.tok.Pos)}
	p.parseSelectBody(stmt)
	return stmt
}

// parseRecursiveQuery parses
// WITH RECURSIVE name(cols) AS (anchor UNION ALL recursive) outer-select.
func (p *Parser) parseRecursiveQuery() *ast.SelectStatement {
	stmt := &ast.SelectStatement{Loc: ast.At(p.tok.Pos)}
	cte := &ast.RecursiveCTE{Loc: ast.At(p.tok.Pos)}
	p.match(tokenizer.WITH)
	p.match(tokenizer.RECURSIVE)
	cte.Name = p.name()
	p.match(tokenizer.LParen)
	cte.Columns = p.list()
	p.match(tokenizer.RParen)
	p.match(tokenizer.AS)
	p.match(tokenizer.LParen)
	cte.Anchor = p.parseSimpleSelect()
	p.match(tokenizer.UNION)
	p.match(tokenizer.ALL)
	cte.Recursive = p.parseSimpleSelect()
	p.match(tokenizer.RParen)
	stmt.Recursive = cte
	p.parseSelectBody(stmt)
	return stmt
}

func (p *Parser) parseSelectBody(stmt *ast.SelectStatement) {
	stmt.Primary = p.parseSimpleSelect()
	for p.atAny(tokenizer.UNION, tokenizer.MINUS, tokenizer.EXCEPT, tokenizer.INTERSECT) {
		compound := &ast.CompoundSelect{Loc: ast.At(p.tok.Pos)}
		switch p.tok.Kind {
		case tokenizer.UNION:
			compound.Op = ast.Union
			p.next()
			if p.at(tokenizer.ALL) {
				compound.Op = ast.UnionAll
				p.next()
			}
		case tokenizer.MINUS:
			compound.Op = ast.Minus
			p.next()
		case tokenizer.EXCEPT:
			compound.Op = ast.Except
			p.next()
		case tokenizer.INTERSECT:
			compound.Op = ast.Intersect
			p.next()
		}
		compound.Select = p.parseSimpleSelect()
		stmt.Compound = append(stmt.Compound, compound)
	}

	if p.at(tokenizer.ORDER) {
		p.next()
		p.match(tokenizer.BY)
		stmt.OrderBy = append(stmt.OrderBy, p.parseOrderingTerm())
		for p.at(tokenizer.Comma) {
			p.next()
			stmt.OrderBy = append(stmt.OrderBy, p.parseOrderingTerm())
		}
	}
	if p.at(tokenizer.LIMIT) {
		p.next()
		stmt.Limit = p.parseExpr()
		if p.at(tokenizer.OFFSET) {
			p.next()
			stmt.Offset = p.parseExpr()
		}
	}
}

func (p *Parser) parseOrderingTerm() *ast.OrderingTerm {
	term := &ast.OrderingTerm{Loc: ast.At(p.tok.Pos)}
	term.Expr = p.parseExpr()
	switch p.tok.Kind {
	case tokenizer.ASC:
		p.next()
	case tokenizer.DESC:
		term.Desc = true
		p.next()
	}
	if p.at(tokenizer.NULLS) {
		p.next()
		switch p.tok.Kind {
		case tokenizer.FIRST:
			term.Nulls = ast.NullsFirst
		case tokenizer.LAST:
			term.Nulls = ast.NullsLast
		default:
			p.errorf(p.tok, "Expecting 'FIRST' or 'LAST' but found '%s'.", describe(p.tok))
		}
		p.next()
	}
	return term
}

func (p *Parser) parseSimpleSelect() *ast.SimpleSelect {
	sel := &ast.SimpleSelect{Loc: ast.At(p.tok.Pos)}
	p.match(tokenizer.SELECT)
	if p.at(tokenizer.TOP) {
		p.next()
		sel.Top = p.parseTerm()
	}
	switch p.tok.Kind {
	case tokenizer.DISTINCT:
		sel.Distinct = true
		p.next()
	case tokenizer.ALL:
		sel.All = true
		p.next()
	}

	if col := p.parseResultColumn(); col != nil {
		sel.Columns = append(sel.Columns, col)
	}
	for p.at(tokenizer.Comma) {
		p.next()
		if col := p.parseResultColumn(); col != nil {
			sel.Columns = append(sel.Columns, col)
		}
	}

	if !p.at(tokenizer.FROM) {
		p.errorf(p.tok, "Expecting 'FROM' to begin the table list but found '%s'.", describe(p.tok))
		p.skipUntil(tokenizer.FROM)
	}
	p.match(tokenizer.FROM)
	p.parseTableChain(sel)

	if p.at(tokenizer.WHERE) {
		p.next()
		sel.Where = p.parseExpr()
	}
	if p.at(tokenizer.GROUP) {
		p.next()
		p.match(tokenizer.BY)
		sel.GroupBy = p.parseExprList()
	}
	if p.at(tokenizer.HAVING) {
		p.next()
		sel.Having = p.parseExpr()
	}
	return sel
}

// parseResultColumn returns nil when no column could be parsed.
func (p *Parser) parseResultColumn() *ast.ResultColumn {
	col := &ast.ResultColumn{Loc: ast.At(p.tok.Pos)}
	if p.at(tokenizer.Mul) {
		p.next()
		col.Star = true
		return col
	}
	if !p.startsExpr() {
		p.errorf(p.tok, "Expecting a result column (* or expression) but found '%s'.", describe(p.tok))
		return nil
	}
	col.Expr = p.parseExpr()
	if name, ok := col.Expr.SingleTerm().(*ast.NameTerm); ok && len(name.Parts) > 1 && name.Parts[len(name.Parts)-1] == "*" {
		col.Star = true
		col.Table = ast.QualifiedName{Schema: schemaOf(name.Parts), Name: name.Parts[len(name.Parts)-2]}.String()
		col.Expr = nil
		return col
	}
	col.Alias = p.optionalAlias()
	return col
}

func schemaOf(parts []string) string {
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-3]
}

// parseTableChain parses table references joined by commas or JOIN
// clauses. An ON predicate belongs to the table it follows.
func (p *Parser) parseTableChain(sel *ast.SimpleSelect) {
	join := ast.JoinNone
	for {
		ref := p.parseTableRef(join)
		if ref != nil {
			sel.From = append(sel.From, ref)
		}
		if p.at(tokenizer.ON) {
			p.next()
			on := p.parseExpr()
			if ref != nil {
				ref.On = on
			}
		}
		join = p.parseJoin()
		if join == ast.JoinNone {
			return
		}
	}
}

func (p *Parser) parseJoin() ast.JoinKind {
	switch p.tok.Kind {
	case tokenizer.Comma:
		p.next()
		return ast.JoinComma
	case tokenizer.LEFT, tokenizer.RIGHT:
		kind := ast.JoinLeft
		if p.at(tokenizer.RIGHT) {
			kind = ast.JoinRight
		}
		p.next()
		if p.at(tokenizer.OUTER) {
			p.next()
		}
		p.match(tokenizer.JOIN)
		return kind
	case tokenizer.INNER, tokenizer.CROSS, tokenizer.NATURAL:
		kind := map[tokenizer.Kind]ast.JoinKind{
			tokenizer.INNER:   ast.JoinInner,
			tokenizer.CROSS:   ast.JoinCross,
			tokenizer.NATURAL: ast.JoinNatural,
		}[p.tok.Kind]
		p.next()
		p.match(tokenizer.JOIN)
		return kind
	case tokenizer.JOIN:
		p.next()
		return ast.JoinInner
	}
	return ast.JoinNone
}

func (p *Parser) parseTableRef(join ast.JoinKind) *ast.TableRef {
	ref := &ast.TableRef{Loc: ast.At(p.tok.Pos), Join: join}
	switch {
	case isName(p.tok):
		ref.Table = p.qualifiedName()
	case p.at(tokenizer.LParen):
		p.next()
		switch p.tok.Kind {
		case tokenizer.SELECT:
			ref.Subquery = p.parseSelect()
		case tokenizer.VALUES:
			ref.Values = p.parseValues()
		default:
			p.errorf(p.tok, "Expecting 'SELECT' or 'VALUES' but found '%s'.", describe(p.tok))
		}
		p.match(tokenizer.RParen)
	default:
		p.errorf(p.tok, "Expecting a table or subquery but found '%s'.", describe(p.tok))
		return nil
	}
	ref.Alias = p.optionalAlias()
	return ref
}
