package parser

import (
	"strings"

	"github.com/electwix/sqlfront/internal/sql/ast"
	"github.com/electwix/sqlfront/internal/sql/tokenizer"
)

var comparators = []tokenizer.Kind{
	tokenizer.Eq,
	tokenizer.Neq,
	tokenizer.Lss,
	tokenizer.Gtr,
	tokenizer.Leq,
	tokenizer.Geq,
	tokenizer.Overlap,
}

var termStarts = []tokenizer.Kind{
	tokenizer.Variable,
	tokenizer.Integer,
	tokenizer.Float,
	tokenizer.String,
	tokenizer.Question,
	tokenizer.Add,
	tokenizer.Sub,
	tokenizer.LParen,
	tokenizer.CASE,
	tokenizer.NULL,
	tokenizer.CURRENT_DATE,
	tokenizer.CURRENT_TIME,
	tokenizer.CURRENT_TIMESTAMP,
	tokenizer.DEFAULT,
	tokenizer.NOT,
	tokenizer.EXISTS,
}

// startsExpr reports whether the current token can begin an expression.
func (p *Parser) startsExpr() bool {
	return isName(p.tok) || p.atAny(termStarts...)
}

func (p *Parser) parseExpr() *ast.Expression {
	expr := &ast.Expression{Loc: ast.At(p.tok.Pos)}
	expr.Terms = append(expr.Terms, p.parseAndCondition())
	for p.at(tokenizer.OR) {
		p.next()
		expr.Terms = append(expr.Terms, p.parseAndCondition())
	}
	return expr
}

func (p *Parser) parseExprList() []*ast.Expression {
	list := []*ast.Expression{p.parseExpr()}
	for p.at(tokenizer.Comma) {
		p.next()
		list = append(list, p.parseExpr())
	}
	return list
}

func (p *Parser) parseAndCondition() *ast.AndCondition {
	and := &ast.AndCondition{Loc: ast.At(p.tok.Pos)}
	and.Conditions = append(and.Conditions, p.parseCondition())
	for p.at(tokenizer.AND) {
		p.next()
		and.Conditions = append(and.Conditions, p.parseCondition())
	}
	return and
}

func (p *Parser) parseCondition() *ast.Condition {
	if p.at(tokenizer.NOT) {
		p.next()
		c := p.parseCondition()
		c.Not = !c.Not
		return c
	}

	c := &ast.Condition{Loc: ast.At(p.tok.Pos)}
	if p.at(tokenizer.EXISTS) {
		p.next()
		c.Op = ast.CondExists
		p.match(tokenizer.LParen)
		c.Subquery = p.parseSelect()
		p.match(tokenizer.RParen)
		return c
	}

	c.Left = p.parseOperand()
	switch {
	case p.atAny(comparators...):
		c.Op = ast.CondCompare
		c.Comparator = p.tok.Kind
		p.next()
		if p.atAny(tokenizer.ALL, tokenizer.ANY, tokenizer.SOME) {
			c.Quantifier = p.tok.Kind
			p.next()
			p.match(tokenizer.LParen)
			c.Subquery = p.parseSelect()
			p.match(tokenizer.RParen)
			return c
		}
		c.Right = p.parseOperand()
	case p.at(tokenizer.IS):
		p.next()
		if p.at(tokenizer.NOT) {
			c.Negated = true
			p.next()
		}
		switch p.tok.Kind {
		case tokenizer.NULL:
			c.Op = ast.CondIsNull
			p.next()
		case tokenizer.DISTINCT:
			c.Op = ast.CondIsDistinct
			p.next()
			p.match(tokenizer.FROM)
			c.Right = p.parseOperand()
		default:
			p.errorf(p.tok, "Expecting 'NULL' or 'DISTINCT' but found '%s'.", describe(p.tok))
		}
	case p.at(tokenizer.NOT):
		p.next()
		c.Negated = true
		if !p.atAny(tokenizer.BETWEEN, tokenizer.IN, tokenizer.LIKE) {
			p.errorf(p.tok, "Expecting 'BETWEEN', 'IN' or 'LIKE' after 'NOT' but found '%s'.", describe(p.tok))
			return c
		}
		p.parsePredicate(c)
	case p.atAny(tokenizer.BETWEEN, tokenizer.IN, tokenizer.LIKE, tokenizer.REGEXP):
		p.parsePredicate(c)
	}
	return c
}

// parsePredicate parses the BETWEEN, IN, LIKE and REGEXP forms.
func (p *Parser) parsePredicate(c *ast.Condition) {
	switch p.tok.Kind {
	case tokenizer.BETWEEN:
		p.next()
		c.Op = ast.CondBetween
		c.Right = p.parseOperand()
		p.match(tokenizer.AND)
		c.Upper = p.parseOperand()
	case tokenizer.IN:
		p.next()
		c.Op = ast.CondIn
		p.match(tokenizer.LParen)
		if p.at(tokenizer.SELECT) {
			c.Subquery = p.parseSelect()
		} else {
			c.List = p.parseExprList()
		}
		p.match(tokenizer.RParen)
	case tokenizer.LIKE:
		p.next()
		c.Op = ast.CondLike
		c.Right = p.parseOperand()
		if p.at(tokenizer.ESCAPE) {
			p.next()
			c.Escape = p.parseOperand()
		}
	case tokenizer.REGEXP:
		p.next()
		c.Op = ast.CondRegexp
		c.Right = p.parseOperand()
	}
}

func (p *Parser) parseOperand() *ast.Operand {
	op := &ast.Operand{Loc: ast.At(p.tok.Pos)}
	if s := p.parseSummand(); len(s.Factors) > 0 {
		op.Summands = append(op.Summands, s)
	}
	for p.at(tokenizer.Concat) {
		p.next()
		if s := p.parseSummand(); len(s.Factors) > 0 {
			op.Summands = append(op.Summands, s)
		}
	}
	return op
}

func (p *Parser) parseSummand() *ast.Summand {
	s := &ast.Summand{Loc: ast.At(p.tok.Pos)}
	if f := p.parseFactor(); len(f.Terms) > 0 {
		s.Factors = append(s.Factors, f)
	}
	for p.atAny(tokenizer.Add, tokenizer.Sub) {
		kind := p.tok.Kind
		p.next()
		f := p.parseFactor()
		if len(f.Terms) == 0 {
			continue
		}
		if len(s.Factors) > 0 {
			s.Ops = append(s.Ops, kind)
		}
		s.Factors = append(s.Factors, f)
	}
	return s
}

// parseFactor drops terms that failed to parse so Ops stays aligned with
// Terms.
func (p *Parser) parseFactor() *ast.Factor {
	f := &ast.Factor{Loc: ast.At(p.tok.Pos)}
	if t := p.parseTerm(); t != nil {
		f.Terms = append(f.Terms, t)
	}
	for p.atAny(tokenizer.Mul, tokenizer.Quo, tokenizer.Rem) {
		kind := p.tok.Kind
		p.next()
		t := p.parseTerm()
		if t == nil {
			continue
		}
		if len(f.Terms) > 0 {
			f.Ops = append(f.Ops, kind)
		}
		f.Terms = append(f.Terms, t)
	}
	return f
}

// parseTerm returns nil, without advancing, when the current token cannot
// start a term.
func (p *Parser) parseTerm() ast.Term {
	tok := p.tok
	loc := ast.At(tok.Pos)
	switch tok.Kind {
	case tokenizer.Variable:
		p.next()
		return p.variable(tok)
	case tokenizer.Integer, tokenizer.Float:
		p.next()
		return &ast.NumberTerm{
			Loc:     loc,
			Text:    tok.Text,
			IsFloat: tok.Kind == tokenizer.Float,
			Int:     tok.Int,
			Float:   tok.Float,
			Decimal: tok.Decimal,
		}
	case tokenizer.String:
		p.next()
		return &ast.StringTerm{Loc: loc, Value: tok.Text}
	case tokenizer.Question:
		p.next()
		return p.param(loc)
	case tokenizer.Add, tokenizer.Sub:
		p.next()
		inner := p.parseTerm()
		if inner == nil {
			return nil
		}
		return &ast.SignedTerm{Loc: loc, Negative: tok.Kind == tokenizer.Sub, Term: inner}
	case tokenizer.LParen:
		p.next()
		if p.at(tokenizer.SELECT) {
			sub := p.parseSelect()
			p.match(tokenizer.RParen)
			return &ast.SubqueryTerm{Loc: loc, Select: sub}
		}
		items := p.parseExprList()
		p.match(tokenizer.RParen)
		return &ast.ListTerm{Loc: loc, Items: items}
	case tokenizer.CASE:
		return p.parseCase()
	case tokenizer.NULL:
		p.next()
		return &ast.NullTerm{Loc: loc}
	case tokenizer.CURRENT_DATE, tokenizer.CURRENT_TIME, tokenizer.CURRENT_TIMESTAMP:
		p.next()
		return &ast.KeywordTerm{Loc: loc, Keyword: tok.Kind}
	case tokenizer.DEFAULT:
		p.next()
		return &ast.DefaultTerm{Loc: loc}
	}

	if isName(tok) {
		if isDateKeyword(tok) && p.tz.Peek().Kind == tokenizer.String {
			p.next()
			value := p.tok.Text
			p.next()
			return &ast.DateTimeTerm{Loc: loc, Keyword: strings.ToUpper(tok.Text), Value: value}
		}
		return p.parseNameOrCall()
	}

	p.errorf(tok, "Expecting a term but found '%s'.", describe(tok))
	return nil
}

func isDateKeyword(tok tokenizer.Token) bool {
	if tok.Kind != tokenizer.Ident {
		return false
	}
	switch strings.ToLower(tok.Text) {
	case "date", "time", "timestamp":
		return true
	}
	return false
}

// variable resolves the type of an @name reference. A typed reference
// declares the name; an untyped one must have been declared earlier.
func (p *Parser) variable(tok tokenizer.Token) ast.Term {
	v := &ast.VariableTerm{Loc: ast.At(tok.Pos), Name: tok.Text, TypeName: tok.TypeName}
	switch typ, ok := p.vars.Lookup(tok.Text); {
	case v.TypeName != "":
		p.vars.Declare(v.Name, v.TypeName)
	case ok:
		v.TypeName = typ
	default:
		p.errorf(tok, "Variable %s has no type.", tok.Text)
	}
	p.refs = append(p.refs, v)
	return v
}

// param reads the optional index of a ? placeholder: ?n, ?+n or ?-n.
func (p *Parser) param(loc ast.Loc) ast.Term {
	term := &ast.ParamTerm{Loc: loc}
	sign := int64(1)
	if p.atAny(tokenizer.Add, tokenizer.Sub) && p.tz.Peek().Kind == tokenizer.Integer {
		if p.at(tokenizer.Sub) {
			sign = -1
		}
		p.next()
	}
	if p.at(tokenizer.Integer) {
		term.Index = sign * p.tok.Int
		term.HasIndex = true
		p.next()
	}
	return term
}

// parseNameOrCall reads a dotted name, a trailing .* or a function call.
func (p *Parser) parseNameOrCall() ast.Term {
	loc := ast.At(p.tok.Pos)
	parts := []string{p.name()}
	for p.at(tokenizer.Period) {
		p.next()
		if p.at(tokenizer.Mul) {
			p.next()
			parts = append(parts, "*")
			return &ast.NameTerm{Loc: loc, Parts: parts}
		}
		parts = append(parts, p.name())
	}
	if !p.at(tokenizer.LParen) {
		return &ast.NameTerm{Loc: loc, Parts: parts}
	}

	call := &ast.FuncTerm{Loc: loc, Name: strings.Join(parts, ".")}
	p.next()
	switch {
	case p.at(tokenizer.Mul):
		call.Star = true
		p.next()
	case p.at(tokenizer.DISTINCT):
		call.Distinct = true
		p.next()
		call.Args = p.parseExprList()
	case !p.at(tokenizer.RParen):
		call.Args = p.parseExprList()
	}
	p.match(tokenizer.RParen)
	return call
}

func (p *Parser) parseCase() ast.Term {
	term := &ast.CaseTerm{Loc: ast.At(p.tok.Pos)}
	p.match(tokenizer.CASE)
	if !p.at(tokenizer.WHEN) {
		term.Operand = p.parseExpr()
	}
	if !p.at(tokenizer.WHEN) {
		p.errorf(p.tok, "Expecting 'WHEN' but found '%s'.", describe(p.tok))
	}
	for p.at(tokenizer.WHEN) {
		when := &ast.WhenClause{Loc: ast.At(p.tok.Pos)}
		p.next()
		when.When = p.parseExpr()
		p.match(tokenizer.THEN)
		when.Then = p.parseExpr()
		term.Whens = append(term.Whens, when)
	}
	if p.at(tokenizer.ELSE) {
		p.next()
		term.Else = p.parseExpr()
	}
	p.match(tokenizer.END)
	return term
}
