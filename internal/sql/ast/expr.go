package ast

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/electwix/sqlfront/internal/sql/tokenizer"
)

// Expression is a disjunction: AndCondition (OR AndCondition)*.
type Expression struct {
	Loc
	Terms []*AndCondition
}

// AndCondition is a conjunction: Condition (AND Condition)*.
type AndCondition struct {
	Loc
	Conditions []*Condition
}

// CondOp identifies the predicate form of a Condition.
type CondOp int

const (
	// CondOperand is a bare operand with no predicate.
	CondOperand CondOp = iota
	CondCompare
	CondIsNull
	CondIsDistinct
	CondBetween
	CondIn
	CondLike
	CondRegexp
	CondExists
)

// Condition is one predicate. Not is a leading NOT; Negated is the NOT inside
// IS NOT NULL, NOT BETWEEN, NOT IN, NOT LIKE and IS NOT DISTINCT FROM.
type Condition struct {
	Loc
	Not     bool
	Op      CondOp
	Negated bool
	Left    *Operand

	// Comparator is set for CondCompare. Quantifier is ALL, ANY or SOME
	// for quantified comparisons and EOF otherwise.
	Comparator tokenizer.Kind
	Quantifier tokenizer.Kind

	Right    *Operand
	Upper    *Operand
	List     []*Expression
	Subquery *SelectStatement
	Escape   *Operand
}

// Operand is a concatenation: Summand (|| Summand)*.
type Operand struct {
	Loc
	Summands []*Summand
}

// Summand is Factor ((+|-) Factor)*. Ops[i] joins Factors[i] and Factors[i+1].
type Summand struct {
	Loc
	Factors []*Factor
	Ops     []tokenizer.Kind
}

// Factor is Term ((*|/|%) Term)*. Ops[i] joins Terms[i] and Terms[i+1].
type Factor struct {
	Loc
	Terms []Term
	Ops   []tokenizer.Kind
}

// Term is a primary expression.
type Term interface {
	Node
	String() string
	term()
}

// NameTerm is a possibly qualified column reference such as t.col.
type NameTerm struct {
	Loc
	Parts []string
}

// DateTimeTerm is a DATE, TIME or TIMESTAMP literal.
type DateTimeTerm struct {
	Loc
	Keyword string
	Value   string
}

// VariableTerm is an @name host variable. TypeName is the declared or
// remembered type, empty when none is known.
type VariableTerm struct {
	Loc
	Name     string
	TypeName string
}

// NumberTerm is a numeric literal.
type NumberTerm struct {
	Loc
	Text    string
	IsFloat bool
	Int     int64
	Float   float64
	Decimal decimal.Decimal
}

// StringTerm is a single-quoted literal.
type StringTerm struct {
	Loc
	Value string
}

// ParamTerm is a positional bind parameter: ?, ?n, ?+n or ?-n.
type ParamTerm struct {
	Loc
	Index    int64
	HasIndex bool
}

// ListTerm is a parenthesized expression list; a single item is a plain
// parenthesized expression.
type ListTerm struct {
	Loc
	Items []*Expression
}

// SubqueryTerm is a scalar subquery.
type SubqueryTerm struct {
	Loc
	Select *SelectStatement
}

// SignedTerm is a unary plus or minus applied to a term.
type SignedTerm struct {
	Loc
	Negative bool
	Term     Term
}

// CaseTerm is CASE [operand] WHEN ... THEN ... [ELSE ...] END.
type CaseTerm struct {
	Loc
	Operand *Expression
	Whens   []*WhenClause
	Else    *Expression
}

// WhenClause is one WHEN ... THEN ... arm.
type WhenClause struct {
	Loc
	When *Expression
	Then *Expression
}

// NullTerm is the NULL literal.
type NullTerm struct {
	Loc
}

// KeywordTerm is CURRENT_DATE, CURRENT_TIME or CURRENT_TIMESTAMP.
type KeywordTerm struct {
	Loc
	Keyword tokenizer.Kind
}

// DefaultTerm is the DEFAULT keyword used as a value.
type DefaultTerm struct {
	Loc
}

// FuncTerm is a function call. Star is set for name(*).
type FuncTerm struct {
	Loc
	Name     string
	Distinct bool
	Star     bool
	Args     []*Expression
}

func (*NameTerm) term()     {}
func (*DateTimeTerm) term() {}
func (*VariableTerm) term() {}
func (*NumberTerm) term()   {}
func (*StringTerm) term()   {}
func (*ParamTerm) term()    {}
func (*ListTerm) term()     {}
func (*SubqueryTerm) term() {}
func (*SignedTerm) term()   {}
func (*CaseTerm) term()     {}
func (*NullTerm) term()     {}
func (*KeywordTerm) term()  {}
func (*DefaultTerm) term()  {}
func (*FuncTerm) term()     {}

func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " OR ")
}

func (a *AndCondition) String() string {
	parts := make([]string, len(a.Conditions))
	for i, c := range a.Conditions {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

func (c *Condition) String() string {
	var b strings.Builder
	if c.Not {
		b.WriteString("NOT ")
	}
	not := ""
	if c.Negated {
		not = "NOT "
	}
	switch c.Op {
	case CondOperand:
		b.WriteString(c.Left.String())
	case CondCompare:
		b.WriteString(c.Left.String())
		b.WriteString(" " + c.Comparator.String() + " ")
		if c.Quantifier.IsKeyword() {
			b.WriteString(c.Quantifier.String() + " (" + c.Subquery.String() + ")")
		} else {
			b.WriteString(c.Right.String())
		}
	case CondIsNull:
		b.WriteString(c.Left.String() + " IS " + not + "NULL")
	case CondIsDistinct:
		b.WriteString(c.Left.String() + " IS " + not + "DISTINCT FROM " + c.Right.String())
	case CondBetween:
		b.WriteString(c.Left.String() + " " + not + "BETWEEN " + c.Right.String() + " AND " + c.Upper.String())
	case CondIn:
		b.WriteString(c.Left.String() + " " + not + "IN (")
		if c.Subquery != nil {
			b.WriteString(c.Subquery.String())
		} else {
			b.WriteString(expressionList(c.List))
		}
		b.WriteString(")")
	case CondLike:
		b.WriteString(c.Left.String() + " " + not + "LIKE " + c.Right.String())
		if c.Escape != nil {
			b.WriteString(" ESCAPE " + c.Escape.String())
		}
	case CondRegexp:
		b.WriteString(c.Left.String() + " REGEXP " + c.Right.String())
	case CondExists:
		b.WriteString("EXISTS (" + c.Subquery.String() + ")")
	}
	return b.String()
}

func (o *Operand) String() string {
	if o == nil {
		return ""
	}
	parts := make([]string, len(o.Summands))
	for i, s := range o.Summands {
		parts[i] = s.String()
	}
	return strings.Join(parts, " || ")
}

func (s *Summand) String() string {
	var b strings.Builder
	for i, f := range s.Factors {
		if i > 0 {
			b.WriteString(" " + s.Ops[i-1].String() + " ")
		}
		b.WriteString(f.String())
	}
	return b.String()
}

func (f *Factor) String() string {
	var b strings.Builder
	for i, t := range f.Terms {
		if i > 0 {
			b.WriteString(" " + f.Ops[i-1].String() + " ")
		}
		b.WriteString(t.String())
	}
	return b.String()
}

func (n *NameTerm) String() string { return strings.Join(n.Parts, ".") }

func (d *DateTimeTerm) String() string { return d.Keyword + " '" + d.Value + "'" }

func (v *VariableTerm) String() string {
	if v.TypeName == "" {
		return "@" + v.Name
	}
	return "@" + v.Name + ":" + v.TypeName
}

func (n *NumberTerm) String() string { return n.Text }

func (s *StringTerm) String() string { return "'" + s.Value + "'" }

func (p *ParamTerm) String() string {
	if !p.HasIndex {
		return "?"
	}
	return "?" + strconv.FormatInt(p.Index, 10)
}

func (l *ListTerm) String() string { return "(" + expressionList(l.Items) + ")" }

func (s *SubqueryTerm) String() string { return "(" + s.Select.String() + ")" }

func (s *SignedTerm) String() string {
	if s.Negative {
		return "-" + s.Term.String()
	}
	return "+" + s.Term.String()
}

func (c *CaseTerm) String() string {
	var b strings.Builder
	b.WriteString("CASE")
	if c.Operand != nil {
		b.WriteString(" " + c.Operand.String())
	}
	for _, w := range c.Whens {
		b.WriteString(" WHEN " + w.When.String() + " THEN " + w.Then.String())
	}
	if c.Else != nil {
		b.WriteString(" ELSE " + c.Else.String())
	}
	b.WriteString(" END")
	return b.String()
}

func (*NullTerm) String() string { return "NULL" }

func (k *KeywordTerm) String() string { return k.Keyword.String() }

func (*DefaultTerm) String() string { return "DEFAULT" }

func (f *FuncTerm) String() string {
	switch {
	case f.Star:
		return f.Name + "(*)"
	case f.Distinct:
		return f.Name + "(DISTINCT " + expressionList(f.Args) + ")"
	}
	return f.Name + "(" + expressionList(f.Args) + ")"
}

func expressionList(items []*Expression) string {
	parts := make([]string, len(items))
	for i, e := range items {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// SingleTerm returns the term of an expression that consists of exactly one
// term with no operators, or nil.
func (e *Expression) SingleTerm() Term {
	if e == nil || len(e.Terms) != 1 || len(e.Terms[0].Conditions) != 1 {
		return nil
	}
	c := e.Terms[0].Conditions[0]
	if c.Op != CondOperand || c.Not || len(c.Left.Summands) != 1 {
		return nil
	}
	s := c.Left.Summands[0]
	if len(s.Factors) != 1 || len(s.Factors[0].Terms) != 1 {
		return nil
	}
	return s.Factors[0].Terms[0]
}
