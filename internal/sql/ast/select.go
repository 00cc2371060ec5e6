package ast

import "strings"

// SelectStatement is a compound query with optional ordering and limits.
type SelectStatement struct {
	Loc
	// Recursive is set for WITH RECURSIVE queries; Primary is then the
	// outer select.
	Recursive *RecursiveCTE
	Primary   *SimpleSelect
	Compound  []*CompoundSelect
	OrderBy   []*OrderingTerm
	Limit     *Expression
	Offset    *Expression
}

// CompoundOp is a set operator between simple selects.
type CompoundOp int

const (
	Union CompoundOp = iota + 1
	UnionAll
	Minus
	Except
	Intersect
)

func (op CompoundOp) String() string {
	switch op {
	case Union:
		return "UNION"
	case UnionAll:
		return "UNION ALL"
	case Minus:
		return "MINUS"
	case Except:
		return "EXCEPT"
	case Intersect:
		return "INTERSECT"
	}
	return "UNKNOWN"
}

// CompoundSelect is one "op select" continuation.
type CompoundSelect struct {
	Loc
	Op     CompoundOp
	Select *SimpleSelect
}

// RecursiveCTE is WITH RECURSIVE name(cols) AS (anchor UNION ALL recursive).
type RecursiveCTE struct {
	Loc
	Name      string
	Columns   []string
	Anchor    *SimpleSelect
	Recursive *SimpleSelect
}

// SimpleSelect is a single SELECT ... FROM ... block.
type SimpleSelect struct {
	Loc
	Top      Term
	Distinct bool
	All      bool
	Columns  []*ResultColumn
	From     []*TableRef
	Where    *Expression
	GroupBy  []*Expression
	Having   *Expression
}

// ResultColumn is *, table.* or an expression with an optional alias.
type ResultColumn struct {
	Loc
	Star  bool
	Table string
	Expr  *Expression
	Alias string
}

// JoinKind describes how a table reference joins the one before it.
type JoinKind int

const (
	// JoinNone marks the first table of a FROM clause.
	JoinNone JoinKind = iota
	JoinComma
	JoinInner
	JoinLeft
	JoinRight
	JoinCross
	JoinNatural
)

func (j JoinKind) String() string {
	switch j {
	case JoinComma:
		return ","
	case JoinInner:
		return "INNER JOIN"
	case JoinLeft:
		return "LEFT OUTER JOIN"
	case JoinRight:
		return "RIGHT OUTER JOIN"
	case JoinCross:
		return "CROSS JOIN"
	case JoinNatural:
		return "NATURAL JOIN"
	}
	return ""
}

// TableRef is a table or derived table in a FROM chain.
type TableRef struct {
	Loc
	Join     JoinKind
	Table    QualifiedName
	Subquery *SelectStatement
	Values   [][]*Expression
	Alias    string
	On       *Expression
}

// NullsOrder is the NULLS FIRST / NULLS LAST modifier.
type NullsOrder int

const (
	NullsDefault NullsOrder = iota
	NullsFirst
	NullsLast
)

// OrderingTerm is one ORDER BY item.
type OrderingTerm struct {
	Loc
	Expr  *Expression
	Desc  bool
	Nulls NullsOrder
}

func (s *SelectStatement) String() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	if s.Recursive != nil {
		r := s.Recursive
		b.WriteString("WITH RECURSIVE " + r.Name + "(" + joinNames(r.Columns) + ") AS (")
		b.WriteString(r.Anchor.String() + " UNION ALL " + r.Recursive.String() + ") ")
	}
	b.WriteString(s.Primary.String())
	for _, c := range s.Compound {
		b.WriteString(" " + c.Op.String() + " " + c.Select.String())
	}
	if len(s.OrderBy) > 0 {
		parts := make([]string, len(s.OrderBy))
		for i, o := range s.OrderBy {
			parts[i] = o.String()
		}
		b.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}
	if s.Limit != nil {
		b.WriteString(" LIMIT " + s.Limit.String())
	}
	if s.Offset != nil {
		b.WriteString(" OFFSET " + s.Offset.String())
	}
	return b.String()
}

func (s *SimpleSelect) String() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Top != nil {
		b.WriteString("TOP " + s.Top.String() + " ")
	}
	if s.Distinct {
		b.WriteString("DISTINCT ")
	} else if s.All {
		b.WriteString("ALL ")
	}
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = c.String()
	}
	b.WriteString(strings.Join(cols, ", "))
	if len(s.From) > 0 {
		b.WriteString(" FROM ")
		for i, t := range s.From {
			if i > 0 {
				if t.Join == JoinComma {
					b.WriteString(", ")
				} else {
					b.WriteString(" " + t.Join.String() + " ")
				}
			}
			b.WriteString(t.String())
		}
	}
	if s.Where != nil {
		b.WriteString(" WHERE " + s.Where.String())
	}
	if len(s.GroupBy) > 0 {
		b.WriteString(" GROUP BY " + expressionList(s.GroupBy))
	}
	if s.Having != nil {
		b.WriteString(" HAVING " + s.Having.String())
	}
	return b.String()
}

func (r *ResultColumn) String() string {
	var out string
	switch {
	case r.Star && r.Table != "":
		out = r.Table + ".*"
	case r.Star:
		out = "*"
	default:
		out = r.Expr.String()
	}
	if r.Alias != "" {
		out += " AS " + r.Alias
	}
	return out
}

func (t *TableRef) String() string {
	out := t.Table.String()
	switch {
	case t.Subquery != nil:
		out = "(" + t.Subquery.String() + ")"
	case len(t.Values) > 0:
		rows := make([]string, len(t.Values))
		for i, row := range t.Values {
			rows[i] = "(" + expressionList(row) + ")"
		}
		out = "(VALUES " + strings.Join(rows, ", ") + ")"
	}
	if t.Alias != "" {
		out += " " + t.Alias
	}
	if t.On != nil {
		out += " ON " + t.On.String()
	}
	return out
}

func (o *OrderingTerm) String() string {
	out := o.Expr.String()
	if o.Desc {
		out += " DESC"
	}
	switch o.Nulls {
	case NullsFirst:
		out += " NULLS FIRST"
	case NullsLast:
		out += " NULLS LAST"
	}
	return out
}
