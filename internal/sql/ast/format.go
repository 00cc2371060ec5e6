package ast

import (
	"fmt"
	"strings"
)

// Format renders a node as an indented outline. Expressions are rendered
// inline as SQL text.
func Format(n Node) string {
	p := &printer{}
	p.node(n)
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) line(format string, args ...any) {
	p.b.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

func (p *printer) nested(fn func()) {
	p.indent++
	fn()
	p.indent--
}

func (p *printer) node(n Node) {
	switch n := n.(type) {
	case nil:
		p.line("<nil>")
	case *DDL:
		p.line("DDL")
		p.nested(func() {
			for _, t := range n.Tables {
				p.node(t)
			}
		})
	case *SchemaChange:
		names := make([]string, len(n.Tables))
		for i, t := range n.Tables {
			names[i] = t.String()
		}
		p.line("%s TABLE %s", n.Kind, strings.Join(names, ", "))
	case *Empty:
		p.line("Empty")
	case *CreateTable:
		p.createTable(n)
	case *ColumnDefinition:
		p.column(n)
	case *Constraint:
		p.constraint(n)
	case *InsertStatement:
		p.insert(n)
	case *UpdateStatement:
		p.update(n)
	case *DeleteStatement:
		p.line("Delete %s", n.Table)
		p.nested(func() {
			if n.Where != nil {
				p.line("Where %s", n.Where)
			}
			if n.Limit != nil {
				p.line("Limit %s", n.Limit)
			}
		})
	case *SelectStatement:
		p.selectStatement(n)
	case *SimpleSelect:
		p.simpleSelect(n)
	case *Expression:
		p.line("%s", n)
	case Term:
		p.line("%s", n)
	default:
		p.line("%T", n)
	}
}

func (p *printer) createTable(t *CreateTable) {
	var mods []string
	if t.Temporary {
		mods = append(mods, "temporary")
	}
	if t.IfNotExists {
		mods = append(mods, "if not exists")
	}
	name := QualifiedName{Schema: t.Schema, Name: t.Name}.String()
	if len(mods) > 0 {
		p.line("CreateTable %s (%s)", name, strings.Join(mods, ", "))
	} else {
		p.line("CreateTable %s", name)
	}
	p.nested(func() {
		for _, el := range t.Elements {
			p.node(el)
		}
	})
}

func (p *printer) column(c *ColumnDefinition) {
	var b strings.Builder
	fmt.Fprintf(&b, "Column %s %s", c.Name, c.Type)
	if c.HasSize {
		fmt.Fprintf(&b, "(%d", c.Size)
		if c.HasScale {
			fmt.Fprintf(&b, ",%d", c.Scale)
		}
		b.WriteString(")")
	}
	flags := []struct {
		on   bool
		name string
	}{
		{c.NotNull, "not null"},
		{c.PrimaryKey, "primary key"},
		{c.Hash, "hash"},
		{c.Unique, "unique"},
		{c.AutoIncrement, "auto increment"},
		{c.Identity, "identity"},
	}
	for _, f := range flags {
		if f.on {
			b.WriteString(" " + f.name)
		}
	}
	if c.HasStart {
		fmt.Fprintf(&b, " start=%d", c.Start)
	}
	if c.HasIncrement {
		fmt.Fprintf(&b, " increment=%d", c.Increment)
	}
	if c.Default != nil {
		b.WriteString(" default=" + c.Default.String())
	}
	if c.Check != nil {
		b.WriteString(" check=(" + c.Check.String() + ")")
	}
	p.line("%s", b.String())
}

func (p *printer) constraint(c *Constraint) {
	label := "Constraint " + c.Kind.String()
	if c.Name != "" {
		label += " " + c.Name
	}
	switch c.Kind {
	case ConstraintCheck:
		p.line("%s (%s)", label, c.Check)
	case ConstraintForeign:
		out := fmt.Sprintf("%s (%s) REFERENCES %s", label, joinNames(c.Columns), c.RefTable)
		if len(c.RefColumns) > 0 {
			out += " (" + joinNames(c.RefColumns) + ")"
		}
		if c.OnDelete != ActionUnspecified {
			out += " ON DELETE " + c.OnDelete.String()
		}
		if c.OnUpdate != ActionUnspecified {
			out += " ON UPDATE " + c.OnUpdate.String()
		}
		p.line("%s", out)
	default:
		p.line("%s (%s)", label, joinNames(c.Columns))
	}
}

func (p *printer) assignments(list []*Assignment) {
	p.line("Set")
	p.nested(func() {
		for _, a := range list {
			p.line("%s = %s", a.Column, a.Value)
		}
	})
}

func (p *printer) insert(s *InsertStatement) {
	p.line("Insert %s", s.Table)
	p.nested(func() {
		if len(s.Columns) > 0 {
			p.line("Columns %s", joinNames(s.Columns))
		}
		if len(s.Assignments) > 0 {
			p.assignments(s.Assignments)
		}
		for _, row := range s.Rows {
			p.line("Values (%s)", expressionList(row))
		}
		switch s.Mode {
		case InsertDirect:
			p.line("Direct")
		case InsertSorted:
			p.line("Sorted")
		}
		if s.Select != nil {
			p.node(s.Select)
		}
	})
}

func (p *printer) update(s *UpdateStatement) {
	if s.Alias != "" {
		p.line("Update %s AS %s", s.Table, s.Alias)
	} else {
		p.line("Update %s", s.Table)
	}
	p.nested(func() {
		if len(s.Assignments) > 0 {
			p.assignments(s.Assignments)
		}
		if len(s.Columns) > 0 {
			p.line("Columns %s", joinNames(s.Columns))
		}
		if s.Select != nil {
			p.node(s.Select)
		}
		if s.Where != nil {
			p.line("Where %s", s.Where)
		}
		if s.Limit != nil {
			p.line("Limit %s", s.Limit)
		}
	})
}

func (p *printer) selectStatement(s *SelectStatement) {
	p.line("Select")
	p.nested(func() {
		if r := s.Recursive; r != nil {
			p.line("WithRecursive %s(%s)", r.Name, joinNames(r.Columns))
			p.nested(func() {
				p.node(r.Anchor)
				p.line("UNION ALL")
				p.node(r.Recursive)
			})
		}
		p.node(s.Primary)
		for _, c := range s.Compound {
			p.line("%s", c.Op)
			p.node(c.Select)
		}
		if len(s.OrderBy) > 0 {
			p.line("OrderBy")
			p.nested(func() {
				for _, o := range s.OrderBy {
					p.line("%s", o)
				}
			})
		}
		if s.Limit != nil {
			p.line("Limit %s", s.Limit)
		}
		if s.Offset != nil {
			p.line("Offset %s", s.Offset)
		}
	})
}

func (p *printer) simpleSelect(s *SimpleSelect) {
	if s == nil {
		p.line("<nil>")
		return
	}
	head := "SimpleSelect"
	if s.Distinct {
		head += " DISTINCT"
	}
	if s.Top != nil {
		head += " TOP " + s.Top.String()
	}
	p.line("%s", head)
	p.nested(func() {
		p.line("Columns")
		p.nested(func() {
			for _, c := range s.Columns {
				p.line("%s", c)
			}
		})
		if len(s.From) > 0 {
			p.line("From")
			p.nested(func() {
				for _, t := range s.From {
					if t.Join == JoinNone || t.Join == JoinComma {
						p.line("%s", t)
					} else {
						p.line("%s %s", t.Join, t)
					}
				}
			})
		}
		if s.Where != nil {
			p.line("Where %s", s.Where)
		}
		if len(s.GroupBy) > 0 {
			p.line("GroupBy %s", expressionList(s.GroupBy))
		}
		if s.Having != nil {
			p.line("Having %s", s.Having)
		}
	})
}
