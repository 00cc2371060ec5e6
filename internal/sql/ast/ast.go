// Package ast declares the syntax tree produced by the SQL parser.
package ast

import (
	"strings"

	"github.com/electwix/sqlfront/internal/sql/tokenizer"
	"github.com/electwix/sqlfront/internal/types"
)

// Node is implemented by every syntax node.
type Node interface {
	Position() tokenizer.Position
}

// Loc records where a node starts in the source.
type Loc struct {
	Pos tokenizer.Position
}

// At returns a Loc for pos.
func At(pos tokenizer.Position) Loc { return Loc{Pos: pos} }

// Position returns the start of the node.
func (l Loc) Position() tokenizer.Position { return l.Pos }

// SQL is the root of a parse.
type SQL interface {
	Node
	sqlRoot()
}

// QualifiedName is an optionally schema-qualified object name.
type QualifiedName struct {
	Schema string
	Name   string
}

func (q QualifiedName) String() string {
	if q.Schema == "" {
		return q.Name
	}
	return q.Schema + "." + q.Name
}

// DDL is a batch of CREATE TABLE statements. ALTER and DROP statements that
// appear inside the batch are validated but not retained.
type DDL struct {
	Loc
	Tables []*CreateTable
}

// ChangeKind distinguishes the schema change statements that are parsed for
// syntax only.
type ChangeKind int

const (
	// Alter marks an ALTER TABLE statement.
	Alter ChangeKind = iota + 1
	// Drop marks a DROP TABLE statement.
	Drop
)

func (k ChangeKind) String() string {
	switch k {
	case Alter:
		return "ALTER"
	case Drop:
		return "DROP"
	}
	return "UNKNOWN"
}

// SchemaChange marks a standalone ALTER or DROP statement. Only the kind and
// the affected table names are kept.
type SchemaChange struct {
	Loc
	Kind   ChangeKind
	Tables []QualifiedName
}

// Empty is returned for vacuous or malformed input.
type Empty struct {
	Loc
}

// InsertMode is the optional DIRECT or SORTED hint of INSERT ... SELECT.
type InsertMode int

const (
	InsertDefault InsertMode = iota
	InsertDirect
	InsertSorted
)

// Assignment is one col = expr pair of a SET list.
type Assignment struct {
	Loc
	Column string
	Value  *Expression
}

// InsertStatement covers every INSERT form. Exactly one of Assignments,
// Rows or Select is populated on a successful parse.
type InsertStatement struct {
	Loc
	Table       QualifiedName
	Columns     []string
	Assignments []*Assignment
	Rows        [][]*Expression
	Mode        InsertMode
	Select      *SelectStatement
}

// UpdateStatement is either UPDATE ... SET col = expr or
// UPDATE ... (cols) = (SELECT ...).
type UpdateStatement struct {
	Loc
	Table       QualifiedName
	Alias       string
	Assignments []*Assignment
	Columns     []string
	Select      *SelectStatement
	Where       *Expression
	Limit       *Expression
}

// DeleteStatement is DELETE FROM table [WHERE ...] [LIMIT term].
type DeleteStatement struct {
	Loc
	Table QualifiedName
	Where *Expression
	Limit Term
}

func (*DDL) sqlRoot()             {}
func (*SchemaChange) sqlRoot()    {}
func (*Empty) sqlRoot()           {}
func (*InsertStatement) sqlRoot() {}
func (*UpdateStatement) sqlRoot() {}
func (*DeleteStatement) sqlRoot() {}
func (*SelectStatement) sqlRoot() {}

// KindOf returns a short label for a root node.
func KindOf(root SQL) string {
	switch n := root.(type) {
	case *DDL:
		return "DDL"
	case *SchemaChange:
		return n.Kind.String()
	case *InsertStatement:
		return "INSERT"
	case *UpdateStatement:
		return "UPDATE"
	case *DeleteStatement:
		return "DELETE"
	case *SelectStatement:
		return "SELECT"
	case *Empty:
		return "EMPTY"
	}
	return "UNKNOWN"
}

// CreateTable is a single CREATE TABLE statement.
type CreateTable struct {
	Loc
	Schema      string
	Name        string
	Temporary   bool
	IfNotExists bool
	Elements    []TableElement
}

// Columns returns the column definitions in declaration order.
func (c *CreateTable) Columns() []*ColumnDefinition {
	var out []*ColumnDefinition
	for _, el := range c.Elements {
		if col, ok := el.(*ColumnDefinition); ok {
			out = append(out, col)
		}
	}
	return out
}

// Constraints returns the table-level constraints in declaration order.
func (c *CreateTable) Constraints() []*Constraint {
	var out []*Constraint
	for _, el := range c.Elements {
		if con, ok := el.(*Constraint); ok {
			out = append(out, con)
		}
	}
	return out
}

// TableElement is a *ColumnDefinition or a *Constraint.
type TableElement interface {
	Node
	tableElement()
}

// ColumnDefinition describes one column of a CREATE TABLE.
type ColumnDefinition struct {
	Loc
	Name     string
	TypeName string
	Type     types.JDBCType
	Size     int
	Scale    int
	HasSize  bool
	HasScale bool

	NotNull       bool
	Null          bool
	PrimaryKey    bool
	Hash          bool
	Unique        bool
	AutoIncrement bool
	Identity      bool

	// Start and Increment are the IDENTITY(start, increment) arguments.
	Start        int64
	Increment    int64
	HasStart     bool
	HasIncrement bool

	Default Term
	Check   *Expression
}

// Nullable reports whether the column accepts NULL.
func (c *ColumnDefinition) Nullable() bool {
	return !c.NotNull && !c.PrimaryKey
}

// ConstraintKind enumerates table constraints.
type ConstraintKind int

const (
	ConstraintCheck ConstraintKind = iota + 1
	ConstraintUnique
	ConstraintPrimary
	ConstraintPrimaryHash
	ConstraintForeign
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintCheck:
		return "CHECK"
	case ConstraintUnique:
		return "UNIQUE"
	case ConstraintPrimary:
		return "PRIMARY"
	case ConstraintPrimaryHash:
		return "PRIMARY HASH"
	case ConstraintForeign:
		return "FOREIGN"
	}
	return "UNKNOWN"
}

// RefAction is a foreign key ON DELETE / ON UPDATE action.
type RefAction int

const (
	ActionUnspecified RefAction = iota
	ActionCascade
	ActionRestrict
	ActionNoAction
	ActionSetDefault
	ActionSetNull
)

func (a RefAction) String() string {
	switch a {
	case ActionCascade:
		return "CASCADE"
	case ActionRestrict:
		return "RESTRICT"
	case ActionNoAction:
		return "NO ACTION"
	case ActionSetDefault:
		return "SET DEFAULT"
	case ActionSetNull:
		return "SET NULL"
	}
	return ""
}

// Constraint is a table-level constraint.
type Constraint struct {
	Loc
	Kind       ConstraintKind
	Name       string
	Columns    []string
	Check      *Expression
	RefTable   QualifiedName
	RefColumns []string
	OnDelete   RefAction
	OnUpdate   RefAction
}

func (*ColumnDefinition) tableElement() {}
func (*Constraint) tableElement()       {}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
