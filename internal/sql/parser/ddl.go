package parser

import (
	"strings"

	"github.com/electwix/sqlfront/internal/sql/ast"
	"github.com/electwix/sqlfront/internal/sql/tokenizer"
)

var constraintStarts = []tokenizer.Kind{
	tokenizer.CONSTRAINT,
	tokenizer.CHECK,
	tokenizer.UNIQUE,
	tokenizer.FOREIGN,
	tokenizer.PRIMARY,
}

// parseDDL parses CREATE TABLE statements separated by ';'. ALTER and DROP
// statements inside the batch are checked and discarded. Anything else costs
// one diagnostic and is skipped up to the next statement start.
func (p *Parser) parseDDL() *ast.DDL {
	ddl := &ast.DDL{Loc: ast.At(p.tok.Pos)}
	for {
		switch p.tok.Kind {
		case tokenizer.EOF:
			return ddl
		case tokenizer.CREATE:
			ddl.Tables = append(ddl.Tables, p.parseCreateTable())
		case tokenizer.ALTER:
			p.parseAlterTable()
		case tokenizer.DROP:
			p.parseDropTable()
		case tokenizer.Semicolon:
			p.next()
			continue
		default:
			p.errorf(p.tok, "Expecting CREATE, ALTER or DROP but found '%s'.", describe(p.tok))
			p.next()
			p.skipToStart()
			continue
		}
		switch {
		case p.at(tokenizer.Semicolon):
			p.next()
		case p.at(tokenizer.EOF):
		case p.atStart():
			p.errorf(p.tok, "Expecting ';' or EOF but found '%s'.", describe(p.tok))
		default:
			p.errorf(p.tok, "Expecting ';' or EOF but found '%s'.", describe(p.tok))
			p.skipToStart()
		}
	}
}

func (p *Parser) parseCreateTable() *ast.CreateTable {
	table := &ast.CreateTable{Loc: ast.At(p.tok.Pos)}
	p.match(tokenizer.CREATE)
	if p.atAny(tokenizer.TEMP, tokenizer.TEMPORARY) {
		table.Temporary = true
		p.next()
	}
	p.match(tokenizer.TABLE)
	table.IfNotExists = p.pass(tokenizer.IF, tokenizer.NOT, tokenizer.EXISTS)
	name := p.qualifiedName()
	table.Schema, table.Name = name.Schema, name.Name

	if !p.at(tokenizer.LParen) {
		p.errorf(p.tok, "Expected to find '(' to start the column definition list but found '%s'.", describe(p.tok))
		p.skipUntil(tokenizer.LParen)
	}
	p.match(tokenizer.LParen)
	p.parseTableElement(table)
	for p.at(tokenizer.Comma) {
		p.next()
		p.parseTableElement(table)
	}
	p.match(tokenizer.RParen)
	return table
}

func (p *Parser) parseTableElement(table *ast.CreateTable) {
	switch {
	case p.atAny(constraintStarts...):
		table.Elements = append(table.Elements, p.parseConstraint())
	case isName(p.tok):
		table.Elements = append(table.Elements, p.parseColumnDef())
	default:
		p.errorf(p.tok, "Expecting a constraint or column definition but found '%s'.", describe(p.tok))
	}
}

func (p *Parser) parseColumnDef() *ast.ColumnDefinition {
	col := &ast.ColumnDefinition{Loc: ast.At(p.tok.Pos)}
	col.Name = p.name()
	p.parseTypeName(col)
	p.parseColumnOptions(col)
	return col
}

// parseTypeName resolves the column type. Unknown names become INTEGER.
func (p *Parser) parseTypeName(col *ast.ColumnDefinition) {
	tok := p.tok
	if !isName(tok) {
		p.errorf(tok, "Expecting a data type but found '%s'.", describe(tok))
		return
	}
	p.next()
	col.TypeName = tok.Text
	col.Type = p.types.Resolve(tok.Text)
	if decl, ok := p.types.Lookup(tok.Text); ok && decl.HasSize {
		col.Size, col.HasSize = decl.Size, true
		col.Scale, col.HasScale = decl.Scale, decl.HasScale
	}
	if p.at(tokenizer.Ident) && strings.EqualFold(p.tok.Text, "precision") {
		p.next()
	}
	if !col.Type.Sized() || !p.at(tokenizer.LParen) {
		return
	}
	p.next()
	col.Size, col.HasSize = int(p.integer()), true
	if col.Type.Scaled() && p.at(tokenizer.Comma) {
		p.next()
		col.Scale, col.HasScale = int(p.integer()), true
	}
	p.match(tokenizer.RParen)
}

// parseColumnOptions reads column constraints in any order.
func (p *Parser) parseColumnOptions(col *ast.ColumnDefinition) {
	for {
		switch p.tok.Kind {
		case tokenizer.DEFAULT:
			p.next()
			col.Default = p.parseTerm()
		case tokenizer.NOT:
			p.next()
			p.match(tokenizer.NULL)
			col.NotNull = true
		case tokenizer.NULL:
			p.next()
			col.Null = true
		case tokenizer.AUTO_INCREMENT, tokenizer.IDENTITY:
			if p.at(tokenizer.AUTO_INCREMENT) {
				col.AutoIncrement = true
			} else {
				col.Identity = true
			}
			p.next()
			if p.at(tokenizer.LParen) {
				p.next()
				col.Start, col.HasStart = p.integer(), true
				if p.at(tokenizer.Comma) {
					p.next()
					col.Increment, col.HasIncrement = p.integer(), true
				}
				p.match(tokenizer.RParen)
			}
		case tokenizer.UNIQUE:
			p.next()
			col.Unique = true
		case tokenizer.PRIMARY:
			p.next()
			p.match(tokenizer.KEY)
			col.PrimaryKey = true
			if p.at(tokenizer.HASH) {
				p.next()
				col.Hash = true
			}
		case tokenizer.CHECK:
			p.next()
			col.Check = p.parseExpr()
		default:
			return
		}
	}
}

func (p *Parser) parseConstraint() *ast.Constraint {
	con := &ast.Constraint{Loc: ast.At(p.tok.Pos)}
	if p.at(tokenizer.CONSTRAINT) {
		p.next()
		p.pass(tokenizer.IF, tokenizer.NOT, tokenizer.EXISTS)
		con.Name = p.name()
	}
	switch p.tok.Kind {
	case tokenizer.CHECK:
		p.next()
		con.Kind = ast.ConstraintCheck
		con.Check = p.parseExpr()
	case tokenizer.UNIQUE:
		p.next()
		con.Kind = ast.ConstraintUnique
		p.match(tokenizer.LParen)
		con.Columns = p.list()
		p.match(tokenizer.RParen)
	case tokenizer.PRIMARY:
		p.next()
		p.match(tokenizer.KEY)
		con.Kind = ast.ConstraintPrimary
		if p.at(tokenizer.HASH) {
			p.next()
			con.Kind = ast.ConstraintPrimaryHash
		}
		p.match(tokenizer.LParen)
		con.Columns = p.list()
		p.match(tokenizer.RParen)
	case tokenizer.FOREIGN:
		p.next()
		con.Kind = ast.ConstraintForeign
		p.parseForeignKey(con)
	default:
		p.errorf(p.tok, "Expecting a column definition or constraint definition but found '%s'.", describe(p.tok))
	}
	return con
}

func (p *Parser) parseForeignKey(con *ast.Constraint) {
	p.match(tokenizer.KEY)
	p.match(tokenizer.LParen)
	if isName(p.tok) {
		con.Columns = p.list()
	} else {
		p.errorf(p.tok, "Expecting a list of columns to be referenced but found '%s'.", describe(p.tok))
	}
	p.match(tokenizer.RParen)
	p.match(tokenizer.REFERENCES)
	if isName(p.tok) {
		con.RefTable = p.qualifiedName()
	}
	if p.at(tokenizer.LParen) {
		p.next()
		con.RefColumns = p.list()
		p.match(tokenizer.RParen)
	}
	for p.at(tokenizer.ON) {
		p.next()
		switch p.tok.Kind {
		case tokenizer.DELETE:
			p.next()
			con.OnDelete = p.parseReferentialAction()
		case tokenizer.UPDATE:
			p.next()
			con.OnUpdate = p.parseReferentialAction()
		default:
			p.errorf(p.tok, "Expecting DELETE or UPDATE but found '%s'.", describe(p.tok))
		}
	}
}

func (p *Parser) parseReferentialAction() ast.RefAction {
	switch p.tok.Kind {
	case tokenizer.CASCADE:
		p.next()
		return ast.ActionCascade
	case tokenizer.RESTRICT:
		p.next()
		return ast.ActionRestrict
	case tokenizer.NO:
		p.next()
		p.match(tokenizer.ACTION)
		return ast.ActionNoAction
	case tokenizer.SET:
		p.next()
		switch p.tok.Kind {
		case tokenizer.DEFAULT:
			p.next()
			return ast.ActionSetDefault
		case tokenizer.NULL:
			p.next()
			return ast.ActionSetNull
		}
		p.errorf(p.tok, "Expecting DEFAULT or NULL but found '%s'.", describe(p.tok))
	default:
		p.errorf(p.tok, "Expecting CASCADE, RESTRICT, NO ACTION or SET but found '%s'.", describe(p.tok))
	}
	return ast.ActionUnspecified
}

// parseAlterTable checks the syntax of ALTER TABLE. Only the table name is kept.
func (p *Parser) parseAlterTable() *ast.SchemaChange {
	change := &ast.SchemaChange{Loc: ast.At(p.tok.Pos), Kind: ast.Alter}
	p.match(tokenizer.ALTER)
	p.match(tokenizer.TABLE)
	change.Tables = []ast.QualifiedName{p.qualifiedName()}

	switch p.tok.Kind {
	case tokenizer.ADD:
		p.next()
		p.parseAlterAdd()
	case tokenizer.ALTER:
		p.next()
		p.parseAlterColumn()
	case tokenizer.DROP:
		p.next()
		switch p.tok.Kind {
		case tokenizer.COLUMN, tokenizer.CONSTRAINT:
			p.next()
			p.pass(tokenizer.IF, tokenizer.EXISTS)
			p.name()
		case tokenizer.PRIMARY:
			p.next()
			p.match(tokenizer.KEY)
		default:
			p.errorf(p.tok, "Expecting COLUMN, CONSTRAINT or PRIMARY KEY but found '%s'.", describe(p.tok))
		}
	case tokenizer.RENAME:
		p.next()
		p.match(tokenizer.TO)
		p.name()
	default:
		p.errorf(p.tok, "Unexpected token in ALTER TABLE: '%s'.", describe(p.tok))
	}
	return change
}

func (p *Parser) parseAlterAdd() {
	if p.at(tokenizer.COLUMN) {
		p.next()
	}
	switch {
	case p.at(tokenizer.LParen):
		p.next()
		p.parseColumnDef()
		for p.at(tokenizer.Comma) {
			p.next()
			p.parseColumnDef()
		}
		p.match(tokenizer.RParen)
	case p.at(tokenizer.IF):
		p.pass(tokenizer.IF, tokenizer.NOT, tokenizer.EXISTS)
		p.parseColumnDef()
		p.parseColumnPlacement()
	case p.atAny(constraintStarts...):
		p.parseConstraint()
		if p.atAny(tokenizer.CHECK, tokenizer.NOCHECK) {
			p.next()
		}
	case isName(p.tok):
		p.parseColumnDef()
		p.parseColumnPlacement()
	default:
		p.errorf(p.tok, "Expecting a column or constraint definition but found '%s'.", describe(p.tok))
	}
}

// parseColumnPlacement reads an optional BEFORE col / AFTER col / FIRST.
func (p *Parser) parseColumnPlacement() {
	switch p.tok.Kind {
	case tokenizer.BEFORE, tokenizer.AFTER:
		p.next()
		p.name()
	case tokenizer.FIRST:
		p.next()
	}
}

func (p *Parser) parseAlterColumn() {
	p.match(tokenizer.COLUMN)
	col := &ast.ColumnDefinition{Loc: ast.At(p.tok.Pos)}
	col.Name = p.name()
	switch p.tok.Kind {
	case tokenizer.RENAME:
		p.next()
		p.match(tokenizer.TO)
		p.name()
	case tokenizer.RESTART:
		p.next()
		p.match(tokenizer.WITH)
		p.integer()
	case tokenizer.SET:
		p.next()
		switch p.tok.Kind {
		case tokenizer.DEFAULT:
			p.next()
			p.parseExpr()
		case tokenizer.NULL:
			p.next()
		case tokenizer.NOT:
			p.next()
			p.match(tokenizer.NULL)
		default:
			p.errorf(p.tok, "Expecting DEFAULT, NULL or NOT NULL but found '%s'.", describe(p.tok))
		}
	default:
		p.parseTypeName(col)
		p.parseColumnOptions(col)
	}
}

// parseDropTable checks DROP TABLE [IF EXISTS] a, b [RESTRICT|CASCADE].
func (p *Parser) parseDropTable() *ast.SchemaChange {
	change := &ast.SchemaChange{Loc: ast.At(p.tok.Pos), Kind: ast.Drop}
	p.match(tokenizer.DROP)
	p.match(tokenizer.TABLE)
	p.pass(tokenizer.IF, tokenizer.EXISTS)
	change.Tables = append(change.Tables, p.qualifiedName())
	for p.at(tokenizer.Comma) {
		p.next()
		change.Tables = append(change.Tables, p.qualifiedName())
	}
	if p.atAny(tokenizer.RESTRICT, tokenizer.CASCADE) {
		p.next()
	}
	return change
}
