package tokenizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind represents the classification of a scanned token.
type Kind int

const (
	// EOF marks the logical end of the input.
	EOF Kind = iota
	// Illegal represents an unrecognized character or an unterminated literal.
	Illegal
	// Ident represents bare or double-quoted identifiers.
	Ident
	// String represents single-quoted literals.
	String
	// Integer represents numeric literals without a decimal point or exponent.
	Integer
	// Float represents numeric literals with a decimal point or exponent.
	Float
	// Variable represents an @name[:type] host variable reference.
	Variable

	operatorBeg
	LParen    // (
	RParen    // )
	Comma     // ,
	Semicolon // ;
	Period    // .
	Colon     // :
	Question  // ?
	Add       // +
	Sub       // -
	Mul       // *
	Quo       // /
	Rem       // %
	Eq        // =
	Neq       // <> or !=
	Lss       // <
	Gtr       // >
	Leq       // <=
	Geq       // >=
	Overlap   // &&
	Concat    // ||
	operatorEnd

	keywordBeg
	ACTION
	ADD
	AFTER
	ALL
	ALTER
	AND
	ANY
	AS
	ASC
	AUTO_INCREMENT
	BEFORE
	BETWEEN
	BY
	CASCADE
	CASE
	CHECK
	COLUMN
	CONSTRAINT
	CREATE
	CROSS
	CURRENT_DATE
	CURRENT_TIME
	CURRENT_TIMESTAMP
	DEFAULT
	DELETE
	DESC
	DIRECT
	DISTINCT
	DROP
	ELSE
	END
	ESCAPE
	EXCEPT
	EXISTS
	FIRST
	FOREIGN
	FROM
	GROUP
	HASH
	HAVING
	IDENTITY
	IF
	IN
	INNER
	INSERT
	INTERSECT
	INTO
	IS
	JOIN
	KEY
	LAST
	LEFT
	LIKE
	LIMIT
	MINUS
	NATURAL
	NO
	NOCHECK
	NOT
	NULL
	NULLS
	OFFSET
	ON
	OR
	ORDER
	OUTER
	PRIMARY
	RECURSIVE
	REFERENCES
	REGEXP
	RENAME
	RESTART
	RESTRICT
	RIGHT
	SELECT
	SET
	SOME
	SORTED
	TABLE
	TEMP
	TEMPORARY
	THEN
	TO
	TOP
	UNION
	UNIQUE
	UPDATE
	VALUES
	WHEN
	WHERE
	WITH
	keywordEnd
)

var kindNames = [...]string{
	EOF:      "EOF",
	Illegal:  "ILLEGAL",
	Ident:    "IDENT",
	String:   "STRING",
	Integer:  "INTEGER",
	Float:    "FLOAT",
	Variable: "VARIABLE",

	LParen:    "(",
	RParen:    ")",
	Comma:     ",",
	Semicolon: ";",
	Period:    ".",
	Colon:     ":",
	Question:  "?",
	Add:       "+",
	Sub:       "-",
	Mul:       "*",
	Quo:       "/",
	Rem:       "%",
	Eq:        "=",
	Neq:       "<>",
	Lss:       "<",
	Gtr:       ">",
	Leq:       "<=",
	Geq:       ">=",
	Overlap:   "&&",
	Concat:    "||",

	ACTION:            "ACTION",
	ADD:               "ADD",
	AFTER:             "AFTER",
	ALL:               "ALL",
	ALTER:             "ALTER",
	AND:               "AND",
	ANY:               "ANY",
	AS:                "AS",
	ASC:               "ASC",
	AUTO_INCREMENT:    "AUTO_INCREMENT",
	BEFORE:            "BEFORE",
	BETWEEN:           "BETWEEN",
	BY:                "BY",
	CASCADE:           "CASCADE",
	CASE:              "CASE",
	CHECK:             "CHECK",
	COLUMN:            "COLUMN",
	CONSTRAINT:        "CONSTRAINT",
	CREATE:            "CREATE",
	CROSS:             "CROSS",
	CURRENT_DATE:      "CURRENT_DATE",
	CURRENT_TIME:      "CURRENT_TIME",
	CURRENT_TIMESTAMP: "CURRENT_TIMESTAMP",
	DEFAULT:           "DEFAULT",
	DELETE:            "DELETE",
	DESC:              "DESC",
	DIRECT:            "DIRECT",
	DISTINCT:          "DISTINCT",
	DROP:              "DROP",
	ELSE:              "ELSE",
	END:               "END",
	ESCAPE:            "ESCAPE",
	EXCEPT:            "EXCEPT",
	EXISTS:            "EXISTS",
	FIRST:             "FIRST",
	FOREIGN:           "FOREIGN",
	FROM:              "FROM",
	GROUP:             "GROUP",
	HASH:              "HASH",
	HAVING:            "HAVING",
	IDENTITY:          "IDENTITY",
	IF:                "IF",
	IN:                "IN",
	INNER:             "INNER",
	INSERT:            "INSERT",
	INTERSECT:         "INTERSECT",
	INTO:              "INTO",
	IS:                "IS",
	JOIN:              "JOIN",
	KEY:               "KEY",
	LAST:              "LAST",
	LEFT:              "LEFT",
	LIKE:              "LIKE",
	LIMIT:             "LIMIT",
	MINUS:             "MINUS",
	NATURAL:           "NATURAL",
	NO:                "NO",
	NOCHECK:           "NOCHECK",
	NOT:               "NOT",
	NULL:              "NULL",
	NULLS:             "NULLS",
	OFFSET:            "OFFSET",
	ON:                "ON",
	OR:                "OR",
	ORDER:             "ORDER",
	OUTER:             "OUTER",
	PRIMARY:           "PRIMARY",
	RECURSIVE:         "RECURSIVE",
	REFERENCES:        "REFERENCES",
	REGEXP:            "REGEXP",
	RENAME:            "RENAME",
	RESTART:           "RESTART",
	RESTRICT:          "RESTRICT",
	RIGHT:             "RIGHT",
	SELECT:            "SELECT",
	SET:               "SET",
	SOME:              "SOME",
	SORTED:            "SORTED",
	TABLE:             "TABLE",
	TEMP:              "TEMP",
	TEMPORARY:         "TEMPORARY",
	THEN:              "THEN",
	TO:                "TO",
	TOP:               "TOP",
	UNION:             "UNION",
	UNIQUE:            "UNIQUE",
	UPDATE:            "UPDATE",
	VALUES:            "VALUES",
	WHEN:              "WHEN",
	WHERE:             "WHERE",
	WITH:              "WITH",
}

var keywords map[string]Kind

func init() {
	keywords = make(map[string]Kind, keywordEnd-keywordBeg)
	for k := keywordBeg + 1; k < keywordEnd; k++ {
		keywords[kindNames[k]] = k
	}
}

// softKeywords may still be used where a name is expected.
var softKeywords = map[Kind]struct{}{
	ACTION:    {},
	AFTER:     {},
	BEFORE:    {},
	COLUMN:    {},
	DIRECT:    {},
	ESCAPE:    {},
	FIRST:     {},
	HASH:      {},
	IDENTITY:  {},
	KEY:       {},
	LAST:      {},
	NO:        {},
	NOCHECK:   {},
	NULLS:     {},
	RENAME:    {},
	RESTART:   {},
	SORTED:    {},
	TEMP:      {},
	TEMPORARY: {},
	TO:        {},
}

// Lookup maps a word to its keyword kind, or Ident when it is not a keyword.
func Lookup(word string) Kind {
	if k, ok := keywords[strings.ToUpper(word)]; ok {
		return k
	}
	return Ident
}

// IsKeyword reports whether k is a keyword kind.
func (k Kind) IsKeyword() bool { return k > keywordBeg && k < keywordEnd }

// IsOperator reports whether k is an operator or punctuation kind.
func (k Kind) IsOperator() bool { return k > operatorBeg && k < operatorEnd }

// IsSoft reports whether k is a keyword that can double as a name.
func (k Kind) IsSoft() bool {
	_, ok := softKeywords[k]
	return ok
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Position locates a token in its source. Line and Column are 1-based,
// Offset is a 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

// IsValid reports whether the position was set by the tokenizer.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a unit emitted by the tokenizer with positional metadata.
type Token struct {
	Kind Kind
	// Text holds identifier and string content without quotes, and the raw
	// lexeme for everything else.
	Text string
	// Int is set for Integer tokens; Float for Integer and Float tokens.
	Int     int64
	Float   float64
	Decimal decimal.Decimal
	// TypeName is the declared type of a Variable token, empty when omitted.
	TypeName string
	Pos      Position
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Ident, Integer, Float, Illegal:
		return t.Text
	case String:
		return "'" + t.Text + "'"
	case Variable:
		if t.TypeName != "" {
			return "@" + t.Text + ":" + t.TypeName
		}
		return "@" + t.Text
	}
	if t.Kind.IsKeyword() && t.Text != "" {
		return t.Text
	}
	return t.Kind.String()
}
