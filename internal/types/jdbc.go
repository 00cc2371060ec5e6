// Package types maps SQL column type names onto JDBC type codes.
package types

import "strconv"

// JDBCType is a java.sql.Types code. The numeric values are part of the
// generated-code contract and must not change.
type JDBCType int

// JDBC type codes used by column definitions.
const (
	Bit         JDBCType = -7
	TinyInt     JDBCType = -6
	SmallInt    JDBCType = 5
	Integer     JDBCType = 4
	BigInt      JDBCType = -5
	Float       JDBCType = 6
	Real        JDBCType = 7
	Double      JDBCType = 8
	Numeric     JDBCType = 2
	Decimal     JDBCType = 3
	Char        JDBCType = 1
	VarChar     JDBCType = 12
	LongVarChar JDBCType = -1
	Date        JDBCType = 91
	Time        JDBCType = 92
	Timestamp   JDBCType = 93
	Other       JDBCType = 1111
	Blob        JDBCType = 2004
	Clob        JDBCType = 2005
	Boolean     JDBCType = 16
	NChar       JDBCType = -15
	NVarChar    JDBCType = -9
	NClob       JDBCType = 2011
)

var typeNames = map[JDBCType]string{
	Bit:         "BIT",
	TinyInt:     "TINYINT",
	SmallInt:    "SMALLINT",
	Integer:     "INTEGER",
	BigInt:      "BIGINT",
	Float:       "FLOAT",
	Real:        "REAL",
	Double:      "DOUBLE",
	Numeric:     "NUMERIC",
	Decimal:     "DECIMAL",
	Char:        "CHAR",
	VarChar:     "VARCHAR",
	LongVarChar: "LONGVARCHAR",
	Date:        "DATE",
	Time:        "TIME",
	Timestamp:   "TIMESTAMP",
	Other:       "OTHER",
	Blob:        "BLOB",
	Clob:        "CLOB",
	Boolean:     "BOOLEAN",
	NChar:       "NCHAR",
	NVarChar:    "NVARCHAR",
	NClob:       "NCLOB",
}

func (t JDBCType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "JDBCType(" + strconv.Itoa(int(t)) + ")"
}

// Sized reports whether a column of this type accepts a (size) suffix.
func (t JDBCType) Sized() bool {
	switch t {
	case VarChar, NVarChar, NChar, Blob, Clob, Decimal:
		return true
	}
	return false
}

// Scaled reports whether a column of this type accepts a (size, scale) suffix.
func (t JDBCType) Scaled() bool { return t == Decimal }
