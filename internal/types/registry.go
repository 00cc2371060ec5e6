package types

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// Decl is a resolved type declaration. Size and Scale are defaults that a
// column definition may override with its own suffix.
type Decl struct {
	Name     string
	Type     JDBCType
	Size     int
	Scale    int
	HasSize  bool
	HasScale bool
}

// Registry maps lower-case type names to declarations. A Registry is safe
// for concurrent reads once it is no longer being modified.
type Registry struct {
	entries map[string]Decl
}

var builtin = map[string]JDBCType{
	"int":                   Integer,
	"integer":               Integer,
	"mediumint":             Integer,
	"int4":                  Integer,
	"signed":                Integer,
	"boolean":               Boolean,
	"bit":                   Boolean,
	"bool":                  Boolean,
	"tinyint":               TinyInt,
	"smallint":              SmallInt,
	"int2":                  SmallInt,
	"year":                  SmallInt,
	"bigint":                BigInt,
	"int8":                  BigInt,
	"identity":              BigInt,
	"decimal":               Decimal,
	"numeric":               Decimal,
	"dec":                   Decimal,
	"number":                Decimal,
	"double":                Double,
	"float8":                Double,
	"float4":                Float,
	"real":                  Float,
	"time":                  Time,
	"date":                  Date,
	"timestamp":             Timestamp,
	"datetime":              Timestamp,
	"smalldatetime":         Timestamp,
	"other":                 Other,
	"varchar":               VarChar,
	"longvarchar":           NVarChar,
	"varchar2":              NVarChar,
	"nvarchar":              NVarChar,
	"nvarchar2":             NVarChar,
	"varchar_casesensitive": NVarChar,
	"varchar_ignorecase":    NVarChar,
	"char":                  NChar,
	"character":             NChar,
	"nchar":                 NChar,
	"blob":                  Blob,
	"tinyblob":              Blob,
	"mediumblob":            Blob,
	"longblob":              Blob,
	"image":                 Blob,
	"oid":                   Blob,
	"clob":                  Clob,
	"tinytext":              Clob,
	"text":                  Clob,
	"mediumtext":            Clob,
	"longtext":              Clob,
	"ntext":                 Clob,
	"nclob":                 Clob,
}

// NewRegistry returns a registry holding the built-in type names.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Decl, len(builtin))}
	for name, t := range builtin {
		r.entries[name] = Decl{Name: name, Type: t}
	}
	return r
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	return &Registry{entries: maps.Clone(r.entries)}
}

// Lookup resolves a type name case-insensitively.
func (r *Registry) Lookup(name string) (Decl, bool) {
	d, ok := r.entries[strings.ToLower(name)]
	return d, ok
}

// Resolve returns the JDBC type for name. Unknown names resolve to Integer.
func (r *Registry) Resolve(name string) JDBCType {
	if d, ok := r.Lookup(name); ok {
		return d.Type
	}
	return Integer
}

// Define registers alias as a declaration such as "DECIMAL(19,4)". The base
// name of the declaration must already be known to r.
func (r *Registry) Define(alias, declaration string) error {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == "" {
		return errors.New("define type: empty alias")
	}
	decl, err := ParseDecl(declaration)
	if err != nil {
		return fmt.Errorf("define type %s: %w", alias, err)
	}
	base, ok := r.Lookup(decl.Name)
	if !ok {
		return fmt.Errorf("define type %s: unknown base type %q", alias, decl.Name)
	}
	if decl.HasSize && !base.Type.Sized() {
		return fmt.Errorf("define type %s: %s does not take a size", alias, base.Type)
	}
	if decl.HasScale && !base.Type.Scaled() {
		return fmt.Errorf("define type %s: %s does not take a scale", alias, base.Type)
	}
	if !decl.HasSize {
		decl.Size, decl.HasSize = base.Size, base.HasSize
		decl.Scale, decl.HasScale = base.Scale, base.HasScale
	}
	decl.Name = alias
	decl.Type = base.Type
	r.entries[alias] = decl
	return nil
}

// Len returns the number of registered names.
func (r *Registry) Len() int { return len(r.entries) }
