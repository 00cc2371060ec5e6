package ast

import "maps"

// VarTable remembers the declared type of each @name:type variable so that
// later bare @name references can reuse it.
type VarTable struct {
	types map[string]string
	order []string
}

// NewVarTable returns an empty table.
func NewVarTable() *VarTable {
	return &VarTable{types: make(map[string]string)}
}

// Declare records typ for name. A later declaration replaces the type but
// keeps the original declaration order.
func (v *VarTable) Declare(name, typ string) {
	if _, ok := v.types[name]; !ok {
		v.order = append(v.order, name)
	}
	v.types[name] = typ
}

// Lookup returns the declared type of name.
func (v *VarTable) Lookup(name string) (string, bool) {
	if v == nil {
		return "", false
	}
	typ, ok := v.types[name]
	return typ, ok
}

// Names returns declared names in declaration order.
func (v *VarTable) Names() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.order...)
}

// Len returns the number of declared variables.
func (v *VarTable) Len() int {
	if v == nil {
		return 0
	}
	return len(v.order)
}

// Clone returns an independent copy. Cloning nil yields an empty table.
func (v *VarTable) Clone() *VarTable {
	if v == nil {
		return NewVarTable()
	}
	return &VarTable{
		types: maps.Clone(v.types),
		order: append([]string(nil), v.order...),
	}
}
