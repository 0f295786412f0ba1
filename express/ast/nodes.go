// Package ast defines the EXPRESS (ISO 10303-11) schema AST produced by
// express/parser and consumed by express/legalizer.
package ast

import "github.com/stokaro/stepwright/srcpos"

// Remark is a `(* ... *)` or `-- ... EOL` comment captured as a side
// channel, per spec.md §4.1 ("surfaced as a side-channel list so the
// generator may re-emit them").
type Remark struct {
	Text string
	Pos  srcpos.Position
}

// Schema is the root of a parsed EXPRESS schema.
type Schema struct {
	Name     string
	Entities []*EntityDecl
	Types    []*TypeDecl
	Remarks  []Remark
	Pos      srcpos.Position
}

// EntityDecl is an `ENTITY ... END_ENTITY;` declaration.
type EntityDecl struct {
	Name       string
	SubSuper   string // raw SUPERTYPE/SUBTYPE clause text, preserved, never interpreted
	Attributes []*Attribute
	Pos        srcpos.Position
}

// Attribute is one named, typed member of an entity. A comma-list
// declaration such as `x, y : REAL;` expands to two Attributes that each
// carry a structurally-equal Type, per spec.md §3 and testable property #3.
type Attribute struct {
	Name     string
	Type     ParameterType
	Optional bool
	Pos      srcpos.Position
}

// TypeDecl is a `TYPE ... END_TYPE;` declaration.
type TypeDecl struct {
	Name       string
	Underlying Underlying
	Where      string // raw WHERE clause text, preserved, never evaluated
	Pos        srcpos.Position
}

// Expr preserves an expression's source text verbatim. Bound expressions
// and WHERE clauses are never evaluated by this core (spec.md §3, §9).
type Expr struct {
	Text string
}

// Bound is the `[lower:upper]` pair on an aggregate parameter type.
type Bound struct {
	Lower Expr
	Upper Expr
}

// Extensibility marks how an enumeration or select may be extended, per
// spec.md §3 and SPEC_FULL.md §7 (carried from the original Rust source's
// three-valued marker rather than collapsed to a bool).
type Extensibility int

const (
	ExtNone Extensibility = iota
	ExtExtensible
	ExtGenericEntity
)

func (e Extensibility) String() string {
	switch e {
	case ExtExtensible:
		return "EXTENSIBLE"
	case ExtGenericEntity:
		return "EXTENSIBLE GENERIC_ENTITY"
	default:
		return ""
	}
}
