// Package ast defines the ISO 10303-21 (Part 21) exchange-file AST produced
// by part21/parser and consumed by the holder loader (spec.md §4.3, §4.5).
package ast

import "github.com/stokaro/stepwright/srcpos"

// Exchange is a full `ISO-10303-21; HEADER; ... END-ISO-10303-21;` file.
// Multiple DATA sections are allowed and preserved in order.
type Exchange struct {
	Header []HeaderEntry
	Data   []*DataSection
}

// HeaderEntry is one `NAME(args);` record inside the HEADER section. The
// header is parsed structurally but its records are opaque to this core;
// they are retained for round-tripping, not interpreted.
type HeaderEntry struct {
	Name string
	Args []Argument
	Pos  srcpos.Position
}

// DataSection is one `DATA; ... ENDSEC;` block: a sequence of entity
// instances in file order.
type DataSection struct {
	Instances []*EntityInstance
}

// EntityInstance is `#n = record ;`. Simple is the only kind this core
// resolves; Complex instances are recognised but rejected with
// Unimplemented("complex instance") per spec.md §4.5.
type EntityInstance struct {
	ID      uint64
	Simple  *Record   // set when this is a simple instance
	Complex []*Record // set when this is a complex instance (multiple records sharing one id)
	Pos     srcpos.Position
}

// Record is a named constructor call `NAME(args)`.
type Record struct {
	Name string
	Args []Argument
	Pos  srcpos.Position
}

// Argument is the tagged variant for one positional argument in a Record
// or HeaderEntry, per spec.md §4.3's literal grammar.
type Argument interface {
	isArgument()
}

// Omitted is `$`: an absent value.
type Omitted struct{}

func (Omitted) isArgument() {}

// Redeclared is `*`: "inherited from the supertype, not redeclared here".
type Redeclared struct{}

func (Redeclared) isArgument() {}

// IntLit is an integer literal argument.
type IntLit struct {
	Value int64
}

func (IntLit) isArgument() {}

// RealLit is a real literal argument.
type RealLit struct {
	Value float64
}

func (RealLit) isArgument() {}

// StringLit is a single-quoted string literal argument, already unescaped.
type StringLit struct {
	Value string
}

func (StringLit) isArgument() {}

// EnumLit is a `.NAME.` enumeration constant argument, upper-cased.
type EnumLit struct {
	Name string
}

func (EnumLit) isArgument() {}

// BinaryLit is a `"..."` hex-digit binary literal argument.
type BinaryLit struct {
	Value string
}

func (BinaryLit) isArgument() {}

// RefKind distinguishes an instance reference (`#n`) from a value reference
// (`@n`); spec.md §4.3 treats both the same at resolution time.
type RefKind int

const (
	RefInstance RefKind = iota
	RefValue
)

// Ref is a `#n` or `@n` reference argument.
type Ref struct {
	Kind RefKind
	ID   uint64
}

func (Ref) isArgument() {}

// TypedRecordArg is an inline typed record `NAME(args)` used as an argument,
// e.g. a select-typed attribute value.
type TypedRecordArg struct {
	Record *Record
}

func (TypedRecordArg) isArgument() {}

// ListArg is a parenthesized list `(arg, arg, ...)` used as an argument.
type ListArg struct {
	Items []Argument
}

func (ListArg) isArgument() {}
