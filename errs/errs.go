// Package errs is the shared error vocabulary from spec.md §7: every
// fallible operation across express/parser, express/legalizer, part21/parser,
// and holder returns one of these, so callers can branch on kind with
// errors.As regardless of which layer produced it.
package errs

import (
	"fmt"

	"github.com/stokaro/stepwright/srcpos"
)

// ParseError is an EXPRESS or Part 21 syntax error.
type ParseError struct {
	Production string
	Message    string
	Pos        srcpos.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s at %s: %s", e.Production, e.Pos, e.Message)
}

// DuplicateDeclarationError is a schema-level name clash.
type DuplicateDeclarationError struct {
	Name string
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("duplicate declaration: %s", e.Name)
}

// UnresolvedNameError is a legalization reference miss.
type UnresolvedNameError struct {
	Name string
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("unresolved name: %s", e.Name)
}

// DuplicateIDError marks two records sharing an instance id within one
// entity type's table.
type DuplicateIDError struct {
	ID         uint64
	EntityType string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate id #%d for entity type %s", e.ID, e.EntityType)
}

// UnknownEntityError is a reference to an id absent from the table.
type UnknownEntityError struct {
	ID uint64
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity #%d", e.ID)
}

// UnknownEntityTypeError is a record name absent from the schema.
type UnknownEntityTypeError struct {
	Name string
}

func (e *UnknownEntityTypeError) Error() string {
	return fmt.Sprintf("unknown entity type %s", e.Name)
}

// AmbiguousSelectError is a reference resolvable under more than one select
// member.
type AmbiguousSelectError struct {
	ID      uint64
	Members []string
}

func (e *AmbiguousSelectError) Error() string {
	return fmt.Sprintf("ambiguous select: #%d resolves under more than one of %v", e.ID, e.Members)
}

// CyclicReferenceError is raised when resolution revisits an id already on
// the current call stack.
type CyclicReferenceError struct {
	ID uint64
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("cyclic reference at #%d", e.ID)
}

// MissingValueError is `$` supplied where OPTIONAL is not declared.
type MissingValueError struct {
	Field string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("missing value for required field %s", e.Field)
}

// TypeMismatchError is an argument kind that cannot populate an attribute.
type TypeMismatchError struct {
	Field    string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for field %s: expected %s, got %s", e.Field, e.Expected, e.Got)
}

// UnimplementedError is a recognised-but-deferred construct: complex
// instances, WHERE-clause evaluation, and similar.
type UnimplementedError struct {
	What string
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("unimplemented: %s", e.What)
}

// DeserializeError wraps a field-indexed decode failure while deserializing
// a Part 21 record into a holder, per spec.md §4.4.
type DeserializeError struct {
	Entity string
	Field  int
	Cause  error
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("deserializing %s field #%d: %s", e.Entity, e.Field, e.Cause)
}

func (e *DeserializeError) Unwrap() error {
	return e.Cause
}
