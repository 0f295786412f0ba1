// Package generator documents the capability set a generated schema
// package must satisfy, per spec.md §4.6. It never calls into a schema
// package, and no schema package needs to import it to compile: these
// interfaces exist so generated (and hand-written, e.g. schemas/ap000)
// code can assert conformance with a compile-time `var _` check.
package generator

import (
	"github.com/stokaro/stepwright/holder"
	p21 "github.com/stokaro/stepwright/part21/ast"
)

// HolderBinding is satisfied by every generated EHolder type: it binds the
// holder to its schema's Table type and its owned value type, and
// implements reference resolution (spec.md §4.6: "a Holder binding that
// associates EHolder::Table = Table and EHolder::Owned = E and implements
// into_owned").
type HolderBinding[Tbl any, Owned any] interface {
	holder.Holder[Tbl, Owned]
}

// EntityTableAccessor is satisfied by a generated Table's per-entity
// accessor method, exposing the EntityTable slot that owns every instance
// of one entity type (spec.md §4.6: "a table slot (id -> EHolder) and
// EntityTable<EHolder> accessor").
type EntityTableAccessor[H any] func() *holder.EntityTable[H]

// Dispatcher is satisfied by a generated schema's loader entry point: given
// an uppercased record name, it deserializes and inserts the matching
// entity, or reports UnknownEntityType, implementing spec.md §4.5's
// from_section dispatch.
type Dispatcher func(name string, id uint64, rec *p21.Record) error
