// Package ap000 is a hand-written stand-in for generator/golang's output
// against a fixed three-entity schema: A{x,y: REAL}, B{z: REAL, a: A},
// C{p: A, q: B}, matching the AP000 schema used in spec.md's concrete
// scenarios S4-S6 and in the original source's ruststep/src/ap000.rs. It
// exists to exercise the holder/table runtime end to end without running
// a code generator (spec.md §9: "the generator must not call into the
// runtime; the runtime must not know the schema").
package ap000

import (
	"github.com/stokaro/stepwright/config"
	"github.com/stokaro/stepwright/errs"
	"github.com/stokaro/stepwright/generator"
	"github.com/stokaro/stepwright/holder"
	p21 "github.com/stokaro/stepwright/part21/ast"
)

// A is the owned value for ENTITY a { x, y : REAL; }.
type A struct {
	X float64
	Y float64
}

// AHolder is the deserialized-but-unresolved form of A. A has no
// reference-typed attributes, so its holder carries the same primitive
// fields as the owned value directly.
type AHolder struct {
	X float64
	Y float64
}

var _ generator.HolderBinding[Table, A] = AHolder{}

// DeserializeA builds an AHolder from a Part 21 simple record named "A".
func DeserializeA(rec *p21.Record) (AHolder, error) {
	if err := holder.CheckRecord("A", rec, 2); err != nil {
		return AHolder{}, err
	}
	x, err := holder.Real("A", 0, rec.Args[0])
	if err != nil {
		return AHolder{}, err
	}
	y, err := holder.Real("A", 1, rec.Args[1])
	if err != nil {
		return AHolder{}, err
	}
	return AHolder{X: x, Y: y}, nil
}

// IntoOwned resolves h. A has no reference fields, so resolution never
// fails and never consults tbl or visited.
func (h AHolder) IntoOwned(tbl *Table, visited *holder.VisitStack) (A, error) {
	return A{X: h.X, Y: h.Y}, nil
}

// B is the owned value for ENTITY b { z : REAL; a : A; }.
type B struct {
	Z float64
	A A
}

// BHolder is the deserialized-but-unresolved form of B: its a attribute may
// be an inline A(...) construction or a #n reference to a stored A.
type BHolder struct {
	Z float64
	A holder.PlaceHolder[AHolder]
}

var _ generator.HolderBinding[Table, B] = BHolder{}

// DeserializeB builds a BHolder from a Part 21 simple record named "B".
func DeserializeB(rec *p21.Record) (BHolder, error) {
	if err := holder.CheckRecord("B", rec, 2); err != nil {
		return BHolder{}, err
	}
	z, err := holder.Real("B", 0, rec.Args[0])
	if err != nil {
		return BHolder{}, err
	}
	a, err := holder.RefOrInline[AHolder]("B", 1, rec.Args[1], DeserializeA)
	if err != nil {
		return BHolder{}, err
	}
	return BHolder{Z: z, A: a}, nil
}

// IntoOwned resolves h.A against tbl.As, recursing through an inline value
// or following a #n reference, per spec.md §4.5.
func (h BHolder) IntoOwned(tbl *Table, visited *holder.VisitStack) (B, error) {
	a, err := holder.Resolve[Table, AHolder, A](h.A, tbl, func(t *Table, id uint64) (AHolder, error) {
		return t.As.Get(id)
	}, visited)
	if err != nil {
		return B{}, err
	}
	return B{Z: h.Z, A: a}, nil
}

// C is the owned value for ENTITY c { p : A; q : B; }.
type C struct {
	P A
	Q B
}

// CHolder is the deserialized-but-unresolved form of C.
type CHolder struct {
	P holder.PlaceHolder[AHolder]
	Q holder.PlaceHolder[BHolder]
}

var _ generator.HolderBinding[Table, C] = CHolder{}

// DeserializeC builds a CHolder from a Part 21 simple record named "C".
func DeserializeC(rec *p21.Record) (CHolder, error) {
	if err := holder.CheckRecord("C", rec, 2); err != nil {
		return CHolder{}, err
	}
	p, err := holder.RefOrInline[AHolder]("C", 0, rec.Args[0], DeserializeA)
	if err != nil {
		return CHolder{}, err
	}
	q, err := holder.RefOrInline[BHolder]("C", 1, rec.Args[1], DeserializeB)
	if err != nil {
		return CHolder{}, err
	}
	return CHolder{P: p, Q: q}, nil
}

// IntoOwned resolves h.P and h.Q against tbl.As and tbl.Bs.
func (h CHolder) IntoOwned(tbl *Table, visited *holder.VisitStack) (C, error) {
	p, err := holder.Resolve[Table, AHolder, A](h.P, tbl, func(t *Table, id uint64) (AHolder, error) {
		return t.As.Get(id)
	}, visited)
	if err != nil {
		return C{}, err
	}
	q, err := holder.Resolve[Table, BHolder, B](h.Q, tbl, func(t *Table, id uint64) (BHolder, error) {
		return t.Bs.Get(id)
	}, visited)
	if err != nil {
		return C{}, err
	}
	return C{P: p, Q: q}, nil
}

// Table owns every holder of the ap000 schema, one EntityTable slot per
// entity, per spec.md §4.6.
type Table struct {
	As *holder.EntityTable[AHolder]
	Bs *holder.EntityTable[BHolder]
	Cs *holder.EntityTable[CHolder]
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{
		As: holder.NewEntityTable[AHolder]("A"),
		Bs: holder.NewEntityTable[BHolder]("B"),
		Cs: holder.NewEntityTable[CHolder]("C"),
	}
}

// Load implements spec.md §4.5's from_section loader against tbl,
// dispatching each instance's uppercased record name to the matching
// entity's deserializer. Per-instance errors are collected and returned
// rather than aborting the whole section.
func Load(tbl *Table, section *p21.DataSection) []error {
	return LoadWithOptions(tbl, section, config.DefaultLoadOptions())
}

// LoadWithOptions behaves like Load, but honors opts.StopAtFirstError: when
// set, loading returns as soon as the first per-record error is hit instead
// of collecting every error across section.
func LoadWithOptions(tbl *Table, section *p21.DataSection, opts *config.LoadOptions) []error {
	dispatch := func(name string, id uint64, rec *p21.Record) error {
		switch name {
		case "A":
			h, err := DeserializeA(rec)
			if err != nil {
				return err
			}
			return tbl.As.Insert(id, h)
		case "B":
			h, err := DeserializeB(rec)
			if err != nil {
				return err
			}
			return tbl.Bs.Insert(id, h)
		case "C":
			h, err := DeserializeC(rec)
			if err != nil {
				return err
			}
			return tbl.Cs.Insert(id, h)
		default:
			return &errs.UnknownEntityTypeError{Name: name}
		}
	}
	var d generator.Dispatcher = dispatch
	if opts != nil && opts.StopAtFirstError {
		return holder.LoadSectionStopAtFirst(section, d)
	}
	return holder.LoadSection(section, d)
}

// AIter resolves every stored A holder, in unspecified order.
func (tbl *Table) AIter() []holder.Result[A] {
	return holder.ResolveAll(tbl.As, func(h AHolder, visited *holder.VisitStack) (A, error) {
		return h.IntoOwned(tbl, visited)
	})
}

// BIter resolves every stored B holder, in unspecified order.
func (tbl *Table) BIter() []holder.Result[B] {
	return holder.ResolveAll(tbl.Bs, func(h BHolder, visited *holder.VisitStack) (B, error) {
		return h.IntoOwned(tbl, visited)
	})
}

// CIter resolves every stored C holder, in unspecified order.
func (tbl *Table) CIter() []holder.Result[C] {
	return holder.ResolveAll(tbl.Cs, func(h CHolder, visited *holder.VisitStack) (C, error) {
		return h.IntoOwned(tbl, visited)
	})
}
