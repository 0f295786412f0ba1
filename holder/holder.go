// Package holder implements the entity holder / reference resolution model
// from spec.md §§3-5: the PlaceHolder<T> carrier, the per-entity-type
// EntityTable, and the cycle-tracked resolution primitive that turns a
// holder graph into an owned, independently-copied value graph.
package holder

import "github.com/stokaro/stepwright/errs"

// RValue is a symbolic reference written in a Part 21 record: `#m` or `@m`.
// This core treats both kinds of reference identically at resolution time,
// per spec.md §4.3.
type RValue struct {
	ID uint64
}

// PlaceHolder is the carrier for an attribute whose declared type is an
// entity or type reference. It holds either a holder for an inline-
// constructed value (Owned) or a symbolic reference to resolve later (Ref).
// It is frozen once constructed: there is no third, resolved state on the
// holder itself (spec.md §4.7) -- resolution always produces a fresh owned
// value via Resolve.
type PlaceHolder[H any] struct {
	owned *H
	ref   *RValue
}

// Owned wraps an inline-constructed child holder.
func Owned[H any](h H) PlaceHolder[H] {
	return PlaceHolder[H]{owned: &h}
}

// Ref wraps a symbolic reference to another instance id.
func Ref[H any](id uint64) PlaceHolder[H] {
	return PlaceHolder[H]{ref: &RValue{ID: id}}
}

// IsOwned reports whether the placeholder carries an inline value.
func (p PlaceHolder[H]) IsOwned() bool { return p.owned != nil }

// IsRef reports whether the placeholder carries a symbolic reference.
func (p PlaceHolder[H]) IsRef() bool { return p.ref != nil }

// RefID returns the referenced instance id and true, or (0, false) if this
// placeholder is not a Ref.
func (p PlaceHolder[H]) RefID() (uint64, bool) {
	if p.ref == nil {
		return 0, false
	}
	return p.ref.ID, true
}

// Holder is implemented by every generator-produced EHolder, binding it to
// its owning Table type and its owned value type, per spec.md §4.6.
type Holder[Tbl any, O any] interface {
	IntoOwned(tbl *Tbl, visited *VisitStack) (O, error)
}

// Resolve turns a PlaceHolder into its owned value. An Owned placeholder
// resolves by recursively calling IntoOwned on the held child holder under
// the same table. A Ref placeholder resolves by looking the id up via
// lookup (the generator-provided accessor for the expected entity type's
// table) and recursing, with cycle detection via visited, per spec.md §4.5.
func Resolve[Tbl any, H Holder[Tbl, O], O any](ph PlaceHolder[H], tbl *Tbl, lookup func(*Tbl, uint64) (H, error), visited *VisitStack) (O, error) {
	var zero O
	if ph.owned != nil {
		return (*ph.owned).IntoOwned(tbl, visited)
	}
	id, ok := ph.RefID()
	if !ok {
		return zero, &errs.UnknownEntityError{ID: 0}
	}
	leave, err := visited.Enter(id)
	if err != nil {
		return zero, err
	}
	defer leave()
	h, err := lookup(tbl, id)
	if err != nil {
		return zero, err
	}
	return h.IntoOwned(tbl, visited)
}

// ResolveOneOf implements the SELECT-typed reference resolution rule from
// spec.md §4.5: a reference must be resolvable under exactly one member
// type. present is called once per candidate member name; ResolveOneOf
// returns the single matching member name, UnknownEntity if none matched,
// or AmbiguousSelect if more than one did.
func ResolveOneOf(id uint64, members []string, present func(member string) bool) (string, error) {
	var matched []string
	for _, m := range members {
		if present(m) {
			matched = append(matched, m)
		}
	}
	switch len(matched) {
	case 0:
		return "", &errs.UnknownEntityError{ID: id}
	case 1:
		return matched[0], nil
	default:
		return "", &errs.AmbiguousSelectError{ID: id, Members: matched}
	}
}

// VisitStack is the per-call visited-id stack used to detect cycles during
// resolution (spec.md §4.5, §7). It tracks ids currently on the active
// resolution path, not ids visited overall, so two independent references
// to the same id within one top-level resolution are each resolved fresh
// rather than the second being flagged as a cycle.
type VisitStack struct {
	active map[uint64]bool
}

// NewVisitStack returns an empty VisitStack.
func NewVisitStack() *VisitStack {
	return &VisitStack{active: make(map[uint64]bool)}
}

// Enter pushes id onto the stack. It fails with CyclicReference if id is
// already on the stack. The returned func pops id back off and must be
// called (typically via defer) once the caller is done resolving id.
func (v *VisitStack) Enter(id uint64) (func(), error) {
	if v.active[id] {
		return nil, &errs.CyclicReferenceError{ID: id}
	}
	v.active[id] = true
	return func() { delete(v.active, id) }, nil
}

// EntityTable is a schema-specific container owning every holder of one
// entity type, keyed by instance id (spec.md §4.5).
type EntityTable[H any] struct {
	entityType string
	byID       map[uint64]H
}

// NewEntityTable returns an empty table for the named entity type.
func NewEntityTable[H any](entityType string) *EntityTable[H] {
	return &EntityTable[H]{entityType: entityType, byID: make(map[uint64]H)}
}

// Insert adds a holder under id. It fails with DuplicateId if id is already
// present, per spec.md §4.5.
func (t *EntityTable[H]) Insert(id uint64, h H) error {
	if _, exists := t.byID[id]; exists {
		return &errs.DuplicateIDError{ID: id, EntityType: t.entityType}
	}
	t.byID[id] = h
	return nil
}

// Get returns the holder stored under id, or UnknownEntity if absent.
func (t *EntityTable[H]) Get(id uint64) (H, error) {
	h, ok := t.byID[id]
	if !ok {
		var zero H
		return zero, &errs.UnknownEntityError{ID: id}
	}
	return h, nil
}

// Has reports whether id is present, used by select-typed resolution to
// probe candidate member tables without erroring.
func (t *EntityTable[H]) Has(id uint64) bool {
	_, ok := t.byID[id]
	return ok
}

// Len returns the number of stored holders.
func (t *EntityTable[H]) Len() int { return len(t.byID) }

// IDs returns every stored instance id, in unspecified order, per spec.md
// §4.5's e_iter contract.
func (t *EntityTable[H]) IDs() []uint64 {
	ids := make([]uint64, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	return ids
}

// Result pairs an owned value with a per-item resolution error, so that one
// failing instance does not poison the rest of the table's iteration,
// matching spec.md §4.5's "partial success is observable" error
// propagation rule.
type Result[O any] struct {
	Value O
	Err   error
}

// ResolveAll resolves every holder stored in tbl via resolve, each under
// its own fresh VisitStack seeded with that instance's own id (so a
// self-referencing record is still caught as a cycle), and collects the
// per-item results in the table's iteration order.
func ResolveAll[H any, O any](tbl *EntityTable[H], resolve func(h H, visited *VisitStack) (O, error)) []Result[O] {
	ids := tbl.IDs()
	out := make([]Result[O], 0, len(ids))
	for _, id := range ids {
		h, err := tbl.Get(id)
		if err != nil {
			out = append(out, Result[O]{Err: err})
			continue
		}
		visited := NewVisitStack()
		leave, err := visited.Enter(id)
		if err != nil {
			out = append(out, Result[O]{Err: err})
			continue
		}
		v, err := resolve(h, visited)
		leave()
		out = append(out, Result[O]{Value: v, Err: err})
	}
	return out
}
