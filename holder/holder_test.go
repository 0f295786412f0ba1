package holder_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/stepwright/errs"
	"github.com/stokaro/stepwright/holder"
)

// node is a minimal self-referencing holder used only to exercise the
// cycle-detection and table machinery independently of any generated or
// hand-written schema package.
type node struct {
	Val  int
	Next holder.PlaceHolder[node]
}

type nodeTable struct {
	Nodes *holder.EntityTable[node]
}

func (n node) IntoOwned(tbl *nodeTable, visited *holder.VisitStack) (int, error) {
	if !n.Next.IsOwned() && !n.Next.IsRef() {
		return n.Val, nil
	}
	next, err := holder.Resolve[nodeTable, node, int](n.Next, tbl, func(t *nodeTable, id uint64) (node, error) {
		return t.Nodes.Get(id)
	}, visited)
	if err != nil {
		return 0, err
	}
	return n.Val + next, nil
}

func newNodeTable() *nodeTable {
	return &nodeTable{Nodes: holder.NewEntityTable[node]("NODE")}
}

// Testable property #4: resolving a reference-free holder always succeeds.
func TestResolveReferenceFreeHolderSucceeds(t *testing.T) {
	c := qt.New(t)
	tbl := newNodeTable()
	c.Assert(tbl.Nodes.Insert(1, node{Val: 7}), qt.IsNil)

	results := holder.ResolveAll(tbl.Nodes, func(h node, visited *holder.VisitStack) (int, error) {
		return h.IntoOwned(tbl, visited)
	})
	c.Assert(results, qt.HasLen, 1)
	c.Assert(results[0].Err, qt.IsNil)
	c.Assert(results[0].Value, qt.Equals, 7)
}

// Testable property #5: a dangling reference fails with UnknownEntity.
func TestResolveDanglingReferenceFails(t *testing.T) {
	c := qt.New(t)
	tbl := newNodeTable()
	c.Assert(tbl.Nodes.Insert(1, node{Val: 1, Next: holder.Ref[node](99)}), qt.IsNil)

	results := holder.ResolveAll(tbl.Nodes, func(h node, visited *holder.VisitStack) (int, error) {
		return h.IntoOwned(tbl, visited)
	})
	c.Assert(results, qt.HasLen, 1)
	c.Assert(results[0].Err, qt.IsNotNil)
	var unknown *errs.UnknownEntityError
	c.Assert(errors.As(results[0].Err, &unknown), qt.IsTrue)
	c.Assert(unknown.ID, qt.Equals, uint64(99))
}

// Testable property #6: cycle detection, including direct self-reference.
func TestResolveSelfReferenceIsCyclic(t *testing.T) {
	c := qt.New(t)
	tbl := newNodeTable()
	c.Assert(tbl.Nodes.Insert(1, node{Val: 1, Next: holder.Ref[node](1)}), qt.IsNil)

	results := holder.ResolveAll(tbl.Nodes, func(h node, visited *holder.VisitStack) (int, error) {
		return h.IntoOwned(tbl, visited)
	})
	c.Assert(results, qt.HasLen, 1)
	var cyclic *errs.CyclicReferenceError
	c.Assert(errors.As(results[0].Err, &cyclic), qt.IsTrue)
	c.Assert(cyclic.ID, qt.Equals, uint64(1))
}

func TestResolveTwoCycleIsDetected(t *testing.T) {
	c := qt.New(t)
	tbl := newNodeTable()
	c.Assert(tbl.Nodes.Insert(1, node{Val: 1, Next: holder.Ref[node](2)}), qt.IsNil)
	c.Assert(tbl.Nodes.Insert(2, node{Val: 2, Next: holder.Ref[node](1)}), qt.IsNil)

	results := holder.ResolveAll(tbl.Nodes, func(h node, visited *holder.VisitStack) (int, error) {
		return h.IntoOwned(tbl, visited)
	})
	c.Assert(results, qt.HasLen, 2)
	for _, r := range results {
		var cyclic *errs.CyclicReferenceError
		c.Assert(errors.As(r.Err, &cyclic), qt.IsTrue)
	}
}

// Two independent references to the same id within one top-level resolution
// each resolve fresh rather than the second being flagged as a cycle.
func TestResolveSharedTargetIsNotACycle(t *testing.T) {
	c := qt.New(t)
	tbl := newNodeTable()
	c.Assert(tbl.Nodes.Insert(1, node{Val: 10}), qt.IsNil)
	c.Assert(tbl.Nodes.Insert(2, node{Val: 2, Next: holder.Ref[node](1)}), qt.IsNil)
	c.Assert(tbl.Nodes.Insert(3, node{Val: 3, Next: holder.Ref[node](1)}), qt.IsNil)

	visited := holder.NewVisitStack()
	n2, err := tbl.Nodes.Get(2)
	c.Assert(err, qt.IsNil)
	v, err := n2.IntoOwned(tbl, visited)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, 12)

	// A second reference to id 1 under the same VisitStack resolves again.
	n3, err := tbl.Nodes.Get(3)
	c.Assert(err, qt.IsNil)
	v, err = n3.IntoOwned(tbl, visited)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, 13)
}

func TestDuplicateIDInsertFails(t *testing.T) {
	c := qt.New(t)
	tbl := holder.NewEntityTable[node]("NODE")
	c.Assert(tbl.Insert(1, node{Val: 1}), qt.IsNil)
	err := tbl.Insert(1, node{Val: 2})
	var dup *errs.DuplicateIDError
	c.Assert(errors.As(err, &dup), qt.IsTrue)
	c.Assert(dup.ID, qt.Equals, uint64(1))
}

func TestPlaceHolderOwnedVsRef(t *testing.T) {
	c := qt.New(t)
	owned := holder.Owned(node{Val: 3})
	c.Assert(owned.IsOwned(), qt.IsTrue)
	c.Assert(owned.IsRef(), qt.IsFalse)

	ref := holder.Ref[node](5)
	c.Assert(ref.IsRef(), qt.IsTrue)
	id, ok := ref.RefID()
	c.Assert(ok, qt.IsTrue)
	c.Assert(id, qt.Equals, uint64(5))
}

func TestResolveOneOfAmbiguousAndUnknown(t *testing.T) {
	c := qt.New(t)
	present := map[string]bool{"foo": true, "bar": true}

	_, err := holder.ResolveOneOf(1, []string{"foo", "bar", "baz"}, func(m string) bool { return present[m] })
	var amb *errs.AmbiguousSelectError
	c.Assert(errors.As(err, &amb), qt.IsTrue)
	c.Assert(amb.Members, qt.DeepEquals, []string{"foo", "bar"})

	_, err = holder.ResolveOneOf(2, []string{"qux"}, func(m string) bool { return false })
	var unknown *errs.UnknownEntityError
	c.Assert(errors.As(err, &unknown), qt.IsTrue)

	name, err := holder.ResolveOneOf(3, []string{"foo", "qux"}, func(m string) bool { return m == "qux" })
	c.Assert(err, qt.IsNil)
	c.Assert(name, qt.Equals, "qux")
}
