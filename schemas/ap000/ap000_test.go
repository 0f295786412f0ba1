package ap000_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/stepwright/config"
	"github.com/stokaro/stepwright/errs"
	"github.com/stokaro/stepwright/part21/parser"
	"github.com/stokaro/stepwright/schemas/ap000"
)

func parseData(c *qt.C, data string) *ap000.Table {
	src := "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n" + data + "\nENDSEC;\nEND-ISO-10303-21;"
	exch, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)
	c.Assert(exch.Data, qt.HasLen, 1)
	tbl := ap000.NewTable()
	loadErrs := ap000.Load(tbl, exch.Data[0])
	c.Assert(loadErrs, qt.HasLen, 0)
	return tbl
}

// S4 — inline value construction: B's `a` attribute given as a typed record
// rather than a reference resolves without ever consulting the table. An
// inline record's own parameter list is doubly-parenthesized, matching the
// original's encoding.
func TestInlineValueResolvesWithoutTableLookup(t *testing.T) {
	c := qt.New(t)
	tbl := parseData(c, "#3 = B(3.0, A((4.0, 5.0)));")

	results := tbl.BIter()
	c.Assert(results, qt.HasLen, 1)
	c.Assert(results[0].Err, qt.IsNil)
	c.Assert(results[0].Value, qt.Equals, ap000.B{Z: 3.0, A: ap000.A{X: 4.0, Y: 5.0}})
}

// TestInlineRecordReferencesStoredEntity exercises the original's
// `C(#1, B((6.0, #1)))` form: an inline-constructed B whose own field is a
// `#n` reference to a separately stored A, nested inside C's inline
// argument.
func TestInlineRecordReferencesStoredEntity(t *testing.T) {
	c := qt.New(t)
	tbl := parseData(c, "#1 = A(1.0,2.0);\n#6 = C(#1, B((6.0, #1)));")

	results := tbl.CIter()
	c.Assert(results, qt.HasLen, 1)
	c.Assert(results[0].Err, qt.IsNil)
	want := ap000.A{X: 1.0, Y: 2.0}
	c.Assert(results[0].Value.P, qt.Equals, want)
	c.Assert(results[0].Value.Q, qt.Equals, ap000.B{Z: 6.0, A: want})
}

// TestInlineRecordCombinedWithReference exercises the original's
// `C(A((9.0, 10.0)), #2)` form: one field inline-constructed, the other a
// `#n` reference, within the same record.
func TestInlineRecordCombinedWithReference(t *testing.T) {
	c := qt.New(t)
	tbl := parseData(c, "#1 = A(1.0,2.0);\n#2 = B(3.0,#1);\n#8 = C(A((9.0, 10.0)), #2);")

	results := tbl.CIter()
	c.Assert(results, qt.HasLen, 1)
	c.Assert(results[0].Err, qt.IsNil)
	c.Assert(results[0].Value.P, qt.Equals, ap000.A{X: 9.0, Y: 10.0})
	c.Assert(results[0].Value.Q, qt.Equals, ap000.B{Z: 3.0, A: ap000.A{X: 1.0, Y: 2.0}})
}

// S5 — DAG resolution: two references to the same stored A each produce an
// independently owned copy rather than sharing structure.
func TestSharedReferenceProducesIndependentCopies(t *testing.T) {
	c := qt.New(t)
	tbl := parseData(c, "#1 = A(1.0,2.0);\n#2 = B(5.0,#1);\n#3 = C(#1,#2);")

	cResults := tbl.CIter()
	c.Assert(cResults, qt.HasLen, 1)
	c.Assert(cResults[0].Err, qt.IsNil)
	got := cResults[0].Value

	want := ap000.A{X: 1.0, Y: 2.0}
	c.Assert(got.P, qt.Equals, want)
	c.Assert(got.Q.A, qt.Equals, want)

	// Mutating one copy must not affect the other: they are independently
	// owned, not structurally shared.
	got.P.X = 99
	c.Assert(got.Q.A.X, qt.Equals, 1.0)
}

// S6 — a dangling reference fails resolution of anything that depends on it,
// without poisoning unrelated instances.
func TestDanglingReferenceFailsOnlyDependents(t *testing.T) {
	c := qt.New(t)
	tbl := parseData(c, "#1 = A(1.0,2.0);\n#2 = B(5.0,#99);")

	aResults := tbl.AIter()
	c.Assert(aResults, qt.HasLen, 1)
	c.Assert(aResults[0].Err, qt.IsNil)

	bResults := tbl.BIter()
	c.Assert(bResults, qt.HasLen, 1)
	c.Assert(bResults[0].Err, qt.IsNotNil)
	var unknown *errs.UnknownEntityError
	c.Assert(errors.As(bResults[0].Err, &unknown), qt.IsTrue)
	c.Assert(unknown.ID, qt.Equals, uint64(99))
}

func TestLoadRejectsUnknownEntityType(t *testing.T) {
	c := qt.New(t)
	src := "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n#1 = ZZZ(1.0);\nENDSEC;\nEND-ISO-10303-21;"
	exch, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)
	tbl := ap000.NewTable()
	loadErrs := ap000.Load(tbl, exch.Data[0])
	c.Assert(loadErrs, qt.HasLen, 1)
	var unknownType *errs.UnknownEntityTypeError
	c.Assert(errors.As(loadErrs[0], &unknownType), qt.IsTrue)
	c.Assert(unknownType.Name, qt.Equals, "ZZZ")
}

func TestLoadRejectsDuplicateInstanceID(t *testing.T) {
	c := qt.New(t)
	src := "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n#1 = A(1.0,2.0);\n#1 = A(3.0,4.0);\nENDSEC;\nEND-ISO-10303-21;"
	exch, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)
	tbl := ap000.NewTable()
	loadErrs := ap000.Load(tbl, exch.Data[0])
	c.Assert(loadErrs, qt.HasLen, 1)
	var dup *errs.DuplicateIDError
	c.Assert(errors.As(loadErrs[0], &dup), qt.IsTrue)
}

func TestLoadWithOptionsStopsAtFirstError(t *testing.T) {
	c := qt.New(t)
	src := "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n#1 = ZZZ(1.0);\n#2 = YYY(1.0);\nENDSEC;\nEND-ISO-10303-21;"
	exch, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)

	tbl := ap000.NewTable()
	loadErrs := ap000.LoadWithOptions(tbl, exch.Data[0], config.DefaultLoadOptions().WithStopAtFirstError(true))
	c.Assert(loadErrs, qt.HasLen, 1)

	tbl2 := ap000.NewTable()
	lenientErrs := ap000.LoadWithOptions(tbl2, exch.Data[0], config.DefaultLoadOptions())
	c.Assert(lenientErrs, qt.HasLen, 2)
}
