package ast_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/stepwright/express/ast"
	"github.com/stokaro/stepwright/express/parser"
)

// TestPrintRoundTripsSimpleEntity covers spec.md's testable property #1:
// re-parsing a printed schema yields an AST equal modulo remark placement
// (Print drops remarks entirely, so the round trip is checked on a
// remark-free source).
func TestPrintRoundTripsSimpleEntity(t *testing.T) {
	c := qt.New(t)
	src := "SCHEMA widgets; ENTITY bolt; length : REAL; name : OPTIONAL STRING(32) FIXED; END_ENTITY; END_SCHEMA;"

	schema, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)

	printed := ast.Print(schema)

	reparsed, err := parser.Parse(printed)
	c.Assert(err, qt.IsNil)

	c.Assert(reparsed.Name, qt.Equals, schema.Name)
	c.Assert(reparsed.Entities, qt.HasLen, len(schema.Entities))
	c.Assert(reparsed.Entities[0].Name, qt.Equals, schema.Entities[0].Name)
	c.Assert(reparsed.Entities[0].Attributes, qt.HasLen, len(schema.Entities[0].Attributes))

	origLen, ok := schema.Entities[0].Attributes[1].Type.(*ast.SimpleType)
	c.Assert(ok, qt.IsTrue)
	reLen, ok := reparsed.Entities[0].Attributes[1].Type.(*ast.SimpleType)
	c.Assert(ok, qt.IsTrue)
	c.Assert(reLen.Kind, qt.Equals, origLen.Kind)
	c.Assert(reLen.Fixed, qt.Equals, origLen.Fixed)
	c.Assert(reLen.Width.Text, qt.Equals, origLen.Width.Text)
	c.Assert(reparsed.Entities[0].Attributes[1].Optional, qt.IsTrue)
}

// TestPrintRoundTripsEnumerationType covers the ENUMERATION underlying type
// and its extensibility marker (SPEC_FULL.md §7).
func TestPrintRoundTripsEnumerationType(t *testing.T) {
	c := qt.New(t)
	src := "SCHEMA colors; TYPE hue = EXTENSIBLE ENUMERATION OF (red, green, blue); END_TYPE; END_SCHEMA;"

	schema, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)

	printed := ast.Print(schema)
	reparsed, err := parser.Parse(printed)
	c.Assert(err, qt.IsNil)

	c.Assert(reparsed.Types, qt.HasLen, 1)
	origEnum, ok := schema.Types[0].Underlying.(*ast.EnumerationUnderlying)
	c.Assert(ok, qt.IsTrue)
	reEnum, ok := reparsed.Types[0].Underlying.(*ast.EnumerationUnderlying)
	c.Assert(ok, qt.IsTrue)
	c.Assert(reEnum.Ext, qt.Equals, origEnum.Ext)
	c.Assert(reEnum.Items, qt.DeepEquals, origEnum.Items)
}

// TestPrintDropsRemarks confirms Print's documented divergence from a
// faithful reprint: remarks are not re-emitted.
func TestPrintDropsRemarks(t *testing.T) {
	c := qt.New(t)
	schema, err := parser.Parse("SCHEMA s; (* a remark *) ENTITY e; END_ENTITY; END_SCHEMA;")
	c.Assert(err, qt.IsNil)
	c.Assert(schema.Remarks, qt.HasLen, 1)

	printed := ast.Print(schema)
	c.Assert(printed, qt.Contains, "ENTITY e")
	c.Assert(printed, qt.Not(qt.Contains), "(*")
}
