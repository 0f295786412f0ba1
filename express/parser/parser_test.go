package parser_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/stepwright/errs"
	"github.com/stokaro/stepwright/express/ast"
	"github.com/stokaro/stepwright/express/parser"
)

// S1 — entity head.
func TestParseEntityHead(t *testing.T) {
	c := qt.New(t)
	schema, err := parser.Parse("SCHEMA s; ENTITY homhom; END_ENTITY; END_SCHEMA;")
	c.Assert(err, qt.IsNil)
	c.Assert(schema.Entities, qt.HasLen, 1)
	c.Assert(schema.Entities[0].Name, qt.Equals, "homhom")
	c.Assert(schema.Entities[0].Attributes, qt.HasLen, 0)
}

// S2 — attribute comma list.
func TestParseAttributeCommaList(t *testing.T) {
	c := qt.New(t)
	schema, err := parser.Parse("SCHEMA s; ENTITY e; x, y : REAL; END_ENTITY; END_SCHEMA;")
	c.Assert(err, qt.IsNil)
	attrs := schema.Entities[0].Attributes
	c.Assert(attrs, qt.HasLen, 2)
	c.Assert(attrs[0].Name, qt.Equals, "x")
	c.Assert(attrs[1].Name, qt.Equals, "y")

	st0, ok := attrs[0].Type.(*ast.SimpleType)
	c.Assert(ok, qt.IsTrue)
	c.Assert(st0.Kind, qt.Equals, ast.SimpleReal)
	st1, ok := attrs[1].Type.(*ast.SimpleType)
	c.Assert(ok, qt.IsTrue)
	c.Assert(st1.Kind, qt.Equals, ast.SimpleReal)

	// The two attributes carry structurally equal but independently owned
	// types (testable property #3).
	c.Assert(st0 == st1, qt.IsFalse)
	c.Assert(*st0, qt.Equals, *st1)
}

// S3 — minimal schema.
func TestParseMinimalSchema(t *testing.T) {
	c := qt.New(t)
	src := `SCHEMA my_first_schema;
		ENTITY first;
			m_ref : second;
			fattr : STRING;
		END_ENTITY;
		ENTITY second;
			sattr : STRING;
		END_ENTITY;
	END_SCHEMA;`
	schema, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)
	c.Assert(schema.Name, qt.Equals, "my_first_schema")
	c.Assert(schema.Entities, qt.HasLen, 2)
	c.Assert(schema.Entities[0].Name, qt.Equals, "first")
	c.Assert(schema.Entities[1].Name, qt.Equals, "second")

	first := schema.Entities[0]
	mRef, ok := first.Attributes[0].Type.(*ast.NamedType)
	c.Assert(ok, qt.IsTrue)
	c.Assert(mRef.Name, qt.Equals, "second")

	fattr, ok := first.Attributes[1].Type.(*ast.SimpleType)
	c.Assert(ok, qt.IsTrue)
	c.Assert(fattr.Kind, qt.Equals, ast.SimpleString)
	c.Assert(fattr.Width, qt.IsNil)
}

func TestParseTypeDeclEnumerationAndSelect(t *testing.T) {
	c := qt.New(t)
	src := `SCHEMA s;
		TYPE color = ENUMERATION OF (red, green, blue);
		END_TYPE;
		TYPE shape = EXTENSIBLE SELECT (circle, square);
		END_TYPE;
	END_SCHEMA;`
	schema, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)
	c.Assert(schema.Types, qt.HasLen, 2)

	color, ok := schema.Types[0].Underlying.(*ast.EnumerationUnderlying)
	c.Assert(ok, qt.IsTrue)
	c.Assert(color.Items, qt.DeepEquals, []string{"red", "green", "blue"})
	c.Assert(color.Ext, qt.Equals, ast.ExtNone)

	shape, ok := schema.Types[1].Underlying.(*ast.SelectUnderlying)
	c.Assert(ok, qt.IsTrue)
	c.Assert(shape.Members, qt.DeepEquals, []string{"circle", "square"})
	c.Assert(shape.Ext, qt.Equals, ast.ExtExtensible)
}

func TestParseAggregateAndBoundAndWidth(t *testing.T) {
	c := qt.New(t)
	src := `SCHEMA s;
		ENTITY e;
			pts : LIST [1:?] OF UNIQUE REAL;
			label : STRING(32) FIXED;
		END_ENTITY;
	END_SCHEMA;`
	schema, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)
	attrs := schema.Entities[0].Attributes

	agg, ok := attrs[0].Type.(*ast.AggregateParam)
	c.Assert(ok, qt.IsTrue)
	c.Assert(agg.Kind, qt.Equals, ast.AggList)
	c.Assert(agg.Unique, qt.IsTrue)
	c.Assert(agg.Bound.Lower.Text, qt.Equals, "1")
	c.Assert(agg.Bound.Upper.Text, qt.Equals, "?")
	base, ok := agg.Base.(*ast.SimpleType)
	c.Assert(ok, qt.IsTrue)
	c.Assert(base.Kind, qt.Equals, ast.SimpleReal)

	label, ok := attrs[1].Type.(*ast.SimpleType)
	c.Assert(ok, qt.IsTrue)
	c.Assert(label.Width.Text, qt.Equals, "32")
	c.Assert(label.Fixed, qt.IsTrue)
}

func TestParseWhereClauseRetainedVerbatim(t *testing.T) {
	c := qt.New(t)
	src := `SCHEMA s;
		TYPE positive = REAL;
		WHERE
			wr1 : SELF > 0;
		END_TYPE;
	END_SCHEMA;`
	schema, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)
	c.Assert(schema.Types[0].Where, qt.Contains, "SELF > 0")
}

func TestParseSubsuperRetainedVerbatim(t *testing.T) {
	c := qt.New(t)
	schema, err := parser.Parse("SCHEMA s; ENTITY foo SUPERTYPE OF (bar); x : REAL; END_ENTITY; END_SCHEMA;")
	c.Assert(err, qt.IsNil)
	c.Assert(schema.Entities[0].SubSuper, qt.Equals, "SUPERTYPE OF (bar)")
}

func TestParseRejectsUnterminatedSchema(t *testing.T) {
	c := qt.New(t)
	_, err := parser.Parse("SCHEMA s; ENTITY e; END_ENTITY;")
	c.Assert(err, qt.IsNotNil)
	var parseErr *errs.ParseError
	c.Assert(errors.As(err, &parseErr), qt.IsTrue)
}

func TestParseRejectsTrailingContent(t *testing.T) {
	c := qt.New(t)
	_, err := parser.Parse("SCHEMA s; END_SCHEMA; garbage")
	c.Assert(err, qt.IsNotNil)
}
