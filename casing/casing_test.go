package casing_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/stepwright/casing"
)

func TestTypeName(t *testing.T) {
	c := qt.New(t)
	c.Assert(casing.TypeName("cartesian_point"), qt.Equals, "CartesianPoint")
	c.Assert(casing.TypeName("a"), qt.Equals, "A")
	c.Assert(casing.TypeName("m_ref"), qt.Equals, "MRef")
	c.Assert(casing.TypeName(""), qt.Equals, "")
}

func TestFieldName(t *testing.T) {
	c := qt.New(t)
	c.Assert(casing.FieldName("m_ref"), qt.Equals, "M_ref")
	c.Assert(casing.FieldName("x"), qt.Equals, "X")
	c.Assert(casing.FieldName(""), qt.Equals, "")
}
