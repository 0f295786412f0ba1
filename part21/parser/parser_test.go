package parser_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/stepwright/part21/ast"
	"github.com/stokaro/stepwright/part21/parser"
)

func minimalExchange(data string) string {
	return "ISO-10303-21;\nHEADER;\nFILE_DESCRIPTION((''),'2;1');\nENDSEC;\n" +
		"DATA;\n" + data + "\nENDSEC;\nEND-ISO-10303-21;"
}

func TestParseExchangeStructure(t *testing.T) {
	c := qt.New(t)
	exch, err := parser.Parse(minimalExchange("#1 = A(1.0,2.0);"))
	c.Assert(err, qt.IsNil)
	c.Assert(exch.Header, qt.HasLen, 1)
	c.Assert(exch.Header[0].Name, qt.Equals, "FILE_DESCRIPTION")
	c.Assert(exch.Data, qt.HasLen, 1)
	c.Assert(exch.Data[0].Instances, qt.HasLen, 1)

	inst := exch.Data[0].Instances[0]
	c.Assert(inst.ID, qt.Equals, uint64(1))
	c.Assert(inst.Simple.Name, qt.Equals, "A")
	c.Assert(inst.Complex, qt.IsNil)
}

func TestParseMultipleDataSections(t *testing.T) {
	c := qt.New(t)
	src := "ISO-10303-21;\nHEADER;\nENDSEC;\n" +
		"DATA;\n#1 = A(1.0,2.0);\nENDSEC;\n" +
		"DATA;\n#2 = A(3.0,4.0);\nENDSEC;\n" +
		"END-ISO-10303-21;"
	exch, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)
	c.Assert(exch.Data, qt.HasLen, 2)
}

func TestParseComplexInstance(t *testing.T) {
	c := qt.New(t)
	exch, err := parser.Parse(minimalExchange("#1 = (A(1.0,2.0)B(3.0,#1));"))
	c.Assert(err, qt.IsNil)
	inst := exch.Data[0].Instances[0]
	c.Assert(inst.Simple, qt.IsNil)
	c.Assert(inst.Complex, qt.HasLen, 2)
	c.Assert(inst.Complex[0].Name, qt.Equals, "A")
	c.Assert(inst.Complex[1].Name, qt.Equals, "B")
}

func TestParseArgumentKinds(t *testing.T) {
	c := qt.New(t)
	exch, err := parser.Parse(minimalExchange("#1 = A($,*,1,2.5,'hi',.RED.,\"0A\",#2,@3,(1,2));"))
	c.Assert(err, qt.IsNil)
	args := exch.Data[0].Instances[0].Simple.Args
	c.Assert(args, qt.HasLen, 10)

	_, ok := args[0].(ast.Omitted)
	c.Assert(ok, qt.IsTrue)
	_, ok = args[1].(ast.Redeclared)
	c.Assert(ok, qt.IsTrue)
	c.Assert(args[2].(ast.IntLit).Value, qt.Equals, int64(1))
	c.Assert(args[3].(ast.RealLit).Value, qt.Equals, 2.5)
	c.Assert(args[4].(ast.StringLit).Value, qt.Equals, "hi")
	c.Assert(args[5].(ast.EnumLit).Name, qt.Equals, "RED")
	c.Assert(args[6].(ast.BinaryLit).Value, qt.Equals, "0A")

	ref := args[7].(ast.Ref)
	c.Assert(ref.Kind, qt.Equals, ast.RefInstance)
	c.Assert(ref.ID, qt.Equals, uint64(2))

	val := args[8].(ast.Ref)
	c.Assert(val.Kind, qt.Equals, ast.RefValue)
	c.Assert(val.ID, qt.Equals, uint64(3))

	list := args[9].(ast.ListArg)
	c.Assert(list.Items, qt.HasLen, 2)
}

func TestParseTypedRecordArgument(t *testing.T) {
	c := qt.New(t)
	exch, err := parser.Parse(minimalExchange("#1 = B(3.0,A(1.0,2.0));"))
	c.Assert(err, qt.IsNil)
	args := exch.Data[0].Instances[0].Simple.Args
	typed, ok := args[1].(ast.TypedRecordArg)
	c.Assert(ok, qt.IsTrue)
	c.Assert(typed.Record.Name, qt.Equals, "A")
	c.Assert(typed.Record.Args, qt.HasLen, 2)
}

func TestParseRejectsBadMarker(t *testing.T) {
	c := qt.New(t)
	_, err := parser.Parse("ISO-10303-22;\nHEADER;\nENDSEC;\nEND-ISO-10303-21;")
	c.Assert(err, qt.IsNotNil)
}

func TestParseDataSectionWithParameterList(t *testing.T) {
	c := qt.New(t)
	src := "ISO-10303-21;\nHEADER;\nENDSEC;\n" +
		"DATA('some schema');\n#1 = A(1.0,2.0);\nENDSEC;\n" +
		"END-ISO-10303-21;"
	exch, err := parser.Parse(src)
	c.Assert(err, qt.IsNil)
	c.Assert(exch.Data, qt.HasLen, 1)
}
