// Package golang is a github.com/dave/jennifer-based emitter turning a
// legalizer.ResolvedSchema into Go source text implementing the
// generator capability set from spec.md §4.6: an owned struct and a holder
// struct per entity, a Table type wiring one EntityTable per entity, and a
// Load entry point implementing the spec.md §4.5 from_section dispatch.
//
// Generate never reads or writes files and never calls into the holder
// runtime: per spec.md §9, the generator must not know the schema it feeds
// the runtime and the runtime must not know the schema it was generated
// from. schemas/ap000 is the hand-written stand-in for this emitter's
// output, so the holder runtime can be exercised without running Generate.
package golang

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/stokaro/stepwright/casing"
	"github.com/stokaro/stepwright/express/ast"
	"github.com/stokaro/stepwright/express/legalizer"
)

const (
	holderPkg = "github.com/stokaro/stepwright/holder"
	p21Pkg    = "github.com/stokaro/stepwright/part21/ast"
)

// Generate renders schema as Go source implementing one owned/holder pair
// per entity, a Table type, and a Load function.
func Generate(schema *legalizer.ResolvedSchema, pkg string) (string, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment(fmt.Sprintf("Code generated from EXPRESS schema %q; DO NOT EDIT.", schema.Name))

	entityNames := make(map[string]bool, len(schema.Entities))
	for _, e := range schema.Entities {
		entityNames[e.Name] = true
	}

	for _, e := range schema.Entities {
		genOwnedStruct(f, e)
		genHolderStruct(f, e, entityNames)
		genDeserialize(f, e, entityNames)
		genIntoOwned(f, e, entityNames)
	}
	genTable(f, schema.Entities)
	genLoad(f, schema.Entities)

	return f.GoString(), nil
}

func typeName(e *legalizer.ResolvedEntity) string { return casing.TypeName(e.Name) }
func holderName(e *legalizer.ResolvedEntity) string { return typeName(e) + "Holder" }

// genOwnedStruct emits the owned shape E with public fields in schema
// order, per spec.md §4.6.
func genOwnedStruct(f *jen.File, e *legalizer.ResolvedEntity) {
	var fields []jen.Code
	for _, a := range e.Attributes {
		typ := ownedGoType(a.Type)
		if a.Optional {
			typ = jen.Op("*").Add(typ)
		}
		fields = append(fields, jen.Id(casing.FieldName(a.Name)).Add(typ))
	}
	f.Commentf("%s is the owned value for the %s entity.", typeName(e), e.Name)
	f.Type().Id(typeName(e)).Struct(fields...)
}

// genHolderStruct emits EHolder with the same field names, placeholder-
// wrapped per spec.md §4.4 for every attribute that refers to an entity.
func genHolderStruct(f *jen.File, e *legalizer.ResolvedEntity, entityNames map[string]bool) {
	var fields []jen.Code
	for _, a := range e.Attributes {
		typ := holderGoType(a.Type, entityNames)
		if a.Optional {
			typ = jen.Op("*").Add(typ)
		}
		fields = append(fields, jen.Id(casing.FieldName(a.Name)).Add(typ))
	}
	f.Commentf("%s is the deserialized-but-unresolved form of %s.", holderName(e), typeName(e))
	f.Type().Id(holderName(e)).Struct(fields...)
}

// ownedGoType maps a resolved parameter type to the owned-value Go type.
func ownedGoType(pt *legalizer.ResolvedParameterType) jen.Code {
	switch {
	case pt.Ref != nil:
		return refGoType(pt.Ref, false)
	case pt.Agg != nil:
		return jen.Index().Add(ownedGoType(pt.Agg.Base))
	case pt.Bare != nil:
		if pt.Bare.Base != nil {
			return jen.Index().Add(ownedGoType(pt.Bare.Base))
		}
		return jen.Interface()
	default:
		return jen.Interface()
	}
}

// holderGoType maps a resolved parameter type to the holder-carrier Go
// type: entity references become PlaceHolder[EHolder]; everything else
// (simple types, type aliases, generics) carries through structurally,
// matching spec.md §4.4's carrier table.
func holderGoType(pt *legalizer.ResolvedParameterType, entityNames map[string]bool) jen.Code {
	switch {
	case pt.Ref != nil:
		if pt.Ref.Kind == legalizer.RefNamed && entityNames[pt.Ref.DeclID] {
			return jen.Qual(holderPkg, "PlaceHolder").Index(jen.Id(casing.TypeName(pt.Ref.DeclID) + "Holder"))
		}
		return refGoType(pt.Ref, true)
	case pt.Agg != nil:
		return jen.Index().Add(holderGoType(pt.Agg.Base, entityNames))
	case pt.Bare != nil:
		if pt.Bare.Base != nil {
			return jen.Index().Add(holderGoType(pt.Bare.Base, entityNames))
		}
		return jen.Interface()
	default:
		return jen.Interface()
	}
}

func refGoType(ref *legalizer.TypeRef, isHolder bool) jen.Code {
	if ref.Kind == legalizer.RefSimple {
		return simpleGoType(ref.Simple)
	}
	if ref.Kind == legalizer.RefNamed {
		name := casing.TypeName(ref.DeclID)
		if isHolder {
			name += "Holder"
		}
		return jen.Id(name)
	}
	return jen.Interface() // generic / generic_entity placeholder
}

// simpleGoType maps a simple EXPRESS type to its Go representation. LOGICAL
// and BOOLEAN keep their three/two-valued enumeration text rather than
// collapsing to bool, since Part 21 always writes them as `.T./.F./.U.`
// enumeration constants (spec.md §4.3).
func simpleGoType(t *ast.SimpleType) jen.Code {
	switch t.Kind {
	case ast.SimpleInteger:
		return jen.Int64()
	case ast.SimpleNumber, ast.SimpleReal:
		return jen.Float64()
	case ast.SimpleBoolean, ast.SimpleLogical, ast.SimpleString, ast.SimpleBinary:
		return jen.String()
	default:
		return jen.Interface()
	}
}

// genDeserialize emits DeserializeE(rec *p21ast.Record) (EHolder, error),
// converting each positional argument per spec.md §4.4's carrier table.
func genDeserialize(f *jen.File, e *legalizer.ResolvedEntity, entityNames map[string]bool) {
	name := "Deserialize" + typeName(e)
	f.Commentf("%s builds a %s from a Part 21 simple record named %q.", name, holderName(e), e.Name)
	body := []jen.Code{
		jen.If(jen.Err().Op(":=").Qual(holderPkgFuncs, "CheckRecord").Call(
			jen.Lit(e.Name), jen.Id("rec"), jen.Lit(len(e.Attributes)),
		).Op(";").Err().Op("!=").Nil()).Block(
			jen.Return(jen.Id(holderName(e)).Values(), jen.Err()),
		),
		jen.Var().Id("h").Id(holderName(e)),
		jen.Var().Err().Error(),
	}
	for i, a := range e.Attributes {
		body = append(body, deserializeField(e, a, i, entityNames)...)
	}
	body = append(body, jen.Return(jen.Id("h"), jen.Nil()))
	f.Func().Id(name).Params(jen.Id("rec").Op("*").Qual(p21Pkg, "Record")).Params(jen.Id(holderName(e)), jen.Error()).Block(body...)
}

func deserializeField(e *legalizer.ResolvedEntity, a *legalizer.ResolvedAttribute, i int, entityNames map[string]bool) []jen.Code {
	fieldID := casing.FieldName(a.Name)
	target := jen.Id("h").Dot(fieldID)
	switch {
	case a.Type.Ref != nil && a.Type.Ref.Kind == legalizer.RefSimple:
		converter := simpleConverterName(a.Type.Ref.Simple)
		return []jen.Code{
			jen.List(target.Clone(), jen.Err()).Op("=").Qual(holderPkgFuncs, converter).Call(
				jen.Lit(e.Name), jen.Lit(i), jen.Id("rec").Dot("Args").Index(jen.Lit(i)),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Id(holderName(e)).Values(), jen.Err()),
			),
		}
	case a.Type.Ref != nil && a.Type.Ref.Kind == legalizer.RefNamed && entityNames[a.Type.Ref.DeclID]:
		refType := casing.TypeName(a.Type.Ref.DeclID)
		return []jen.Code{
			jen.List(target.Clone(), jen.Err()).Op("=").Qual(holderPkgFuncs, "RefOrInline").Index(jen.Id(refType+"Holder")).Call(
				jen.Lit(e.Name), jen.Lit(i), jen.Id("rec").Dot("Args").Index(jen.Lit(i)), jen.Id("Deserialize"+refType),
			),
			jen.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Id(holderName(e)).Values(), jen.Err()),
			),
		}
	default:
		// The remaining carriers (aggregates, enumeration member tables,
		// select/generic types) need a concrete schema's enum declarations
		// and element-type dispatch threaded in by a fuller emitter pass.
		return []jen.Code{
			jen.Comment(fmt.Sprintf("TODO: deserialize %s (aggregate/enumeration carrier)", a.Name)),
		}
	}
}

// simpleConverterName names the holder package's per-kind conversion
// helper for a simple type's Part 21 literal form (spec.md §4.4's table).
func simpleConverterName(t *ast.SimpleType) string {
	switch t.Kind {
	case ast.SimpleInteger:
		return "Int"
	case ast.SimpleNumber, ast.SimpleReal:
		return "Real"
	case ast.SimpleBinary:
		return "Binary"
	default:
		return "Str"
	}
}

const holderPkgFuncs = holderPkg

// genIntoOwned emits the IntoOwned method implementing spec.md §4.5's
// resolution contract for entity e.
func genIntoOwned(f *jen.File, e *legalizer.ResolvedEntity, entityNames map[string]bool) {
	f.Commentf("IntoOwned resolves every placeholder field of %s against tbl.", holderName(e))
	var body []jen.Code
	var values []jen.Code
	for _, a := range e.Attributes {
		fieldID := casing.FieldName(a.Name)
		if a.Type.Ref != nil && a.Type.Ref.Kind == legalizer.RefNamed && entityNames[a.Type.Ref.DeclID] {
			refType := casing.TypeName(a.Type.Ref.DeclID)
			localVar := "v" + fieldID
			body = append(body, jen.List(jen.Id(localVar), jen.Err()).Op(":=").Qual(holderPkg, "Resolve").Index(
				jen.List(jen.Id("Table"), jen.Id(refType+"Holder"), jen.Id(refType)),
			).Call(
				jen.Id("h").Dot(fieldID),
				jen.Id("tbl"),
				jen.Func().Params(jen.Id("t").Op("*").Id("Table"), jen.Id("id").Uint64()).Params(jen.Id(refType+"Holder"), jen.Error()).Block(
					jen.Return(jen.Id("t").Dot(refType+"s").Dot("Get").Call(jen.Id("id"))),
				),
				jen.Id("visited"),
			))
			body = append(body, jen.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Id(typeName(e)).Values(), jen.Err()),
			))
			values = append(values, jen.Id(fieldID).Op(":").Id(localVar))
		} else {
			values = append(values, jen.Id(fieldID).Op(":").Id("h").Dot(fieldID))
		}
	}
	body = append(body, jen.Return(jen.Id(typeName(e)).Values(values...), jen.Nil()))
	f.Func().Params(jen.Id("h").Id(holderName(e))).Id("IntoOwned").Params(
		jen.Id("tbl").Op("*").Id("Table"),
		jen.Id("visited").Op("*").Qual(holderPkg, "VisitStack"),
	).Params(jen.Id(typeName(e)), jen.Error()).Block(body...)
}

// genTable emits the schema's Table type, one *holder.EntityTable[EHolder]
// field per entity plus accessor methods, per spec.md §4.6.
func genTable(f *jen.File, entities []*legalizer.ResolvedEntity) {
	var fields []jen.Code
	for _, e := range entities {
		fields = append(fields, jen.Id(typeName(e)+"s").Op("*").Qual(holderPkg, "EntityTable").Index(jen.Id(holderName(e))))
	}
	f.Comment("Table owns every holder in the schema, one EntityTable slot per entity.")
	f.Type().Id("Table").Struct(fields...)

	f.Comment("NewTable returns an empty Table.")
	var ctorBody []jen.Code
	var ctorFields []jen.Code
	for _, e := range entities {
		ctorFields = append(ctorFields, jen.Id(typeName(e)+"s").Op(":").Qual(holderPkg, "NewEntityTable").Index(jen.Id(holderName(e))).Call(jen.Lit(e.Name)))
	}
	ctorBody = append(ctorBody, jen.Return(jen.Op("&").Id("Table").Values(ctorFields...)))
	f.Func().Id("NewTable").Params().Params(jen.Op("*").Id("Table")).Block(ctorBody...)
}

// genLoad emits Load(section) implementing spec.md §4.5's from_section
// dispatch: each instance's uppercased record name selects the matching
// entity's deserializer and table.
func genLoad(f *jen.File, entities []*legalizer.ResolvedEntity) {
	sorted := make([]*legalizer.ResolvedEntity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var cases []jen.Code
	for _, e := range sorted {
		cases = append(cases, jen.Case(jen.Lit(strings.ToUpper(e.Name))).Block(
			jen.List(jen.Id("holder"+typeName(e)), jen.Err()).Op(":=").Id("Deserialize"+typeName(e)).Call(jen.Id("rec")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
			jen.Return(jen.Id("tbl").Dot(typeName(e)+"s").Dot("Insert").Call(jen.Id("id"), jen.Id("holder"+typeName(e)))),
		))
	}
	cases = append(cases, jen.Default().Block(
		jen.Return(jen.Op("&").Qual("github.com/stokaro/stepwright/errs", "UnknownEntityTypeError").Values(jen.Dict{jen.Id("Name"): jen.Id("name")})),
	))

	f.Comment("Load deserializes every instance in section into tbl, collecting per-instance errors.")
	f.Func().Id("Load").Params(
		jen.Id("tbl").Op("*").Id("Table"),
		jen.Id("section").Op("*").Qual(p21Pkg, "DataSection"),
	).Params(jen.Index().Error()).Block(
		jen.Return(jen.Qual(holderPkg, "LoadSection").Call(
			jen.Id("section"),
			jen.Func().Params(jen.Id("name").String(), jen.Id("id").Uint64(), jen.Id("rec").Op("*").Qual(p21Pkg, "Record")).Error().Block(
				jen.Switch(jen.Id("name")).Block(cases...),
			),
		)),
	)
}
