// Package legalizer implements the EXPRESS semantic analyser from
// spec.md §4.2: a two-pass walk over a parsed schema that turns every named
// reference into a resolved TypeRef handle.
package legalizer

import (
	"github.com/stokaro/stepwright/errs"
	"github.com/stokaro/stepwright/express/ast"
)

// RefKind tags a resolved TypeRef.
type RefKind int

const (
	RefSimple RefKind = iota
	RefNamed
	RefGeneric
	RefGenericEntity
)

// TypeRef is the resolved form of a NamedType reference: either a simple
// type passed through structurally, a named declaration found in the
// namespace, or a generic placeholder, per spec.md §3.
type TypeRef struct {
	Kind     RefKind
	Simple   *ast.SimpleType // set when Kind == RefSimple
	SchemaID string          // set when Kind == RefNamed
	DeclID   string          // set when Kind == RefNamed: the declaration's name
	Label    string          // set when Kind == RefGeneric or RefGenericEntity
}

// ResolvedParameterType mirrors ast.ParameterType with every NamedType
// replaced by a TypeRef and every nested parameter type resolved in turn.
type ResolvedParameterType struct {
	Ref      *TypeRef               // set for SimpleType/NamedType/GenericType/GenericEntityType
	Agg      *ResolvedAggregate     // set for AggregateParam
	Bare     *ResolvedAggregateType // set for AggregateType
	Optional bool
}

// ResolvedAggregate is a resolved SET/BAG/LIST/ARRAY OF parameter type.
type ResolvedAggregate struct {
	Kind   ast.AggKind
	Bound  *ast.Bound
	Base   *ResolvedParameterType
	Unique bool
}

// ResolvedAggregateType is a resolved bare `AGGREGATE [:label] OF base`.
type ResolvedAggregateType struct {
	Label string
	Base  *ResolvedParameterType // nil when no "OF base" was given
}

// ResolvedAttribute is an Attribute whose type has been legalized.
type ResolvedAttribute struct {
	Name     string
	Type     *ResolvedParameterType
	Optional bool
}

// ResolvedEntity is an EntityDecl whose attributes have been legalized.
type ResolvedEntity struct {
	Name       string
	SubSuper   string
	Attributes []*ResolvedAttribute
}

// ResolvedSelect is a resolved `SELECT (a, b, c)` underlying type, each
// member resolved to a TypeRef per spec.md §3's "select member names …
// each resolvable to a type declaration."
type ResolvedSelect struct {
	Members []*TypeRef
	Ext     ast.Extensibility
}

// ResolvedUnderlying mirrors ast.Underlying with NamedUnderlying and select
// members resolved to a TypeRef. Enumeration items are left as strings per
// spec.md §4.2.
type ResolvedUnderlying struct {
	Simple    *ast.SimpleType
	Named     *TypeRef
	Enum      *ast.EnumerationUnderlying
	Select    *ResolvedSelect
	Aggregate *ResolvedAggregate
}

// ResolvedType is a TypeDecl whose underlying type has been legalized.
type ResolvedType struct {
	Name       string
	Underlying *ResolvedUnderlying
	Where      string
}

// ResolvedSchema is the legalizer's output: every parameter type, named
// underlying, and select member replaced by a TypeRef, per spec.md §4.2.
type ResolvedSchema struct {
	Name     string
	Entities []*ResolvedEntity
	Types    []*ResolvedType
	Remarks  []ast.Remark
}

type declSite struct {
	schemaID string
	declID   string
}

// Namespace maps type/entity identifiers to their declaration site across
// schemas. Declarations are indexed per schema name and kept after Legalize
// returns, so schemas with different names never see each other's
// declarations, while legalizing a second schema with an already-indexed
// name fails with DuplicateDeclaration.
type Namespace struct {
	decls map[string]map[string]declSite // schemaID -> name -> site
}

// NewNamespace returns an empty Namespace.
func NewNamespace() *Namespace {
	return &Namespace{decls: make(map[string]map[string]declSite)}
}

// Scope is the lexical context (enclosing schema) for a qualified lookup.
type Scope struct {
	SchemaID string
}

func (ns *Namespace) index(schemaID, name string) error {
	bySchema, ok := ns.decls[schemaID]
	if !ok {
		bySchema = make(map[string]declSite)
		ns.decls[schemaID] = bySchema
	}
	if _, exists := bySchema[name]; exists {
		return &errs.DuplicateDeclarationError{Name: name}
	}
	bySchema[name] = declSite{schemaID: schemaID, declID: name}
	return nil
}

// lookupType resolves name within scope, per spec.md §4.2's
// `ns.lookup_type(scope, id)`.
func (ns *Namespace) lookupType(scope Scope, name string) (declSite, bool) {
	bySchema, ok := ns.decls[scope.SchemaID]
	if !ok {
		return declSite{}, false
	}
	site, ok := bySchema[name]
	return site, ok
}

// Legalize runs the two-pass resolution of spec.md §4.2 against schema,
// using ns as the (possibly already-populated) namespace. Each schema's
// names are indexed under its own id, so calling Legalize again for a
// different schema does not see this schema's declarations unless they
// share a schema name.
func (ns *Namespace) Legalize(schema *ast.Schema) (*ResolvedSchema, error) {
	scope := Scope{SchemaID: schema.Name}

	// Index pass.
	for _, e := range schema.Entities {
		if err := ns.index(schema.Name, e.Name); err != nil {
			return nil, err
		}
	}
	for _, t := range schema.Types {
		if err := ns.index(schema.Name, t.Name); err != nil {
			return nil, err
		}
	}

	// Resolve pass.
	resolved := &ResolvedSchema{Name: schema.Name, Remarks: schema.Remarks}
	for _, e := range schema.Entities {
		re, err := ns.resolveEntity(scope, e)
		if err != nil {
			return nil, err
		}
		resolved.Entities = append(resolved.Entities, re)
	}
	for _, t := range schema.Types {
		rt, err := ns.resolveType(scope, t)
		if err != nil {
			return nil, err
		}
		resolved.Types = append(resolved.Types, rt)
	}
	return resolved, nil
}

func (ns *Namespace) resolveEntity(scope Scope, e *ast.EntityDecl) (*ResolvedEntity, error) {
	re := &ResolvedEntity{Name: e.Name, SubSuper: e.SubSuper}
	for _, a := range e.Attributes {
		rpt, err := ns.resolveParameterType(scope, a.Type)
		if err != nil {
			return nil, err
		}
		re.Attributes = append(re.Attributes, &ResolvedAttribute{
			Name:     a.Name,
			Type:     rpt,
			Optional: a.Optional,
		})
	}
	return re, nil
}

func (ns *Namespace) resolveType(scope Scope, t *ast.TypeDecl) (*ResolvedType, error) {
	ru, err := ns.resolveUnderlying(scope, t.Underlying)
	if err != nil {
		return nil, err
	}
	return &ResolvedType{Name: t.Name, Underlying: ru, Where: t.Where}, nil
}

func (ns *Namespace) resolveUnderlying(scope Scope, u ast.Underlying) (*ResolvedUnderlying, error) {
	switch v := u.(type) {
	case *ast.SimpleUnderlying:
		return &ResolvedUnderlying{Simple: v.Type}, nil
	case *ast.NamedUnderlying:
		ref, err := ns.resolveNamed(scope, v.Name)
		if err != nil {
			return nil, err
		}
		return &ResolvedUnderlying{Named: ref}, nil
	case *ast.EnumerationUnderlying:
		return &ResolvedUnderlying{Enum: v}, nil
	case *ast.SelectUnderlying:
		sel, err := ns.resolveSelect(scope, v)
		if err != nil {
			return nil, err
		}
		return &ResolvedUnderlying{Select: sel}, nil
	case *ast.AggregateUnderlying:
		agg, err := ns.resolveAggregate(scope, v.Agg)
		if err != nil {
			return nil, err
		}
		return &ResolvedUnderlying{Aggregate: agg}, nil
	default:
		return nil, &errs.UnresolvedNameError{Name: "<unknown underlying>"}
	}
}

// resolveParameterType walks a ParameterType, replacing every NamedType
// with a TypeRef and passing simple types, aggregate wrappers, and generics
// through structurally, per spec.md §4.2.
func (ns *Namespace) resolveParameterType(scope Scope, pt ast.ParameterType) (*ResolvedParameterType, error) {
	switch v := pt.(type) {
	case *ast.SimpleType:
		return &ResolvedParameterType{Ref: &TypeRef{Kind: RefSimple, Simple: v}}, nil
	case *ast.NamedType:
		ref, err := ns.resolveNamed(scope, v.Name)
		if err != nil {
			return nil, err
		}
		return &ResolvedParameterType{Ref: ref}, nil
	case *ast.GenericType:
		return &ResolvedParameterType{Ref: &TypeRef{Kind: RefGeneric, Label: v.Label}}, nil
	case *ast.GenericEntityType:
		return &ResolvedParameterType{Ref: &TypeRef{Kind: RefGenericEntity, Label: v.Label}}, nil
	case *ast.AggregateParam:
		agg, err := ns.resolveAggregate(scope, v)
		if err != nil {
			return nil, err
		}
		return &ResolvedParameterType{Agg: agg, Optional: v.Optional}, nil
	case *ast.AggregateType:
		var base *ResolvedParameterType
		if v.Base != nil {
			b, err := ns.resolveParameterType(scope, v.Base)
			if err != nil {
				return nil, err
			}
			base = b
		}
		return &ResolvedParameterType{Bare: &ResolvedAggregateType{Label: v.Label, Base: base}}, nil
	default:
		return nil, &errs.UnresolvedNameError{Name: "<unknown parameter type>"}
	}
}

// resolveSelect resolves each SELECT member name to a TypeRef, matching the
// original's `types.iter().map(|ty| ns.lookup_type(scope, ty)).collect()`.
func (ns *Namespace) resolveSelect(scope Scope, s *ast.SelectUnderlying) (*ResolvedSelect, error) {
	members := make([]*TypeRef, 0, len(s.Members))
	for _, name := range s.Members {
		ref, err := ns.resolveNamed(scope, name)
		if err != nil {
			return nil, err
		}
		members = append(members, ref)
	}
	return &ResolvedSelect{Members: members, Ext: s.Ext}, nil
}

func (ns *Namespace) resolveAggregate(scope Scope, a *ast.AggregateParam) (*ResolvedAggregate, error) {
	base, err := ns.resolveParameterType(scope, a.Base)
	if err != nil {
		return nil, err
	}
	return &ResolvedAggregate{Kind: a.Kind, Bound: a.Bound, Base: base, Unique: a.Unique}, nil
}

func (ns *Namespace) resolveNamed(scope Scope, name string) (*TypeRef, error) {
	site, ok := ns.lookupType(scope, name)
	if !ok {
		return nil, &errs.UnresolvedNameError{Name: name}
	}
	return &TypeRef{Kind: RefNamed, SchemaID: site.schemaID, DeclID: site.declID}, nil
}
