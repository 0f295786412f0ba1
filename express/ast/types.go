package ast

// ParameterType is the tagged variant from spec.md §3: simple, named
// reference, aggregate container, bare aggregate, or generic.
type ParameterType interface {
	isParameterType()
}

// SimpleKind enumerates the EXPRESS simple types.
type SimpleKind int

const (
	SimpleNumber SimpleKind = iota
	SimpleReal
	SimpleInteger
	SimpleLogical
	SimpleBoolean
	SimpleString
	SimpleBinary
)

func (k SimpleKind) String() string {
	switch k {
	case SimpleNumber:
		return "NUMBER"
	case SimpleReal:
		return "REAL"
	case SimpleInteger:
		return "INTEGER"
	case SimpleLogical:
		return "LOGICAL"
	case SimpleBoolean:
		return "BOOLEAN"
	case SimpleString:
		return "STRING"
	case SimpleBinary:
		return "BINARY"
	default:
		return "UNKNOWN"
	}
}

// SimpleType is a primitive parameter type. Width is nil for an unbounded
// STRING/BINARY; Fixed distinguishes `STRING(32) FIXED` from `STRING(32)`,
// carried from the original source's width representation (SPEC_FULL.md §7).
type SimpleType struct {
	Kind  SimpleKind
	Width *Expr
	Fixed bool
}

func (*SimpleType) isParameterType() {}

// NamedType is an as-yet-unresolved reference to another declaration by
// name; express/legalizer turns this into a TypeRef.
type NamedType struct {
	Name string
}

func (*NamedType) isParameterType() {}

// AggKind enumerates the EXPRESS aggregate container kinds.
type AggKind int

const (
	AggSet AggKind = iota
	AggBag
	AggList
	AggArray
)

func (k AggKind) String() string {
	switch k {
	case AggSet:
		return "SET"
	case AggBag:
		return "BAG"
	case AggList:
		return "LIST"
	case AggArray:
		return "ARRAY"
	default:
		return "UNKNOWN"
	}
}

// AggregateParam is a SET/BAG/LIST/ARRAY OF parameter type.
type AggregateParam struct {
	Kind     AggKind
	Bound    *Bound // nil if unbounded
	Base     ParameterType
	Unique   bool // LIST/ARRAY OF UNIQUE
	Optional bool // ARRAY OF OPTIONAL
}

func (*AggregateParam) isParameterType() {}

// AggregateType is the bare `AGGREGATE [:label] OF base` form.
type AggregateType struct {
	Label string
	Base  ParameterType // nil when no "OF base" is given
}

func (*AggregateType) isParameterType() {}

// GenericType is `GENERIC [:label]`.
type GenericType struct {
	Label string
}

func (*GenericType) isParameterType() {}

// GenericEntityType is `GENERIC_ENTITY [:label]`.
type GenericEntityType struct {
	Label string
}

func (*GenericEntityType) isParameterType() {}

// Underlying is the tagged variant for a TYPE declaration's right-hand side.
type Underlying interface {
	isUnderlying()
}

// SimpleUnderlying is `TYPE t = REAL;` and friends.
type SimpleUnderlying struct {
	Type *SimpleType
}

func (*SimpleUnderlying) isUnderlying() {}

// NamedUnderlying is `TYPE t = other_type;`.
type NamedUnderlying struct {
	Name string
}

func (*NamedUnderlying) isUnderlying() {}

// EnumerationUnderlying is `TYPE t = ENUMERATION OF (a, b, c);`.
type EnumerationUnderlying struct {
	Items []string
	Ext   Extensibility
}

func (*EnumerationUnderlying) isUnderlying() {}

// SelectUnderlying is `TYPE t = SELECT (a, b, c);`.
type SelectUnderlying struct {
	Members []string
	Ext     Extensibility
}

func (*SelectUnderlying) isUnderlying() {}

// AggregateUnderlying is a TYPE declaration whose right-hand side is an
// aggregate container, e.g. `TYPE t = LIST OF REAL;`.
type AggregateUnderlying struct {
	Agg *AggregateParam
}

func (*AggregateUnderlying) isUnderlying() {}
