package holder

import (
	"fmt"
	"strings"

	"github.com/go-extras/go-kit/ptr"

	"github.com/stokaro/stepwright/errs"
	p21 "github.com/stokaro/stepwright/part21/ast"
)

// field formats a zero-based argument index as the 1-based field label used
// by the TypeMismatchError and MissingValueError causes, matching how STEP
// records are conventionally reported (field #1 is the first argument).
// DeserializeError.Field itself keeps the zero-based index.
func field(i int) string { return fmt.Sprintf("#%d", i+1) }

func mismatch(entity string, i int, want string, arg p21.Argument) error {
	return &errs.DeserializeError{
		Entity: entity,
		Field:  i,
		Cause:  &errs.TypeMismatchError{Field: field(i), Expected: want, Got: fmt.Sprintf("%T", arg)},
	}
}

// Int converts a record argument to an integer carrier, per spec.md §4.4.
func Int(entity string, i int, arg p21.Argument) (int64, error) {
	v, ok := arg.(p21.IntLit)
	if !ok {
		return 0, mismatch(entity, i, "integer", arg)
	}
	return v.Value, nil
}

// Real converts a record argument to a real carrier.
func Real(entity string, i int, arg p21.Argument) (float64, error) {
	v, ok := arg.(p21.RealLit)
	if !ok {
		return 0, mismatch(entity, i, "real", arg)
	}
	return v.Value, nil
}

// Str converts a record argument to a string carrier.
func Str(entity string, i int, arg p21.Argument) (string, error) {
	v, ok := arg.(p21.StringLit)
	if !ok {
		return "", mismatch(entity, i, "string", arg)
	}
	return v.Value, nil
}

// Binary converts a record argument to a binary carrier.
func Binary(entity string, i int, arg p21.Argument) (string, error) {
	v, ok := arg.(p21.BinaryLit)
	if !ok {
		return "", mismatch(entity, i, "binary", arg)
	}
	return v.Value, nil
}

// Enum matches a `.NAME.` argument against a declared enumeration's items
// case-insensitively, returning the item's declared (canonical) spelling.
func Enum(entity string, i int, arg p21.Argument, items []string) (string, error) {
	v, ok := arg.(p21.EnumLit)
	if !ok {
		return "", mismatch(entity, i, "enumeration constant", arg)
	}
	for _, item := range items {
		if strings.EqualFold(item, v.Name) {
			return item, nil
		}
	}
	return "", &errs.DeserializeError{
		Entity: entity,
		Field:  i,
		Cause:  fmt.Errorf("enumeration value %q is not one of %v", v.Name, items),
	}
}

// RefOrInline converts an argument naming a reference-typed attribute to a
// PlaceHolder: `#n`/`@n` becomes Ref(n); a typed record NAME(args) is
// deserialized recursively via build and wrapped Owned, per spec.md §4.4's
// dispatch table. An inline typed record's own parameter list is written
// doubly-parenthesized, e.g. `A((4.0, 5.0))`, matching the original
// encoding's convention for a constructor used as a value rather than a
// top-level instance; unwrapInlineRecord strips that extra wrapping before
// build sees the record, so build receives the same flat argument shape it
// would for a top-level simple instance.
func RefOrInline[H any](entity string, i int, arg p21.Argument, build func(*p21.Record) (H, error)) (PlaceHolder[H], error) {
	var zero PlaceHolder[H]
	switch v := arg.(type) {
	case p21.Ref:
		return Ref[H](v.ID), nil
	case p21.TypedRecordArg:
		child, err := build(unwrapInlineRecord(v.Record))
		if err != nil {
			return zero, err
		}
		return Owned(child), nil
	default:
		return zero, mismatch(entity, i, "reference or typed record", arg)
	}
}

// unwrapInlineRecord strips the extra parameter-list parenthesization an
// inline typed-record argument carries: `A((4.0, 5.0))` parses as a Record
// whose single argument is the list `(4.0, 5.0)`; this replaces that
// wrapper with the list's own items.
func unwrapInlineRecord(rec *p21.Record) *p21.Record {
	if len(rec.Args) == 1 {
		if list, ok := rec.Args[0].(p21.ListArg); ok {
			return &p21.Record{Name: rec.Name, Args: list.Items, Pos: rec.Pos}
		}
	}
	return rec
}

// OptionalArg applies convert unless arg is Omitted, per spec.md §4.4: `$`
// yields (nil, nil) when optional is true, and a MissingValue error
// otherwise.
func OptionalArg[T any](entity string, i int, arg p21.Argument, optional bool, convert func(p21.Argument) (T, error)) (*T, error) {
	if _, ok := arg.(p21.Omitted); ok {
		if !optional {
			return nil, &errs.DeserializeError{
				Entity: entity,
				Field:  i,
				Cause:  &errs.MissingValueError{Field: field(i)},
			}
		}
		return nil, nil
	}
	v, err := convert(arg)
	if err != nil {
		return nil, err
	}
	return ptr.To(v), nil
}

// CheckRecord validates that rec's name matches entity (case-insensitive)
// and its argument count matches wantArgs, per spec.md §4.4.
func CheckRecord(entity string, rec *p21.Record, wantArgs int) error {
	if !strings.EqualFold(rec.Name, entity) {
		return &errs.DeserializeError{
			Entity: entity,
			Field:  -1,
			Cause:  fmt.Errorf("record name %q does not match entity %q", rec.Name, entity),
		}
	}
	if len(rec.Args) != wantArgs {
		return &errs.DeserializeError{
			Entity: entity,
			Field:  -1,
			Cause:  fmt.Errorf("record has %d arguments, entity %s expects %d", len(rec.Args), entity, wantArgs),
		}
	}
	return nil
}

// LoadSection runs the loader algorithm of spec.md §4.5 over section: each
// simple instance is dispatched by its uppercased record name to insert,
// which should look up the matching per-entity deserializer and insert the
// result into that entity's table. Complex instances are rejected with
// Unimplemented. Per-instance errors are collected and returned rather than
// aborting the whole section, so a malformed record does not poison the
// rest of the load.
func LoadSection(section *p21.DataSection, insert func(name string, id uint64, rec *p21.Record) error) []error {
	return loadSection(section, insert, false)
}

// LoadSectionStopAtFirst behaves like LoadSection but returns after the
// first per-instance error instead of processing the rest of the section,
// for callers configured for fail-fast loading (config.LoadOptions).
func LoadSectionStopAtFirst(section *p21.DataSection, insert func(name string, id uint64, rec *p21.Record) error) []error {
	return loadSection(section, insert, true)
}

func loadSection(section *p21.DataSection, insert func(name string, id uint64, rec *p21.Record) error, stopAtFirst bool) []error {
	var out []error
	for _, inst := range section.Instances {
		if inst.Simple == nil {
			out = append(out, &errs.UnimplementedError{What: "complex instance"})
			if stopAtFirst {
				return out
			}
			continue
		}
		name := strings.ToUpper(inst.Simple.Name)
		if err := insert(name, inst.ID, inst.Simple); err != nil {
			out = append(out, err)
			if stopAtFirst {
				return out
			}
		}
	}
	return out
}
