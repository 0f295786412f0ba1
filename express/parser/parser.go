// Package parser implements a recursive-descent parser for the subset of
// ISO 10303-11 (EXPRESS) schema syntax accepted by this system, per
// spec.md §4.1.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-extras/go-kit/ptr"

	"github.com/stokaro/stepwright/errs"
	"github.com/stokaro/stepwright/express/ast"
	"github.com/stokaro/stepwright/lexer"
	"github.com/stokaro/stepwright/srcpos"
)

// Parser converts an EXPRESS token stream into a *ast.Schema.
//
// It never partially succeeds: Parse either consumes the whole input (up to
// trailing whitespace) or returns an error, per spec.md §4.1.
type Parser struct {
	src       string
	lex       *lexer.Lexer
	current   lexer.Token
	remarks   []ast.Remark
	startTime time.Time
	timeout   time.Duration
}

// Parse parses a complete EXPRESS schema from src.
func Parse(src string) (*ast.Schema, error) {
	p := &Parser{
		src:       src,
		lex:       lexer.New(src),
		startTime: time.Now(),
		timeout:   30 * time.Second,
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseSchema()
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next(func(text string, pos srcpos.Position) {
		p.remarks = append(p.remarks, ast.Remark{Text: text, Pos: pos})
	})
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *Parser) errorf(production, format string, args ...any) error {
	return &errs.ParseError{Production: production, Pos: p.current.Pos, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) checkTimeout(production string) error {
	if time.Since(p.startTime) > p.timeout {
		return &errs.ParseError{Production: production, Pos: p.current.Pos, Message: fmt.Sprintf("parsing timeout exceeded (%v) - possible infinite loop", p.timeout)}
	}
	return nil
}

func (p *Parser) atKeyword(kw string) bool {
	return p.current.Kind == lexer.Ident && strings.EqualFold(p.current.Text, kw)
}

func (p *Parser) expectKeyword(kw, production string) error {
	if !p.atKeyword(kw) {
		return p.errorf(production, "expected %s, got %q", kw, p.current.Text)
	}
	return p.advance()
}

func (p *Parser) expectIdent(production string) (string, error) {
	if p.current.Kind != lexer.Ident {
		return "", p.errorf(production, "expected identifier, got %q", p.current.Text)
	}
	name := p.current.Text
	return name, p.advance()
}

func (p *Parser) expectKind(k lexer.Kind, production string) error {
	if p.current.Kind != k {
		return p.errorf(production, "expected %v, got %q", k, p.current.Text)
	}
	return p.advance()
}

// --- raw (verbatim) expression capture -------------------------------------

// stopFn reports whether the parser should stop capturing raw text at the
// current token, given the current paren/bracket nesting depth.
type stopFn func(tok lexer.Token, depth int) bool

func stopAtKind(k lexer.Kind) stopFn {
	return func(tok lexer.Token, depth int) bool { return depth == 0 && tok.Kind == k }
}

func stopAtKeyword(kw string) stopFn {
	return func(tok lexer.Token, depth int) bool {
		return depth == 0 && tok.Kind == lexer.Ident && strings.EqualFold(tok.Text, kw)
	}
}

// rawUntil captures the exact source text from the current token up to (but
// not including) the first token for which stop reports true at bracket
// depth zero. Expressions are preserved verbatim and never evaluated, per
// spec.md §3.
func (p *Parser) rawUntil(production string, stop stopFn) (string, error) {
	start := p.current.Pos.Offset
	depth := 0
	for {
		if stop(p.current, depth) {
			return strings.TrimSpace(p.src[start:p.current.Pos.Offset]), nil
		}
		switch p.current.Kind {
		case lexer.LParen, lexer.LBracket:
			depth++
		case lexer.RParen, lexer.RBracket:
			depth--
		case lexer.EOF:
			return "", p.errorf(production, "unexpected end of input")
		}
		if err := p.checkTimeout(production); err != nil {
			return "", err
		}
		if err := p.advance(); err != nil {
			return "", err
		}
	}
}

// --- schema -----------------------------------------------------------------

func (p *Parser) parseSchema() (*ast.Schema, error) {
	const production = "schema_decl"
	pos := p.current.Pos
	if err := p.expectKeyword("SCHEMA", production); err != nil {
		return nil, err
	}
	name, err := p.expectIdent(production)
	if err != nil {
		return nil, err
	}
	// Optional schema_version_id, recognised and discarded per spec.md §4.1.
	if p.current.Kind == lexer.String {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}

	schema := &ast.Schema{Name: name, Pos: pos}
	for !p.atKeyword("END_SCHEMA") {
		if p.current.Kind == lexer.EOF {
			return nil, p.errorf(production, "unexpected end of input before END_SCHEMA")
		}
		if err := p.checkTimeout(production); err != nil {
			return nil, err
		}
		switch {
		case p.atKeyword("ENTITY"):
			e, err := p.parseEntityDecl()
			if err != nil {
				return nil, err
			}
			schema.Entities = append(schema.Entities, e)
		case p.atKeyword("TYPE"):
			t, err := p.parseTypeDecl()
			if err != nil {
				return nil, err
			}
			schema.Types = append(schema.Types, t)
		case p.atKeyword("RULE"):
			if err := p.skipRuleDecl(); err != nil {
				return nil, err
			}
		case p.atKeyword("CONSTANT"):
			if err := p.skipConstantDecl(); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf(production, "unexpected token %q in schema body", p.current.Text)
		}
	}
	if err := p.advance(); err != nil { // consume END_SCHEMA
		return nil, err
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}
	if p.current.Kind != lexer.EOF {
		return nil, p.errorf(production, "trailing content after END_SCHEMA;: %q", p.current.Text)
	}
	schema.Remarks = p.remarks
	return schema, nil
}

func (p *Parser) skipRuleDecl() error {
	const production = "rule_decl"
	if err := p.expectKeyword("RULE", production); err != nil {
		return err
	}
	if _, err := p.expectIdent(production); err != nil {
		return err
	}
	if _, err := p.rawUntil(production, stopAtKeyword("END_RULE")); err != nil {
		return err
	}
	if err := p.expectKeyword("END_RULE", production); err != nil {
		return err
	}
	return p.expectKind(lexer.Semicolon, production)
}

func (p *Parser) skipConstantDecl() error {
	const production = "constant_decl"
	if err := p.expectKeyword("CONSTANT", production); err != nil {
		return err
	}
	if _, err := p.rawUntil(production, stopAtKeyword("END_CONSTANT")); err != nil {
		return err
	}
	if err := p.expectKeyword("END_CONSTANT", production); err != nil {
		return err
	}
	return p.expectKind(lexer.Semicolon, production)
}

// --- entity ------------------------------------------------------------------

func (p *Parser) parseEntityDecl() (*ast.EntityDecl, error) {
	const production = "entity_decl"
	pos := p.current.Pos
	if err := p.expectKeyword("ENTITY", production); err != nil {
		return nil, err
	}
	name, err := p.expectIdent(production)
	if err != nil {
		return nil, err
	}
	subsuper, err := p.rawUntil(production, stopAtKind(lexer.Semicolon))
	if err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}

	entity := &ast.EntityDecl{Name: name, SubSuper: subsuper, Pos: pos}
	for !p.atKeyword("END_ENTITY") {
		if p.current.Kind == lexer.EOF {
			return nil, p.errorf(production, "unexpected end of input before END_ENTITY")
		}
		if err := p.checkTimeout(production); err != nil {
			return nil, err
		}
		attrs, err := p.parseExplicitAttr()
		if err != nil {
			return nil, err
		}
		entity.Attributes = append(entity.Attributes, attrs...)
	}
	if err := p.advance(); err != nil { // consume END_ENTITY
		return nil, err
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}
	return entity, nil
}

// parseExplicitAttr parses `a, b, c : [OPTIONAL] type ;` and expands the
// comma list into one *ast.Attribute per name, each carrying a structurally
// equal but independently-owned clone of the parsed type (spec.md §4.1,
// testable property #3).
func (p *Parser) parseExplicitAttr() ([]*ast.Attribute, error) {
	const production = "explicit_attr"
	var names []string
	var poss []srcpos.Position
	for {
		pos := p.current.Pos
		name, err := p.expectIdent(production)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		poss = append(poss, pos)
		if p.current.Kind != lexer.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expectKind(lexer.Colon, production); err != nil {
		return nil, err
	}
	optional := false
	if p.atKeyword("OPTIONAL") {
		optional = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	pt, err := p.parseParameterType()
	if err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}

	attrs := make([]*ast.Attribute, len(names))
	for i, name := range names {
		attrs[i] = &ast.Attribute{
			Name:     name,
			Type:     cloneParameterType(pt),
			Optional: optional,
			Pos:      poss[i],
		}
	}
	return attrs, nil
}

// --- parameter types ---------------------------------------------------------

func (p *Parser) parseParameterType() (ast.ParameterType, error) {
	const production = "parameter_type"
	if p.current.Kind != lexer.Ident {
		return nil, p.errorf(production, "expected a type, got %q", p.current.Text)
	}
	upper := strings.ToUpper(p.current.Text)
	switch upper {
	case "NUMBER":
		return p.simpleNoWidth(ast.SimpleNumber)
	case "REAL":
		return p.simpleNoWidth(ast.SimpleReal)
	case "INTEGER":
		return p.simpleNoWidth(ast.SimpleInteger)
	case "LOGICAL":
		return p.simpleNoWidth(ast.SimpleLogical)
	case "BOOLEAN":
		return p.simpleNoWidth(ast.SimpleBoolean)
	case "STRING":
		return p.simpleWithWidth(ast.SimpleString)
	case "BINARY":
		return p.simpleWithWidth(ast.SimpleBinary)
	case "SET":
		return p.parseAggregateParam(ast.AggSet)
	case "BAG":
		return p.parseAggregateParam(ast.AggBag)
	case "LIST":
		return p.parseAggregateParam(ast.AggList)
	case "ARRAY":
		return p.parseAggregateParam(ast.AggArray)
	case "AGGREGATE":
		return p.parseAggregateBare()
	case "GENERIC":
		label, err := p.parseOptionalLabel()
		if err != nil {
			return nil, err
		}
		return &ast.GenericType{Label: label}, nil
	case "GENERIC_ENTITY":
		label, err := p.parseOptionalLabel()
		if err != nil {
			return nil, err
		}
		return &ast.GenericEntityType{Label: label}, nil
	default:
		name := p.current.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.NamedType{Name: name}, nil
	}
}

func (p *Parser) simpleNoWidth(kind ast.SimpleKind) (ast.ParameterType, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.SimpleType{Kind: kind}, nil
}

func (p *Parser) simpleWithWidth(kind ast.SimpleKind) (ast.ParameterType, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	width, fixed, err := p.parseOptionalWidth()
	if err != nil {
		return nil, err
	}
	return &ast.SimpleType{Kind: kind, Width: width, Fixed: fixed}, nil
}

func (p *Parser) parseOptionalWidth() (*ast.Expr, bool, error) {
	const production = "width"
	if p.current.Kind != lexer.LParen {
		return nil, false, nil
	}
	if err := p.advance(); err != nil {
		return nil, false, err
	}
	text, err := p.rawUntil(production, stopAtKind(lexer.RParen))
	if err != nil {
		return nil, false, err
	}
	if err := p.expectKind(lexer.RParen, production); err != nil {
		return nil, false, err
	}
	fixed := false
	if p.atKeyword("FIXED") {
		fixed = true
		if err := p.advance(); err != nil {
			return nil, false, err
		}
	}
	return ptr.To(ast.Expr{Text: text}), fixed, nil
}

func (p *Parser) parseOptionalLabel() (string, error) {
	const production = "generic_label"
	if err := p.advance(); err != nil { // consume GENERIC[_ENTITY]
		return "", err
	}
	if p.current.Kind != lexer.Colon {
		return "", nil
	}
	if err := p.advance(); err != nil {
		return "", err
	}
	label, err := p.expectIdent(production)
	return label, err
}

func (p *Parser) parseBound() (*ast.Bound, error) {
	const production = "bound"
	if p.current.Kind != lexer.LBracket {
		return nil, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	lower, err := p.rawUntil(production, stopAtKind(lexer.Colon))
	if err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.Colon, production); err != nil {
		return nil, err
	}
	upper, err := p.rawUntil(production, stopAtKind(lexer.RBracket))
	if err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.RBracket, production); err != nil {
		return nil, err
	}
	return &ast.Bound{Lower: ast.Expr{Text: lower}, Upper: ast.Expr{Text: upper}}, nil
}

func (p *Parser) parseAggregateParam(kind ast.AggKind) (ast.ParameterType, error) {
	const production = "aggregate_type"
	if err := p.advance(); err != nil { // consume SET/BAG/LIST/ARRAY
		return nil, err
	}
	bound, err := p.parseBound()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("OF", production); err != nil {
		return nil, err
	}
	unique, optional := false, false
	for i := 0; i < 2; i++ {
		switch {
		case p.atKeyword("UNIQUE"):
			unique = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.atKeyword("OPTIONAL"):
			optional = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	base, err := p.parseParameterType()
	if err != nil {
		return nil, err
	}
	return &ast.AggregateParam{Kind: kind, Bound: bound, Base: base, Unique: unique, Optional: optional}, nil
}

func (p *Parser) parseAggregateBare() (ast.ParameterType, error) {
	const production = "aggregate_bare"
	if err := p.advance(); err != nil { // consume AGGREGATE
		return nil, err
	}
	label := ""
	if p.current.Kind == lexer.Colon {
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.expectIdent(production)
		if err != nil {
			return nil, err
		}
		label = name
	}
	var base ast.ParameterType
	if p.atKeyword("OF") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		b, err := p.parseParameterType()
		if err != nil {
			return nil, err
		}
		base = b
	}
	return &ast.AggregateType{Label: label, Base: base}, nil
}

// --- type declarations --------------------------------------------------------

func (p *Parser) parseTypeDecl() (*ast.TypeDecl, error) {
	const production = "type_decl"
	pos := p.current.Pos
	if err := p.expectKeyword("TYPE", production); err != nil {
		return nil, err
	}
	name, err := p.expectIdent(production)
	if err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.Equals, production); err != nil {
		return nil, err
	}
	underlying, err := p.parseUnderlying()
	if err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}
	where := ""
	if p.atKeyword("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		w, err := p.rawUntil(production, stopAtKeyword("END_TYPE"))
		if err != nil {
			return nil, err
		}
		where = w
	}
	if err := p.expectKeyword("END_TYPE", production); err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}
	return &ast.TypeDecl{Name: name, Underlying: underlying, Where: where, Pos: pos}, nil
}

func (p *Parser) parseUnderlying() (ast.Underlying, error) {
	const production = "underlying_type"
	ext := ast.ExtNone
	if p.atKeyword("EXTENSIBLE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		ext = ast.ExtExtensible
		if p.atKeyword("GENERIC_ENTITY") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			ext = ast.ExtGenericEntity
		}
	}
	switch {
	case p.atKeyword("ENUMERATION"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("OF", production); err != nil {
			return nil, err
		}
		items, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		return &ast.EnumerationUnderlying{Items: items, Ext: ext}, nil
	case p.atKeyword("SELECT"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		members, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		return &ast.SelectUnderlying{Members: members, Ext: ext}, nil
	}
	if ext != ast.ExtNone {
		return nil, p.errorf(production, "EXTENSIBLE is only valid on ENUMERATION or SELECT")
	}
	pt, err := p.parseParameterType()
	if err != nil {
		return nil, err
	}
	switch v := pt.(type) {
	case *ast.SimpleType:
		return &ast.SimpleUnderlying{Type: v}, nil
	case *ast.NamedType:
		return &ast.NamedUnderlying{Name: v.Name}, nil
	case *ast.AggregateParam:
		return &ast.AggregateUnderlying{Agg: v}, nil
	default:
		return nil, p.errorf(production, "unsupported underlying type")
	}
}

func (p *Parser) parseIdentList() ([]string, error) {
	const production = "identifier_list"
	if err := p.expectKind(lexer.LParen, production); err != nil {
		return nil, err
	}
	var items []string
	for {
		name, err := p.expectIdent(production)
		if err != nil {
			return nil, err
		}
		items = append(items, name)
		if p.current.Kind != lexer.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expectKind(lexer.RParen, production); err != nil {
		return nil, err
	}
	return items, nil
}

// cloneParameterType deep-copies a ParameterType so that attributes expanded
// from a comma list (spec.md §4.1) each own an independent, structurally
// equal type value.
func cloneParameterType(pt ast.ParameterType) ast.ParameterType {
	switch v := pt.(type) {
	case *ast.SimpleType:
		cp := *v
		if v.Width != nil {
			w := *v.Width
			cp.Width = &w
		}
		return &cp
	case *ast.NamedType:
		cp := *v
		return &cp
	case *ast.AggregateParam:
		cp := *v
		if v.Bound != nil {
			b := *v.Bound
			cp.Bound = &b
		}
		cp.Base = cloneParameterType(v.Base)
		return &cp
	case *ast.AggregateType:
		cp := *v
		if v.Base != nil {
			cp.Base = cloneParameterType(v.Base)
		}
		return &cp
	case *ast.GenericType:
		cp := *v
		return &cp
	case *ast.GenericEntityType:
		cp := *v
		return &cp
	default:
		return pt
	}
}
