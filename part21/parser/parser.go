// Package parser implements a recursive-descent parser for ISO 10303-21
// (Part 21) exchange-file text, per spec.md §4.3. It reuses the lexer
// shared with express/parser.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/stokaro/stepwright/errs"
	"github.com/stokaro/stepwright/lexer"
	"github.com/stokaro/stepwright/part21/ast"
)

// Parser converts a Part 21 token stream into an *ast.Exchange.
type Parser struct {
	src       string
	lex       *lexer.Lexer
	current   lexer.Token
	startTime time.Time
	timeout   time.Duration
}

// Parse parses a complete Part 21 exchange structure text from src.
func Parse(src string) (*ast.Exchange, error) {
	p := &Parser{src: src, lex: lexer.New(src), startTime: time.Now(), timeout: 30 * time.Second}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseExchange()
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next(nil)
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
		return p.errorf(production, "parsing timeout exceeded (%v) - possible infinite loop", p.timeout)
	}
	return nil
}

func (p *Parser) atIdent(want string) bool {
	return p.current.Kind == lexer.Ident && equalFold(p.current.Text, want)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'a' && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if cb >= 'a' && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (p *Parser) expectIdentLiteral(want, production string) error {
	if !p.atIdent(want) {
		return p.errorf(production, "expected %q, got %q", want, p.current.Text)
	}
	return p.advance()
}

func (p *Parser) expectKind(k lexer.Kind, production string) error {
	if p.current.Kind != k {
		return p.errorf(production, "expected token kind %v, got %q", k, p.current.Text)
	}
	return p.advance()
}

// parseExchange parses `ISO-10303-21; HEADER; ... ENDSEC; DATA; ... ENDSEC;
// [DATA; ... ENDSEC;]* END-ISO-10303-21;`. The leading/trailing markers are
// lexed as several tokens ("-" is not identifier-part, and "-10303" lexes as
// a negative integer), so they are matched by raw text rather than as
// identifiers.
func (p *Parser) parseExchange() (*ast.Exchange, error) {
	const production = "exchange_structure"
	if err := p.expectMarker("ISO-10303-21", production); err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}
	if err := p.expectIdentLiteral("HEADER", production); err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}
	var header []ast.HeaderEntry
	for !p.atIdent("ENDSEC") {
		if p.current.Kind == lexer.EOF {
			return nil, p.errorf(production, "unexpected end of input in HEADER section")
		}
		if err := p.checkTimeout(production); err != nil {
			return nil, err
		}
		rec, err := p.parseRecord()
		if err != nil {
			return nil, err
		}
		if err := p.expectKind(lexer.Semicolon, production); err != nil {
			return nil, err
		}
		header = append(header, ast.HeaderEntry{Name: rec.Name, Args: rec.Args, Pos: rec.Pos})
	}
	if err := p.advance(); err != nil { // consume ENDSEC
		return nil, err
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}

	exch := &ast.Exchange{Header: header}
	for p.atIdent("DATA") {
		section, err := p.parseDataSection()
		if err != nil {
			return nil, err
		}
		exch.Data = append(exch.Data, section)
	}
	if err := p.expectMarker("END-ISO-10303-21", production); err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}
	return exch, nil
}

// expectMarker matches a hyphenated keyword sequence such as "ISO-10303-21"
// that the lexer tokenizes as a run of several Ident/Int/Op tokens (a `-`
// immediately before a digit is lexed as part of a negative number, per
// lexer.Lexer.Next). It reconstructs the run from the raw source text
// rather than depending on how that run happened to tokenize.
func (p *Parser) expectMarker(marker, production string) error {
	start := p.current.Pos.Offset
	for {
		if err := p.advance(); err != nil {
			return err
		}
		text := strings.TrimSpace(p.src[start:p.current.Pos.Offset])
		if text == marker {
			return nil
		}
		if len(text) >= len(marker) || p.current.Kind == lexer.EOF {
			return p.errorf(production, "expected %q, got %q", marker, text)
		}
	}
}

func (p *Parser) parseDataSection() (*ast.DataSection, error) {
	const production = "data_section"
	if err := p.expectIdentLiteral("DATA", production); err != nil {
		return nil, err
	}
	// Optional parameter list after DATA, e.g. `DATA("schema");`, accepted
	// and discarded since this core does not interpret exchange parameters.
	if p.current.Kind == lexer.LParen {
		depth := 0
		for {
			if p.current.Kind == lexer.LParen {
				depth++
			} else if p.current.Kind == lexer.RParen {
				depth--
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			if depth == 0 {
				break
			}
		}
	}
	if err := p.expectKind(lexer.Semicolon, production); err != nil {
		return nil, err
	}
	section := &ast.DataSection{}
	for !p.atIdent("ENDSEC") {
		if p.current.Kind == lexer.EOF {
			return nil, p.errorf(production, "unexpected end of input in DATA section")
		}
		if err := p.checkTimeout(production); err != nil {
			return nil, err
		}
		inst, err := p.parseEntityInstance()
		if err != nil {
			return nil, err
		}
		section.Instances = append(section.Instances, inst)
	}
	if err := p.advance(); err != nil { // consume ENDSEC
		return nil, err
	}
	return section, p.expectKind(lexer.Semicolon, production)
}

func (p *Parser) parseEntityInstance() (*ast.EntityInstance, error) {
	const production = "entity_instance"
	pos := p.current.Pos
	if p.current.Kind != lexer.Hash {
		return nil, p.errorf(production, "expected '#', got %q", p.current.Text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.current.Kind != lexer.Int {
		return nil, p.errorf(production, "expected instance id, got %q", p.current.Text)
	}
	id := uint64(p.current.IntVal)
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.Equals, production); err != nil {
		return nil, err
	}
	inst := &ast.EntityInstance{ID: id, Pos: pos}
	if p.current.Kind == lexer.LParen {
		var records []*ast.Record
		if err := p.advance(); err != nil {
			return nil, err
		}
		for {
			rec, err := p.parseRecord()
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
			if p.current.Kind != lexer.RParen {
				continue
			}
			break
		}
		if err := p.advance(); err != nil { // consume ')'
			return nil, err
		}
		inst.Complex = records
	} else {
		rec, err := p.parseRecord()
		if err != nil {
			return nil, err
		}
		inst.Simple = rec
	}
	return inst, p.expectKind(lexer.Semicolon, production)
}

func (p *Parser) parseRecord() (*ast.Record, error) {
	const production = "record"
	pos := p.current.Pos
	if p.current.Kind != lexer.Ident {
		return nil, p.errorf(production, "expected record name, got %q", p.current.Text)
	}
	name := p.current.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectKind(lexer.LParen, production); err != nil {
		return nil, err
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	return &ast.Record{Name: name, Args: args, Pos: pos}, nil
}

// parseArgumentList parses the comma-separated contents of an already-opened
// '(' up to and including its matching ')'.
func (p *Parser) parseArgumentList() ([]ast.Argument, error) {
	const production = "argument_list"
	if p.current.Kind == lexer.RParen {
		return nil, p.advance()
	}
	var args []ast.Argument
	for {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.current.Kind == lexer.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return args, p.expectKind(lexer.RParen, production)
}

func (p *Parser) parseArgument() (ast.Argument, error) {
	const production = "argument"
	switch p.current.Kind {
	case lexer.Dollar:
		return ast.Omitted{}, p.advance()
	case lexer.Star:
		return ast.Redeclared{}, p.advance()
	case lexer.Int:
		v := p.current.IntVal
		return ast.IntLit{Value: v}, p.advance()
	case lexer.Real:
		v := p.current.RealVal
		return ast.RealLit{Value: v}, p.advance()
	case lexer.String:
		v := p.current.StrVal
		return ast.StringLit{Value: v}, p.advance()
	case lexer.Enum:
		v := p.current.StrVal
		return ast.EnumLit{Name: v}, p.advance()
	case lexer.Binary:
		v := p.current.StrVal
		return ast.BinaryLit{Value: v}, p.advance()
	case lexer.Hash, lexer.At:
		kind := ast.RefInstance
		if p.current.Kind == lexer.At {
			kind = ast.RefValue
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Kind != lexer.Int {
			return nil, p.errorf(production, "expected reference id, got %q", p.current.Text)
		}
		id := uint64(p.current.IntVal)
		return ast.Ref{Kind: kind, ID: id}, p.advance()
	case lexer.LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		items, err := p.parseArgumentList()
		if err != nil {
			return nil, err
		}
		return ast.ListArg{Items: items}, nil
	case lexer.Ident:
		rec, err := p.parseRecord()
		if err != nil {
			return nil, err
		}
		return ast.TypedRecordArg{Record: rec}, nil
	default:
		return nil, p.errorf(production, "unexpected argument token %q", p.current.Text)
	}
}
