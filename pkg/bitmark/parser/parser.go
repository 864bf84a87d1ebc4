package parser

import (
	"errors"
	"fmt"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/bitmark/token"
	"bitmark-hq/compiler/pkg/bitmark/validator"
)

// ErrNoTokenizer is returned by Parse when no tokenizer was configured.
var ErrNoTokenizer = errors.New("no tokenizer configured")

// ContextLines is the number of source lines shown around a diagnostic.
const ContextLines = 1

// Parser compiles bitmark documents into document trees.
// A Parser is not modified by Parse and may be shared between goroutines
// once configured.
type Parser struct {
	reg       *registry.Registry
	validator *validator.Validator
	tokenize  token.Tokenizer
	file      string
}

// NewParser creates a parser reading bit types from reg.
func NewParser(reg *registry.Registry) *Parser {
	return &Parser{
		reg:       reg,
		validator: validator.New(reg),
	}
}

// WithTokenizer sets the tokenizer used for documents and card-set cells.
func (p *Parser) WithTokenizer(t token.Tokenizer) *Parser {
	p.tokenize = t
	return p
}

// WithMaxDepth sets the maximum tag chain nesting (default 32).
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.validator.WithMaxDepth(depth)
	return p
}

// WithFile sets the file name reported in diagnostic locations.
func (p *Parser) WithFile(name string) *Parser {
	p.file = name
	return p
}

// Registry returns the registry the parser reads bit types from.
func (p *Parser) Registry() *registry.Registry {
	return p.reg
}

// session is the state of compiling one bit.
type session struct {
	p       *Parser
	meta    *registry.BitTypeMetadata
	diags   *bmErrors.DiagnosticList
	bitSpan token.Span
}

// Parse tokenizes and compiles src. The returned list holds the diagnostics
// of every bit, with source context. An error is returned only when the
// tokenizer rejects the document.
func (p *Parser) Parse(src string) (*ast.Document, *bmErrors.DiagnosticList, error) {
	if p.tokenize == nil {
		return nil, nil, ErrNoTokenizer
	}
	tokens, err := p.tokenize(src, token.RuleDocument)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to tokenize document: %w", err)
	}
	doc, diags := p.ParseTokens(tokens)
	return doc, diags.WithContext(src, ContextLines), nil
}

// ParseTokens compiles an already tokenized document. Tokens other than
// Bit tokens are ignored.
func (p *Parser) ParseTokens(tokens []token.Token) (*ast.Document, *bmErrors.DiagnosticList) {
	all := bmErrors.NewDiagnosticList(p.file)
	doc := &ast.Document{Bits: make([]*ast.Bit, 0)}

	for _, tok := range tokens {
		if tok.Kind != token.Bit {
			continue
		}
		bit, diags := p.parseBit(tok)
		all.Merge(diags)
		if bit == nil {
			doc.Errors = append(doc.Errors, bmErrors.ToAST(diags.Errors())...)
			continue
		}
		doc.Bits = append(doc.Bits, bit)
	}
	return doc, all
}

// parseBit compiles one bit. It returns nil when the bit header is fatal.
func (p *Parser) parseBit(tok token.Token) (*ast.Bit, *bmErrors.DiagnosticList) {
	diags := bmErrors.NewDiagnosticList(p.file)

	h, ok := ParseHeader(p.reg, tok, diags)
	if !ok {
		return nil, diags
	}

	s := &session{p: p, meta: h.Meta, diags: diags, bitSpan: tok.Span}
	tokens := p.validator.ValidateBit(h.Meta, tok.Chain, diags)
	acc := s.reduce(registry.LevelBit, tokens)

	var cards *Cards
	if h.Meta.CardSet != nil {
		grid := &CardGrid{}
		if acc.CardSet != nil {
			grid = BuildGrid(acc.CardSet.Chain)
		}
		cards = s.interpret(grid, acc)
	}

	bit := s.build(h, acc, cards)

	warnings := bmErrors.ToAST(diags.Warnings())
	errs := bmErrors.ToAST(diags.Errors())
	if len(warnings) > 0 || len(errs) > 0 {
		if bit.Parser == nil {
			bit.Parser = &ast.ParserInfo{}
		}
		bit.Parser.Warnings = warnings
		bit.Parser.Errors = errs
	}
	return bit, diags
}
