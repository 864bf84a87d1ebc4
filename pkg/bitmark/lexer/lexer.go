// Package lexer is the reference tokenizer for bitmark markup.
//
// It produces the token stream the parser consumes: one Bit token per bit
// header, with the content of the bit as its chain. Tags written directly
// after a chain head, with no text in between, are chained to it. A card set
// is cut out of the bit content line by line and handed over as raw lines and
// dividers; its cells are tokenized again with RuleCardContent.
//
// Usage:
//
//	p := parser.NewParser(registry.Default()).WithTokenizer(lexer.Tokenize)
//	doc, diags, err := p.Parse(src)
package lexer

import (
	"fmt"

	plexer "github.com/alecthomas/participle/v2/lexer"

	"bitmark-hq/compiler/pkg/bitmark/token"
)

// markupLexer splits markup into tags, comments, footer delimiters and text.
// Stray brackets, pipes and tildes fall through to Char and are read as text.
var markupLexer = plexer.MustSimple([]plexer.SimpleRule{
	{Name: "Comment", Pattern: `\|\|(?s:.*?)\|\|`},
	{Name: "Tag", Pattern: `\[[^\[\]]*\]`},
	{Name: "Footer", Pattern: `~~~~`},
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Text", Pattern: `[^\[\]|~\r\n]+`},
	{Name: "Char", Pattern: `[\s\S]`},
})

var (
	symbols = markupLexer.Symbols()

	typeComment = symbols["Comment"]
	typeTag     = symbols["Tag"]
	typeFooter  = symbols["Footer"]
	typeNewline = symbols["Newline"]
)

// Tokenize reads text starting at rule. It satisfies token.Tokenizer.
func Tokenize(text string, rule token.StartRule) ([]token.Token, error) {
	raw, err := lex(text)
	if err != nil {
		return nil, err
	}
	switch rule {
	case token.RuleDocument:
		return document(raw), nil
	case token.RuleCardContent:
		return assemble(raw), nil
	default:
		return nil, fmt.Errorf("unsupported start rule %s", rule)
	}
}

func lex(text string) ([]plexer.Token, error) {
	l, err := markupLexer.LexString("", text)
	if err != nil {
		return nil, fmt.Errorf("failed to lex markup: %w", err)
	}
	toks, err := plexer.ConsumeAll(l)
	if err != nil {
		return nil, fmt.Errorf("failed to lex markup: %w", err)
	}
	out := toks[:0]
	for _, t := range toks {
		if !t.EOF() {
			out = append(out, t)
		}
	}
	return out, nil
}

// document cuts the raw stream into bits at every bit header. Anything
// before the first header is dropped.
func document(raw []plexer.Token) []token.Token {
	bits := make([]token.Token, 0)
	start := -1
	var header plexer.Token

	emit := func(end int) {
		if start >= 0 {
			bits = append(bits, bitToken(header, raw[start:end]))
		}
	}
	for i, t := range raw {
		if t.Type == typeTag && isBitHeader(t.Value) {
			emit(i)
			header = t
			start = i + 1
		}
	}
	emit(len(raw))
	return bits
}

func bitToken(header plexer.Token, content []plexer.Token) token.Token {
	tok, _ := parseTag(header)
	tok.Chain = body(content)
	return tok
}

func spanOf(t plexer.Token) token.Span {
	start := token.Position{Offset: t.Pos.Offset, Line: t.Pos.Line, Column: t.Pos.Column}
	return token.Span{Start: start, End: advance(start, t.Value)}
}

func advance(p token.Position, s string) token.Position {
	for _, r := range s {
		if r == '\n' {
			p.Line++
			p.Column = 1
		} else {
			p.Column++
		}
	}
	p.Offset += len(s)
	return p
}
