package lexer

import (
	"strings"
	"unicode/utf8"

	plexer "github.com/alecthomas/participle/v2/lexer"

	"bitmark-hq/compiler/pkg/bitmark/token"
)

var tagKinds = token.TagKinds()

func tagInner(value string) string {
	return strings.TrimSuffix(strings.TrimPrefix(value, token.TagOpen), token.TagClose)
}

func isBitHeader(value string) bool {
	return strings.HasPrefix(value, token.TagOpen+token.Sigil(token.Bit))
}

// parseTag reads a bracketed tag. It returns false for brackets that do not
// open a known tag; those are kept as text.
func parseTag(raw plexer.Token) (token.Token, bool) {
	inner := tagInner(raw.Value)
	r, size := utf8.DecodeRuneInString(inner)
	if r == utf8.RuneError {
		return token.Token{}, false
	}
	kind, ok := tagKinds[string(r)]
	if !ok {
		return token.Token{}, false
	}

	tok := token.Token{Kind: kind, Span: spanOf(raw)}
	value := inner[size:]

	switch kind {
	case token.Bit, token.Title:
		sigil := token.Sigil(kind)
		rest := strings.TrimLeft(value, sigil)
		tok.Level = 1 + len(value) - len(rest)
		tok.Text = strings.TrimSpace(rest)
	case token.Property, token.Resource:
		key, val, _ := strings.Cut(value, token.PropertyValSep)
		tok.Key = strings.TrimSpace(key)
		tok.Text = val
		if tok.Key == "" {
			return token.Token{}, false
		}
	case token.SampleSolution:
		tok.Deprecated = true
		tok.Text = value
	default:
		tok.Text = value
	}
	return tok, true
}

// assembler folds raw lexer tokens into bitmark tokens.
type assembler struct {
	out []token.Token

	text     strings.Builder
	textSpan token.Span

	// adjacent is set while the last output token is a tag with nothing
	// written after it.
	adjacent bool
}

// assemble reads the content of a bit or a card cell.
func assemble(raw []plexer.Token) []token.Token {
	a := &assembler{}
	for _, t := range raw {
		switch t.Type {
		case typeTag:
			tok, ok := parseTag(t)
			if !ok || tok.Kind == token.Bit {
				a.addText(t)
				continue
			}
			a.addTag(tok)
		case typeComment:
			a.flush()
			inner := strings.TrimSuffix(strings.TrimPrefix(t.Value, token.CommentDelim), token.CommentDelim)
			a.out = append(a.out, token.Token{Kind: token.Comment, Text: inner, Span: spanOf(t)})
			a.adjacent = false
		case typeFooter:
			a.flush()
			a.out = append(a.out, token.Token{Kind: token.FooterDivider, Span: spanOf(t)})
			a.adjacent = false
		default:
			a.addText(t)
		}
	}
	a.flush()
	return a.out
}

func (a *assembler) addText(t plexer.Token) {
	span := spanOf(t)
	if a.text.Len() == 0 {
		a.textSpan.Start = span.Start
	}
	a.text.WriteString(t.Value)
	a.textSpan.End = span.End
	a.adjacent = false
}

func (a *assembler) flush() {
	if a.text.Len() == 0 {
		return
	}
	a.out = append(a.out, token.Token{Kind: token.Text, Text: a.text.String(), Span: a.textSpan})
	a.text.Reset()
	a.textSpan = token.Span{}
}

func (a *assembler) addTag(tok token.Token) {
	a.flush()
	if a.adjacent && attach(&a.out[len(a.out)-1], tok) {
		return
	}
	a.out = append(a.out, tok)
	a.adjacent = true
}

// attach chains tok to head, or to the resource last chained to head, and
// reports whether it did.
func attach(head *token.Token, tok token.Token) bool {
	if n := len(head.Chain); n > 0 {
		last := &head.Chain[n-1]
		if last.Kind == token.Resource && chains(*last, tok) {
			last.Chain = append(last.Chain, tok)
			last.Span.End = tok.Span.End
			head.Span.End = tok.Span.End
			return true
		}
	}
	if !chains(*head, tok) {
		return false
	}
	head.Chain = append(head.Chain, tok)
	head.Span.End = tok.Span.End
	return true
}

// chains reports whether next may be chained to head.
func chains(head, next token.Token) bool {
	switch head.Kind {
	case token.Gap:
		return next.Kind == token.Gap || isAnnotation(next) || isChainedProperty(next)
	case token.True, token.False:
		return next.Kind == token.True || next.Kind == token.False || isAnnotation(next) || isChainedProperty(next)
	case token.Mark:
		return isAnnotation(next) || isChainedProperty(next)
	case token.Resource:
		return next.Kind == token.Property
	case token.Property:
		switch head.Key {
		case "book":
			return next.Kind == token.Reference
		case "partner":
			return next.Kind == token.Resource
		}
	}
	return false
}

func isAnnotation(t token.Token) bool {
	return t.Kind == token.ItemLead || t.Kind == token.Instruction || t.Kind == token.Hint
}

func isChainedProperty(t token.Token) bool {
	return t.Kind == token.Property && t.Key != "book" && t.Key != "partner"
}
