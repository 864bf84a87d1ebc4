package lexer

import (
	"strings"

	plexer "github.com/alecthomas/participle/v2/lexer"

	"bitmark-hq/compiler/pkg/bitmark/token"
)

// line is one source line of raw tokens, newline included.
type line []plexer.Token

func splitLines(raw []plexer.Token) []line {
	var (
		lines []line
		cur   line
	)
	for _, t := range raw {
		cur = append(cur, t)
		if t.Type == typeNewline {
			lines = append(lines, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

func (l line) text() string {
	var sb strings.Builder
	for _, t := range l {
		sb.WriteString(t.Value)
	}
	return sb.String()
}

func (l line) span() token.Span {
	return token.Span{Start: spanOf(l[0]).Start, End: spanOf(l[len(l)-1]).End}
}

// divider returns the divider kind of a line holding only a card-set
// delimiter, or token.Invalid.
func (l line) divider() token.Kind {
	for _, t := range l {
		if t.Type == typeTag || t.Type == typeComment || t.Type == typeFooter {
			return token.Invalid
		}
	}
	switch strings.TrimSpace(l.text()) {
	case token.CardDelim:
		return token.CardDivider
	case token.SideDelim:
		return token.SideDivider
	case token.VariantDelim:
		return token.VariantDivider
	}
	return token.Invalid
}

func flatten(lines []line) []plexer.Token {
	var out []plexer.Token
	for _, l := range lines {
		out = append(out, l...)
	}
	return out
}

// body reads the content of a bit. The first card delimiter line opens the
// card set and the last one closes it; what follows is the footer. With a
// single delimiter line the card set runs to the end of the bit.
func body(content []plexer.Token) []token.Token {
	lines := splitLines(content)
	first, last := -1, -1
	for i, l := range lines {
		if l.divider() == token.CardDivider {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return assemble(content)
	}

	end := last
	if last == first {
		end = len(lines)
	}
	out := assemble(flatten(lines[:first]))
	out = append(out, cardSet(lines[first:end]))
	if end < len(lines) {
		out = append(out, assemble(flatten(lines[end+1:]))...)
	}
	return out
}

// cardSet turns the lines of a card set, opening delimiter first, into
// divider and line tokens.
func cardSet(lines []line) token.Token {
	cs := token.Token{Kind: token.CardSet, Span: lines[0].span()}
	for _, l := range lines[1:] {
		if k := l.divider(); k != token.Invalid {
			cs.Chain = append(cs.Chain, token.Token{Kind: k, Span: l.span()})
			continue
		}
		cs.Chain = append(cs.Chain, token.Token{Kind: token.CardLine, Text: l.text(), Span: l.span()})
	}
	cs.Span.End = lines[len(lines)-1].span().End
	return cs
}
