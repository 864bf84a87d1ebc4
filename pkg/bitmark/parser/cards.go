package parser

import (
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// CardGrid is a card set rebuilt from its divider and line tokens.
type CardGrid struct {
	Cards []Card
}

// Card is one card of a card set.
type Card struct {
	Sides []Side
}

// Side is one side of a card.
type Side struct {
	Variants []Cell
}

// Cell is the raw text of one (card, side, variant) position.
type Cell struct {
	Text string
	Span token.Span
}

// Cell returns the cell at the given position, or nil.
func (g *CardGrid) Cell(card, side, variant int) *Cell {
	if card < 0 || card >= len(g.Cards) {
		return nil
	}
	c := &g.Cards[card]
	if side < 0 || side >= len(c.Sides) {
		return nil
	}
	s := &c.Sides[side]
	if variant < 0 || variant >= len(s.Variants) {
		return nil
	}
	return &s.Variants[variant]
}

// ensure grows the grid so the given position exists and returns its cell.
func (g *CardGrid) ensure(card, side, variant int) *Cell {
	for len(g.Cards) <= card {
		g.Cards = append(g.Cards, Card{})
	}
	c := &g.Cards[card]
	for len(c.Sides) <= side {
		c.Sides = append(c.Sides, Side{})
	}
	s := &c.Sides[side]
	for len(s.Variants) <= variant {
		s.Variants = append(s.Variants, Cell{})
	}
	return &s.Variants[variant]
}

// BuildGrid folds the divider and line tokens of a card set into a grid. A
// card divider starts a new card, a side divider a new side of the current
// card and a variant divider a new variant of the current side. Lines at the
// same position concatenate without a separator.
func BuildGrid(tokens []token.Token) *CardGrid {
	g := &CardGrid{}
	card, side, variant := 0, 0, 0
	started := false

	for _, tok := range tokens {
		switch tok.Kind {
		case token.CardDivider:
			if started {
				card++
			}
			side, variant = 0, 0
		case token.SideDivider:
			side++
			variant = 0
		case token.VariantDivider:
			variant++
		case token.CardLine, token.Text:
			cell := g.ensure(card, side, variant)
			if cell.Text == "" && !cell.Span.Start.IsValid() {
				cell.Span = tok.Span
			}
			cell.Text += tok.Text
			cell.Span.End = tok.Span.End
			started = true
			continue
		default:
			continue
		}
		g.ensure(card, side, variant)
		started = true
	}
	return g
}

// offsetTokens moves the spans of tokens read from a cell's text to their
// position in the document.
func offsetTokens(tokens []token.Token, base token.Position) {
	if !base.IsValid() {
		return
	}
	for i := range tokens {
		tokens[i].Span.Start = offsetPosition(tokens[i].Span.Start, base)
		tokens[i].Span.End = offsetPosition(tokens[i].Span.End, base)
		offsetTokens(tokens[i].Chain, base)
	}
}

func offsetPosition(p, base token.Position) token.Position {
	if !p.IsValid() {
		return p
	}
	if p.Line == 1 {
		p.Column += base.Column - 1
	}
	p.Line += base.Line - 1
	p.Offset += base.Offset
	return p
}
