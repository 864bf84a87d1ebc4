// Package token defines the token stream consumed by the bitmark compiler.
//
// Tokens are produced by an external grammar (see package lexer for the
// reference implementation). A token either stands alone or heads a chain:
// the tags written directly after it that are scoped to it, such as the
// alternative solutions and hints following a gap.
package token

import "fmt"

// Kind identifies what a token represents. The set is closed; every Kind has
// a handler in the reducer.
type Kind int

const (
	Invalid Kind = iota
	Bit
	Property
	ItemLead
	Instruction
	Hint
	Anchor
	Reference
	SampleSolution
	Title
	Gap
	True
	False
	Mark
	Resource
	Comment
	Text
	FooterDivider
	CardSet
	CardDivider
	SideDivider
	VariantDivider
	CardLine

	kindCount
)

var kindNames = [...]string{
	Invalid:        "invalid",
	Bit:            "bit",
	Property:       "property",
	ItemLead:       "itemLead",
	Instruction:    "instruction",
	Hint:           "hint",
	Anchor:         "anchor",
	Reference:      "reference",
	SampleSolution: "sampleSolution",
	Title:          "title",
	Gap:            "gap",
	True:           "true",
	False:          "false",
	Mark:           "mark",
	Resource:       "resource",
	Comment:        "comment",
	Text:           "text",
	FooterDivider:  "footerDivider",
	CardSet:        "cardSet",
	CardDivider:    "cardDivider",
	SideDivider:    "sideDivider",
	VariantDivider: "variantDivider",
	CardLine:       "cardLine",
}

// String returns the tag name of the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k > Invalid && k < kindCount
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, int(kindCount)-1)
	for k := Invalid + 1; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// IsDivider reports whether k is one of the card-set grid dividers.
func (k Kind) IsDivider() bool {
	return k == CardDivider || k == SideDivider || k == VariantDivider
}

// Token is one tag or text occurrence.
type Token struct {
	Kind Kind

	// Key is the property name for Property tokens and the resource type for
	// Resource tokens.
	Key string

	// Text is the raw value of the tag, or the text itself.
	Text string

	// Level is the title level (number of '#').
	Level int

	// Deprecated marks legacy syntax (for example the [$...] reference form).
	Deprecated bool

	// Chain holds the tags chained to this one. For CardSet it holds the raw
	// divider and line tokens, for Bit the content of the bit.
	Chain []Token

	Span Span
}

// IsChain reports whether the token carries chained tags.
func (t Token) IsChain() bool {
	return t.Kind != CardSet && t.Kind != Bit && len(t.Chain) > 0
}

// TagKey returns the key used to look the token up in a tag configuration
// and to count its occurrences.
func (t Token) TagKey() string {
	switch t.Kind {
	case Property:
		return PropertyKey(t.Key)
	case Resource:
		return ResourceKey(t.Key)
	default:
		return t.Kind.String()
	}
}

// PropertyKey returns the tag key for the property named name.
func PropertyKey(name string) string { return "@" + name }

// ResourceKey returns the tag key for the resource type typ.
func ResourceKey(typ string) string { return "&" + typ }

// Count returns the number of tokens in ts, including every chained token.
func Count(ts []Token) int {
	n := 0
	for _, t := range ts {
		n++
		if t.Kind != CardSet {
			n += Count(t.Chain)
		}
	}
	return n
}

// Position is a location in the source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based
}

// IsValid reports whether the position carries line information.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the half-open source range [Start, End) a token was read from.
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// StartRule selects the grammar entry point for a tokenizer call.
type StartRule int

const (
	// RuleDocument tokenizes a whole document into Bit tokens. The Text of a
	// Bit token is its raw header, its Chain the content of the bit.
	RuleDocument StartRule = iota

	// RuleCardContent tokenizes the raw text of one card-set cell.
	RuleCardContent
)

func (r StartRule) String() string {
	switch r {
	case RuleDocument:
		return "document"
	case RuleCardContent:
		return "cardContent"
	default:
		return fmt.Sprintf("rule(%d)", int(r))
	}
}

// Tokenizer turns source text into tokens starting at the given rule. The
// compiler calls it once per document and once more for every card-set cell.
type Tokenizer func(text string, rule StartRule) ([]Token, error)
