package token

import "strings"

// Markup delimiters. The lexer reads and the diagnostics render tags with the
// same table.
const (
	TagOpen  = "["
	TagClose = "]"

	CommentDelim   = "||"
	FooterDelim    = "~~~~"
	CardDelim      = "==="
	SideDelim      = "=="
	VariantDelim   = "--"
	PropertyValSep = ":"
)

// sigils maps tag kinds to the character following the opening bracket.
var sigils = map[Kind]string{
	Bit:            ".",
	Property:       "@",
	ItemLead:       "%",
	Instruction:    "!",
	Hint:           "?",
	Anchor:         "▼",
	Reference:      "►",
	SampleSolution: "$",
	Title:          "#",
	Gap:            "_",
	True:           "+",
	False:          "-",
	Mark:           "=",
	Resource:       "&",
}

// Sigil returns the opening sigil of a tag kind, or "" for kinds that are not
// bracketed tags.
func Sigil(k Kind) string {
	return sigils[k]
}

// TagKinds returns the bracketed tag kinds keyed by sigil.
func TagKinds() map[string]Kind {
	out := make(map[string]Kind, len(sigils))
	for k, s := range sigils {
		out[s] = k
	}
	return out
}

// Markup renders the token, including its chain, as bitmark.
func (t Token) Markup() string {
	var sb strings.Builder
	t.writeMarkup(&sb)
	return sb.String()
}

func (t Token) writeMarkup(sb *strings.Builder) {
	switch t.Kind {
	case Text, CardLine:
		sb.WriteString(t.Text)
		return
	case Comment:
		sb.WriteString(CommentDelim + t.Text + CommentDelim)
		return
	case FooterDivider:
		sb.WriteString(FooterDelim)
		return
	case CardSet, CardDivider:
		sb.WriteString(CardDelim)
		return
	case SideDivider:
		sb.WriteString(SideDelim)
		return
	case VariantDivider:
		sb.WriteString(VariantDelim)
		return
	}

	sigil := sigils[t.Kind]
	if t.Kind == Bit || t.Kind == Title {
		n := t.Level
		if n < 1 {
			n = 1
		}
		sigil = strings.Repeat(sigil, n)
	}

	sb.WriteString(TagOpen)
	sb.WriteString(sigil)
	switch t.Kind {
	case Property, Resource:
		sb.WriteString(t.Key)
		if t.Text != "" {
			sb.WriteString(PropertyValSep)
			sb.WriteString(t.Text)
		}
	default:
		sb.WriteString(t.Text)
	}
	sb.WriteString(TagClose)

	if t.Kind == Bit {
		return
	}
	for _, c := range t.Chain {
		c.writeMarkup(sb)
	}
}
