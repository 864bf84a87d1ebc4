package validator

import (
	"fmt"

	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

const ignored = " It will be ignored"

// pass holds the state of one validation call tree.
type pass struct {
	v          *Validator
	bitType    string
	hasCardSet bool
	diags      *bmErrors.DiagnosticList
}

// seen tracks the kept occurrences of one tag key.
type seen struct {
	kept []int // indices into out, oldest first
}

// validate checks tokens against tags at level. depth is the chain nesting of
// the list being validated.
func (p *pass) validate(level registry.Level, tags registry.TagMap, tokens []token.Token, depth int) []token.Token {
	if len(tokens) == 0 {
		return nil
	}

	queue := append([]token.Token(nil), tokens...)
	out := make([]token.Token, 0, len(queue))
	dropped := make([]bool, 0, len(queue))
	seenKeys := make(map[string]*seen)

	for i := 0; i < len(queue); i++ {
		tok := queue[i]

		if p.alwaysLegal(level, tok) {
			if tok.Kind == token.CardSet && !p.hasCardSet {
				p.diags.Warn(bmErrors.CategoryTagLegality,
					fmt.Sprintf("'%s' is not expected here.%s", tok.Kind, ignored), tok.Span, "")
				continue
			}
			if tok.Kind == token.Text {
				p.checkMistakes(tok)
			}
			out = append(out, tok)
			dropped = append(dropped, false)
			continue
		}

		key := tok.TagKey()
		td, known := tags.Lookup(key)

		keep := true
		if !known {
			keep = p.unknown(level, tags, tok)
		} else {
			s := seenKeys[key]
			if s == nil {
				s = &seen{}
				seenKeys[key] = s
			}
			if !td.Unlimited() && len(s.kept) >= td.MaxCount {
				previous := out[s.kept[len(s.kept)-1]]
				p.diags.WarnRepeated(
					fmt.Sprintf("'%s' is included more than %d time(s). The earlier ones will be ignored", key, td.MaxCount),
					tok.Span, previous.Span, tok.Markup())
				dropped[s.kept[0]] = true
				s.kept = s.kept[1:]
			}
			s.kept = append(s.kept, len(out))
		}

		if len(tok.Chain) > 0 && tok.Kind != token.CardSet {
			chain := tok.Chain
			tok.Chain = nil
			switch {
			case keep && td != nil && td.Chain != nil && depth < p.v.maxDepth:
				tok.Chain = p.validate(registry.ChainLevel(key), td.Chain, chain, depth+1)
			default:
				if keep && td != nil && td.Chain != nil {
					p.diags.Warn(bmErrors.CategorySyntax,
						fmt.Sprintf("Tag chain of '%s' is nested more than %d levels deep. It will be flattened", key, p.v.maxDepth),
						tok.Span, "")
				}
				queue = splice(queue, i+1, chain)
			}
		}

		if keep {
			out = append(out, tok)
			dropped = append(dropped, false)
		}
	}

	result := out[:0]
	for i, tok := range out {
		if !dropped[i] {
			result = append(result, tok)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// alwaysLegal reports whether tok needs no tag configuration at level.
func (p *pass) alwaysLegal(level registry.Level, tok token.Token) bool {
	switch tok.Kind {
	case token.Comment:
		return true
	case token.Text:
		return level == registry.LevelBit || level.InCard()
	case token.CardSet, token.FooterDivider:
		return level == registry.LevelBit
	}
	return false
}

// unknown handles a tag with no configuration at level and reports whether it
// is kept.
func (p *pass) unknown(level registry.Level, tags registry.TagMap, tok token.Token) bool {
	key := tok.TagKey()
	suggestion := bmErrors.SuggestTag(key, tags.Keys())

	switch tok.Kind {
	case token.Property:
		p.diags.WarnWithSuggestion(bmErrors.CategoryTagLegality,
			fmt.Sprintf("'%s' is an unknown property at %s level. It will be kept as an extra property", key, level),
			tok.Span, tok.Markup(), suggestion)
		return true
	case token.Resource:
		p.diags.WarnWithSuggestion(bmErrors.CategoryTagLegality,
			fmt.Sprintf("'%s' is not valid here. It will be kept as an excess resource", key),
			tok.Span, tok.Markup(), suggestion)
		return true
	default:
		p.diags.WarnWithSuggestion(bmErrors.CategoryTagLegality,
			fmt.Sprintf("'%s' is not valid here.%s", key, ignored),
			tok.Span, tok.Markup(), suggestion)
		return false
	}
}

// splice inserts chain into list at index at.
func splice(list []token.Token, at int, chain []token.Token) []token.Token {
	out := make([]token.Token, 0, len(list)+len(chain))
	out = append(out, list[:at]...)
	out = append(out, chain...)
	out = append(out, list[at:]...)
	return out
}
