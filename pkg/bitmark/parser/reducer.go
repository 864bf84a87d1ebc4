package parser

import (
	"fmt"
	"strings"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// handler folds one token into the reducer state.
type handler func(r *reducer, tok token.Token)

// handlers maps every token kind to its handler. It is filled in init
// because the chain handlers reduce recursively.
var handlers map[token.Kind]handler

func init() {
	handlers = map[token.Kind]handler{
		token.Bit:            (*reducer).unexpected,
		token.Property:       (*reducer).property,
		token.ItemLead:       (*reducer).itemLead,
		token.Instruction:    (*reducer).instruction,
		token.Hint:           (*reducer).hint,
		token.Anchor:         (*reducer).anchor,
		token.Reference:      (*reducer).reference,
		token.SampleSolution: (*reducer).sampleSolution,
		token.Title:          (*reducer).title,
		token.Gap:            (*reducer).gap,
		token.True:           (*reducer).trueFalse,
		token.False:          (*reducer).trueFalse,
		token.Mark:           (*reducer).mark,
		token.Resource:       (*reducer).resource,
		token.Comment:        (*reducer).comment,
		token.Text:           (*reducer).text,
		token.FooterDivider:  (*reducer).footerDivider,
		token.CardSet:        (*reducer).cardSet,
		token.CardDivider:    (*reducer).unexpected,
		token.SideDivider:    (*reducer).unexpected,
		token.VariantDivider: (*reducer).unexpected,
		token.CardLine:       (*reducer).unexpected,
	}
}

// reducer is the state of one reduction pass.
type reducer struct {
	s     *session
	level registry.Level
	acc   *Accumulator

	pending  strings.Builder // body text not yet flushed
	inFooter bool
}

// Reduce folds tokens into an Accumulator at the given level. The tokens
// must already be validated for that level.
func (s *session) reduce(level registry.Level, tokens []token.Token) *Accumulator {
	r := &reducer{s: s, level: level, acc: &Accumulator{}}
	for _, tok := range tokens {
		h, ok := handlers[tok.Kind]
		if !ok {
			r.unexpected(tok)
			continue
		}
		h(r, tok)
	}
	r.finish()
	return r.acc
}

func (r *reducer) warn(cat bmErrors.Category, msg string, tok token.Token) {
	r.s.diags.Warn(cat, msg, tok.Span, tok.Markup())
}

func (r *reducer) unexpected(tok token.Token) {
	r.warn(bmErrors.CategorySyntax, fmt.Sprintf("'%s' is not expected here. It will be ignored", tok.Kind), tok)
}

func (r *reducer) comment(token.Token) {}

func (r *reducer) property(tok token.Token) {
	switch tok.Key {
	case "example":
		r.example(tok)
	case "book":
		r.book(tok)
	case "partner":
		r.partner(tok)
	default:
		r.s.applyProperty(r.acc, tok.Key, tok.Text, tok)
	}
}

func (r *reducer) example(tok token.Token) {
	value := strings.TrimSpace(tok.Text)
	if value != "" {
		r.acc.Example = ast.StringExample(value)
		r.acc.DefaultExample = false
		return
	}
	if r.level == registry.LevelGapChain && len(r.acc.Solutions) > 0 {
		r.acc.Example = ast.StringExample(r.acc.Solutions[len(r.acc.Solutions)-1])
		return
	}
	r.acc.Example = nil
	r.acc.DefaultExample = true
}

func (r *reducer) itemLead(tok token.Token) {
	value := strings.TrimSpace(tok.Text)
	if r.acc.itemLeads == 0 {
		r.acc.Item = value
	} else {
		r.acc.Lead = value
	}
	r.acc.itemLeads++
}

func (r *reducer) instruction(tok token.Token) {
	r.acc.Instruction = strings.TrimSpace(tok.Text)
}

func (r *reducer) hint(tok token.Token) {
	r.acc.Hint = strings.TrimSpace(tok.Text)
}

func (r *reducer) anchor(tok token.Token) {
	r.acc.Anchor = strings.TrimSpace(tok.Text)
}

func (r *reducer) reference(tok token.Token) {
	value := strings.TrimSpace(tok.Text)
	if r.level == registry.LevelBookChain && r.acc.Reference != "" {
		r.acc.ReferenceEnd = value
		return
	}
	r.acc.Reference = value
}

func (r *reducer) sampleSolution(tok token.Token) {
	if tok.Deprecated {
		r.warn(bmErrors.CategorySyntax, "[$...] tag is deprecated, use [@sampleSolution:...] instead", tok)
	}
	r.acc.SampleSolution = strings.TrimSpace(tok.Text)
}

func (r *reducer) title(tok token.Token) {
	level := tok.Level
	if level < 1 {
		level = 1
	}
	if r.acc.Titles == nil {
		r.acc.Titles = make(map[int]string)
	}
	r.acc.Titles[level] = strings.TrimSpace(tok.Text)
}

func (r *reducer) gap(tok token.Token) {
	if r.level.InChain() {
		r.acc.Solutions = append(r.acc.Solutions, strings.TrimSpace(tok.Text))
		return
	}
	r.flush()
	r.acc.Body = append(r.acc.Body, ast.GapPart(r.s.buildGap(tok)))
}

func (r *reducer) trueFalse(tok token.Token) {
	if r.level.InChain() {
		r.acc.TrueFalse = append(r.acc.TrueFalse, TrueFalseEntry{
			Text:      strings.TrimSpace(tok.Text),
			IsCorrect: tok.Kind == token.True,
		})
		return
	}
	entries := r.s.trueFalseEntries(tok)
	if r.level.InCard() {
		r.acc.TrueFalse = append(r.acc.TrueFalse, entries...)
		return
	}

	switch r.s.meta.TrueFalse {
	case registry.TrueFalseSelect:
		r.flush()
		r.acc.Body = append(r.acc.Body, ast.SelectPart(buildSelect(entries)))
	case registry.TrueFalseHighlight:
		r.flush()
		r.acc.Body = append(r.acc.Body, ast.HighlightPart(buildHighlight(entries)))
	case registry.TrueFalseStatement:
		s := statementOf(entries[0])
		r.acc.Statement = &s
	case registry.TrueFalseStatements:
		for _, e := range entries {
			r.acc.Statements = append(r.acc.Statements, statementOf(e))
		}
	case registry.TrueFalseChoices:
		for _, e := range entries {
			r.acc.Choices = append(r.acc.Choices, choiceOf(e))
		}
	case registry.TrueFalseResponses:
		for _, e := range entries {
			r.acc.Responses = append(r.acc.Responses, responseOf(e))
		}
	default:
		r.unexpected(tok)
	}
}

func (r *reducer) mark(tok token.Token) {
	if r.level.InChain() {
		r.acc.Mark = strings.TrimSpace(tok.Text)
		return
	}
	r.flush()
	r.acc.Body = append(r.acc.Body, ast.MarkPart(r.s.buildMark(tok)))
}

func (r *reducer) resource(tok token.Token) {
	r.acc.Resources = append(r.acc.Resources, LocatedResource{
		Resource: r.s.buildResource(tok),
		Span:     tok.Span,
	})
}

func (r *reducer) text(tok token.Token) {
	switch {
	case r.level.InCard():
		r.acc.CardBody += tok.Text
	case r.inFooter:
		r.acc.Footer += tok.Text
	default:
		r.pending.WriteString(tok.Text)
	}
}

func (r *reducer) footerDivider(tok token.Token) {
	if r.inFooter {
		r.acc.Footer += token.FooterDelim
		return
	}
	r.flush()
	r.inFooter = true
}

func (r *reducer) cardSet(tok token.Token) {
	if r.acc.CardSet != nil {
		r.warn(bmErrors.CategoryCardinality, "'cardSet' is included more than 1 time(s). The later ones will be ignored", tok)
		return
	}
	r.flush()
	cs := tok
	r.acc.CardSet = &cs
	r.inFooter = true
}

// flush moves the pending body text into a text part.
func (r *reducer) flush() {
	if r.pending.Len() == 0 {
		return
	}
	r.acc.Body = append(r.acc.Body, ast.TextPart(r.pending.String()))
	r.pending.Reset()
}

// finish flushes the body and trims the edges of the body, the card body and
// the footer.
func (r *reducer) finish() {
	r.flush()
	r.acc.Body = trimBody(r.acc.Body)
	r.acc.CardBody = strings.TrimSpace(r.acc.CardBody)
	r.acc.Footer = strings.TrimSpace(r.acc.Footer)
}

// trimBody drops whitespace-only text parts at both ends of parts and trims
// the outer edges of the remaining end parts.
func trimBody(parts []ast.BodyPart) []ast.BodyPart {
	isBlank := func(p ast.BodyPart) bool {
		return p.Type == ast.BodyPartText && strings.TrimSpace(p.Text.Text) == ""
	}
	for len(parts) > 0 && isBlank(parts[0]) {
		parts = parts[1:]
	}
	for len(parts) > 0 && isBlank(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return nil
	}
	if first := parts[0]; first.Type == ast.BodyPartText {
		parts[0] = ast.TextPart(strings.TrimLeft(first.Text.Text, " \t\r\n"))
	}
	if last := parts[len(parts)-1]; last.Type == ast.BodyPartText {
		parts[len(parts)-1] = ast.TextPart(strings.TrimRight(last.Text.Text, " \t\r\n"))
	}
	return parts
}
