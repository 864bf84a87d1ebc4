package parser

import (
	"fmt"
	"sort"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// build assembles the bit from its header, its reduced content and its
// interpreted card set.
func (s *session) build(h *Header, acc *Accumulator, cards *Cards) *ast.Bit {
	s.applyDefaults(acc)

	bit := &ast.Bit{
		Type:         h.Type,
		OriginalType: h.OriginalType,
		Format:       h.Format,
		BitLevel:     h.Level,

		ID:           acc.ID,
		ExternalID:   acc.ExternalID,
		Language:     acc.Language,
		Tags:         acc.Tags,
		Icon:         acc.Icon,
		LabelTrue:    acc.LabelTrue,
		LabelFalse:   acc.LabelFalse,
		Book:         acc.Book,
		Reference:    acc.Reference,
		ReferenceEnd: acc.ReferenceEnd,
		Partner:      acc.Partner,

		SampleSolution: acc.SampleSolution,
		Anchor:         acc.Anchor,

		Annotations:   acc.Annotations(),
		ExampleFields: acc.exampleFields(),

		ExtraProperties: acc.ExtraProperties,
	}
	if acc.AIGenerated != nil {
		bit.AIGenerated = *acc.AIGenerated
	}
	bit.Title, _ = acc.Title(1)
	bit.Subtitle, _ = acc.Title(2)

	excess := s.resolveResources(bit, h, acc)
	excess = append(excess, acc.ExcessResources...)

	if len(acc.Body) > 0 {
		if !s.meta.BodyAllowed {
			s.diags.Warn(bmErrors.CategoryTagLegality,
				fmt.Sprintf("Bit '%s' should not have a body.", s.meta.Name), s.bitSpan, "")
		}
		bit.Body = &ast.Body{Parts: acc.Body}
	}
	if acc.Footer != "" {
		if !s.meta.FooterAllowed {
			s.diags.Warn(bmErrors.CategoryTagLegality,
				fmt.Sprintf("Bit '%s' should not have a footer.", s.meta.Name), s.bitSpan, "")
		}
		bit.Footer = &ast.Footer{Text: acc.Footer}
	}

	if cards != nil {
		bit.Elements = cards.Elements
		bit.Flashcards = cards.Flashcards
		bit.Statements = cards.Statements
		bit.Quizzes = cards.Quizzes
		bit.Questions = cards.Questions
		bit.Heading = cards.Heading
		bit.Pairs = cards.Pairs
		bit.Matrix = cards.Matrix
		bit.BotResponses = cards.BotResponses
	} else {
		bit.Statement = acc.Statement
		bit.Statements = acc.Statements
		bit.Choices = acc.Choices
		bit.Responses = acc.Responses
	}

	s.pushDown(bit, acc)
	propagateExamples(bit)
	s.repair(bit)

	if len(excess) > 0 {
		if bit.Parser == nil {
			bit.Parser = &ast.ParserInfo{}
		}
		bit.Parser.ExcessResources = excess
	}
	return bit
}

// applyDefaults forces the property values configured for the bit type.
func (s *session) applyDefaults(acc *Accumulator) {
	if len(s.meta.Defaults) == 0 {
		return
	}
	keys := make([]string, 0, len(s.meta.Defaults))
	for k := range s.meta.Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.applyProperty(acc, k, s.meta.Defaults[k], token.Token{Kind: token.Property, Key: k, Span: s.bitSpan})
	}
}

// resolveResources picks the canonical resource of the bit and returns the
// others. The first resource matching the resource type of the header, or
// of the bit type when the header names none, is canonical.
func (s *session) resolveResources(bit *ast.Bit, h *Header, acc *Accumulator) []*ast.Resource {
	typ := h.ResourceType
	if typ == "" {
		typ = s.meta.ResourceType
	}

	var excess []*ast.Resource
	var firstExcess token.Span
	for _, r := range acc.Resources {
		if bit.Resource == nil && typ != "" && r.Type == typ && s.meta.ResourceAttachmentAllowed {
			bit.Resource = r.Resource
			continue
		}
		if len(excess) == 0 {
			firstExcess = r.Span
		}
		excess = append(excess, r.Resource)
	}

	if len(excess) > 0 {
		msg := fmt.Sprintf("%d excess resource(s) present in the bit. The bit resource type is '&%s'", len(excess), typ)
		switch {
		case !s.meta.ResourceAttachmentAllowed:
			msg = fmt.Sprintf("%d excess resource(s) present in the bit. Bit '%s' does not allow resources", len(excess), s.meta.Name)
		case typ == "":
			msg = fmt.Sprintf("%d excess resource(s) present in the bit. The bit has no resource type", len(excess))
		}
		s.diags.Warn(bmErrors.CategoryResource, msg, firstExcess, "")
	}
	if bit.Resource == nil && h.ResourceType != "" {
		s.diags.Warn(bmErrors.CategoryResource,
			fmt.Sprintf("Resource type '&%s' specified in the bit header, but such a resource is not present in the bit", h.ResourceType),
			s.bitSpan, "")
	}
	return excess
}

// pushDown copies bit-level per-item properties onto the card items and
// body parts that lack their own value. A property stays on the bit only
// when the bit type owns it. isCaseSensitive defaults to true wherever it
// applies.
func (s *session) pushDown(bit *ast.Bit, acc *Accumulator) {
	caseSensitive := acc.IsCaseSensitive
	if caseSensitive == nil {
		t := true
		caseSensitive = &t
	}
	fill := func(dst **bool) {
		if *dst == nil {
			v := *caseSensitive
			*dst = &v
		}
	}
	if bit.Body != nil {
		for i := range bit.Body.Parts {
			if g := bit.Body.Parts[i].Gap; g != nil {
				fill(&g.IsCaseSensitive)
			}
		}
	}
	for i := range bit.Pairs {
		fill(&bit.Pairs[i].IsCaseSensitive)
	}
	for i := range bit.Matrix {
		for j := range bit.Matrix[i].Cells {
			fill(&bit.Matrix[i].Cells[j].IsCaseSensitive)
		}
	}

	if acc.ReasonableNumOfChars != nil {
		for i := range bit.Questions {
			if bit.Questions[i].ReasonableNumOfChars == nil {
				v := *acc.ReasonableNumOfChars
				bit.Questions[i].ReasonableNumOfChars = &v
			}
		}
		if s.meta.OwnsProperty("reasonableNumOfChars") || len(bit.Questions) == 0 {
			bit.ReasonableNumOfChars = acc.ReasonableNumOfChars
		}
	}
	if acc.LongAnswer != nil {
		if len(bit.Questions) == 0 {
			s.diags.Warn(bmErrors.CategoryRepair,
				fmt.Sprintf("Bit '%s' has no questions to take 'longAnswer' or 'shortAnswer'. It will be ignored", s.meta.Name),
				s.bitSpan, "")
		}
		for i := range bit.Questions {
			if bit.Questions[i].LongAnswer == nil {
				v := *acc.LongAnswer
				bit.Questions[i].LongAnswer = &v
			}
		}
	}
}
