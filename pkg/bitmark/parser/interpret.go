package parser

import (
	"fmt"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// Cards holds the card-shape nodes produced by interpreting a card set.
type Cards struct {
	Elements     []string
	Flashcards   []ast.Flashcard
	Statements   []ast.Statement
	Quizzes      []ast.Quiz
	Questions    []ast.Question
	Heading      *ast.Heading
	Pairs        []ast.Pair
	Matrix       []ast.Matrix
	BotResponses []ast.BotResponse
}

// reducedCell is a grid cell after tokenizing, validating and reducing it.
type reducedCell struct {
	*Accumulator
	span token.Span
}

// interpreter turns a reduced card grid into card-shape nodes.
type interpreter struct {
	s      *session
	bitAcc *Accumulator
	cards  [][][]reducedCell // card, side, variant
	out    *Cards

	headingSpan token.Span

	// cardSetExample is the example given on a heading card. Later pairs
	// and matrix cells without an example of their own take it.
	cardSetExample ast.ExampleFields
}

type shapeFunc func(in *interpreter)

var shapes = map[registry.Shape]shapeFunc{
	registry.ShapeElements:           (*interpreter).elements,
	registry.ShapeFlashcards:         (*interpreter).flashcards,
	registry.ShapeStatements:         (*interpreter).statements,
	registry.ShapeQuiz:               (*interpreter).quiz,
	registry.ShapeQuestions:          (*interpreter).questions,
	registry.ShapeMatchPairs:         (*interpreter).matchPairs,
	registry.ShapeMatchMatrix:        (*interpreter).matchMatrix,
	registry.ShapeBotActionResponses: (*interpreter).botActionResponses,
}

// interpret reduces every cell of grid and interprets the result with the
// card-set shape of the bit type. bitAcc supplies the legacy bit-level
// statements, choices and responses merged into the card nodes.
func (s *session) interpret(grid *CardGrid, bitAcc *Accumulator) *Cards {
	in := &interpreter{s: s, bitAcc: bitAcc, out: &Cards{}}
	for ci, card := range grid.Cards {
		sides := make([][]reducedCell, len(card.Sides))
		for si, side := range card.Sides {
			sides[si] = make([]reducedCell, len(side.Variants))
			for vi, cell := range side.Variants {
				sides[si][vi] = reducedCell{
					Accumulator: s.reduceCell(ci, si, vi, cell),
					span:        cell.Span,
				}
			}
		}
		in.cards = append(in.cards, sides)
	}

	if fn, ok := shapes[s.meta.Shape()]; ok {
		fn(in)
	}
	return in.out
}

// reduceCell tokenizes, validates and reduces one cell.
func (s *session) reduceCell(card, side, variant int, cell Cell) *Accumulator {
	tokens := s.tokenizeCell(card, side, variant, cell)
	tokens = s.p.validator.ValidateCard(s.meta, side, variant, tokens, s.diags)
	acc := s.reduce(s.meta.CardSet.Shape.Level(), tokens)

	if acc.CardBody != "" {
		if v := s.meta.CardSet.Variant(side, variant); v != nil && !v.BodyAllowed {
			s.diags.Warn(bmErrors.CategoryTagLegality,
				fmt.Sprintf("Bit '%s' should not have a card body at card:%d, side:%d, variant:%d.", s.meta.Name, card, side, variant),
				cell.Span, acc.CardBody)
		}
	}
	return acc
}

func (s *session) tokenizeCell(card, side, variant int, cell Cell) []token.Token {
	plain := []token.Token{{Kind: token.Text, Text: cell.Text, Span: cell.Span}}
	if s.p.tokenize == nil {
		return plain
	}
	tokens, err := s.p.tokenize(cell.Text, token.RuleCardContent)
	if err != nil {
		s.diags.Warn(bmErrors.CategorySyntax,
			fmt.Sprintf("Card content at card:%d, side:%d, variant:%d could not be read (%v). It will be kept as text", card, side, variant, err),
			cell.Span, cell.Text)
		return plain
	}
	offsetTokens(tokens, cell.Span.Start)
	return tokens
}

// each calls fn for every cell in ascending card, side, variant order.
func (in *interpreter) each(fn func(card, side, variant int, c reducedCell)) {
	for ci, sides := range in.cards {
		for si, variants := range sides {
			for vi, c := range variants {
				fn(ci, si, vi, c)
			}
		}
	}
}

func (in *interpreter) elements() {
	in.each(func(_, _, _ int, c reducedCell) {
		in.out.Elements = append(in.out.Elements, c.CardBody)
	})
}

// flashcards numbers the variants of a card across its sides: the first is
// the question, the second the answer and the rest alternative answers.
func (in *interpreter) flashcards() {
	for _, sides := range in.cards {
		var fc ast.Flashcard
		index := 0
		for _, variants := range sides {
			for _, c := range variants {
				switch index {
				case 0:
					fc.Question = c.CardBody
				case 1:
					fc.Answer = c.CardBody
				default:
					fc.AlternativeAnswers = append(fc.AlternativeAnswers, c.CardBody)
				}
				index++
				overlayAnnotations(&fc.Annotations, c.Annotations())
				overlayExample(&fc.ExampleFields, c.Accumulator)
			}
		}
		in.out.Flashcards = append(in.out.Flashcards, fc)
	}
}

// cardTags collects the tags of every cell of a card that are not attached
// to a true/false option.
func cardTags(sides [][]reducedCell) (ast.Annotations, ast.ExampleFields) {
	var (
		ann ast.Annotations
		ex  ast.ExampleFields
	)
	for _, variants := range sides {
		for _, c := range variants {
			overlayAnnotations(&ann, c.Annotations())
			overlayExample(&ex, c.Accumulator)
		}
	}
	return ann, ex
}

func cardEntries(sides [][]reducedCell) []TrueFalseEntry {
	var entries []TrueFalseEntry
	for _, variants := range sides {
		for _, c := range variants {
			entries = append(entries, c.TrueFalse...)
		}
	}
	return entries
}

func (in *interpreter) statements() {
	for _, sides := range in.cards {
		ann, ex := cardTags(sides)
		for _, e := range cardEntries(sides) {
			st := statementOf(e)
			mergeAnnotations(&st.Annotations, ann)
			mergeExample(&st.ExampleFields, ex)
			in.out.Statements = append(in.out.Statements, st)
		}
	}
	if in.bitAcc.Statement != nil {
		in.out.Statements = append(in.out.Statements, *in.bitAcc.Statement)
	}
	in.out.Statements = append(in.out.Statements, in.bitAcc.Statements...)
}

func (in *interpreter) quiz() {
	responses := in.s.meta.TrueFalse == registry.TrueFalseResponses
	for _, sides := range in.cards {
		ann, ex := cardTags(sides)
		q := ast.Quiz{Annotations: ann}
		for _, e := range cardEntries(sides) {
			if responses {
				r := responseOf(e)
				mergeExample(&r.ExampleFields, ex)
				q.Responses = append(q.Responses, r)
			} else {
				c := choiceOf(e)
				mergeExample(&c.ExampleFields, ex)
				q.Choices = append(q.Choices, c)
			}
		}
		in.out.Quizzes = append(in.out.Quizzes, q)
	}
	if len(in.bitAcc.Choices) > 0 || len(in.bitAcc.Responses) > 0 {
		in.out.Quizzes = append(in.out.Quizzes, ast.Quiz{
			Choices:   in.bitAcc.Choices,
			Responses: in.bitAcc.Responses,
		})
	}
}

func (in *interpreter) questions() {
	in.each(func(_, _, _ int, c reducedCell) {
		in.out.Questions = append(in.out.Questions, ast.Question{
			Question:             c.CardBody,
			SampleSolution:       c.SampleSolution,
			ReasonableNumOfChars: c.ReasonableNumOfChars,
			LongAnswer:           c.LongAnswer,
			Annotations:          c.Annotations(),
			ExampleFields:        c.exampleFields(),
		})
	})
}

// heading builds the heading of a card whose key side carries a level-1
// title. Every later side adds its title, or "", to the value headings; a
// match heading keeps only the last one.
func (in *interpreter) heading(sides [][]reducedCell) bool {
	key := sides[0][0]
	title, ok := key.Title(1)
	if !ok {
		return false
	}
	h := &ast.Heading{ForKeys: title, ForValues: []string{}}
	for _, variants := range sides[1:] {
		value := ""
		if len(variants) > 0 {
			value, _ = variants[0].Title(1)
		}
		h.ForValues = append(h.ForValues, value)
	}
	if in.s.meta.Shape() != registry.ShapeMatchMatrix {
		last := ""
		if n := len(h.ForValues); n > 0 {
			last = h.ForValues[n-1]
		}
		h.ForValues, h.Single = []string{last}, true
	}

	for _, variants := range sides {
		for _, c := range variants {
			if _, titled := c.Title(1); titled {
				in.addCardSetExample(c.Accumulator)
			}
		}
	}

	if in.out.Heading != nil {
		in.s.diags.WarnRepeated("'heading' is included more than 1 time(s). The earlier ones will be ignored",
			key.span, in.headingSpan, title)
	}
	in.out.Heading = h
	in.headingSpan = key.span
	return true
}

// addCardSetExample records the example of a heading cell. An explicit
// value replaces an earlier one; a bare example stays set.
func (in *interpreter) addCardSetExample(acc *Accumulator) {
	if acc.Example != nil {
		in.cardSetExample.Example = acc.Example
	}
	if acc.DefaultExample {
		in.cardSetExample.SetDefaultExample(true)
	}
}

// keyCards returns the cards with at least one side holding a cell.
func (in *interpreter) keyCards() [][][]reducedCell {
	out := make([][][]reducedCell, 0, len(in.cards))
	for _, sides := range in.cards {
		if len(sides) == 0 || len(sides[0]) == 0 {
			continue
		}
		out = append(out, sides)
	}
	return out
}

func (in *interpreter) matchPairs() {
	for _, sides := range in.keyCards() {
		if in.heading(sides) {
			continue
		}
		key := sides[0][0]
		pair := ast.Pair{
			Values:          []string{},
			Annotations:     key.Annotations(),
			IsCaseSensitive: key.IsCaseSensitive,
			ExampleFields:   key.exampleFields(),
		}
		switch res := keyResource(key.Accumulator); {
		case res != nil && res.Type == ast.ResourceAudio:
			pair.KeyAudio = res
		case res != nil && res.Type == ast.ResourceImage:
			pair.KeyImage = res
		default:
			pair.Key = key.CardBody
		}

		for _, variants := range sides[1:] {
			for _, c := range variants {
				if len(c.Titles) > 0 {
					continue
				}
				pair.Values = append(pair.Values, c.CardBody)
				ann := c.Annotations()
				ann.Item, ann.Lead = "", ""
				overlayAnnotations(&pair.Annotations, ann)
				if c.IsCaseSensitive != nil {
					pair.IsCaseSensitive = c.IsCaseSensitive
				}
				overlayExample(&pair.ExampleFields, c.Accumulator)
			}
		}
		mergeExample(&pair.ExampleFields, in.cardSetExample)
		in.out.Pairs = append(in.out.Pairs, pair)
	}
}

// keyResource returns the first audio or image resource of a key side.
func keyResource(acc *Accumulator) *ast.Resource {
	for _, r := range acc.Resources {
		if r.Type == ast.ResourceAudio || r.Type == ast.ResourceImage {
			return r.Resource
		}
	}
	return nil
}

func (in *interpreter) matchMatrix() {
	for _, sides := range in.keyCards() {
		if in.heading(sides) {
			continue
		}
		key := sides[0][0]
		m := ast.Matrix{
			Key:         key.CardBody,
			Cells:       []ast.MatrixCell{},
			Annotations: key.Annotations(),
		}
		for _, variants := range sides[1:] {
			cell := ast.MatrixCell{Values: []string{}}
			for _, c := range variants {
				if len(c.Titles) > 0 {
					continue
				}
				cell.Values = append(cell.Values, c.CardBody)
				overlayAnnotations(&cell.Annotations, c.Annotations())
				if c.IsCaseSensitive != nil {
					cell.IsCaseSensitive = c.IsCaseSensitive
				}
				overlayExample(&cell.ExampleFields, c.Accumulator)
			}
			if cell.IsCaseSensitive == nil {
				cell.IsCaseSensitive = key.IsCaseSensitive
			}
			mergeExample(&cell.ExampleFields, key.exampleFields())
			mergeExample(&cell.ExampleFields, in.cardSetExample)
			m.Cells = append(m.Cells, cell)
		}
		in.out.Matrix = append(in.out.Matrix, m)
	}
}

func (in *interpreter) botActionResponses() {
	in.each(func(_, _, _ int, c reducedCell) {
		ann := c.Annotations()
		ann.Instruction = ""
		in.out.BotResponses = append(in.out.BotResponses, ast.BotResponse{
			Response:      c.Instruction,
			Reaction:      c.Reaction,
			Feedback:      c.CardBody,
			Annotations:   ann,
			ExampleFields: c.exampleFields(),
		})
	})
}
