package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

func title(s string) token.Token {
	return token.Token{Kind: token.Title, Level: 1, Text: s}
}

func TestElements(t *testing.T) {
	bit, _ := parseBit(t, nil, bitTok("sequence",
		cardSet(line("one\n"), cardDiv, line("two\n")),
	))
	if diff := cmp.Diff([]string{"one", "two"}, bit.Elements); diff != "" {
		t.Errorf("Elements mismatch (-want +got):\n%s", diff)
	}
}

func TestFlashcards(t *testing.T) {
	cells := map[string][]token.Token{
		"A\n": {text("A\n"), {Kind: token.Hint, Text: "think"}},
	}
	bit, _ := parseBit(t, cells, bitTok("flashcard",
		cardSet(line("Q\n"), sideDiv, line("A\n"), variantDiv, line("A2\n")),
	))

	want := []ast.Flashcard{{
		Question:           "Q",
		Answer:             "A",
		AlternativeAnswers: []string{"A2"},
		Annotations:        ast.Annotations{Hint: "think"},
	}}
	if diff := cmp.Diff(want, bit.Flashcards, ignoreExample); diff != "" {
		t.Errorf("Flashcards mismatch (-want +got):\n%s", diff)
	}
}

func TestStatementsKeepLegacyOptions(t *testing.T) {
	cells := map[string][]token.Token{
		"[+a]\n": {{Kind: token.True, Text: "a"}},
	}
	bit, _ := parseBit(t, cells, bitTok("true-false",
		token.Token{Kind: token.False, Text: "legacy"},
		cardSet(line("[+a]\n")),
	))

	want := []ast.Statement{
		{Statement: "a", IsCorrect: true},
		{Statement: "legacy"},
	}
	if diff := cmp.Diff(want, bit.Statements, ignoreExample); diff != "" {
		t.Errorf("Statements mismatch (-want +got):\n%s", diff)
	}
}

func TestQuizDefaultExample(t *testing.T) {
	cells := map[string][]token.Token{
		"[-a][+b][-c]\n": {{Kind: token.False, Text: "a", Chain: []token.Token{
			{Kind: token.True, Text: "b"},
			{Kind: token.False, Text: "c"},
		}}},
	}
	bit, diags := parseBit(t, cells, bitTok("multiple-choice",
		prop("example", ""),
		cardSet(line("[-a][+b][-c]\n")),
	))

	want := []ast.Quiz{{
		Choices: []ast.Choice{
			{Choice: "a"},
			{Choice: "b", IsCorrect: true, ExampleFields: ast.ExampleFields{IsExample: true, Example: ast.BoolExample(true)}},
			{Choice: "c"},
		},
		IsExample: true,
	}}
	if diff := cmp.Diff(want, bit.Quizzes, ignoreExample); diff != "" {
		t.Errorf("Quizzes mismatch (-want +got):\n%s", diff)
	}
	if !bit.IsExample {
		t.Error("bit.IsExample = false")
	}
	if bit.Example != nil {
		t.Errorf("bit.Example = %+v, want none for a bare example", bit.Example)
	}
	if diags.Count() != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.Error())
	}
}

func TestMultipleResponseQuiz(t *testing.T) {
	cells := map[string][]token.Token{
		"[+x][+y]\n": {{Kind: token.True, Text: "x", Chain: []token.Token{
			{Kind: token.True, Text: "y"},
		}}},
	}
	bit, _ := parseBit(t, cells, bitTok("multiple-response", cardSet(line("[+x][+y]\n"))))

	if len(bit.Quizzes) != 1 || len(bit.Quizzes[0].Responses) != 2 || len(bit.Quizzes[0].Choices) != 0 {
		t.Errorf("Quizzes = %+v, want one quiz with two responses", bit.Quizzes)
	}
}

func TestQuestionsPushDown(t *testing.T) {
	cells := map[string][]token.Token{
		"Why?\n": {text("Why?\n"), prop("reasonableNumOfChars", "5")},
	}
	bit, _ := parseBit(t, cells, bitTok("interview",
		prop("reasonableNumOfChars", "100"),
		prop("shortAnswer", ""),
		cardSet(line("What?\n"), cardDiv, line("Why?\n")),
	))

	want := []ast.Question{
		{Question: "What?", ReasonableNumOfChars: intPtr(100), LongAnswer: boolPtr(false)},
		{Question: "Why?", ReasonableNumOfChars: intPtr(5), LongAnswer: boolPtr(false)},
	}
	if diff := cmp.Diff(want, bit.Questions, ignoreExample); diff != "" {
		t.Errorf("Questions mismatch (-want +got):\n%s", diff)
	}
	if bit.ReasonableNumOfChars != nil {
		t.Errorf("bit.ReasonableNumOfChars = %d, want pushed down", *bit.ReasonableNumOfChars)
	}
}

func TestOwnedPropertyStaysOnBit(t *testing.T) {
	bit, _ := parseBit(t, nil, bitTok("essay", prop("reasonableNumOfChars", "300")))
	if bit.ReasonableNumOfChars == nil || *bit.ReasonableNumOfChars != 300 {
		t.Errorf("ReasonableNumOfChars = %v, want 300", bit.ReasonableNumOfChars)
	}
}

func TestMatchPairs(t *testing.T) {
	cells := map[string][]token.Token{
		"[#Geography]\n": {title("Geography")},
		"[#City]\n":      {title("City")},
		"Spain\n":        {text("Spain\n"), prop("isCaseSensitive", "false")},
	}
	bit, diags := parseBit(t, cells, bitTok("match",
		cardSet(
			line("[#Geography]\n"), sideDiv, line("[#City]\n"),
			cardDiv, line("Capital\n"), sideDiv, line("Paris\n"),
			cardDiv, line("Spain\n"), sideDiv, line("Madrid\n"),
		),
	))

	wantPairs := []ast.Pair{
		{Key: "Capital", Values: []string{"Paris"}, IsCaseSensitive: boolPtr(true)},
		{Key: "Spain", Values: []string{"Madrid"}, IsCaseSensitive: boolPtr(false)},
	}
	if diff := cmp.Diff(wantPairs, bit.Pairs, ignoreExample); diff != "" {
		t.Errorf("Pairs mismatch (-want +got):\n%s", diff)
	}
	wantHeading := &ast.Heading{ForKeys: "Geography", ForValues: []string{"City"}, Single: true}
	if diff := cmp.Diff(wantHeading, bit.Heading); diff != "" {
		t.Errorf("Heading mismatch (-want +got):\n%s", diff)
	}
	if diags.Count() != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.Error())
	}
}

func TestHeadingCardExample(t *testing.T) {
	tests := []struct {
		name    string
		heading []token.Token
		value   []token.Token
		want    *ast.Example
	}{
		{
			name:    "bare example takes the value",
			heading: []token.Token{title("A"), prop("example", "")},
			value:   []token.Token{text("v\n")},
			want:    ast.StringExample("v"),
		},
		{
			name:    "explicit example",
			heading: []token.Token{title("A"), prop("example", "w")},
			value:   []token.Token{text("v\n")},
			want:    ast.StringExample("w"),
		},
		{
			name:    "pair keeps its own example",
			heading: []token.Token{title("A"), prop("example", "w")},
			value:   []token.Token{text("v\n"), prop("example", "own")},
			want:    ast.StringExample("own"),
		},
		{
			name:    "no example",
			heading: []token.Token{title("A")},
			value:   []token.Token{text("v\n")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := map[string][]token.Token{
				"[#A]\n": tt.heading,
				"[#B]\n": {title("B")},
				"v\n":    tt.value,
			}
			bit, _ := parseBit(t, cells, bitTok("match",
				cardSet(
					line("[#A]\n"), sideDiv, line("[#B]\n"),
					cardDiv, line("k\n"), sideDiv, line("v\n"),
				),
			))

			if len(bit.Pairs) != 1 {
				t.Fatalf("Pairs = %+v, want 1", bit.Pairs)
			}
			p := bit.Pairs[0]
			if diff := cmp.Diff(tt.want, p.Example); diff != "" {
				t.Errorf("Example mismatch (-want +got):\n%s", diff)
			}
			if p.IsExample != (tt.want != nil) {
				t.Errorf("IsExample = %v, want %v", p.IsExample, tt.want != nil)
			}
		})
	}
}

func TestHeadingCardExampleReachesMatrixCells(t *testing.T) {
	cells := map[string][]token.Token{
		"[#Country]\n": {title("Country"), prop("example", "")},
		"[#City]\n":    {title("City")},
	}
	bit, _ := parseBit(t, cells, bitTok("match-matrix",
		cardSet(
			line("[#Country]\n"), sideDiv, line("[#City]\n"),
			cardDiv, line("Germany\n"), sideDiv, line("Berlin\n"),
		),
	))

	wantHeading := &ast.Heading{ForKeys: "Country", ForValues: []string{"City"}}
	if diff := cmp.Diff(wantHeading, bit.Heading); diff != "" {
		t.Errorf("Heading mismatch (-want +got):\n%s", diff)
	}
	if len(bit.Matrix) != 1 || len(bit.Matrix[0].Cells) != 1 {
		t.Fatalf("Matrix = %+v, want one row with one cell", bit.Matrix)
	}
	if diff := cmp.Diff(ast.StringExample("Berlin"), bit.Matrix[0].Cells[0].Example); diff != "" {
		t.Errorf("cell Example mismatch (-want +got):\n%s", diff)
	}
	if !bit.Matrix[0].IsExample {
		t.Error("row IsExample = false")
	}
}

func TestMatchHeadingSingleValue(t *testing.T) {
	cells := map[string][]token.Token{
		"[#Key]\n": {title("Key")},
		"[#V1]\n":  {title("V1")},
		"[#V2]\n":  {title("V2")},
	}
	bit, _ := parseBit(t, cells, bitTok("match",
		cardSet(line("[#Key]\n"), sideDiv, line("[#V1]\n"), sideDiv, line("[#V2]\n")),
	))

	want := &ast.Heading{ForKeys: "Key", ForValues: []string{"V2"}, Single: true}
	if diff := cmp.Diff(want, bit.Heading); diff != "" {
		t.Errorf("Heading mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchSkipsTitledValues(t *testing.T) {
	cells := map[string][]token.Token{
		"[##Sub]\n": {{Kind: token.Title, Level: 2, Text: "Sub"}},
	}
	bit, _ := parseBit(t, cells, bitTok("match",
		cardSet(line("k\n"), sideDiv, line("v\n"), variantDiv, line("[##Sub]\n")),
	))

	if len(bit.Pairs) != 1 {
		t.Fatalf("Pairs = %+v, want 1", bit.Pairs)
	}
	if diff := cmp.Diff([]string{"v"}, bit.Pairs[0].Values); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
}

func TestLongAnswerWithoutQuestions(t *testing.T) {
	bit, diags := parseBit(t, nil, bitTok("interview", prop("shortAnswer", "")))

	if len(bit.Questions) != 0 {
		t.Fatalf("Questions = %+v, want none", bit.Questions)
	}
	var found bool
	for _, d := range diags.ByCategory(bmErrors.CategoryRepair) {
		found = found || strings.Contains(d.Message, "longAnswer")
	}
	if !found {
		t.Errorf("missing repair warning about longAnswer: %v", diags.Error())
	}
}

func TestRepeatedHeading(t *testing.T) {
	cells := map[string][]token.Token{
		"[#A]\n": {title("A")},
		"[#B]\n": {title("B")},
	}
	bit, diags := parseBit(t, cells, bitTok("match",
		cardSet(line("[#A]\n"), cardDiv, line("[#B]\n")),
	))

	if bit.Heading == nil || bit.Heading.ForKeys != "B" {
		t.Errorf("Heading = %+v, want the last one", bit.Heading)
	}
	if n := len(diags.ByCategory(bmErrors.CategoryCardinality)); n != 1 {
		t.Errorf("cardinality warnings = %d, want 1", n)
	}
	if len(bit.Pairs) != 0 {
		t.Errorf("Pairs = %+v, want none", bit.Pairs)
	}
}

func TestMatchPictureKey(t *testing.T) {
	cells := map[string][]token.Token{
		"[&image:cat.jpg]\n": {res("image", "cat.jpg")},
	}
	bit, _ := parseBit(t, cells, bitTok("match-picture",
		cardSet(line("[&image:cat.jpg]\n"), sideDiv, line("cat\n")),
	))

	if len(bit.Pairs) != 1 {
		t.Fatalf("Pairs = %+v, want 1", bit.Pairs)
	}
	p := bit.Pairs[0]
	if p.KeyImage == nil || p.KeyImage.Src != "cat.jpg" || p.Key != "" {
		t.Errorf("pair key = %q / %+v", p.Key, p.KeyImage)
	}
}

func TestMatchMatrix(t *testing.T) {
	bit, _ := parseBit(t, nil, bitTok("match-matrix",
		cardSet(line("Germany\n"), sideDiv, line("Berlin\n"), sideDiv, line("Bonn\n"), variantDiv, line("bonn\n")),
	))

	want := []ast.Matrix{{
		Key: "Germany",
		Cells: []ast.MatrixCell{
			{Values: []string{"Berlin"}, IsCaseSensitive: boolPtr(true)},
			{Values: []string{"Bonn", "bonn"}, IsCaseSensitive: boolPtr(true)},
		},
	}}
	if diff := cmp.Diff(want, bit.Matrix, ignoreExample); diff != "" {
		t.Errorf("Matrix mismatch (-want +got):\n%s", diff)
	}
}

func TestBotActionResponses(t *testing.T) {
	cells := map[string][]token.Token{
		"[!Yes][@reaction:happy]Great\n": {
			{Kind: token.Instruction, Text: "Yes"},
			prop("reaction", "happy"),
			text("Great\n"),
		},
	}
	bit, _ := parseBit(t, cells, bitTok("bot-action-response",
		cardSet(line("[!Yes][@reaction:happy]Great\n"), cardDiv, line("Fine\n")),
	))

	want := []ast.BotResponse{
		{Response: "Yes", Reaction: "happy", Feedback: "Great"},
		{Feedback: "Fine"},
	}
	if diff := cmp.Diff(want, bit.BotResponses, ignoreExample); diff != "" {
		t.Errorf("BotResponses mismatch (-want +got):\n%s", diff)
	}
}

func TestCardBodyNotAllowed(t *testing.T) {
	_, diags := parseBit(t, nil, bitTok("true-false", cardSet(line("loose text\n"))))

	var found bool
	for _, d := range diags.ByCategory(bmErrors.CategoryTagLegality) {
		if d.Message == "Bit 'true-false' should not have a card body at card:0, side:0, variant:0." {
			found = true
		}
	}
	if !found {
		t.Errorf("missing card body warning: %v", diags.Error())
	}
}

func TestCardTokenizerFailureKeepsText(t *testing.T) {
	failing := func(string, token.StartRule) ([]token.Token, error) {
		return nil, errors.New("unterminated tag")
	}
	p := NewParser(registry.Default()).WithTokenizer(failing)
	doc, diags := p.ParseTokens([]token.Token{bitTok("sequence", cardSet(line("[broken\n")))})

	if diff := cmp.Diff([]string{"[broken"}, doc.Bits[0].Elements); diff != "" {
		t.Errorf("Elements mismatch (-want +got):\n%s", diff)
	}
	if !diags.HasCategory(bmErrors.CategorySyntax) {
		t.Error("missing tokenizer warning")
	}
}
