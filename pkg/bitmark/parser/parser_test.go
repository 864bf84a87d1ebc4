package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

var ignoreExample = cmpopts.IgnoreUnexported(ast.ExampleFields{})

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func at(line int) token.Span {
	return token.Span{Start: token.Position{Line: line, Column: 1}}
}

func bitTok(header string, chain ...token.Token) token.Token {
	return token.Token{Kind: token.Bit, Text: header, Level: 1, Chain: chain, Span: at(1)}
}

func text(s string) token.Token { return token.Token{Kind: token.Text, Text: s} }
func line(s string) token.Token { return token.Token{Kind: token.CardLine, Text: s} }

func prop(key, value string) token.Token {
	return token.Token{Kind: token.Property, Key: key, Text: value}
}

func res(typ, location string) token.Token {
	return token.Token{Kind: token.Resource, Key: typ, Text: location}
}

func cardSet(chain ...token.Token) token.Token {
	return token.Token{Kind: token.CardSet, Chain: chain}
}

var (
	cardDiv    = token.Token{Kind: token.CardDivider}
	sideDiv    = token.Token{Kind: token.SideDivider}
	variantDiv = token.Token{Kind: token.VariantDivider}
)

// cellTokenizer returns the configured tokens for known cell texts and a
// single text token for anything else.
func cellTokenizer(cells map[string][]token.Token) token.Tokenizer {
	return func(src string, rule token.StartRule) ([]token.Token, error) {
		if rule != token.RuleCardContent {
			return nil, fmt.Errorf("unexpected start rule %s", rule)
		}
		if toks, ok := cells[src]; ok {
			return toks, nil
		}
		return []token.Token{{Kind: token.Text, Text: src}}, nil
	}
}

func parseTokens(t *testing.T, cells map[string][]token.Token, tokens ...token.Token) (*ast.Document, *bmErrors.DiagnosticList) {
	t.Helper()
	p := NewParser(registry.Default()).WithTokenizer(cellTokenizer(cells))
	return p.ParseTokens(tokens)
}

func parseBit(t *testing.T, cells map[string][]token.Token, tok token.Token) (*ast.Bit, *bmErrors.DiagnosticList) {
	t.Helper()
	doc, diags := parseTokens(t, cells, tok)
	if len(doc.Bits) != 1 {
		t.Fatalf("ParseTokens() = %d bits, want 1 (errors: %v)", len(doc.Bits), doc.Errors)
	}
	return doc.Bits[0], diags
}

func newSession(t *testing.T, bitType string) *session {
	t.Helper()
	m, ok := registry.Default().Lookup(bitType)
	if !ok {
		t.Fatalf("bit type %q not found", bitType)
	}
	return &session{
		p:     NewParser(registry.Default()),
		meta:  m,
		diags: bmErrors.NewDiagnosticList(""),
	}
}

func TestHandlersCoverEveryKind(t *testing.T) {
	for _, k := range token.Kinds() {
		if _, ok := handlers[k]; !ok {
			t.Errorf("no handler for kind %s", k)
		}
	}
}

func TestReduceEmpty(t *testing.T) {
	levels := []registry.Level{
		registry.LevelBit, registry.LevelGapChain, registry.LevelTrueFalseChain,
		registry.LevelMarkChain, registry.LevelBookChain, registry.LevelPartnerChain,
		registry.LevelResourceChain, registry.LevelPropertyChain, registry.LevelCardElement,
		registry.LevelCardStatements, registry.LevelCardQuiz, registry.LevelCardQuestion,
		registry.LevelCardMatch, registry.LevelCardMatrix, registry.LevelCardBotResponse,
		registry.LevelCardFlashcard,
	}
	s := newSession(t, "article")
	for _, level := range levels {
		t.Run(level.String(), func(t *testing.T) {
			got := s.reduce(level, nil)
			if diff := cmp.Diff(&Accumulator{}, got, cmp.AllowUnexported(Accumulator{}), ignoreExample); diff != "" {
				t.Errorf("reduce() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReduceItemLeadAndTitles(t *testing.T) {
	s := newSession(t, "article")
	acc := s.reduce(registry.LevelBit, []token.Token{
		{Kind: token.ItemLead, Text: " 1a "},
		{Kind: token.ItemLead, Text: "lead"},
		{Kind: token.Title, Level: 1, Text: "Main"},
		{Kind: token.Title, Level: 2, Text: "Sub"},
		{Kind: token.Instruction, Text: "first"},
		{Kind: token.Instruction, Text: "second"},
		{Kind: token.Comment, Text: "ignored"},
	})

	if acc.Item != "1a" || acc.Lead != "lead" {
		t.Errorf("item/lead = %q/%q", acc.Item, acc.Lead)
	}
	if diff := cmp.Diff(map[int]string{1: "Main", 2: "Sub"}, acc.Titles); diff != "" {
		t.Errorf("Titles mismatch (-want +got):\n%s", diff)
	}
	if acc.Instruction != "second" {
		t.Errorf("Instruction = %q, want last one", acc.Instruction)
	}
}

func TestReduceBodyAndFooter(t *testing.T) {
	s := newSession(t, "article")
	acc := s.reduce(registry.LevelBit, []token.Token{
		text("\n\n"),
		text("  Hello "),
		text("world\n"),
		{Kind: token.FooterDivider},
		text(" the end "),
		{Kind: token.FooterDivider},
		text("more"),
	})

	want := []ast.BodyPart{ast.TextPart("Hello world")}
	if diff := cmp.Diff(want, acc.Body, ignoreExample); diff != "" {
		t.Errorf("Body mismatch (-want +got):\n%s", diff)
	}
	if acc.Footer != "the end ~~~~more" {
		t.Errorf("Footer = %q", acc.Footer)
	}
}

func TestPropertyCasting(t *testing.T) {
	s := newSession(t, "interview")
	acc := s.reduce(registry.LevelBit, []token.Token{
		prop("id", "a"),
		prop("id", " b "),
		prop("aiGenerated", ""),
		prop("reasonableNumOfChars", "120"),
		prop("shortAnswer", ""),
		prop("width", "wide"),
		prop("custom", "x"),
		prop("custom", "y"),
	})

	if diff := cmp.Diff([]string{"a", "b"}, acc.ID); diff != "" {
		t.Errorf("ID mismatch (-want +got):\n%s", diff)
	}
	if acc.AIGenerated == nil || !*acc.AIGenerated {
		t.Errorf("AIGenerated = %v, want true", acc.AIGenerated)
	}
	if acc.ReasonableNumOfChars == nil || *acc.ReasonableNumOfChars != 120 {
		t.Errorf("ReasonableNumOfChars = %v", acc.ReasonableNumOfChars)
	}
	if acc.LongAnswer == nil || *acc.LongAnswer {
		t.Errorf("LongAnswer = %v, want false", acc.LongAnswer)
	}
	if acc.Width != nil {
		t.Errorf("Width = %v, want unset", *acc.Width)
	}
	if !s.diags.HasCategory(bmErrors.CategoryRepair) {
		t.Error("missing cast warning")
	}
	want := ast.ExtraProperties{{Key: "custom", Values: []string{"x", "y"}}}
	if diff := cmp.Diff(want, acc.ExtraProperties); diff != "" {
		t.Errorf("ExtraProperties mismatch (-want +got):\n%s", diff)
	}
}

func TestCardinalityKeepsSecond(t *testing.T) {
	bit, diags := parseBit(t, nil, bitTok("article",
		prop("icon", "first"),
		prop("icon", "second"),
	))

	if bit.Icon != "second" {
		t.Errorf("Icon = %q, want second", bit.Icon)
	}
	if n := len(diags.ByCategory(bmErrors.CategoryCardinality)); n != 1 {
		t.Errorf("cardinality warnings = %d, want 1", n)
	}
}

func TestUnchainedTagsReachTheBit(t *testing.T) {
	bit, _ := parseBit(t, nil, bitTok("article",
		token.Token{Kind: token.Gap, Text: "Paris", Chain: []token.Token{
			{Kind: token.Hint, Text: "a city"},
			{Kind: token.Instruction, Text: "fill"},
		}},
	))

	if bit.Hint != "a city" || bit.Instruction != "fill" {
		t.Errorf("hint/instruction = %q/%q", bit.Hint, bit.Instruction)
	}
	if bit.Body != nil {
		t.Errorf("Body = %+v, want none", bit.Body)
	}
}

func TestClozeBody(t *testing.T) {
	bit, diags := parseBit(t, nil, bitTok("cloze",
		text("The capital is "),
		token.Token{Kind: token.Gap, Text: "Paris", Chain: []token.Token{
			{Kind: token.Gap, Text: "paris"},
			{Kind: token.Hint, Text: "big"},
		}},
		text("."),
	))

	want := &ast.Body{Parts: []ast.BodyPart{
		ast.TextPart("The capital is "),
		ast.GapPart(&ast.Gap{
			Solutions:       []string{"Paris", "paris"},
			Annotations:     ast.Annotations{Hint: "big"},
			IsCaseSensitive: boolPtr(true),
		}),
		ast.TextPart("."),
	}}
	if diff := cmp.Diff(want, bit.Body, ignoreExample); diff != "" {
		t.Errorf("Body mismatch (-want +got):\n%s", diff)
	}
	if diags.Count() != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.Error())
	}
	if bit.Format != "bitmark++" || bit.BitLevel != 1 {
		t.Errorf("format/level = %q/%d", bit.Format, bit.BitLevel)
	}
}

func TestGapChainExample(t *testing.T) {
	bit, _ := parseBit(t, nil, bitTok("cloze",
		token.Token{Kind: token.Gap, Text: "Paris", Chain: []token.Token{
			{Kind: token.Gap, Text: "Lutetia"},
			prop("example", ""),
		}},
	))

	gap := bit.Body.Parts[0].Gap
	if gap.Example == nil || gap.Example.Text != "Lutetia" || !gap.IsExample {
		t.Errorf("gap example = %+v", gap.ExampleFields)
	}
	if !bit.IsExample {
		t.Error("bit.IsExample = false")
	}
}

func TestSelectAndHighlight(t *testing.T) {
	chain := token.Token{Kind: token.False, Text: "cat", Chain: []token.Token{
		{Kind: token.Hint, Text: "meow"},
		{Kind: token.True, Text: "dog"},
	}}

	bit, _ := parseBit(t, nil, bitTok("multiple-choice-text", text("A "), chain))
	sel := bit.Body.Parts[1].Select
	if sel == nil {
		t.Fatalf("part 1 = %+v, want select", bit.Body.Parts[1])
	}
	want := []ast.SelectOption{
		{Text: "cat", Annotations: ast.Annotations{Hint: "meow"}},
		{Text: "dog", IsCorrect: true},
	}
	if diff := cmp.Diff(want, sel.Options, ignoreExample); diff != "" {
		t.Errorf("Options mismatch (-want +got):\n%s", diff)
	}

	bit, _ = parseBit(t, nil, bitTok("highlight-text", chain))
	h := bit.Body.Parts[0].Highlight
	if h == nil || len(h.Texts) != 2 || !h.Texts[1].IsCorrect || h.Texts[1].IsHighlighted {
		t.Errorf("highlight = %+v", h)
	}
}

func TestMarkBody(t *testing.T) {
	bit, _ := parseBit(t, nil, bitTok("mark",
		token.Token{Kind: token.Mark, Text: "this", Chain: []token.Token{prop("mark", "underline")}},
	))
	want := &ast.Mark{Solution: "this", Mark: "underline"}
	if diff := cmp.Diff(want, bit.Body.Parts[0].Mark, ignoreExample); diff != "" {
		t.Errorf("Mark mismatch (-want +got):\n%s", diff)
	}
}

func TestBookAndPartner(t *testing.T) {
	bit, _ := parseBit(t, nil, bitTok("learning-path-book",
		token.Token{Kind: token.Property, Key: "book", Text: "bk", Chain: []token.Token{
			{Kind: token.Reference, Text: "ch1"},
			{Kind: token.Reference, Text: "ch2"},
		}},
	))
	if bit.Book != "bk" || bit.Reference != "ch1" || bit.ReferenceEnd != "ch2" {
		t.Errorf("book = %q %q %q", bit.Book, bit.Reference, bit.ReferenceEnd)
	}

	bit, diags := parseBit(t, nil, bitTok("conversation-left-1",
		token.Token{Kind: token.Property, Key: "partner", Text: "Anna", Chain: []token.Token{
			{Kind: token.Resource, Key: "image", Text: "anna.png"},
			{Kind: token.Resource, Key: "audio", Text: "hi.mp3"},
		}},
	))
	if bit.Partner == nil || bit.Partner.Name != "Anna" || bit.Partner.AvatarImage.Src != "anna.png" {
		t.Fatalf("Partner = %+v", bit.Partner)
	}
	if bit.Parser == nil || len(bit.Parser.ExcessResources) != 1 {
		t.Errorf("excess resources = %+v", bit.Parser)
	}
	if !diags.HasCategory(bmErrors.CategoryResource) {
		t.Error("missing excess resource warning")
	}
}

func TestResourceResolution(t *testing.T) {
	bit, diags := parseBit(t, nil, bitTok("image",
		res("image", "a.png"),
		res("audio", "b.mp3"),
		res("image", "c.png"),
	))

	if bit.Resource == nil || bit.Resource.Src != "a.png" || bit.Resource.Format != "png" {
		t.Fatalf("Resource = %+v, want first image", bit.Resource)
	}
	if bit.Parser == nil || len(bit.Parser.ExcessResources) != 2 {
		t.Fatalf("Parser = %+v, want 2 excess resources", bit.Parser)
	}
	var srcs []string
	for _, r := range bit.Parser.ExcessResources {
		srcs = append(srcs, r.Src)
	}
	if diff := cmp.Diff([]string{"b.mp3", "c.png"}, srcs); diff != "" {
		t.Errorf("excess mismatch (-want +got):\n%s", diff)
	}

	warnings := diags.ByCategory(bmErrors.CategoryResource)
	if len(warnings) != 1 || !strings.HasPrefix(warnings[0].Message, "2 excess resource(s)") {
		t.Errorf("resource warnings = %v", warnings)
	}
}

func TestResourceTypeAbsent(t *testing.T) {
	bit, diags := parseBit(t, nil, bitTok("article&video", res("image", "a.png")))
	if bit.Resource != nil {
		t.Errorf("Resource = %+v, want none", bit.Resource)
	}
	var found bool
	for _, d := range diags.ByCategory(bmErrors.CategoryResource) {
		if strings.Contains(d.Message, "specified in the bit header") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing absent resource warning: %v", diags.Error())
	}
}

func TestHeader(t *testing.T) {
	tests := []struct {
		name         string
		header       string
		level        int
		wantType     string
		wantOriginal string
		wantFormat   string
		wantResource string
		wantLevel    int
		wantWarnings int
	}{
		{"plain", "cloze", 1, "cloze", "", "bitmark++", "", 1, 0},
		{"alias", "cloze-solution-grouped", 1, "cloze", "cloze-solution-grouped", "bitmark++", "", 1, 0},
		{"format and resource", "article:text&image", 2, "article", "", "text", "image", 2, 0},
		{"deprecated format", "article:bitmark--", 1, "article", "", "bitmark++", "", 1, 1},
		{"invalid format", "article:rtf", 1, "article", "", "bitmark++", "", 1, 1},
		{"invalid resource", "article&hologram", 1, "article", "", "bitmark++", "", 1, 1},
		{"level too high", "article", 4, "article", "", "bitmark++", "", 2, 1},
		{"level unset", "article", 0, "article", "", "bitmark++", "", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := bmErrors.NewDiagnosticList("")
			h, ok := ParseHeader(registry.Default(), token.Token{Kind: token.Bit, Text: tt.header, Level: tt.level}, diags)
			if !ok {
				t.Fatalf("ParseHeader() failed: %v", diags.Error())
			}
			got := []any{h.Type, h.OriginalType, h.Format, h.ResourceType, h.Level, diags.Count()}
			want := []any{tt.wantType, tt.wantOriginal, tt.wantFormat, tt.wantResource, tt.wantLevel, tt.wantWarnings}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ParseHeader() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOnlyUnknownBitTypeIsFatal(t *testing.T) {
	doc, diags := parseTokens(t, nil,
		token.Token{Kind: token.Bit, Text: "clozee", Level: 1, Span: at(1)},
		bitTok("article", text("Hello")),
	)

	if len(doc.Bits) != 1 || doc.Bits[0].Type != "article" {
		t.Fatalf("Bits = %+v", doc.Bits)
	}
	if len(doc.Errors) != 1 {
		t.Fatalf("Errors = %+v, want 1", doc.Errors)
	}
	if !strings.HasPrefix(doc.Errors[0].Message, "Invalid bit type: 'clozee'") {
		t.Errorf("Message = %q", doc.Errors[0].Message)
	}
	if doc.Errors[0].Location == nil || doc.Errors[0].Location.Line != 1 {
		t.Errorf("Location = %v", doc.Errors[0].Location)
	}
	if !diags.HasErrors() {
		t.Error("diagnostics have no error")
	}
}

func TestMalformedBitsSurvive(t *testing.T) {
	tests := []struct {
		name string
		tok  token.Token
	}{
		{"invalid format", bitTok("article:rtf", text("x"))},
		{"invalid resource type", bitTok("article&hologram", text("x"))},
		{"bit level too high", token.Token{Kind: token.Bit, Text: "article", Level: 7}},
		{"illegal tag", bitTok("article", token.Token{Kind: token.Gap, Text: "x"})},
		{"repeated tag", bitTok("article", prop("icon", "a"), prop("icon", "b"))},
		{"bad number", bitTok("essay", prop("reasonableNumOfChars", "many"))},
		{"negative number", bitTok("essay", prop("reasonableNumOfChars", "-3"))},
		{"card set without config", bitTok("article", cardSet(line("x\n")))},
		{"footer on footerless bit", bitTok("image", token.Token{Kind: token.FooterDivider}, text("x"))},
		{"pair without key", bitTok("match", cardSet(line("\n"), sideDiv, line("Paris\n")))},
		{"empty quiz", bitTok("multiple-choice", cardSet(line("no options\n")))},
		{"wrong resource", bitTok("image", res("audio", "a.mp3"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, diags := parseTokens(t, nil, tt.tok)
			if len(doc.Bits) != 1 || len(doc.Errors) != 0 {
				t.Fatalf("ParseTokens() = %d bits, %d errors", len(doc.Bits), len(doc.Errors))
			}
			if diags.Count() == 0 {
				t.Error("no diagnostics recorded")
			}
			if diags.HasErrors() {
				t.Errorf("non-fatal input produced errors: %v", diags.Error())
			}
			if doc.Bits[0].Parser == nil || len(doc.Bits[0].Parser.Warnings) == 0 {
				t.Error("warnings not attached to the bit")
			}
		})
	}
}

func TestRepairDropsNegativeNumber(t *testing.T) {
	bit, diags := parseBit(t, nil, bitTok("essay", prop("reasonableNumOfChars", "-3")))
	if bit.ReasonableNumOfChars != nil {
		t.Errorf("ReasonableNumOfChars = %d, want none", *bit.ReasonableNumOfChars)
	}
	if !diags.HasCategory(bmErrors.CategoryRepair) {
		t.Error("missing repair notice")
	}
}

func TestAIDefaults(t *testing.T) {
	bit, _ := parseBit(t, nil, bitTok("note-ai", text("x")))
	if !bit.AIGenerated {
		t.Error("AIGenerated = false, want forced true")
	}
}
