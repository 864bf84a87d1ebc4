package registry

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	reg := Default()
	if reg != Default() {
		t.Fatal("Default() returned different instances")
	}

	tests := []struct {
		bitType   string
		wantName  string
		wantShape Shape
	}{
		{"cloze", "cloze", ""},
		{"cloze-instruction-grouped", "cloze", ""},
		{"multiple-choice", "multiple-choice", ShapeQuiz},
		{"true-false", "true-false", ShapeStatements},
		{"match", "match", ShapeMatchPairs},
		{"match-reverse", "match", ShapeMatchPairs},
		{"match-matrix", "match-matrix", ShapeMatchMatrix},
		{"interview", "interview", ShapeQuestions},
		{"bot-action-response", "bot-action-response", ShapeBotActionResponses},
		{"flashcard", "flashcard", ShapeFlashcards},
		{"sequence", "sequence", ShapeElements},
	}

	for _, tt := range tests {
		t.Run(tt.bitType, func(t *testing.T) {
			m, ok := reg.Lookup(tt.bitType)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.bitType)
			}
			if m.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", m.Name, tt.wantName)
			}
			if m.Shape() != tt.wantShape {
				t.Errorf("Shape() = %q, want %q", m.Shape(), tt.wantShape)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Default().Lookup("no-such-bit"); ok {
		t.Error("Lookup() found an undeclared bit type")
	}
}

func TestTagLimits(t *testing.T) {
	m, _ := Default().Lookup("cloze")

	tests := []struct {
		key       string
		wantMax   int
		wantChain bool
		wantProp  bool
	}{
		{"itemLead", 2, false, false},
		{"instruction", 1, false, false},
		{"@example", 1, false, true},
		{"@id", 0, false, true},
		{"gap", 0, true, false},
		{"&image", 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			td, ok := m.Tags.Lookup(tt.key)
			if !ok {
				t.Fatalf("tag %q not configured", tt.key)
			}
			if td.MaxCount != tt.wantMax {
				t.Errorf("MaxCount = %d, want %d", td.MaxCount, tt.wantMax)
			}
			if (td.Chain != nil) != tt.wantChain {
				t.Errorf("has chain = %v, want %v", td.Chain != nil, tt.wantChain)
			}
			if td.IsProperty != tt.wantProp {
				t.Errorf("IsProperty = %v, want %v", td.IsProperty, tt.wantProp)
			}
		})
	}

	gap := m.Tags["gap"]
	if _, ok := gap.Chain.Lookup("hint"); !ok {
		t.Error("gap chain does not allow hint")
	}
	if _, ok := m.Tags["&image"].Chain.Lookup("@width"); !ok {
		t.Error("image resource chain does not allow @width")
	}
}

func TestInheritance(t *testing.T) {
	reg := Default()

	ai, _ := reg.Lookup("article-ai")
	if ai.Defaults["aiGenerated"] != "true" {
		t.Errorf("article-ai aiGenerated default = %q, want true", ai.Defaults["aiGenerated"])
	}
	if !ai.BodyAllowed {
		t.Error("article-ai did not inherit bodyAllowed")
	}
	if !reg.IsOf("note-ai", "article") {
		t.Error("IsOf(note-ai, article) = false")
	}
	if reg.IsOf("article", "note") {
		t.Error("IsOf(article, note) = true")
	}

	mr, _ := reg.Lookup("multiple-response")
	if mr.TrueFalse != TrueFalseResponses {
		t.Errorf("multiple-response TrueFalse = %q, want responses", mr.TrueFalse)
	}
	if mr.Shape() != ShapeQuiz {
		t.Errorf("multiple-response did not inherit the quiz card set")
	}

	essay, _ := reg.Lookup("essay")
	if !essay.OwnsProperty("reasonableNumOfChars") {
		t.Error("essay does not own reasonableNumOfChars")
	}
}

func TestCardSetVariantRepeats(t *testing.T) {
	cs, ok := Default().CardSet("matchAudioPairs")
	if !ok {
		t.Fatal("card set matchAudioPairs missing")
	}
	first := cs.Variant(0, 0)
	if first == nil {
		t.Fatal("Variant(0, 0) = nil")
	}
	if got := cs.Variant(5, 9); got != first {
		t.Error("Variant(5, 9) did not repeat the last configured variant")
	}
	if _, ok := first.Tags.Lookup("&audio"); !ok {
		t.Error("matchAudioPairs variant does not allow &audio")
	}
}

func TestTagsAt(t *testing.T) {
	reg := Default()
	m, _ := reg.Lookup("interview")

	bitTags := reg.TagsAt(m, LevelBit, 0, 0)
	if _, ok := bitTags.Lookup("sampleSolution"); ok {
		t.Error("interview allows sampleSolution at bit level")
	}
	cardTags := reg.TagsAt(m, LevelCardQuestion, 0, 3)
	if _, ok := cardTags.Lookup("sampleSolution"); !ok {
		t.Error("interview question card does not allow sampleSolution")
	}
}

func TestFormatsAndResources(t *testing.T) {
	reg := Default()
	if reg.DefaultTextFormat() != "bitmark++" {
		t.Errorf("DefaultTextFormat() = %q", reg.DefaultTextFormat())
	}
	if !reg.IsTextFormat("text") || reg.IsTextFormat("markdown") {
		t.Error("IsTextFormat() mismatch")
	}
	if !reg.IsResourceType("image-link") || reg.IsResourceType("hologram") {
		t.Error("IsResourceType() mismatch")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			yaml:    "bits: [",
			wantErr: "decode",
		},
		{
			name:    "unknown group",
			yaml:    "bits:\n  a:\n    tags: [{group: missing}]\n",
			wantErr: "unknown group",
		},
		{
			name:    "self including group",
			yaml:    "groups:\n  g: [{group: g}]\nbits:\n  a:\n    tags: [{group: g}]\n",
			wantErr: "includes itself",
		},
		{
			name:    "unknown parent",
			yaml:    "bits:\n  a:\n    inherits: b\n",
			wantErr: "not declared",
		},
		{
			name:    "inheritance cycle",
			yaml:    "bits:\n  a:\n    inherits: b\n  b:\n    inherits: a\n",
			wantErr: "cycle",
		},
		{
			name:    "unknown shape",
			yaml:    "cardSets:\n  c:\n    shape: spiral\n    sides: [[{}]]\n",
			wantErr: "unknown shape",
		},
		{
			name:    "unknown card set",
			yaml:    "bits:\n  a:\n    cardSet: c\n",
			wantErr: "unknown card set",
		},
		{
			name:    "alias clash",
			yaml:    "bits:\n  a:\n    aliases: [b]\n  b: {}\n",
			wantErr: "clashes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Load() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
