package token

import "testing"

func TestKindNames(t *testing.T) {
	seen := make(map[string]Kind)
	for _, k := range Kinds() {
		name := k.String()
		if name == "" {
			t.Errorf("kind %d has no name", int(k))
		}
		if prev, dup := seen[name]; dup {
			t.Errorf("kinds %d and %d share the name %q", int(prev), int(k), name)
		}
		seen[name] = k
		if !k.Valid() {
			t.Errorf("Kinds() returned invalid kind %v", k)
		}
	}
	if Invalid.Valid() || kindCount.Valid() {
		t.Error("Valid() accepted a sentinel kind")
	}
	if got := Kind(99).String(); got != "kind(99)" {
		t.Errorf("String() = %q", got)
	}
}

func TestTagKey(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{Token{Kind: Property, Key: "example"}, "@example"},
		{Token{Kind: Resource, Key: "image"}, "&image"},
		{Token{Kind: Gap}, "gap"},
		{Token{Kind: True}, "true"},
		{Token{Kind: ItemLead}, "itemLead"},
	}
	for _, tt := range tests {
		if got := tt.tok.TagKey(); got != tt.want {
			t.Errorf("TagKey() = %q, want %q", got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	tokens := []Token{
		{Kind: Gap, Chain: []Token{
			{Kind: Gap},
			{Kind: Hint, Chain: []Token{{Kind: Instruction}}},
		}},
		{Kind: Text},
		{Kind: CardSet, Chain: []Token{{Kind: CardLine}, {Kind: CardDivider}}},
	}
	if got := Count(tokens); got != 6 {
		t.Errorf("Count() = %d, want 6", got)
	}
	if !tokens[0].IsChain() || tokens[2].IsChain() {
		t.Error("IsChain() mismatch")
	}
}

func TestPosition(t *testing.T) {
	if (Position{}).IsValid() {
		t.Error("zero position is valid")
	}
	p := Position{Offset: 10, Line: 2, Column: 4}
	if p.String() != "2:4" {
		t.Errorf("String() = %q", p.String())
	}
	s := Span{Start: p, End: Position{Line: 2, Column: 9}}
	if s.String() != "2:4-2:9" {
		t.Errorf("Span.String() = %q", s.String())
	}
}

func TestMarkup(t *testing.T) {
	tests := []struct {
		name string
		tok  Token
		want string
	}{
		{"property", Token{Kind: Property, Key: "width", Text: "200"}, "[@width:200]"},
		{"bare property", Token{Kind: Property, Key: "example"}, "[@example]"},
		{"title", Token{Kind: Title, Level: 2, Text: "Sub"}, "[##Sub]"},
		{"bit", Token{Kind: Bit, Level: 1, Text: "cloze", Chain: []Token{{Kind: Text, Text: "x"}}}, "[.cloze]"},
		{"gap chain", Token{Kind: Gap, Text: "Paris", Chain: []Token{
			{Kind: Gap, Text: "paris"},
			{Kind: Hint, Text: "capital"},
		}}, "[_Paris][_paris][?capital]"},
		{"comment", Token{Kind: Comment, Text: "note"}, "||note||"},
		{"divider", Token{Kind: SideDivider}, "=="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.Markup(); got != tt.want {
				t.Errorf("Markup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSigilsAreUnique(t *testing.T) {
	if len(TagKinds()) != len(sigils) {
		t.Errorf("TagKinds() has %d entries, want %d", len(TagKinds()), len(sigils))
	}
	if Sigil(Text) != "" {
		t.Errorf("Sigil(Text) = %q", Sigil(Text))
	}
}
