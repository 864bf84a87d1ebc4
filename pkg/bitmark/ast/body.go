package ast

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Body is the ordered content of a bit.
type Body struct {
	Parts []BodyPart `json:"bodyParts"`
}

// Text returns the concatenated text parts of the body.
func (b *Body) Text() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range b.Parts {
		if p.Text != nil {
			sb.WriteString(p.Text.Text)
		}
	}
	return sb.String()
}

// Body part types.
const (
	BodyPartText      = "text"
	BodyPartGap       = "gap"
	BodyPartSelect    = "select"
	BodyPartHighlight = "highlight"
	BodyPartMark      = "mark"
)

// BodyPart is one element of a body. Exactly one of the variant fields is set,
// matching Type.
type BodyPart struct {
	Type string

	Text      *BodyText
	Gap       *Gap
	Select    *Select
	Highlight *Highlight
	Mark      *Mark
}

// TextPart returns a text body part.
func TextPart(s string) BodyPart {
	return BodyPart{Type: BodyPartText, Text: &BodyText{Text: s}}
}

// GapPart returns a gap body part.
func GapPart(g *Gap) BodyPart {
	return BodyPart{Type: BodyPartGap, Gap: g}
}

// SelectPart returns a select body part.
func SelectPart(s *Select) BodyPart {
	return BodyPart{Type: BodyPartSelect, Select: s}
}

// HighlightPart returns a highlight body part.
func HighlightPart(h *Highlight) BodyPart {
	return BodyPart{Type: BodyPartHighlight, Highlight: h}
}

// MarkPart returns a mark body part.
func MarkPart(m *Mark) BodyPart {
	return BodyPart{Type: BodyPartMark, Mark: m}
}

func (p BodyPart) data() (any, error) {
	switch p.Type {
	case BodyPartText:
		return p.Text, nil
	case BodyPartGap:
		return p.Gap, nil
	case BodyPartSelect:
		return p.Select, nil
	case BodyPartHighlight:
		return p.Highlight, nil
	case BodyPartMark:
		return p.Mark, nil
	default:
		return nil, fmt.Errorf("unknown body part type %q", p.Type)
	}
}

type bodyPartJSON struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (p BodyPart) MarshalJSON() ([]byte, error) {
	v, err := p.data()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(bodyPartJSON{Type: p.Type, Data: data})
}

func (p *BodyPart) UnmarshalJSON(data []byte) error {
	var raw bodyPartJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := BodyPart{Type: raw.Type}
	var target any
	switch raw.Type {
	case BodyPartText:
		out.Text = &BodyText{}
		target = out.Text
	case BodyPartGap:
		out.Gap = &Gap{}
		target = out.Gap
	case BodyPartSelect:
		out.Select = &Select{}
		target = out.Select
	case BodyPartHighlight:
		out.Highlight = &Highlight{}
		target = out.Highlight
	case BodyPartMark:
		out.Mark = &Mark{}
		target = out.Mark
	default:
		return fmt.Errorf("unknown body part type %q", raw.Type)
	}
	if err := json.Unmarshal(raw.Data, target); err != nil {
		return fmt.Errorf("body part %q: %w", raw.Type, err)
	}
	*p = out
	return nil
}

// BodyText is a run of body text.
type BodyText struct {
	Text string `json:"bodyText"`
}

// Gap is a cloze gap.
type Gap struct {
	Solutions []string `json:"solutions"`
	Annotations
	IsCaseSensitive *bool `json:"isCaseSensitive,omitempty"`
	ExampleFields
}

// Select is an inline choice between options.
type Select struct {
	Options []SelectOption `json:"options"`
	Annotations
	IsExample bool `json:"isExample,omitempty"`
}

// SelectOption is one option of a Select.
type SelectOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
	Annotations
	ExampleFields
}

// Highlight is a run of texts of which some are to be highlighted.
type Highlight struct {
	Texts []HighlightText `json:"texts"`
	Annotations
	IsExample bool `json:"isExample,omitempty"`
}

// HighlightText is one text of a Highlight.
type HighlightText struct {
	Text          string `json:"text"`
	IsCorrect     bool   `json:"isCorrect"`
	IsHighlighted bool   `json:"isHighlighted"`
	Annotations
	ExampleFields
}

// Mark is a text to be marked.
type Mark struct {
	Solution string `json:"solution"`
	Mark     string `json:"mark,omitempty"`
	Annotations
	ExampleFields
}
