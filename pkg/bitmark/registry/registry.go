package registry

import (
	"sort"
	"strings"
)

// TagData is the configuration of one tag, property or resource at one
// nesting level.
type TagData struct {
	// Key is the tag key as returned by token.Token.TagKey.
	Key string

	// MaxCount is the maximum number of occurrences. Zero means unlimited.
	MaxCount int

	IsProperty bool
	IsResource bool

	// Chain, if non-nil, is the tag set valid inside this tag's chain.
	Chain TagMap
}

// Unlimited reports whether the tag may occur any number of times.
func (td *TagData) Unlimited() bool {
	return td.MaxCount <= 0
}

// TagMap maps a tag key to its configuration.
type TagMap map[string]*TagData

// Lookup returns the configuration of key.
func (m TagMap) Lookup(key string) (*TagData, bool) {
	td, ok := m[key]
	return td, ok
}

// Keys returns the configured keys in sorted order.
func (m TagMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasChains reports whether any tag in m has a chain.
func (m TagMap) HasChains() bool {
	for _, td := range m {
		if td.Chain != nil {
			return true
		}
	}
	return false
}

// Shape is the interpretation applied to a bit's card set.
type Shape string

const (
	ShapeElements           Shape = "elements"
	ShapeStatements         Shape = "statements"
	ShapeQuiz               Shape = "quiz"
	ShapeQuestions          Shape = "questions"
	ShapeMatchPairs         Shape = "matchPairs"
	ShapeMatchMatrix        Shape = "matchMatrix"
	ShapeBotActionResponses Shape = "botActionResponses"
	ShapeFlashcards         Shape = "flashcards"
)

// Level returns the content level card cells of this shape are reduced at.
func (s Shape) Level() Level {
	switch s {
	case ShapeStatements:
		return LevelCardStatements
	case ShapeQuiz:
		return LevelCardQuiz
	case ShapeQuestions:
		return LevelCardQuestion
	case ShapeMatchPairs:
		return LevelCardMatch
	case ShapeMatchMatrix:
		return LevelCardMatrix
	case ShapeBotActionResponses:
		return LevelCardBotResponse
	case ShapeFlashcards:
		return LevelCardFlashcard
	default:
		return LevelCardElement
	}
}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	switch s {
	case ShapeElements, ShapeStatements, ShapeQuiz, ShapeQuestions,
		ShapeMatchPairs, ShapeMatchMatrix, ShapeBotActionResponses, ShapeFlashcards:
		return true
	}
	return false
}

// VariantConfig is the configuration of one card-set variant position.
type VariantConfig struct {
	Tags        TagMap
	BodyAllowed bool
}

// CardSetConfig describes the card grid of a bit type.
type CardSetConfig struct {
	Name  string
	Shape Shape

	// Sides holds the variant configurations of each side. The last side and,
	// within a side, the last variant repeat for higher indices.
	Sides [][]*VariantConfig
}

// Variant returns the configuration for the given side and variant index.
func (c *CardSetConfig) Variant(side, variant int) *VariantConfig {
	if c == nil || len(c.Sides) == 0 {
		return nil
	}
	variants := c.Sides[clamp(side, len(c.Sides))]
	if len(variants) == 0 {
		return nil
	}
	return variants[clamp(variant, len(variants))]
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// TrueFalseMode is what true/false chains at bit level build for a bit type.
type TrueFalseMode string

const (
	TrueFalseSelect     TrueFalseMode = "select"
	TrueFalseHighlight  TrueFalseMode = "highlight"
	TrueFalseStatement  TrueFalseMode = "statement"
	TrueFalseStatements TrueFalseMode = "statements"
	TrueFalseChoices    TrueFalseMode = "choices"
	TrueFalseResponses  TrueFalseMode = "responses"
)

// ExampleType is the value type of a bit's default example.
type ExampleType string

const (
	ExampleString  ExampleType = "string"
	ExampleBoolean ExampleType = "boolean"
)

// BitTypeMetadata is the configuration of one bit type.
type BitTypeMetadata struct {
	Name    string
	Parent  string
	Aliases []string

	Tags TagMap

	ResourceAttachmentAllowed bool
	ResourceType              string

	CardSet *CardSetConfig

	BodyAllowed   bool
	FooterAllowed bool

	TrueFalse   TrueFalseMode
	RootExample ExampleType

	// Defaults are property values forced onto every bit of this type.
	Defaults map[string]string

	// Owns lists push-down properties that stay at bit level for this type.
	Owns []string
}

// OwnsProperty reports whether the bit type keeps name at bit level.
func (m *BitTypeMetadata) OwnsProperty(name string) bool {
	for _, o := range m.Owns {
		if o == name {
			return true
		}
	}
	return false
}

// Shape returns the card-set shape, or "" when the bit has no card set.
func (m *BitTypeMetadata) Shape() Shape {
	if m.CardSet == nil {
		return ""
	}
	return m.CardSet.Shape
}

// Registry is the immutable bit-type table. It is safe for concurrent use.
type Registry struct {
	bits          map[string]*BitTypeMetadata
	aliases       map[string]string
	cardSets      map[string]*CardSetConfig
	textFormats   []string
	resourceTypes []string
	defaultFormat string
}

// Lookup returns the metadata of bitType, resolving aliases.
func (r *Registry) Lookup(bitType string) (*BitTypeMetadata, bool) {
	name := strings.TrimSpace(bitType)
	if root, ok := r.aliases[name]; ok {
		name = root
	}
	m, ok := r.bits[name]
	return m, ok
}

// Canonical returns the root name of bitType, resolving aliases.
func (r *Registry) Canonical(bitType string) string {
	if root, ok := r.aliases[bitType]; ok {
		return root
	}
	return bitType
}

// IsOf reports whether bitType is ancestor or inherits from it.
func (r *Registry) IsOf(bitType, ancestor string) bool {
	m, ok := r.Lookup(bitType)
	for depth := 0; ok && depth < len(r.bits); depth++ {
		if m.Name == ancestor {
			return true
		}
		if m.Parent == "" {
			return false
		}
		m, ok = r.bits[m.Parent]
	}
	return false
}

// BitTypes returns every root bit type in sorted order.
func (r *Registry) BitTypes() []string {
	names := make([]string, 0, len(r.bits))
	for name := range r.bits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CardSet returns the named card-set configuration.
func (r *Registry) CardSet(name string) (*CardSetConfig, bool) {
	c, ok := r.cardSets[name]
	return c, ok
}

// IsTextFormat reports whether f is a supported text format.
func (r *Registry) IsTextFormat(f string) bool {
	return contains(r.textFormats, f)
}

// IsResourceType reports whether t is a supported resource type.
func (r *Registry) IsResourceType(t string) bool {
	return contains(r.resourceTypes, t)
}

// TextFormats returns the supported text formats.
func (r *Registry) TextFormats() []string {
	return append([]string(nil), r.textFormats...)
}

// ResourceTypes returns the supported resource types.
func (r *Registry) ResourceTypes() []string {
	return append([]string(nil), r.resourceTypes...)
}

// DefaultTextFormat is the format used when a bit header names none.
func (r *Registry) DefaultTextFormat() string {
	return r.defaultFormat
}

// TagsAt returns the legal tag set for bitType at the given card position.
// Outside a card set it returns the bit-level tags.
func (r *Registry) TagsAt(m *BitTypeMetadata, level Level, side, variant int) TagMap {
	if !level.InCard() {
		return m.Tags
	}
	v := m.CardSet.Variant(side, variant)
	if v == nil {
		return TagMap{}
	}
	return v.Tags
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
