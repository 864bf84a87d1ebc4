package parser

import (
	"bitmark-hq/compiler/pkg/bitmark/ast"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// Accumulator is the result of reducing one token list. Every field is
// optional: nil pointers, nil slices, nil maps and empty strings mean the
// markup did not set the field.
type Accumulator struct {
	// Standard properties
	ID          []string
	ExternalID  []string
	Language    []string
	Tags        []string
	AIGenerated *bool
	Icon        string
	LabelTrue   string
	LabelFalse  string

	// Typed properties
	IsCaseSensitive      *bool
	ReasonableNumOfChars *int
	LongAnswer           *bool
	SampleSolution       string
	Reaction             string
	MarkStyle            string

	// Resource chain properties
	Width     *int
	Height    *int
	Alt       string
	Caption   string
	Format    string
	License   string
	Copyright string
	Provider  string
	Duration  string

	// Tags
	Item         string
	Lead         string
	Hint         string
	Instruction  string
	Anchor       string
	Reference    string
	ReferenceEnd string
	Titles       map[int]string

	// Example is an explicit example value. DefaultExample records a bare
	// [@example] whose value is derived when the tree is built.
	Example        *ast.Example
	DefaultExample bool

	// Chain heads
	Book      string
	Partner   *ast.Partner
	Solutions []string
	Mark      string
	TrueFalse []TrueFalseEntry

	// Built by true/false chains at bit level
	Statement  *ast.Statement
	Statements []ast.Statement
	Choices    []ast.Choice
	Responses  []ast.Response

	Resources       []LocatedResource
	ExcessResources []*ast.Resource
	ExtraProperties ast.ExtraProperties

	// Body holds the bit body. CardBody holds the leftover text of a card
	// cell.
	Body     []ast.BodyPart
	CardBody string
	Footer   string

	// CardSet is the raw card set, rebuilt into a grid after reduction.
	CardSet *token.Token

	itemLeads int
}

// TrueFalseEntry is one true or false option together with the tags chained
// to it.
type TrueFalseEntry struct {
	Text      string
	IsCorrect bool
	ast.Annotations
	Example        *ast.Example
	DefaultExample bool
}

// exampleFields converts the entry example to its tree form.
func (e TrueFalseEntry) exampleFields() ast.ExampleFields {
	return exampleFields(e.Example, e.DefaultExample)
}

// LocatedResource is a resource and the span it was declared at.
type LocatedResource struct {
	*ast.Resource
	Span token.Span
}

// Annotations returns the item, lead, hint and instruction of the
// accumulator.
func (a *Accumulator) Annotations() ast.Annotations {
	return ast.Annotations{
		Item:        a.Item,
		Lead:        a.Lead,
		Hint:        a.Hint,
		Instruction: a.Instruction,
	}
}

// Title returns the title of the given level.
func (a *Accumulator) Title(level int) (string, bool) {
	t, ok := a.Titles[level]
	return t, ok
}

// HasExample reports whether the accumulator carries an example of any kind.
func (a *Accumulator) HasExample() bool {
	return a.Example != nil || a.DefaultExample
}

func (a *Accumulator) exampleFields() ast.ExampleFields {
	return exampleFields(a.Example, a.DefaultExample)
}

func exampleFields(example *ast.Example, isDefault bool) ast.ExampleFields {
	f := ast.ExampleFields{Example: example}
	f.SetDefaultExample(isDefault)
	return f
}

// mergeAnnotations fills the empty fields of dst from src.
func mergeAnnotations(dst *ast.Annotations, src ast.Annotations) {
	if dst.Item == "" {
		dst.Item = src.Item
	}
	if dst.Lead == "" {
		dst.Lead = src.Lead
	}
	if dst.Hint == "" {
		dst.Hint = src.Hint
	}
	if dst.Instruction == "" {
		dst.Instruction = src.Instruction
	}
}

// mergeExample gives dst the example of src when dst has none.
func mergeExample(dst *ast.ExampleFields, src ast.ExampleFields) {
	if dst.HasExample() {
		return
	}
	dst.Example = src.Example
	dst.SetDefaultExample(src.IsDefaultExample())
}

// overlayAnnotations copies the non-empty fields of src over dst, so later
// cells win.
func overlayAnnotations(dst *ast.Annotations, src ast.Annotations) {
	if src.Item != "" {
		dst.Item = src.Item
	}
	if src.Lead != "" {
		dst.Lead = src.Lead
	}
	if src.Hint != "" {
		dst.Hint = src.Hint
	}
	if src.Instruction != "" {
		dst.Instruction = src.Instruction
	}
}

// overlayExample copies the example of src over dst when src has one.
func overlayExample(dst *ast.ExampleFields, src *Accumulator) {
	if src.HasExample() {
		*dst = src.exampleFields()
	}
}
