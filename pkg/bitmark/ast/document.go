package ast

// Document is the root of a compiled markup document.
type Document struct {
	Bits []*Bit `json:"bits"`

	// Errors records the bits dropped because their header could not be
	// parsed.
	Errors []Diagnostic `json:"errors,omitempty"`
}

// Diagnostic is a warning or error attached to a bit or document.
type Diagnostic struct {
	Message    string    `json:"message"`
	SourceText string    `json:"sourceText,omitempty"`
	Location   *Location `json:"location,omitempty"`
}

// ParserInfo carries the diagnostics recorded while compiling a bit.
type ParserInfo struct {
	Warnings        []Diagnostic `json:"warnings,omitempty"`
	Errors          []Diagnostic `json:"errors,omitempty"`
	ExcessResources []*Resource  `json:"excessResources,omitempty"`
}

// Empty reports whether the parser info has nothing to report.
func (p *ParserInfo) Empty() bool {
	return p == nil || (len(p.Warnings) == 0 && len(p.Errors) == 0 && len(p.ExcessResources) == 0)
}

// Annotations are the item/lead/hint/instruction fields shared by most nodes.
type Annotations struct {
	Item        string `json:"item,omitempty"`
	Lead        string `json:"lead,omitempty"`
	Hint        string `json:"hint,omitempty"`
	Instruction string `json:"instruction,omitempty"`
}

// ExampleFields mark a node as an example and carry its example value.
type ExampleFields struct {
	IsExample bool     `json:"isExample,omitempty"`
	Example   *Example `json:"example,omitempty"`

	// defaultExample is set when the node was marked with a bare [@example]
	// and its example value is derived later.
	defaultExample bool
}

// SetDefaultExample marks the node as carrying a bare default example.
func (e *ExampleFields) SetDefaultExample(v bool) { e.defaultExample = v }

// IsDefaultExample reports whether the node carries a bare default example.
func (e *ExampleFields) IsDefaultExample() bool { return e.defaultExample }

// HasExample reports whether the node carries an example of any kind.
func (e *ExampleFields) HasExample() bool {
	return e.Example != nil || e.defaultExample
}

// Bit is one compiled learning item.
type Bit struct {
	Type         string `json:"type"`
	OriginalType string `json:"originalType,omitempty"`
	Format       string `json:"format"`
	BitLevel     int    `json:"bitLevel,omitempty"`

	ID                   []string `json:"id,omitempty"`
	ExternalID           []string `json:"externalId,omitempty"`
	AIGenerated          bool     `json:"aiGenerated,omitempty"`
	Language             []string `json:"language,omitempty"`
	Tags                 []string `json:"tag,omitempty"`
	Icon                 string   `json:"icon,omitempty"`
	LabelTrue            string   `json:"labelTrue,omitempty"`
	LabelFalse           string   `json:"labelFalse,omitempty"`
	Book                 string   `json:"book,omitempty"`
	Reference            string   `json:"reference,omitempty"`
	ReferenceEnd         string   `json:"referenceEnd,omitempty"`
	Partner              *Partner `json:"partner,omitempty"`
	ReasonableNumOfChars *int     `json:"reasonableNumOfChars,omitempty"`
	SampleSolution       string   `json:"sampleSolution,omitempty"`

	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Anchor   string `json:"anchor,omitempty"`

	Annotations
	ExampleFields

	Resource *Resource `json:"resource,omitempty"`
	Body     *Body     `json:"body,omitempty"`

	Elements     []string      `json:"elements,omitempty"`
	Flashcards   []Flashcard   `json:"flashcards,omitempty"`
	Statement    *Statement    `json:"statement,omitempty"`
	Statements   []Statement   `json:"statements,omitempty"`
	Choices      []Choice      `json:"choices,omitempty"`
	Responses    []Response    `json:"responses,omitempty"`
	Quizzes      []Quiz        `json:"quizzes,omitempty"`
	Questions    []Question    `json:"questions,omitempty"`
	Heading      *Heading      `json:"heading,omitempty"`
	Pairs        []Pair        `json:"pairs,omitempty"`
	Matrix       []Matrix      `json:"matrix,omitempty"`
	BotResponses []BotResponse `json:"botResponses,omitempty"`

	Footer *Footer `json:"footer,omitempty"`

	ExtraProperties ExtraProperties `json:"extraProperties,omitempty"`

	Parser *ParserInfo `json:"parser,omitempty"`
}

// Partner is the conversation partner of a conversation bit.
type Partner struct {
	Name        string    `json:"name"`
	AvatarImage *Resource `json:"avatarImage,omitempty"`
}

// Footer is the text following a bit's card set.
type Footer struct {
	Text string `json:"footerText"`
}
