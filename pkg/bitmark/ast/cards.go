package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Statement is a true/false statement.
type Statement struct {
	Statement string `json:"statement"`
	IsCorrect bool   `json:"isCorrect"`
	Annotations
	ExampleFields
}

// Choice is an option of a multiple-choice question.
type Choice struct {
	Choice    string `json:"choice"`
	IsCorrect bool   `json:"isCorrect"`
	Annotations
	ExampleFields
}

// Response is an option of a multiple-response question.
type Response struct {
	Response  string `json:"response"`
	IsCorrect bool   `json:"isCorrect"`
	Annotations
	ExampleFields
}

// Quiz is one card of a multiple-choice or multiple-response bit.
type Quiz struct {
	Choices   []Choice   `json:"choices,omitempty"`
	Responses []Response `json:"responses,omitempty"`
	Annotations
	IsExample bool `json:"isExample,omitempty"`
}

// Question is one question of an interview bit.
type Question struct {
	Question             string `json:"question"`
	SampleSolution       string `json:"sampleSolution,omitempty"`
	ReasonableNumOfChars *int   `json:"reasonableNumOfChars,omitempty"`
	LongAnswer           *bool  `json:"longAnswer,omitempty"`
	Annotations
	ExampleFields
}

// Heading labels the key and value columns of a match or matrix bit.
type Heading struct {
	ForKeys   string
	ForValues []string

	// Single encodes forValues as one string, its last element. Match
	// headings are single; match-matrix headings keep one value per column.
	Single bool
}

type headingJSON struct {
	ForKeys   string          `json:"forKeys"`
	ForValues json.RawMessage `json:"forValues"`
}

func (h Heading) MarshalJSON() ([]byte, error) {
	var values any = h.ForValues
	switch {
	case h.Single:
		last := ""
		if n := len(h.ForValues); n > 0 {
			last = h.ForValues[n-1]
		}
		values = last
	case h.ForValues == nil:
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return json.Marshal(headingJSON{ForKeys: h.ForKeys, ForValues: raw})
}

func (h *Heading) UnmarshalJSON(data []byte) error {
	var raw headingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = Heading{ForKeys: raw.ForKeys}

	values := bytes.TrimSpace(raw.ForValues)
	switch {
	case len(values) == 0 || bytes.Equal(values, []byte("null")):
		return nil
	case values[0] == '"':
		var s string
		if err := json.Unmarshal(values, &s); err != nil {
			return err
		}
		h.ForValues, h.Single = []string{s}, true
		return nil
	default:
		if err := json.Unmarshal(values, &h.ForValues); err != nil {
			return fmt.Errorf("heading forValues must be a string or an array: %w", err)
		}
		return nil
	}
}

// Pair is one key and its matching values.
type Pair struct {
	Key      string    `json:"key,omitempty"`
	KeyAudio *Resource `json:"keyAudio,omitempty"`
	KeyImage *Resource `json:"keyImage,omitempty"`
	Values   []string  `json:"values"`
	Annotations
	IsCaseSensitive *bool `json:"isCaseSensitive,omitempty"`
	ExampleFields
}

// Matrix is one row of a match-matrix bit.
type Matrix struct {
	Key   string       `json:"key"`
	Cells []MatrixCell `json:"cells"`
	Annotations
	IsExample bool `json:"isExample,omitempty"`
}

// MatrixCell is one cell of a Matrix row.
type MatrixCell struct {
	Values []string `json:"values"`
	Annotations
	IsCaseSensitive *bool `json:"isCaseSensitive,omitempty"`
	ExampleFields
}

// BotResponse is one response option of a bot action.
type BotResponse struct {
	Response string `json:"response"`
	Reaction string `json:"reaction"`
	Feedback string `json:"feedback"`
	Annotations
	ExampleFields
}

// Flashcard is one question/answer card.
type Flashcard struct {
	Question           string   `json:"question"`
	Answer             string   `json:"answer,omitempty"`
	AlternativeAnswers []string `json:"alternativeAnswers,omitempty"`
	Annotations
	ExampleFields
}
