package parser

import (
	"fmt"
	"strconv"
	"strings"

	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// propertySpec describes where a configured property is stored. The type of
// the field selects the cast: *string keeps the trimmed value, *[]string
// appends it, **bool and **int parse it.
type propertySpec struct {
	field func(a *Accumulator) any

	// inverted stores the negated boolean, as [@shortAnswer] sets
	// longAnswer to false.
	inverted bool
}

var propertyTable = map[string]propertySpec{
	"id":         {field: func(a *Accumulator) any { return &a.ID }},
	"externalId": {field: func(a *Accumulator) any { return &a.ExternalID }},
	"language":   {field: func(a *Accumulator) any { return &a.Language }},
	"tag":        {field: func(a *Accumulator) any { return &a.Tags }},

	"aiGenerated": {field: func(a *Accumulator) any { return &a.AIGenerated }},
	"icon":        {field: func(a *Accumulator) any { return &a.Icon }},
	"labelTrue":   {field: func(a *Accumulator) any { return &a.LabelTrue }},
	"labelFalse":  {field: func(a *Accumulator) any { return &a.LabelFalse }},

	"isCaseSensitive":      {field: func(a *Accumulator) any { return &a.IsCaseSensitive }},
	"reasonableNumOfChars": {field: func(a *Accumulator) any { return &a.ReasonableNumOfChars }},
	"longAnswer":           {field: func(a *Accumulator) any { return &a.LongAnswer }},
	"shortAnswer":          {field: func(a *Accumulator) any { return &a.LongAnswer }, inverted: true},
	"sampleSolution":       {field: func(a *Accumulator) any { return &a.SampleSolution }},
	"reaction":             {field: func(a *Accumulator) any { return &a.Reaction }},
	"mark":                 {field: func(a *Accumulator) any { return &a.MarkStyle }},

	"width":     {field: func(a *Accumulator) any { return &a.Width }},
	"height":    {field: func(a *Accumulator) any { return &a.Height }},
	"alt":       {field: func(a *Accumulator) any { return &a.Alt }},
	"caption":   {field: func(a *Accumulator) any { return &a.Caption }},
	"format":    {field: func(a *Accumulator) any { return &a.Format }},
	"license":   {field: func(a *Accumulator) any { return &a.License }},
	"copyright": {field: func(a *Accumulator) any { return &a.Copyright }},
	"provider":  {field: func(a *Accumulator) any { return &a.Provider }},
	"duration":  {field: func(a *Accumulator) any { return &a.Duration }},
}

// applyProperty stores a property value in acc. Properties without a field
// are kept as extra properties. tok locates the warnings for values that do
// not cast.
func (s *session) applyProperty(acc *Accumulator, key, raw string, tok token.Token) {
	value := strings.TrimSpace(raw)
	def, ok := propertyTable[key]
	if !ok {
		acc.ExtraProperties.Append(key, value)
		return
	}

	switch f := def.field(acc).(type) {
	case *string:
		*f = value
	case *[]string:
		*f = append(*f, value)
	case **bool:
		b, ok := parseBool(value)
		if !ok {
			s.castWarning(key, value, "a boolean", tok)
			return
		}
		if def.inverted {
			b = !b
		}
		*f = &b
	case **int:
		n, err := strconv.Atoi(value)
		if err != nil {
			s.castWarning(key, value, "a number", tok)
			return
		}
		*f = &n
	}
}

func (s *session) castWarning(key, value, want string, tok token.Token) {
	s.diags.Warn(bmErrors.CategoryRepair,
		fmt.Sprintf("'@%s' value '%s' is not %s. It will be ignored", key, value, want),
		tok.Span, tok.Markup())
}

// parseBool casts a property value. A bare property is true.
func parseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "", "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	}
	return false, false
}
