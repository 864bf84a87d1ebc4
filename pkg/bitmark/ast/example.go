package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Example is an example value: either a string (gaps, pairs, matrix cells,
// flashcards) or a boolean (choices, responses, statements, select options,
// highlight texts).
type Example struct {
	Text string
	Bool *bool
}

// StringExample returns a string-typed example.
func StringExample(s string) *Example {
	return &Example{Text: s}
}

// BoolExample returns a boolean-typed example.
func BoolExample(b bool) *Example {
	return &Example{Bool: &b}
}

// IsBool reports whether the example is boolean-typed.
func (e *Example) IsBool() bool {
	return e != nil && e.Bool != nil
}

func (e Example) MarshalJSON() ([]byte, error) {
	if e.Bool != nil {
		return json.Marshal(*e.Bool)
	}
	return json.Marshal(e.Text)
}

func (e *Example) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		b := data[0] == 't'
		*e = Example{Bool: &b}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = Example{Text: s}
		return nil
	default:
		return fmt.Errorf("example must be a string or boolean, got %s", data)
	}
}

// Property is one unconfigured property and its values in declaration order.
type Property struct {
	Key    string
	Values []string
}

// ExtraProperties holds properties the bit type does not configure, in the
// order they were first declared.
type ExtraProperties []Property

// Append adds value to key, creating the key at the end when it is new.
func (ep *ExtraProperties) Append(key, value string) {
	for i := range *ep {
		if (*ep)[i].Key == key {
			(*ep)[i].Values = append((*ep)[i].Values, value)
			return
		}
	}
	*ep = append(*ep, Property{Key: key, Values: []string{value}})
}

// Get returns the values of key.
func (ep ExtraProperties) Get(key string) ([]string, bool) {
	for _, p := range ep {
		if p.Key == key {
			return p.Values, true
		}
	}
	return nil, false
}

// MarshalJSON writes the properties as an object whose keys keep their
// declaration order.
func (ep ExtraProperties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ep {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		values := p.Values
		if values == nil {
			values = []string{}
		}
		val, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (ep *ExtraProperties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("extraProperties must be an object")
	}

	var out ExtraProperties
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("extraProperties: unexpected key %v", tok)
		}
		var values []string
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("extraProperties %q: %w", key, err)
		}
		out = append(out, Property{Key: key, Values: values})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*ep = out
	return nil
}
