package parser

import (
	"strings"

	"bitmark-hq/compiler/pkg/bitmark/ast"
)

// bitExample is the example set at bit level, pushed down to every node
// that has none of its own.
type bitExample struct {
	isDefault bool
	value     *ast.Example
}

func (b bitExample) set() bool {
	return b.isDefault || b.value != nil
}

// stringExample settles the example of a string-typed node. own is the
// value a bare [@example] stands for.
func (b bitExample) stringExample(f *ast.ExampleFields, own string) {
	switch {
	case f.Example != nil:
	case f.IsDefaultExample() || b.isDefault:
		f.Example = ast.StringExample(own)
	case b.value != nil && !b.value.IsBool():
		f.Example = ast.StringExample(b.value.Text)
	}
	f.SetDefaultExample(false)
	f.IsExample = f.Example != nil
}

// boolExample settles the example of a boolean node. A node's own bare
// example, or one pushed down from the bit, takes the value of isCorrect.
// With onlyCorrect set, a pushed-down example reaches only correct nodes.
func (b bitExample) boolExample(f *ast.ExampleFields, isCorrect, onlyCorrect bool) {
	switch {
	case f.Example != nil && !f.Example.IsBool():
		if v, ok := parseExampleBool(f.Example.Text); ok {
			f.Example = ast.BoolExample(v)
		} else {
			f.Example = ast.BoolExample(isCorrect)
		}
	case f.Example != nil:
	case f.IsDefaultExample():
		f.Example = ast.BoolExample(isCorrect)
	case b.set() && (isCorrect || !onlyCorrect):
		f.Example = ast.BoolExample(isCorrect)
	}
	f.SetDefaultExample(false)
	f.IsExample = f.Example != nil
}

func parseExampleBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// propagateExamples pushes the bit-level example down the tree and sets
// isExample bottom-up: on every node carrying an example, on every container
// with such a node and on the bit if any node has one.
func propagateExamples(bit *ast.Bit) {
	b := bitExample{isDefault: bit.IsDefaultExample(), value: bit.Example}
	found := false
	mark := func(v bool) bool {
		found = found || v
		return v
	}

	if bit.Body != nil {
		for i := range bit.Body.Parts {
			p := &bit.Body.Parts[i]
			switch {
			case p.Gap != nil:
				b.stringExample(&p.Gap.ExampleFields, firstOf(p.Gap.Solutions))
				mark(p.Gap.IsExample)
			case p.Mark != nil:
				b.stringExample(&p.Mark.ExampleFields, p.Mark.Solution)
				mark(p.Mark.IsExample)
			case p.Select != nil:
				p.Select.IsExample = false
				for j := range p.Select.Options {
					o := &p.Select.Options[j]
					b.boolExample(&o.ExampleFields, o.IsCorrect, true)
					p.Select.IsExample = mark(o.IsExample) || p.Select.IsExample
				}
			case p.Highlight != nil:
				p.Highlight.IsExample = false
				for j := range p.Highlight.Texts {
					t := &p.Highlight.Texts[j]
					b.boolExample(&t.ExampleFields, t.IsCorrect, true)
					p.Highlight.IsExample = mark(t.IsExample) || p.Highlight.IsExample
				}
			}
		}
	}

	if bit.Statement != nil {
		b.boolExample(&bit.Statement.ExampleFields, bit.Statement.IsCorrect, false)
		mark(bit.Statement.IsExample)
	}
	for i := range bit.Statements {
		st := &bit.Statements[i]
		b.boolExample(&st.ExampleFields, st.IsCorrect, false)
		mark(st.IsExample)
	}
	for i := range bit.Choices {
		c := &bit.Choices[i]
		b.boolExample(&c.ExampleFields, c.IsCorrect, true)
		mark(c.IsExample)
	}
	for i := range bit.Responses {
		r := &bit.Responses[i]
		b.boolExample(&r.ExampleFields, r.IsCorrect, false)
		mark(r.IsExample)
	}
	for i := range bit.Quizzes {
		q := &bit.Quizzes[i]
		q.IsExample = false
		for j := range q.Choices {
			c := &q.Choices[j]
			b.boolExample(&c.ExampleFields, c.IsCorrect, true)
			q.IsExample = mark(c.IsExample) || q.IsExample
		}
		for j := range q.Responses {
			r := &q.Responses[j]
			b.boolExample(&r.ExampleFields, r.IsCorrect, false)
			q.IsExample = mark(r.IsExample) || q.IsExample
		}
	}

	for i := range bit.Flashcards {
		fc := &bit.Flashcards[i]
		b.stringExample(&fc.ExampleFields, fc.Answer)
		mark(fc.IsExample)
	}
	for i := range bit.Pairs {
		p := &bit.Pairs[i]
		b.stringExample(&p.ExampleFields, firstOf(p.Values))
		mark(p.IsExample)
	}
	for i := range bit.Matrix {
		m := &bit.Matrix[i]
		m.IsExample = false
		for j := range m.Cells {
			c := &m.Cells[j]
			b.stringExample(&c.ExampleFields, firstOf(c.Values))
			m.IsExample = mark(c.IsExample) || m.IsExample
		}
	}

	// Questions and bot responses only carry their own examples.
	for i := range bit.Questions {
		q := &bit.Questions[i]
		bitExample{}.stringExample(&q.ExampleFields, q.SampleSolution)
		mark(q.IsExample)
	}
	for i := range bit.BotResponses {
		r := &bit.BotResponses[i]
		bitExample{}.stringExample(&r.ExampleFields, r.Feedback)
		mark(r.IsExample)
	}

	bit.IsExample = b.set() || found
	bit.SetDefaultExample(false)
}
