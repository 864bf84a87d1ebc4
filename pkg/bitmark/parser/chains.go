package parser

import (
	"fmt"
	"path"
	"strings"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// headAndChain returns the chain head without its chain, followed by the
// chained tokens.
func headAndChain(tok token.Token) []token.Token {
	chain := tok.Chain
	tok.Chain = nil
	out := make([]token.Token, 0, len(chain)+1)
	out = append(out, tok)
	return append(out, chain...)
}

// buildGap reduces a gap chain into a gap body part.
func (s *session) buildGap(tok token.Token) *ast.Gap {
	acc := s.reduce(registry.LevelGapChain, headAndChain(tok))
	solutions := acc.Solutions
	if solutions == nil {
		solutions = []string{}
	}
	return &ast.Gap{
		Solutions:       solutions,
		Annotations:     acc.Annotations(),
		IsCaseSensitive: acc.IsCaseSensitive,
		ExampleFields:   acc.exampleFields(),
	}
}

// buildMark reduces a mark chain into a mark body part.
func (s *session) buildMark(tok token.Token) *ast.Mark {
	acc := s.reduce(registry.LevelMarkChain, headAndChain(tok))
	return &ast.Mark{
		Solution:      acc.Mark,
		Mark:          acc.MarkStyle,
		Annotations:   acc.Annotations(),
		ExampleFields: acc.exampleFields(),
	}
}

// trueFalseEntries splits a true/false chain at every true or false tag and
// reduces each segment on its own, so the tags written after an option
// belong to that option.
func (s *session) trueFalseEntries(tok token.Token) []TrueFalseEntry {
	var (
		entries []TrueFalseEntry
		segment []token.Token
	)
	emit := func() {
		if len(segment) == 0 {
			return
		}
		acc := s.reduce(registry.LevelTrueFalseChain, segment)
		segment = nil
		if len(acc.TrueFalse) == 0 {
			return
		}
		e := acc.TrueFalse[0]
		e.Annotations = acc.Annotations()
		e.Example = acc.Example
		e.DefaultExample = acc.DefaultExample
		entries = append(entries, e)
	}
	for _, t := range headAndChain(tok) {
		if t.Kind == token.True || t.Kind == token.False {
			emit()
		}
		segment = append(segment, t)
	}
	emit()
	return entries
}

func statementOf(e TrueFalseEntry) ast.Statement {
	return ast.Statement{
		Statement:     e.Text,
		IsCorrect:     e.IsCorrect,
		Annotations:   e.Annotations,
		ExampleFields: e.exampleFields(),
	}
}

func choiceOf(e TrueFalseEntry) ast.Choice {
	return ast.Choice{
		Choice:        e.Text,
		IsCorrect:     e.IsCorrect,
		Annotations:   e.Annotations,
		ExampleFields: e.exampleFields(),
	}
}

func responseOf(e TrueFalseEntry) ast.Response {
	return ast.Response{
		Response:      e.Text,
		IsCorrect:     e.IsCorrect,
		Annotations:   e.Annotations,
		ExampleFields: e.exampleFields(),
	}
}

func buildSelect(entries []TrueFalseEntry) *ast.Select {
	sel := &ast.Select{Options: make([]ast.SelectOption, 0, len(entries))}
	for _, e := range entries {
		sel.Options = append(sel.Options, ast.SelectOption{
			Text:          e.Text,
			IsCorrect:     e.IsCorrect,
			Annotations:   e.Annotations,
			ExampleFields: e.exampleFields(),
		})
	}
	return sel
}

func buildHighlight(entries []TrueFalseEntry) *ast.Highlight {
	h := &ast.Highlight{Texts: make([]ast.HighlightText, 0, len(entries))}
	for _, e := range entries {
		h.Texts = append(h.Texts, ast.HighlightText{
			Text:          e.Text,
			IsCorrect:     e.IsCorrect,
			Annotations:   e.Annotations,
			ExampleFields: e.exampleFields(),
		})
	}
	return h
}

// book handles [@book:...] and its chained references.
func (r *reducer) book(tok token.Token) {
	r.acc.Book = strings.TrimSpace(tok.Text)
	if len(tok.Chain) == 0 {
		return
	}
	acc := r.s.reduce(registry.LevelBookChain, tok.Chain)
	r.acc.Reference = acc.Reference
	r.acc.ReferenceEnd = acc.ReferenceEnd
}

// partner handles [@partner:...] and its chained avatar image. The first
// image is the avatar; every other resource is excess.
func (r *reducer) partner(tok token.Token) {
	p := &ast.Partner{Name: strings.TrimSpace(tok.Text)}
	if len(tok.Chain) > 0 {
		acc := r.s.reduce(registry.LevelPartnerChain, tok.Chain)
		var excess []*ast.Resource
		for _, res := range acc.Resources {
			if p.AvatarImage == nil && res.Type == ast.ResourceImage {
				p.AvatarImage = res.Resource
				continue
			}
			excess = append(excess, res.Resource)
		}
		if len(excess) > 0 {
			r.warn(bmErrors.CategoryResource,
				fmt.Sprintf("%d excess resource(s) present in the partner. The partner avatar type is '&%s'", len(excess), ast.ResourceImage),
				tok)
			r.acc.ExcessResources = append(r.acc.ExcessResources, excess...)
		}
		r.acc.ExcessResources = append(r.acc.ExcessResources, acc.ExcessResources...)
	}
	r.acc.Partner = p
}

// buildResource builds a resource from its tag and property chain.
func (s *session) buildResource(tok token.Token) *ast.Resource {
	res := &ast.Resource{Type: tok.Key}
	res.SetLocation(strings.TrimSpace(tok.Text))

	if len(tok.Chain) > 0 {
		acc := s.reduce(registry.LevelResourceChain, tok.Chain)
		res.Width = acc.Width
		res.Height = acc.Height
		res.Alt = acc.Alt
		res.Caption = acc.Caption
		res.Format = acc.Format
		res.License = acc.License
		res.Copyright = acc.Copyright
		res.Provider = acc.Provider
		res.Duration = acc.Duration
	}
	if res.Format == "" && !res.IsLink() && res.Type != ast.ResourceArticle {
		res.Format = formatOf(res.Location())
	}
	return res
}

// formatOf returns the lower-case file extension of a resource location,
// ignoring any query or fragment.
func formatOf(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	ext := path.Ext(location)
	if len(ext) < 2 {
		return ""
	}
	return strings.ToLower(ext[1:])
}
