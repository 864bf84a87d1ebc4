package validator

import (
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// DefaultMaxDepth is the default limit on chain nesting.
const DefaultMaxDepth = 32

// Validator validates token lists against a registry. It holds no per-parse
// state and is safe for concurrent use.
type Validator struct {
	reg      *registry.Registry
	maxDepth int
}

// New creates a validator reading tag configuration from reg.
func New(reg *registry.Registry) *Validator {
	return &Validator{reg: reg, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth sets the maximum chain nesting. Chains nested deeper are
// unchained with a warning.
func (v *Validator) WithMaxDepth(depth int) *Validator {
	if depth > 0 {
		v.maxDepth = depth
	}
	return v
}

// MaxDepth returns the configured chain nesting limit.
func (v *Validator) MaxDepth() int {
	return v.maxDepth
}

// ValidateBit validates the top-level content of a bit of type m.
func (v *Validator) ValidateBit(m *registry.BitTypeMetadata, tokens []token.Token, diags *bmErrors.DiagnosticList) []token.Token {
	p := &pass{
		v:          v,
		bitType:    m.Name,
		hasCardSet: m.CardSet != nil,
		diags:      diags,
	}
	return p.validate(registry.LevelBit, m.Tags, tokens, 0)
}

// ValidateCard validates the content of one card-set cell of a bit of type
// m, using the tag configuration of the given side and variant.
func (v *Validator) ValidateCard(m *registry.BitTypeMetadata, side, variant int, tokens []token.Token, diags *bmErrors.DiagnosticList) []token.Token {
	if m.CardSet == nil {
		return nil
	}
	p := &pass{v: v, bitType: m.Name, diags: diags}
	level := m.CardSet.Shape.Level()
	return p.validate(level, v.reg.TagsAt(m, level, side, variant), tokens, 0)
}

// Validate validates tokens at an arbitrary level against tags. It is the
// entry point used for chains built outside a bit context.
func (v *Validator) Validate(level registry.Level, bitType string, tags registry.TagMap, tokens []token.Token, diags *bmErrors.DiagnosticList) []token.Token {
	p := &pass{v: v, bitType: bitType, diags: diags}
	return p.validate(level, tags, tokens, 0)
}
