package parser

import (
	"fmt"
	"strings"

	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// Bit level limits.
const (
	MinBitLevel = 1
	MaxBitLevel = 2
)

// deprecatedTextFormat is accepted with a warning and read as the default
// format.
const deprecatedTextFormat = "bitmark--"

// Header is a resolved bit header.
type Header struct {
	Type         string // root bit type
	OriginalType string // alias as written, when it differs from Type
	Format       string
	ResourceType string
	Level        int

	Meta *registry.BitTypeMetadata
}

// ParseHeader resolves the header of a Bit token: "type[:format][&resource]"
// in its Text and the number of leading dots in its Level. It returns false
// when the bit type is unknown; that case is recorded as a fatal diagnostic
// and the bit must be dropped. Every other problem is repaired with a
// warning.
func ParseHeader(reg *registry.Registry, tok token.Token, diags *bmErrors.DiagnosticList) (*Header, bool) {
	raw := strings.TrimSpace(tok.Text)
	src := tok.Markup()

	var resourceType string
	if i := strings.Index(raw, token.ResourceKey("")); i >= 0 {
		resourceType = strings.TrimSpace(raw[i+1:])
		raw = raw[:i]
	}
	var format string
	if i := strings.Index(raw, token.PropertyValSep); i >= 0 {
		format = strings.TrimSpace(raw[i+1:])
		raw = raw[:i]
	}
	name := strings.TrimSpace(raw)

	meta, ok := reg.Lookup(name)
	if !ok {
		d := &bmErrors.Diagnostic{
			Category:   bmErrors.CategoryFatal,
			Severity:   bmErrors.SeverityError,
			Message:    fmt.Sprintf("Invalid bit type: '%s'", name),
			SourceText: src,
			Location:   diags.Location(tok.Span.Start),
		}
		if s := bmErrors.SuggestBitType(name, reg.BitTypes()); s != "" {
			d.Suggestion = s
		}
		diags.Add(d)
		return nil, false
	}

	h := &Header{
		Type:   meta.Name,
		Format: reg.DefaultTextFormat(),
		Level:  tok.Level,
		Meta:   meta,
	}
	if name != meta.Name {
		h.OriginalType = name
	}

	switch {
	case format == "":
	case format == deprecatedTextFormat:
		diags.Warn(bmErrors.CategorySyntax,
			fmt.Sprintf("%s text format is deprecated. Bit will be parsed as '%s'", deprecatedTextFormat, h.Format),
			tok.Span, src)
	case reg.IsTextFormat(format):
		h.Format = format
	default:
		diags.Warn(bmErrors.CategorySyntax,
			fmt.Sprintf("Invalid text format '%s', defaulting to '%s'", format, h.Format),
			tok.Span, src)
	}

	if resourceType != "" {
		if reg.IsResourceType(resourceType) {
			h.ResourceType = resourceType
		} else {
			diags.Warn(bmErrors.CategoryResource,
				fmt.Sprintf("Invalid resource type '%s', it will be ignored", resourceType),
				tok.Span, src)
		}
	}

	switch {
	case h.Level == 0:
		h.Level = MinBitLevel
	case h.Level > MaxBitLevel:
		diags.Warn(bmErrors.CategoryRepair,
			fmt.Sprintf("Bit level of %d too high, setting to max value of %d", h.Level, MaxBitLevel),
			tok.Span, src)
		h.Level = MaxBitLevel
	case h.Level < MinBitLevel:
		diags.Warn(bmErrors.CategoryRepair,
			fmt.Sprintf("Bit level of %d too low, setting to min value of %d", h.Level, MinBitLevel),
			tok.Span, src)
		h.Level = MinBitLevel
	}

	return h, true
}
