package errors

import (
	"fmt"
	"strings"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	"bitmark-hq/compiler/pkg/bitmark/token"
)

// Category classifies a diagnostic.
type Category string

const (
	CategoryFatal       Category = "fatal"        // Unparseable bit header, bit dropped
	CategoryTagLegality Category = "tag-legality" // Tag not valid at this level
	CategoryCardinality Category = "cardinality"  // Tag repeated past its maximum
	CategoryResource    Category = "resource"     // Resource type mismatch or surplus
	CategoryRepair      Category = "repair"       // Field coerced or dropped
	CategorySyntax      Category = "syntax"       // Suspicious or deprecated markup
)

// Severity is the severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one problem found while compiling.
type Diagnostic struct {
	Category   Category
	Severity   Severity
	Message    string
	SourceText string       // Markup the diagnostic refers to (optional)
	Location   ast.Location // Start of the offending markup
	Previous   ast.Location // Earlier occurrence, for cardinality warnings
	Context    string       // Surrounding source lines (optional)
	Suggestion string       // Suggested fix (optional)
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", d.Category, d.Message))

	if d.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", d.Location.String()))
	}
	if d.Previous.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> previous: %s\n", d.Previous.String()))
	}

	if d.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(d.Context)
		sb.WriteString("  |\n")
	}

	if d.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", d.Suggestion))
	}

	return sb.String()
}

// ToAST converts the diagnostic to its document tree form.
func (d *Diagnostic) ToAST() ast.Diagnostic {
	out := ast.Diagnostic{
		Message:    d.Message,
		SourceText: d.SourceText,
	}
	if d.Previous.IsValid() {
		out.Message += fmt.Sprintf(" (previous at %s)", d.Previous.String())
	}
	if d.Suggestion != "" {
		out.Message += " " + d.Suggestion
	}
	if d.Location.IsValid() {
		loc := d.Location
		out.Location = &loc
	}
	return out
}

// DiagnosticList accumulates the diagnostics of one compilation unit.
type DiagnosticList struct {
	File        string
	Diagnostics []*Diagnostic
}

// NewDiagnosticList creates an empty list for diagnostics in file.
func NewDiagnosticList(file string) *DiagnosticList {
	return &DiagnosticList{
		File:        file,
		Diagnostics: make([]*Diagnostic, 0),
	}
}

// Location converts a token position to a document location in the list's
// file.
func (dl *DiagnosticList) Location(pos token.Position) ast.Location {
	if !pos.IsValid() {
		return ast.Location{}
	}
	return ast.Location{File: dl.File, Line: pos.Line, Column: pos.Column}
}

// Add appends a diagnostic to the list.
func (dl *DiagnosticList) Add(d *Diagnostic) {
	dl.Diagnostics = append(dl.Diagnostics, d)
}

// Warn records a warning.
func (dl *DiagnosticList) Warn(cat Category, message string, span token.Span, sourceText string) {
	dl.Add(&Diagnostic{
		Category:   cat,
		Severity:   SeverityWarning,
		Message:    message,
		SourceText: sourceText,
		Location:   dl.Location(span.Start),
	})
}

// WarnWithSuggestion records a warning with a suggested fix.
func (dl *DiagnosticList) WarnWithSuggestion(cat Category, message string, span token.Span, sourceText, suggestion string) {
	dl.Add(&Diagnostic{
		Category:   cat,
		Severity:   SeverityWarning,
		Message:    message,
		SourceText: sourceText,
		Location:   dl.Location(span.Start),
		Suggestion: suggestion,
	})
}

// WarnRepeated records a cardinality warning citing the previous occurrence.
func (dl *DiagnosticList) WarnRepeated(message string, span, previous token.Span, sourceText string) {
	dl.Add(&Diagnostic{
		Category:   CategoryCardinality,
		Severity:   SeverityWarning,
		Message:    message,
		SourceText: sourceText,
		Location:   dl.Location(span.Start),
		Previous:   dl.Location(previous.Start),
	})
}

// Fatal records an error that removes the bit from the output.
func (dl *DiagnosticList) Fatal(message string, span token.Span, sourceText string) {
	dl.Add(&Diagnostic{
		Category:   CategoryFatal,
		Severity:   SeverityError,
		Message:    message,
		SourceText: sourceText,
		Location:   dl.Location(span.Start),
	})
}

// Merge appends every diagnostic of other.
func (dl *DiagnosticList) Merge(other *DiagnosticList) {
	if other == nil {
		return
	}
	dl.Diagnostics = append(dl.Diagnostics, other.Diagnostics...)
}

// HasErrors reports whether the list contains any error-severity diagnostic.
func (dl *DiagnosticList) HasErrors() bool {
	for _, d := range dl.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics in the list.
func (dl *DiagnosticList) Count() int {
	return len(dl.Diagnostics)
}

// Error implements the error interface.
func (dl *DiagnosticList) Error() string {
	if dl.Count() == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d diagnostic(s):\n\n", dl.Count()))

	for i, d := range dl.Diagnostics {
		sb.WriteString(fmt.Sprintf("Diagnostic %d:\n", i+1))
		sb.WriteString(d.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil unless the list contains an error-severity diagnostic.
func (dl *DiagnosticList) ToError() error {
	if !dl.HasErrors() {
		return nil
	}
	return dl
}

// ByCategory returns all diagnostics of the given category.
func (dl *DiagnosticList) ByCategory(cat Category) []*Diagnostic {
	var result []*Diagnostic
	for _, d := range dl.Diagnostics {
		if d.Category == cat {
			result = append(result, d)
		}
	}
	return result
}

// HasCategory reports whether the list contains a diagnostic of cat.
func (dl *DiagnosticList) HasCategory(cat Category) bool {
	for _, d := range dl.Diagnostics {
		if d.Category == cat {
			return true
		}
	}
	return false
}

// Warnings returns the warning-severity diagnostics.
func (dl *DiagnosticList) Warnings() []*Diagnostic {
	return dl.bySeverity(SeverityWarning)
}

// Errors returns the error-severity diagnostics.
func (dl *DiagnosticList) Errors() []*Diagnostic {
	return dl.bySeverity(SeverityError)
}

func (dl *DiagnosticList) bySeverity(s Severity) []*Diagnostic {
	var result []*Diagnostic
	for _, d := range dl.Diagnostics {
		if d.Severity == s {
			result = append(result, d)
		}
	}
	return result
}

// ToAST converts the given diagnostics to their document tree form. It
// returns nil for an empty input.
func ToAST(ds []*Diagnostic) []ast.Diagnostic {
	if len(ds) == 0 {
		return nil
	}
	out := make([]ast.Diagnostic, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ToAST())
	}
	return out
}
