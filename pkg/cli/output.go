package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"bitmark-hq/compiler/pkg/bitmark"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatJSON is the compiled document as JSON (default).
	FormatJSON OutputFormat = "json"
	// FormatText is a human-readable summary with diagnostics.
	FormatText OutputFormat = "text"
)

// ParseOutputFormat validates a --format value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatText:
		return f, nil
	default:
		return "", NewConfigError("format", fmt.Sprintf("unknown output format %q (want json or text)", s))
	}
}

// Formatter writes command output.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// NewFormatter creates a formatter for format.
func NewFormatter(format OutputFormat, pretty bool) Formatter {
	if format == FormatText {
		return &TextFormatter{}
	}
	return &JSONFormatter{Indent: pretty}
}

// JSONFormatter writes JSON. A *bitmark.Result is written as its compiled
// document.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to w as JSON.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	if res, ok := data.(*bitmark.Result); ok {
		data = res.Document
	}
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// TextFormatter writes a summary line per result followed by its
// diagnostics. Other values are printed with %v.
type TextFormatter struct{}

// FormatTo writes data to w as text.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	res, ok := data.(*bitmark.Result)
	if !ok {
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}

	if _, err := fmt.Fprintln(w, Summary(res)); err != nil {
		return err
	}
	for i, bit := range res.Document.Bits {
		if _, err := fmt.Fprintf(w, "  %d. %s\n", i+1, bit.Type); err != nil {
			return err
		}
	}
	return WriteDiagnostics(w, res.Diagnostics)
}

// Summary returns a one-line account of a compilation.
func Summary(res *bitmark.Result) string {
	name := res.File
	if name == "" {
		name = "<stdin>"
	}
	return fmt.Sprintf("%s: %s, %d dropped, %s, %s (%s)",
		name,
		plural(len(res.Document.Bits), "bit"),
		res.Dropped(),
		plural(len(res.Diagnostics.Warnings()), "warning"),
		plural(len(res.Diagnostics.Errors()), "error"),
		res.Duration.Round(time.Microsecond),
	)
}

// WriteDiagnostics writes each diagnostic with its severity.
func WriteDiagnostics(w io.Writer, diags *bmErrors.DiagnosticList) error {
	if diags == nil {
		return nil
	}
	for _, d := range diags.Diagnostics {
		if _, err := fmt.Fprintf(w, "%s: %s", d.Severity, d.Error()); err != nil {
			return err
		}
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
