package errors

import (
	"fmt"
	"strings"

	"bitmark-hq/compiler/pkg/bitmark/ast"
)

// ExtractContext returns the lines of source surrounding location, with the
// offending line marked and a caret under the offending column.
func ExtractContext(source string, location ast.Location, contextLines int) string {
	if !location.IsValid() || source == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	errorLine := location.Line - 1
	if errorLine >= len(lines) {
		return ""
	}
	startLine := errorLine - contextLines
	endLine := errorLine + contextLines

	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	var sb strings.Builder
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		lineNumStr := fmt.Sprintf("%*d", maxLineNumWidth, i+1)
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}

		sb.WriteString(fmt.Sprintf("%s %s | %s\n", prefix, lineNumStr, lines[i]))

		if i == errorLine && location.Column > 0 {
			padding := strings.Repeat(" ", location.Column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", maxLineNumWidth), padding))
		}
	}

	return sb.String()
}

// WithContext fills the Context of every diagnostic in the list from source.
func (dl *DiagnosticList) WithContext(source string, contextLines int) *DiagnosticList {
	for _, d := range dl.Diagnostics {
		if d.Location.IsValid() && d.Context == "" {
			d.Context = ExtractContext(source, d.Location, contextLines)
		}
	}
	return dl
}
