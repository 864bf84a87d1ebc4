package ast

import "fmt"

// Location is a position in the source markup.
type Location struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`   // 1-based
	Column int    `json:"column"` // 1-based
}

// String returns "file:line:column", or "line:column" when the file is
// unknown, or "<unknown>" when the location carries no line.
func (l Location) String() string {
	if !l.IsValid() {
		return "<unknown>"
	}
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsValid reports whether the location carries line information.
func (l Location) IsValid() bool {
	return l.Line > 0
}
