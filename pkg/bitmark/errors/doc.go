// Package errors provides the diagnostics recorded while compiling bitmark.
//
// Compilation never fails on malformed input. Instead every problem is
// recorded as a Diagnostic in a per-document DiagnosticList and the compiler
// carries on with a best-effort interpretation. Only a Diagnostic of
// category CategoryFatal removes a bit from the output.
//
// # Categories
//
// CategoryFatal: unparseable bit-type header; the bit is dropped
//
// CategoryTagLegality: tag, property or resource not valid at its position
//
// CategoryCardinality: tag repeated past its configured maximum
//
// CategoryResource: declared resource type absent, or surplus resources
//
// CategoryRepair: field coerced or dropped by the final repair pass
//
// CategorySyntax: text that looks like a misplaced divider, deprecated syntax
//
// # Basic Usage
//
//	diags := errors.NewDiagnosticList("quiz.bitmark")
//	diags.Warn(errors.CategoryTagLegality, "'hint' is not valid here. It will be ignored", tok.Span, "")
//
//	for _, d := range diags.Warnings() {
//	    fmt.Println(d.Error())
//	}
package errors
