// Package bitmark compiles bitmark markup into JSON-ready document trees.
//
// Bitmark describes learning content as a sequence of bits. Each bit opens
// with a header naming its type ([.cloze], [.multiple-choice], ...) followed
// by tags, body text and an optional card set. The compiler resolves every bit
// against a registry of bit types, checks which tags are legal where, and
// builds one ast.Bit per bit.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - token: the token model shared by tokenizers and the parser
// - lexer: the reference tokenizer
// - registry: the embedded table of bit types, tags and card sets
// - validator: tag legality, cardinality and chain checks
// - parser: reduction, card set interpretation and tree building
// - ast: the compiled document and its JSON encoding
// - errors: diagnostics with categories, locations and suggestions
//
// # Basic Usage
//
//	res, err := bitmark.CompileString(ctx, "[.cloze]\nThe capital of France is [_Paris].")
//	if err != nil {
//	    log.Fatal(err) // the tokenizer rejected the document
//	}
//	for _, d := range res.Diagnostics.Warnings() {
//	    fmt.Print(d.Error())
//	}
//	out, _ := res.JSON(true)
//
// A Compiler is built once and shared between goroutines:
//
//	c := bitmark.NewCompiler(
//	    bitmark.WithMaxDepth(16),
//	    bitmark.WithRecorder(collector),
//	)
//	res, err := c.CompileFile(ctx, "lesson.bitmark")
//
// # Error Handling
//
// Compilation never fails on content. Only a bit with an unknown type is
// removed; it is reported in Document.Errors. Everything else is attached to
// the bit as a parser warning and collected in Result.Diagnostics.
//
// # Observability
//
// Each compilation opens a bitmark.compile span on the global tracer
// provider, with bitmark.tokenize and bitmark.parse children, and reports to
// the Recorder given with WithRecorder.
package bitmark
