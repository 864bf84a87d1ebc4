// Package parser compiles bitmark token streams into document trees.
//
// The parser receives its tokenizer by injection. Each bit goes through four
// stages:
//
//  1. The header is resolved against the registry (bit type, text format,
//     resource type, bit level). An unknown bit type is the only fatal case:
//     the bit is dropped and a document-level error is recorded.
//  2. The bit content is validated (see package validator).
//  3. The validated tokens are reduced into an Accumulator in a single
//     forward pass. A card set is rebuilt as a card/side/variant grid, each
//     cell is tokenized again, validated and reduced at the card level, and
//     the results are interpreted by the card-set shape of the bit type.
//  4. The builder assembles the ast.Bit: resource resolution, defaults,
//     push-down of per-item properties, example propagation and repair.
//
// # Basic Usage
//
//	p := parser.NewParser(registry.Default()).WithTokenizer(lexer.Tokenize)
//	doc, diags, err := p.Parse(src)
//	if err != nil {
//	    log.Fatal(err) // the tokenizer rejected the document
//	}
//	for _, d := range diags.Warnings() {
//	    fmt.Print(d.Error())
//	}
//
// Parse never rejects a document for its content. Malformed markup yields a
// best-effort tree plus diagnostics, attached to each bit as parser warnings
// and collected in the returned list.
package parser
