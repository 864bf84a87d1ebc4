// Package ast defines the document tree produced by the bitmark compiler.
//
// A Document holds an ordered list of Bit nodes. Each Bit carries its scalar
// and list properties, at most one resolved Resource, an optional Body made of
// ordered parts (text, gap, select, highlight, mark), an optional Footer and
// the field set of its card shape (elements, statements, quizzes, pairs, ...).
//
// # JSON
//
// The JSON form is part of the external contract:
//
//   - fields serialize in struct declaration order
//   - an absent property is omitted, never written as null or false
//   - tagged unions (Resource, BodyPart, Example) carry their own
//     MarshalJSON/UnmarshalJSON so a document round-trips byte for byte
//
// Empty values are pruned per node type by the builder. Where an empty value
// is meaningful (a gap's solutions list, an item's isCorrect flag) the field
// has no omitempty tag.
//
// # Traversal
//
//	err := ast.Walk(doc, visitor)
//
// Walk calls the visitor for every bit, resource and body part.
package ast
