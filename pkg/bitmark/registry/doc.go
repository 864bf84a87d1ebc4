// Package registry holds the bit-type configuration table of the compiler.
//
// The table maps every bit type to its legal tags (with occurrence limits and
// nested chain configurations), its card-set shape, its resource slot and its
// body/footer permissions. It is decoded once from the embedded
// registry.yaml and never mutated afterwards, so a single *Registry can be
// shared by any number of concurrent parses.
//
// # Lookups
//
//	reg := registry.Default()
//	meta, ok := reg.Lookup("cloze")
//	if !ok {
//	    // unknown bit type
//	}
//	tags := reg.TagsAt(meta, registry.LevelBit, 0, 0)
//
// Aliases resolve to their root type, and a bit type that inherits from
// another starts from a copy of its parent's configuration.
package registry
