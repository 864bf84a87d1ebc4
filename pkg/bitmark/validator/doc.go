// Package validator enforces tag legality and occurrence limits on bitmark
// token lists.
//
// Validation runs before reduction, once per bit and once per card-set cell.
// It never fails: illegal tags are dropped, unknown properties and resources
// are kept for later handling, and repeated tags keep only the most recent
// occurrences. Each decision is recorded as a warning.
//
// A chain token whose tag has no chain configuration at the current level is
// unchained: its chained tags are spliced into the list right after it and
// validated as if they had been written there. This turns unsupported nesting
// into a flatter interpretation instead of rejecting the input.
package validator
