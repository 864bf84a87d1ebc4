// Command bitmark compiles bitmark markup into JSON documents.
//
// Usage:
//
//	# Compile a file to JSON on stdout
//	bitmark parse lesson.bitmark
//
//	# Compile every source below a directory with a text summary
//	bitmark parse --format text lessons/
//
//	# Fail a CI job when any source has errors
//	bitmark lint --strict lessons/
//
//	# Recompile on change, storing results and serving metrics
//	bitmark watch --metrics-addr 127.0.0.1:9464 lessons/
//
//	# Inspect the bit type registry
//	bitmark registry show cloze
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
