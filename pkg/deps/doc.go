// Package deps models the dependencies a notebook's code cells import.
//
// # Overview
//
// A notebook does not ship a requirements file. nbenv discovers what it
// needs by scanning code cells for import statements and collecting the
// top-level module names into a [Set]. The set feeds the environment
// manifest consumed by an execution host.
//
// # Architecture
//
// The dependency discovery layer has two parts:
//
//  1. Extractors (subpackages): scan source text for one language
//  2. Sets (this package): deduplicate names in first-seen order
//
// Only Python is supported today, see [python].
//
// # Extracting Dependencies
//
//	set := deps.NewSet()
//	for _, code := range sources {
//	    set.Union(python.Extract(code))
//	}
//	fmt.Println(set.List()) // [numpy pandas]
//
// # Ordering
//
// [Set.List] returns names in insertion order of first appearance. Callers
// must treat the result as a set; order is stable only so that manifests
// and test output are reproducible.
//
// [python]: github.com/matzehuels/nbenv/pkg/deps/python
package deps
