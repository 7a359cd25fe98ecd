package python

import (
	"regexp"
	"strings"

	"github.com/matzehuels/nbenv/pkg/deps"
)

var importRE = regexp.MustCompile(`^\s*(?:from\s+(\S+)|import\s+(\S+))`)

// Extractor is the [deps.Extractor] for Python code cells.
var Extractor deps.Extractor = deps.ExtractorFunc{ID: "python", Fn: Extract}

// Extract returns the top-level modules imported by code, in order of first
// appearance. It never fails; code without imports yields an empty set.
func Extract(code string) deps.Set {
	var result deps.Set
	for line := range strings.Lines(code) {
		m := importRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		module := m[1]
		if module == "" {
			module = m[2]
		}
		result.Add(TopLevel(module))
	}
	return result
}

// TopLevel returns the first dotted segment of an imported path, dropping
// trailing list or statement separators ("a.b.c" -> "a", "os," -> "os").
func TopLevel(module string) string {
	if i := strings.IndexAny(module, ".,;"); i >= 0 {
		return module[:i]
	}
	return module
}
