package python

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/matzehuels/nbenv/pkg/deps"
)

var depNameRE = regexp.MustCompile(`^([a-zA-Z0-9_][-a-zA-Z0-9._]*)`)

// ParseRequirements reads package names from a requirements-style listing.
//
// Blank lines, comments, option lines ("-r", "--index-url") and URL or VCS
// requirements are skipped. Version specifiers and extras are dropped, so
// "requests>=2.0" yields "requests". Names are kept as written.
func ParseRequirements(r io.Reader) (deps.Set, error) {
	var result deps.Set

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		if m := depNameRE.FindStringSubmatch(line); len(m) > 1 {
			result.Add(m[1])
		}
	}

	return result, scanner.Err()
}
