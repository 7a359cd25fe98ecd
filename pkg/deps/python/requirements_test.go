package python

import (
	"slices"
	"strings"
	"testing"
)

func TestParseRequirements(t *testing.T) {
	content := `# Test requirements
requests>=2.28.0
click==8.1.0
pydantic[email]>=2.0
# Comment line
-r other.txt
--index-url https://example.com/simple
httpx
requests
scikit_learn
git+https://github.com/user/repo.git  # git URL, should be skipped
https://example.com/pkg.tar.gz
`
	got, err := ParseRequirements(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseRequirements failed: %v", err)
	}

	want := []string{"requests", "click", "pydantic", "httpx", "scikit_learn"}
	if !slices.Equal(got.List(), want) {
		t.Errorf("ParseRequirements() = %v, want %v", got.List(), want)
	}
}

func TestParseRequirementsEmpty(t *testing.T) {
	got, err := ParseRequirements(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseRequirements failed: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("expected empty set, got %v", got.List())
	}
}
