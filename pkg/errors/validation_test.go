package errors

import (
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/nb.ipynb", false},
		{"http", "http://localhost:8080/nb.ipynb", false},
		{"surrounding space", "  https://example.com/a.ipynb  ", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"file scheme", "file:///etc/passwd", true},
		{"no scheme", "example.com/nb.ipynb", true},
		{"no host", "https:///nb.ipynb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateURL(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateURLEmptyMessage(t *testing.T) {
	err := ValidateURL("")
	if got := UserMessage(err); got != "please enter a valid URL" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestValidateLocalPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "notebooks/analysis.ipynb", false},
		{"absolute", "/tmp/analysis.ipynb", false},

		{"empty", "", true},
		{"null byte", "a\x00b.ipynb", true},
		{"newline", "a\nb.ipynb", true},
		{"too long", strings.Repeat("a", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocalPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLocalPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSampleName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"numpy-basics", false},
		{"plots_01", false},
		{"", true},
		{"../etc", true},
		{"a b", true},
		{strings.Repeat("x", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateSampleName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSampleName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
