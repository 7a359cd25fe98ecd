package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateURL validates a notebook URL before it is fetched.
// It ensures the URL is non-empty, parses, and has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "please enter a valid URL")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL: %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}

	return nil
}

// ValidateLocalPath validates a local notebook path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateLocalPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "no file selected")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateSampleName validates a sample notebook name.
// Names are short identifiers used on the command line and in URLs.
func ValidateSampleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "sample name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "sample name too long (max 64 characters)")
	}
	for _, r := range name {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return New(ErrCodeInvalidInput, "sample name contains invalid character %q", r)
		}
	}
	return nil
}
