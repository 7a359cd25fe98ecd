package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/nbenv/pkg/deps/python"
	"github.com/matzehuels/nbenv/pkg/errors"
)

// Format names a textual manifest encoding.
type Format string

const (
	FormatPyEnv        Format = "pyenv"
	FormatRequirements Format = "requirements"
	FormatPyScript     Format = "pyscript"
	FormatJSON         Format = "json"
)

// Formats lists every supported format, canonical one first.
var Formats = []Format{FormatPyEnv, FormatRequirements, FormatPyScript, FormatJSON}

// ParseFormat validates a format name. The empty string selects pyenv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPyEnv, nil
	case FormatPyEnv, FormatRequirements, FormatPyScript, FormatJSON:
		return f, nil
	case "txt":
		return FormatRequirements, nil
	case "toml":
		return FormatPyScript, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown manifest format %q (want one of %s)", s, formatList())
}

// FormatForPath guesses a format from a file extension, falling back to pyenv.
func FormatForPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".json"):
		return FormatJSON
	case strings.HasSuffix(path, ".toml"):
		return FormatPyScript
	case strings.HasSuffix(path, ".txt"):
		return FormatRequirements
	}
	return FormatPyEnv
}

// ContentType returns the MIME type used when serving the format over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatPyScript:
		return "application/toml"
	}
	return "text/plain; charset=utf-8"
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

type pyscriptConfig struct {
	Packages []string `toml:"packages"`
}

// PyEnv returns the canonical py-env form: one "- name" line per package,
// joined by newlines.
func PyEnv(m *Manifest) string {
	if m.Len() == 0 {
		return ""
	}
	lines := make([]string, len(m.Packages))
	for i, p := range m.Packages {
		lines[i] = "- " + p
	}
	return strings.Join(lines, "\n")
}

// Encode writes m in the given format.
func Encode(m *Manifest, f Format) ([]byte, error) {
	if m == nil {
		m = &Manifest{}
	}
	m = m.clone()

	switch f {
	case FormatPyEnv, "":
		return []byte(PyEnv(m)), nil
	case FormatRequirements:
		if m.Len() == 0 {
			return nil, nil
		}
		return []byte(strings.Join(m.Packages, "\n") + "\n"), nil
	case FormatPyScript:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(pyscriptConfig{Packages: m.Packages}); err != nil {
			return nil, fmt.Errorf("encode pyscript config: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode manifest: %w", err)
		}
		return append(data, '\n'), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown manifest format %q", f)
}

// Decode parses a manifest previously written by [Encode].
func Decode(data []byte, f Format) (*Manifest, error) {
	switch f {
	case FormatPyEnv, "":
		var names []string
		for line := range strings.Lines(string(data)) {
			line = strings.TrimSpace(line)
			if name, ok := strings.CutPrefix(line, "-"); ok && strings.TrimSpace(name) != "" {
				names = append(names, strings.TrimSpace(name))
			}
		}
		return &Manifest{Packages: nonNil(names)}, nil
	case FormatRequirements:
		set, err := python.ParseRequirements(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse requirements manifest")
		}
		return New(set), nil
	case FormatPyScript:
		var cfg pyscriptConfig
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse pyscript manifest")
		}
		return &Manifest{Packages: nonNil(cfg.Packages)}, nil
	case FormatJSON:
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse json manifest")
		}
		m.Packages = nonNil(m.Packages)
		return &m, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown manifest format %q", f)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
