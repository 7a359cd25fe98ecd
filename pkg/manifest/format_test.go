package manifest

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/nbenv/pkg/errors"
)

func TestEncodePyEnv(t *testing.T) {
	m := &Manifest{Packages: []string{"numpy", "pandas"}}
	got, err := Encode(m, FormatPyEnv)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(got) != "- numpy\n- pandas" {
		t.Errorf("got %q", got)
	}
	if PyEnv(m) != string(got) {
		t.Error("PyEnv and Encode disagree")
	}
	if PyEnv(&Manifest{}) != "" || PyEnv(nil) != "" {
		t.Error("empty manifest should produce an empty py-env body")
	}
}

func TestEncode(t *testing.T) {
	m := &Manifest{Packages: []string{"numpy", "pandas"}, RunID: "r1"}

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatRequirements, []string{"numpy\npandas\n"}},
		{FormatPyScript, []string{`packages = ["numpy", "pandas"]`}},
		{FormatJSON, []string{`"packages": [`, `"numpy"`, `"run_id": "r1"`}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got, err := Encode(m, tt.format)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(got), w) {
					t.Errorf("output %q missing %q", got, w)
				}
			}
		})
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	_, err := Encode(&Manifest{}, "yaml")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range Formats {
		for _, pkgs := range [][]string{{}, {"numpy"}, {"numpy", "pandas", "scikit_learn"}} {
			m := &Manifest{Packages: pkgs}
			data, err := Encode(m, f)
			if err != nil {
				t.Fatalf("Encode(%s): %v", f, err)
			}
			got, err := Decode(data, f)
			if err != nil {
				t.Fatalf("Decode(%s): %v", f, err)
			}
			if !reflect.DeepEqual(got.Packages, pkgs) {
				t.Errorf("%s: round trip of %v gave %v", f, pkgs, got.Packages)
			}
		}
	}
}

func TestDecodePyEnvTolerant(t *testing.T) {
	got, err := Decode([]byte("\n  - numpy\n-   pandas  \n-\nnot a package\n"), FormatPyEnv)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if want := []string{"numpy", "pandas"}; !reflect.DeepEqual(got.Packages, want) {
		t.Errorf("got %v, want %v", got.Packages, want)
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, f := range []Format{FormatPyScript, FormatJSON} {
		if _, err := Decode([]byte("{{{"), f); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("Decode(%s) err = %v, want INVALID_FORMAT", f, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPyEnv, false},
		{"pyenv", FormatPyEnv, false},
		{" JSON ", FormatJSON, false},
		{"txt", FormatRequirements, false},
		{"toml", FormatPyScript, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"env.json":         FormatJSON,
		"pyscript.toml":    FormatPyScript,
		"requirements.txt": FormatRequirements,
		"py-env":           FormatPyEnv,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
