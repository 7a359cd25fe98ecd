package render

import (
	"encoding/json"
	"testing"
)

func TestFormatData(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"missing", "", ""},
		{"null", "null", "null"},
		{"scalar", "42", "42"},
		{"keeps key order", `{"z":1,"a":2}`, "{\n  \"z\": 1,\n  \"a\": 2\n}"},
		{"nested", `{"text/plain":["a","b"]}`, "{\n  \"text/plain\": [\n    \"a\",\n    \"b\"\n  ]\n}"},
		{"reindents", "{\n\t\"k\" :   true}", "{\n  \"k\": true\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatData(json.RawMessage(tt.data)); got != tt.want {
				t.Errorf("FormatData(%q) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}
