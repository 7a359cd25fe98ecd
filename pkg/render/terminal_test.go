package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteTerminal(t *testing.T) {
	two := 2
	cells := []Cell{
		{Index: 0, Kind: KindMarkdown, Body: "Intro"},
		{Index: 1, Kind: KindCode, Source: "import pandas", ExecutionCount: &two, Modules: []string{"pandas"}, Outputs: []string{"done\n"}},
		Placeholder(2, "code cell has no source"),
	}

	var buf bytes.Buffer
	if err := WriteTerminal(&buf, cells); err != nil {
		t.Fatalf("WriteTerminal: %v", err)
	}
	out := buf.String()
	for _, s := range []string{
		"[0] markdown", "Intro",
		"[1] code", "In [2]", "imports pandas", "import pandas", "done",
		"[2] unsupported", "code cell has no source",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q\n%s", s, out)
		}
	}
}

func TestWriteTerminalEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTerminal(&buf, nil); err != nil {
		t.Fatalf("WriteTerminal: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output = %q, want empty", buf.String())
	}
}
