package render

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/nbenv/pkg/notebook"
)

// FormatOutputs returns one display block per stream, execute_result and
// display_data output, in order. Other output types are skipped.
func FormatOutputs(outputs []notebook.Output) []string {
	var blocks []string
	for _, o := range outputs {
		switch o.Type {
		case notebook.OutputStream:
			blocks = append(blocks, o.Text)
		case notebook.OutputExecuteResult, notebook.OutputDisplayData:
			blocks = append(blocks, FormatData(o.Data))
		}
	}
	return blocks
}

// FormatData dumps a rich output payload as JSON indented by two spaces.
// Key order is kept as it appears in the document. A missing payload yields
// an empty block.
func FormatData(data json.RawMessage) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
