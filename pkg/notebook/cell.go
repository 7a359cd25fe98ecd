package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/nbenv/pkg/errors"
)

// Cell is one decoded notebook cell. Identity is positional; Cell carries
// no index of its own.
type Cell struct {
	Type           CellType
	Source         string
	Outputs        []Output
	ExecutionCount *int

	// HasSource reports whether Source was decoded. It is false for
	// unsupported cells without a source and for malformed cells.
	HasSource bool
}

// IsCode reports whether the cell is a code cell.
func (c Cell) IsCode() bool { return c.Type == CellCode }

// IsMarkdown reports whether the cell is a markdown cell.
func (c Cell) IsMarkdown() bool { return c.Type == CellMarkdown }

// IsSupported reports whether the cell type is rendered.
func (c Cell) IsSupported() bool { return c.IsCode() || c.IsMarkdown() }

// Output is one decoded code cell output.
type Output struct {
	Type OutputType
	// Text is the concatenated stream text.
	Text string
	// Data is the raw "data" member of execute_result and display_data.
	Data json.RawMessage
	// Name is the stream name (stdout, stderr).
	Name string
}

// Text is a notebook multiline string: either a single JSON string or a
// list of string fragments. Fragments are concatenated without separators.
type Text string

// UnmarshalJSON accepts a string or a list of strings.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty text")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case '[':
		var parts []string
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("text fragments must be strings: %w", err)
		}
		*t = Text(strings.Join(parts, ""))
		return nil
	default:
		return fmt.Errorf("text must be a string or a list of strings")
	}
}

type rawCell struct {
	CellType       CellType        `json:"cell_type"`
	Source         json.RawMessage `json:"source"`
	Outputs        json.RawMessage `json:"outputs"`
	ExecutionCount *int            `json:"execution_count"`
}

type rawOutput struct {
	OutputType OutputType      `json:"output_type"`
	Name       string          `json:"name"`
	Text       json.RawMessage `json:"text"`
	Data       json.RawMessage `json:"data"`
}

// DecodeCell decodes one raw cell.
//
// Unsupported cell types decode without inspecting their source. For
// markdown and code cells, a missing or non-text source is an INVALID_CELL
// error. For code cells, malformed outputs are an INVALID_CELL error too,
// but the returned Cell still carries the decoded Source (HasSource is
// true) so callers can keep extracting dependencies from it.
func DecodeCell(raw json.RawMessage) (Cell, error) {
	var rc rawCell
	if err := json.Unmarshal(raw, &rc); err != nil {
		return Cell{}, errors.Wrap(errors.ErrCodeInvalidCell, err, "malformed cell")
	}

	cell := Cell{Type: rc.CellType, ExecutionCount: rc.ExecutionCount}
	if !cell.IsSupported() {
		return cell, nil
	}

	if len(rc.Source) == 0 || string(bytes.TrimSpace(rc.Source)) == "null" {
		return cell, errors.New(errors.ErrCodeInvalidCell, "%s cell has no source", rc.CellType)
	}
	var src Text
	if err := json.Unmarshal(rc.Source, &src); err != nil {
		return cell, errors.Wrap(errors.ErrCodeInvalidCell, err, "%s cell source", rc.CellType)
	}
	cell.Source = string(src)
	cell.HasSource = true

	if cell.IsCode() {
		outputs, err := decodeOutputs(rc.Outputs)
		if err != nil {
			return cell, err
		}
		cell.Outputs = outputs
	}
	return cell, nil
}

func decodeOutputs(raw json.RawMessage) ([]Output, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCell, err, "code cell outputs is not a list")
	}

	outputs := make([]Output, 0, len(items))
	for i, item := range items {
		var ro rawOutput
		if err := json.Unmarshal(item, &ro); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCell, err, "output %d is not an object", i)
		}
		out := Output{Type: ro.OutputType, Name: ro.Name, Data: ro.Data}
		if ro.OutputType == OutputStream {
			if len(ro.Text) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidCell, "stream output %d has no text", i)
			}
			var text Text
			if err := json.Unmarshal(ro.Text, &text); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidCell, err, "stream output %d text", i)
			}
			out.Text = string(text)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
