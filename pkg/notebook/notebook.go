package notebook

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/nbenv/pkg/errors"
)

// CellType is the "cell_type" tag of a cell.
type CellType string

// Known cell types. Any other value is unsupported.
const (
	CellMarkdown CellType = "markdown"
	CellCode     CellType = "code"
)

// OutputType is the "output_type" tag of a code cell output.
type OutputType string

// Known output types. Any other value is ignored when rendering.
const (
	OutputStream        OutputType = "stream"
	OutputExecuteResult OutputType = "execute_result"
	OutputDisplayData   OutputType = "display_data"
	OutputError         OutputType = "error"
)

// Document is a validated notebook. Cells are kept as raw JSON until
// [DecodeCell] is called on them.
type Document struct {
	Cells         []json.RawMessage
	Metadata      Metadata
	NBFormat      int
	NBFormatMinor int
}

// Metadata holds the document metadata nbenv displays.
type Metadata struct {
	KernelSpec   KernelSpec   `json:"kernelspec"`
	LanguageInfo LanguageInfo `json:"language_info"`
}

// KernelSpec describes the kernel the notebook was written for.
type KernelSpec struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
}

// LanguageInfo describes the kernel language.
type LanguageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Language returns the notebook language from metadata, or "" if unknown.
func (d *Document) Language() string {
	if d.Metadata.LanguageInfo.Name != "" {
		return d.Metadata.LanguageInfo.Name
	}
	return d.Metadata.KernelSpec.Language
}

// Validate checks the minimal document shape: a JSON object with a "cells"
// list. It fails with INVALID_STRUCTURE otherwise. Malformed metadata is
// ignored; individual cells are not inspected.
func Validate(raw json.RawMessage) (*Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New(errors.ErrCodeInvalidStructure, "invalid notebook structure: document is not an object")
	}

	var top struct {
		Cells         json.RawMessage `json:"cells"`
		Metadata      json.RawMessage `json:"metadata"`
		NBFormat      json.RawMessage `json:"nbformat"`
		NBFormatMinor json.RawMessage `json:"nbformat_minor"`
	}
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStructure, err, "invalid notebook structure")
	}

	cells := bytes.TrimSpace(top.Cells)
	if len(cells) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidStructure, "invalid notebook structure: missing cells")
	}
	if cells[0] != '[' {
		return nil, errors.New(errors.ErrCodeInvalidStructure, "invalid notebook structure: cells is not a list")
	}

	doc := &Document{}
	if err := json.Unmarshal(cells, &doc.Cells); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStructure, err, "invalid notebook structure: cells is not a list")
	}

	// Display-only fields; a bad shape here is not a structural failure.
	_ = json.Unmarshal(top.Metadata, &doc.Metadata)
	_ = json.Unmarshal(top.NBFormat, &doc.NBFormat)
	_ = json.Unmarshal(top.NBFormatMinor, &doc.NBFormatMinor)

	return doc, nil
}

// Parse checks that data is well-formed JSON and validates it.
// Malformed JSON is an ACQUISITION_FAILED error, since it means the bytes
// never were a notebook.
func Parse(data []byte) (*Document, error) {
	if !json.Valid(data) {
		return nil, errors.New(errors.ErrCodeAcquisition, "invalid .ipynb file: malformed JSON")
	}
	return Validate(data)
}
