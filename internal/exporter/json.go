package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONWriter renders dashboard documents.
type JSONWriter struct {
	Indent string
}

// NewJSONWriter returns a writer with two-space indentation.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{Indent: "  "}
}

// Encode renders doc as indented JSON with a trailing newline.
// HTML characters and non-ASCII text are written literally.
func (w *JSONWriter) Encode(doc any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", w.Indent)

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return buf.Bytes(), nil
}
