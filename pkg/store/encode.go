// Package store writes play records to the output directory and other sinks.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"play-extract/pkg/domain"
)

// DefaultExt is the output file extension
const DefaultExt = "json"

const indent = "    "

// EncodeTranscript renders a transcript the way it is written to disk: speakers
// in encounter order, 4-space indentation, non-ASCII and HTML characters
// written literally, and a trailing newline.
func EncodeTranscript(t *domain.Transcript) ([]byte, error) {
	if t == nil {
		t = domain.NewTranscript()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeTranscript parses a record written by EncodeTranscript
func DecodeTranscript(data []byte) (*domain.Transcript, error) {
	t := domain.NewTranscript()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return t, nil
}
