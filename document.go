package bloodpressure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// This file contains the canonical document: a JSON array of readings, used
// both to persist the ledger and to exchange it. It should remain human
// readable and easy to edit by hand.
//
//	[
//	  {
//	    "id": "0190c6d2-5b1e-7c3a-9f00-1a2b3c4d5e6f",
//	    "sys": 120,
//	    "dia": 80,
//	    "puls": 60,
//	    "date": "2024-01-01T07:00:00.000Z"
//	  }
//	]

// EncodeDocument writes readings, in the given order, as an indented JSON
// array with keys in a stable order. It writes "[]" for no readings.
func EncodeDocument(w io.Writer, readings []Reading) error {
	docs := make([]jsonReading, 0, len(readings))
	for _, r := range readings {
		docs = append(docs, r.document())
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal readings: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write readings: %w", err)
	}
	return nil
}

// DecodeDocument strictly decodes a persisted ledger: every record must have
// an id, valid sys/dia/puls and a date. Dates without offset are read in loc.
func DecodeDocument(data []byte, loc *time.Location) ([]Reading, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("document is %s, want a list of readings", kindOf(doc))
	}

	readings := make([]Reading, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("reading #%d is %s, want an object", i+1, kindOf(item))
		}
		r, err := validateCandidate(obj, nil, loc)
		if err != nil {
			return nil, fmt.Errorf("reading #%d: %w", i+1, err)
		}
		if r.ID == "" {
			return nil, fmt.Errorf("reading #%d: missing id", i+1)
		}
		readings = append(readings, r)
	}
	return readings, nil
}

// parseDocument parses a single JSON value, keeping numbers exact.
func parseDocument(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &ParseError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: errors.New("unexpected data after the document")}
	}
	return doc, nil
}

// kindOf names the JSON kind of a parsed value, for error messages.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "a list"
	case map[string]any:
		return "an object"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
