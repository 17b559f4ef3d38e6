package journey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MarshalJourneys converts journeys to indented JSON bytes.
func MarshalJourneys(journeys []Journey) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(journeys); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadJourneys decodes a JSON journey array from an io.Reader.
// Use ReadJourneysFile for files or pass bytes.NewReader for in-memory data.
func ReadJourneys(r io.Reader) ([]Journey, error) {
	var journeys []Journey
	if err := json.NewDecoder(r).Decode(&journeys); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for i, j := range journeys {
		if err := j.Validate(); err != nil {
			return nil, fmt.Errorf("journey %d: %w", i, err)
		}
	}
	return journeys, nil
}

// ReadJourneysFile reads a JSON file and returns the decoded journeys.
func ReadJourneysFile(path string) ([]Journey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJourneys(f)
}

// WriteJourneysFile writes journeys to a JSON file.
// The file is created with 0644 permissions.
func WriteJourneysFile(journeys []Journey, path string) error {
	data, err := MarshalJourneys(journeys)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
