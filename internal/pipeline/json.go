package pipeline

import (
	"encoding/json"
	"os"
)

// WriteSummaryJSON writes the run summary as indented JSON.
func WriteSummaryJSON(path string, s Summary) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

// ReadSummaryJSON reads a summary written by WriteSummaryJSON.
func ReadSummaryJSON(path string) (*Summary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
