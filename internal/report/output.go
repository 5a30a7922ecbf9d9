package report

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteFile serializes doc as JSON and writes it to path.
func WriteFile(doc *Doc, path string) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("dhat: marshaling report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dhat: writing report to %s: %w", path, err)
	}

	return nil
}

// WriteString serializes doc as JSON and returns it as a string, for
// callers that want the report in memory rather than on disk (exercised
// through Profiler.SaveToMemory).
func WriteString(doc *Doc) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("dhat: marshaling report: %w", err)
	}

	return string(data), nil
}
