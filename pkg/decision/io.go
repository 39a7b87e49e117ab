package decision

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveCase writes a case to disk as JSON. The persisted form contains no
// compiled state; callers must Validate after loading.
func SaveCase(path string, c *Case) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for case: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling case: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing case: %w", err)
	}

	return nil
}

// LoadCase reads a JSON case from disk. The returned case is not yet
// validated.
func LoadCase(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case: %w", err)
	}

	var c Case
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling case: %w", err)
	}

	return &c, nil
}
