// Package caseio loads decision cases from the supported source formats:
// a single JSON or YAML document, or a directory of CSV tables. Loading
// never validates; callers run Case.Validate before evaluation so every
// source goes through the same checks.
package caseio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scenariq/scenariq/pkg/decision"
)

// Load reads a case from path, dispatching on shape: directories are
// treated as CSV table sets, files by extension (.json, .yaml, .yml).
func Load(path string) (*decision.Case, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading case source: %w", err)
	}
	if info.IsDir() {
		return LoadCSVDir(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening case file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f)
	case ".yaml", ".yml":
		return LoadYAML(f)
	}
	return nil, fmt.Errorf("unsupported case format %q", filepath.Ext(path))
}

// LoadJSON decodes a case from a JSON document.
func LoadJSON(r io.Reader) (*decision.Case, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading case: %w", err)
	}
	var c decision.Case
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding JSON case: %w", err)
	}
	return &c, nil
}

// LoadYAML decodes a case from a YAML document.
func LoadYAML(r io.Reader) (*decision.Case, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading case: %w", err)
	}
	var c decision.Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding YAML case: %w", err)
	}
	return &c, nil
}
