// Package runs orchestrates hosted evaluation: loading a stored case,
// running the engine over every (option, scenario) pair, and persisting
// the result document.
package runs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// StorageClient abstracts blob storage for case documents and run results.
type StorageClient interface {
	PutCase(ctx context.Context, caseID string, data []byte) error
	GetCase(ctx context.Context, caseID string) ([]byte, error)
	PutResults(ctx context.Context, caseID, blobID string, data []byte) error
	GetResults(ctx context.Context, caseID, blobID string) ([]byte, error)
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) casePath(caseID string) string {
	return filepath.Join(s.BaseDir, caseID, "case.json")
}

func (s *LocalStorage) resultsPath(caseID, blobID string) string {
	return filepath.Join(s.BaseDir, caseID, "results", blobID+".json")
}

func (s *LocalStorage) put(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// PutCase stores a case document blob.
func (s *LocalStorage) PutCase(ctx context.Context, caseID string, data []byte) error {
	return s.put(s.casePath(caseID), data)
}

// GetCase retrieves a case document blob.
func (s *LocalStorage) GetCase(ctx context.Context, caseID string) ([]byte, error) {
	return os.ReadFile(s.casePath(caseID))
}

// PutResults stores a result document blob.
func (s *LocalStorage) PutResults(ctx context.Context, caseID, blobID string, data []byte) error {
	return s.put(s.resultsPath(caseID, blobID), data)
}

// GetResults retrieves a result document blob.
func (s *LocalStorage) GetResults(ctx context.Context, caseID, blobID string) ([]byte, error) {
	return os.ReadFile(s.resultsPath(caseID, blobID))
}
