package runs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoragePutGetCase(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"name":"bike"}`)
	if err := s.PutCase(ctx, "case1", data); err != nil {
		t.Fatalf("PutCase: %v", err)
	}

	got, err := s.GetCase(ctx, "case1")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetCase = %q, want %q", got, data)
	}

	// Verify file path layout
	expectedPath := filepath.Join(dir, "case1", "case.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStoragePutGetResults(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"case":"bike","results":[]}`)
	if err := s.PutResults(ctx, "case1", "blob1", data); err != nil {
		t.Fatalf("PutResults: %v", err)
	}

	got, err := s.GetResults(ctx, "case1", "blob1")
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetResults = %q, want %q", got, data)
	}

	expectedPath := filepath.Join(dir, "case1", "results", "blob1.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStorageGetNotFound(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	_, err := s.GetCase(ctx, "nonexistent")
	if err == nil {
		t.Error("expected error for nonexistent case")
	}
}

func TestBlobIDFromRef(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{ref: "case1/results/abc-123.json", want: "abc-123"},
		{ref: "abc-123.json", want: "abc-123"},
		{ref: "case1/results/abc-123", want: "abc-123"},
	}
	for _, tc := range tests {
		if got := blobIDFromRef(tc.ref); got != tc.want {
			t.Errorf("blobIDFromRef(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}
