// Package store archives uploaded originals and the per-request result
// artifacts on local disk. Files are keyed by a fresh random hex id per
// request, so concurrent requests never collide.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsonpkg "promptoon-golang/server/internal/pkg/json"
	"promptoon-golang/server/internal/upstream"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Upload records where one request's original bytes were archived.
type Upload struct {
	ID       string
	Dir      string
	Filename string
	Path     string
}

// Artifact is the audit record written beside the upload.
type Artifact struct {
	IP         string               `json:"ip"`
	PromptData map[string]any       `json:"prompt_data"`
	TokenUsage *upstream.TokenUsage `json:"token_usage,omitempty"`
	Timestamp  string               `json:"timestamp"`
}

// SaveUpload archives the exact received bytes under a day-bucketed
// directory. Compression for the upstream payload happens elsewhere and never
// touches the archive.
func (s *Store) SaveUpload(id, ext string, data []byte) (*Upload, error) {
	if ext == "" {
		ext = ".jpg"
	}

	dir := filepath.Join(s.baseDir, time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	filename := id + ext
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &Upload{ID: id, Dir: dir, Filename: filename, Path: path}, nil
}

// SaveResult writes the result JSON beside the upload as <id>.json. The name
// derives from the upload id alone, keeping archive and artifact co-indexed
// 1:1.
func (s *Store) SaveResult(u *Upload, art *Artifact) error {
	if art.Timestamp == "" {
		art.Timestamp = time.Now().Format(time.RFC3339)
	}

	data, err := jsonpkg.MarshalIndent(art, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result artifact: %w", err)
	}

	path := filepath.Join(u.Dir, u.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result artifact: %w", err)
	}
	return nil
}

// ResultPath reports where SaveResult places the artifact for an upload.
func (s *Store) ResultPath(u *Upload) string {
	return filepath.Join(u.Dir, u.ID+".json")
}
