package bloodpressure

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStorage persists the ledger document in a single JSON file.
type FileStorage struct {
	Path string
}

// DefaultFilePath returns where the ledger file lives when nothing else is
// configured: $XDG_DATA_HOME/bp/bp_entries.json, or ~/.local/share/bp/bp_entries.json.
func DefaultFilePath() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not locate the data directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "bp", StorageKey+".json"), nil
}

// Load reads the ledger file. A missing file is an empty storage.
func (s FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", s.Path, err)
	}
	return data, nil
}

// Save replaces the ledger file. The document is written to a temporary file
// in the same directory and renamed over the previous one, so a crash never
// leaves a truncated ledger behind.
func (s FileStorage) Save(data []byte) error {
	if s.Path == "" {
		return fmt.Errorf("cannot save ledger with an empty path")
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory for ledger %q: %w", s.Path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("error opening ledger file %q for writing: %w", s.Path, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing ledger file %q: %w", s.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing ledger file %q: %w", s.Path, err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("error replacing ledger file %q: %w", s.Path, err)
	}
	return nil
}
