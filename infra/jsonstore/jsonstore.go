// Package jsonstore persists bank snapshots as a pretty-printed JSON file.
// Writes go to a temp file first and are renamed over the target, so a crash
// mid-write never corrupts the previous snapshot.
package jsonstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/amiraly/banksim/pkg/repository"
)

// Store is a file-backed snapshot repository.
type Store struct {
	path   string
	logger *slog.Logger
}

// New returns a store writing to path.
func New(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the snapshot file. A missing or unparseable file yields an empty
// snapshot rather than a startup failure.
func (s *Store) Load() (*repository.Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("no snapshot file, starting empty", "path", s.path)
			return repository.NewEmptySnapshot(), nil
		}
		return nil, err
	}
	defer f.Close() //nolint: errcheck

	snap := repository.NewEmptySnapshot()
	if err := json.NewDecoder(f).Decode(snap); err != nil {
		s.logger.Warn("snapshot file corrupt, starting empty", "path", s.path, "error", err)
		return repository.NewEmptySnapshot(), nil
	}
	return snap, nil
}

// Save overwrites the snapshot file atomically.
func (s *Store) Save(snap *repository.Snapshot) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(snap); err != nil {
		f.Close() //nolint: errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
