package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"leetcode_leaderboard/internal/aggregate"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned by Read when no snapshot has been written yet.
var ErrNotFound = errors.New("snapshot not found")

// Write replaces the snapshot at path with records. The content is written
// to a temporary file in the same directory and renamed into place, so a
// concurrent reader sees either the old file or the new one.
func Write(path string, records []aggregate.Record) error {
	if records == nil {
		records = []aggregate.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	log.Debug().Str("path", path).Int("records", len(records)).Int("bytes", len(data)).Msg("Snapshot written")
	return nil
}

// Read decodes the snapshot at path.
func Read(path string) ([]aggregate.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var records []aggregate.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return records, nil
}
