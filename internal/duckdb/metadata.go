package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (fp FileFingerprint) modtime() string {
	return fp.ModTime.UTC().Format(time.RFC3339Nano)
}

// RecordSource stores the fingerprint of an imported file together with the
// number of features it contributed.
func (s *Store) RecordSource(fp FileFingerprint, features int) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sources (path, size, modtime, features) VALUES (?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.modtime(), int64(features))
	if err != nil {
		return fmt.Errorf("record source %s: %w", fp.Path, err)
	}
	return nil
}

// SourceCurrent reports whether fp matches the fingerprint recorded by the
// last import of the same path.
func (s *Store) SourceCurrent(fp FileFingerprint) (bool, error) {
	var size int64
	var modtime string
	err := s.db.QueryRow(`SELECT size, modtime FROM sources WHERE path = ?`, fp.Path).Scan(&size, &modtime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query source %s: %w", fp.Path, err)
	}
	return size == fp.Size && modtime == fp.modtime(), nil
}
