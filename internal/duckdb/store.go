// Package duckdb persists imported genomic features in DuckDB so that
// indexes can be rebuilt without re-parsing the annotation files.
// Each import records a fingerprint of its source file, which lets callers
// skip re-importing an unchanged GTF.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding imported features.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file, or "" for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS features (
			chrom VARCHAR,
			chrom_key VARCHAR,
			source VARCHAR,
			feature_type VARCHAR,
			start_pos UBIGINT,
			end_pos UBIGINT,
			strand TINYINT,
			gene_id VARCHAR,
			gene_name VARCHAR,
			transcript_id VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS sources (
			path VARCHAR PRIMARY KEY,
			size BIGINT,
			modtime VARCHAR,
			features BIGINT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
