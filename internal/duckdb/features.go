package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/drtconway/stabby/internal/gtf"
)

const featureColumns = `chrom, source, feature_type, start_pos, end_pos, strand,
	gene_id, gene_name, transcript_id`

// WriteFeatures batch-inserts features into DuckDB using the Appender API.
func (s *Store) WriteFeatures(features []gtf.Feature) error {
	if len(features) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "features")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, f := range features {
		if err := appender.AppendRow(
			f.Chrom, gtf.NormalizeChrom(f.Chrom), f.Source, f.Type,
			f.Start, f.End, f.Strand,
			f.GeneID, f.GeneName, f.TranscriptID,
		); err != nil {
			return fmt.Errorf("append feature: %w", err)
		}
	}

	return appender.Flush()
}

// ClearFeatures removes all stored features and source fingerprints.
func (s *Store) ClearFeatures() error {
	if _, err := s.db.Exec("DELETE FROM features"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM sources")
	return err
}

// LoadFeatures returns the stored features on chrom ordered by position.
// An empty chrom loads every chromosome.
func (s *Store) LoadFeatures(chrom string) ([]gtf.Feature, error) {
	query := `SELECT ` + featureColumns + ` FROM features`
	var args []any
	if chrom != "" {
		query += ` WHERE chrom_key = ?`
		args = append(args, gtf.NormalizeChrom(chrom))
	}
	query += ` ORDER BY chrom_key, start_pos, end_pos, feature_type`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var features []gtf.Feature
	for rows.Next() {
		var f gtf.Feature
		if err := rows.Scan(
			&f.Chrom, &f.Source, &f.Type, &f.Start, &f.End, &f.Strand,
			&f.GeneID, &f.GeneName, &f.TranscriptID,
		); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return features, nil
}

// FeatureCount returns the number of stored features.
func (s *Store) FeatureCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT count(*) FROM features").Scan(&n); err != nil {
		return 0, fmt.Errorf("count features: %w", err)
	}
	return n, nil
}

// Chromosomes returns the sorted normalized chromosome names with stored features.
func (s *Store) Chromosomes() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT chrom_key FROM features ORDER BY chrom_key")
	if err != nil {
		return nil, fmt.Errorf("query chromosomes: %w", err)
	}
	defer rows.Close()

	var chroms []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan chromosome: %w", err)
		}
		chroms = append(chroms, c)
	}
	return chroms, rows.Err()
}
