package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/drtconway/stabby/internal/cache"
	"github.com/drtconway/stabby/internal/duckdb"
	"github.com/drtconway/stabby/internal/gtf"
)

// loadFeatures reads features on chrom (all when empty) from a GTF file, or
// from a DuckDB store when dbPath is set.
func loadFeatures(gtfPath, dbPath, chrom string) ([]gtf.Feature, error) {
	if dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		features, err := store.LoadFeatures(chrom)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded features from store",
			zap.String("db", dbPath),
			zap.String("chrom", chrom),
			zap.Int("features", len(features)))
		return features, nil
	}

	if gtfPath == "" {
		return nil, fmt.Errorf("%w: a GTF file or --db is required", errUsage)
	}
	loader := gtf.NewLoader(gtfPath)
	loader.SetLogger(logger)
	return loader.Load(chrom)
}

// buildCache loads features and indexes them per chromosome.
func buildCache(gtfPath, dbPath, chrom string) (*cache.Cache, error) {
	features, err := loadFeatures(gtfPath, dbPath, chrom)
	if err != nil {
		return nil, err
	}
	c := cache.New()
	c.SetLogger(logger)
	c.AddFeatures(features)
	c.Build()
	return c, nil
}

func sourceArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
