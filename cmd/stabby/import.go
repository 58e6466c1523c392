package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drtconway/stabby/internal/duckdb"
	"github.com/drtconway/stabby/internal/gtf"
)

func newImportCmd() *cobra.Command {
	var (
		chrom string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "import <gtf> <db>",
		Short: "Load GTF features into a DuckDB store",
		Long: `Parse a GTF file and replace the contents of a DuckDB feature store with
its features. The import is skipped when the store already holds features
from an unchanged copy of the same file.`,
		Example: `  stabby import gencode.v46.basic.annotation.gtf.gz ~/.stabby/features.duckdb
  stabby import --chrom 1 --force annotation.gtf features.duckdb`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := importGTF(args[0], args[1], chrom, force)
			if err != nil {
				return err
			}
			if n < 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", args[1])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d features into %s\n", n, args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&chrom, "chrom", "", "Only import features on this chromosome")
	cmd.Flags().BoolVar(&force, "force", false, "Re-import even if the source is unchanged")

	return cmd
}

// importGTF returns the number of features written, or -1 if the store was
// already current.
func importGTF(gtfPath, dbPath, chrom string, force bool) (int, error) {
	fp, err := duckdb.StatFile(gtfPath)
	if err != nil {
		return 0, fmt.Errorf("stat GTF file: %w", err)
	}

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	// A filtered import never counts as current for the whole file.
	if !force && chrom == "" {
		current, err := store.SourceCurrent(fp)
		if err != nil {
			return 0, err
		}
		if current {
			logger.Info("store is current, skipping import", zap.String("gtf", gtfPath))
			return -1, nil
		}
	}

	loader := gtf.NewLoader(gtfPath)
	loader.SetLogger(logger)
	features, err := loader.Load(chrom)
	if err != nil {
		return 0, err
	}

	if err := store.ClearFeatures(); err != nil {
		return 0, fmt.Errorf("clear features: %w", err)
	}
	if err := store.WriteFeatures(features); err != nil {
		return 0, fmt.Errorf("write features: %w", err)
	}
	if chrom == "" {
		if err := store.RecordSource(fp, len(features)); err != nil {
			return 0, err
		}
	}

	logger.Info("imported features",
		zap.String("gtf", gtfPath),
		zap.String("db", dbPath),
		zap.Int("features", len(features)))
	return len(features), nil
}
