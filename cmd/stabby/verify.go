package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/drtconway/stabby"
	"github.com/drtconway/stabby/internal/cache"
	"github.com/drtconway/stabby/internal/verify"
)

func newVerifyCmd() *cobra.Command {
	var (
		dbPath  string
		queries int
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "verify [gtf]",
		Short: "Cross-check index answers against a reference interval tree",
		Long: `Build a stabbing index and a reference interval tree per chromosome from
the same features, then compare their answers at every feature endpoint and
at random positions and regions.`,
		Example: `  stabby verify annotation.gtf.gz
  stabby verify --chrom 1 --queries 10000 annotation.gtf.gz`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(cmd, map[string]string{"chrom": "chrom"})
			c, err := buildCache(sourceArg(args), dbPath, viper.GetString("chrom"))
			if err != nil {
				return err
			}
			failed, err := verifyCache(cmd.OutOrStdout(), c, queries, seed)
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d mismatched queries", failed)
			}
			return nil
		},
	}

	cmd.Flags().String("chrom", "", "Only verify this chromosome")
	cmd.Flags().StringVar(&dbPath, "db", "", "Read features from a DuckDB store instead of a GTF")
	cmd.Flags().IntVar(&queries, "queries", 1000, "Random points and regions per chromosome")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")

	return cmd
}

// verifyCache checks every chromosome in c and returns the number of
// mismatched queries.
func verifyCache(w io.Writer, c *cache.Cache, queries int, seed uint64) (int, error) {
	failed := 0
	for _, chrom := range c.Chromosomes() {
		features := c.FeaturesByChrom(chrom)
		items := make([]stabby.Interval, len(features))
		for i, f := range features {
			items[i] = stabby.NewInterval(f.Start, f.End)
		}

		oracle, err := verify.NewOracle(items)
		if err != nil {
			return failed, fmt.Errorf("chromosome %s: %w", chrom, err)
		}
		idx := stabby.New(items, stabby.WithLogger(logger.With(zap.String("chrom", chrom))))

		points, ranges := verify.Queries(items, queries, seed)
		rep, err := verify.Check(idx, oracle, points, ranges)
		if err != nil {
			return failed, fmt.Errorf("chromosome %s: %w", chrom, err)
		}

		status := "ok"
		if !rep.OK() {
			status = "FAILED"
			for _, m := range rep.Mismatches {
				logger.Warn("mismatch", zap.String("chrom", chrom), zap.Stringer("query", m))
			}
		}
		fmt.Fprintf(w, "%s\t%d intervals\t%d points\t%d ranges\t%d mismatches\t%s\n",
			chrom, len(items), rep.Points, rep.Ranges, len(rep.Mismatches), status)
		failed += len(rep.Mismatches)
	}
	return failed, nil
}
