package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/drtconway/stabby/internal/depth"
	"github.com/drtconway/stabby/internal/gtf"
)

func newDepthCmd() *cobra.Command {
	var (
		dbPath   string
		from, to uint64
	)

	cmd := &cobra.Command{
		Use:   "depth [gtf]",
		Short: "Histogram how many features cover each position of a chromosome",
		Long: `Stab every position of a chromosome and print, for each depth, the number
of positions covered by exactly that many distinct feature intervals.`,
		Example: `  stabby depth --chrom 1 gencode.v46.basic.annotation.gtf.gz
  stabby depth --chrom 12 --from 25200000 --to 25260000 annotation.gtf
  stabby depth --chrom 1 --db features.duckdb`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(cmd, map[string]string{"chrom": "chrom", "workers": "workers"})
			chrom := viper.GetString("chrom")
			if chrom == "" {
				return fmt.Errorf("%w: --chrom is required", errUsage)
			}

			c, err := buildCache(sourceArg(args), dbPath, chrom)
			if err != nil {
				return err
			}
			idx := c.Index(chrom)
			if idx == nil {
				return fmt.Errorf("no features on chromosome %s", gtf.NormalizeChrom(chrom))
			}
			if to == 0 {
				to = c.MaxEnd(chrom)
			}

			logger.Info("computing depth",
				zap.String("chrom", chrom),
				zap.Uint64("from", from),
				zap.Uint64("to", to),
				zap.Int("intervals", idx.Len()))

			h, err := depth.Compute(cmd.Context(), depth.IndexCounter(idx), from, to,
				depth.Options{Workers: viper.GetInt("workers")})
			if err != nil {
				return err
			}
			return h.Write(cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("chrom", "", "Chromosome to scan (required)")
	cmd.Flags().Int("workers", 0, "Worker goroutines (default: number of CPUs)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Read features from a DuckDB store instead of a GTF")
	cmd.Flags().Uint64Var(&from, "from", 1, "First position")
	cmd.Flags().Uint64Var(&to, "to", 0, "Last position (default: largest feature end)")

	return cmd
}
