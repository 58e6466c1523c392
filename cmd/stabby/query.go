package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/drtconway/stabby/internal/gtf"
)

func newQueryCmd() *cobra.Command {
	var (
		dbPath string
		pos    uint64
		region string
	)

	cmd := &cobra.Command{
		Use:   "query [gtf]",
		Short: "Print features covering a position or overlapping a region",
		Example: `  stabby query --chrom 12 --pos 25245350 annotation.gtf.gz
  stabby query --region chr1:45331151-45331880 annotation.gtf.gz
  stabby query --chrom 1 --region 45331151-45331880 --db features.duckdb`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(cmd, map[string]string{"chrom": "chrom"})
			chrom := viper.GetString("chrom")

			var start, end uint64
			switch {
			case region != "" && cmd.Flags().Changed("pos"):
				return fmt.Errorf("%w: --pos and --region are mutually exclusive", errUsage)
			case region != "":
				c, s, e, err := parseRegion(region)
				if err != nil {
					return err
				}
				if c != "" {
					chrom = c
				}
				start, end = s, e
			case cmd.Flags().Changed("pos"):
				start, end = pos, pos
			default:
				return fmt.Errorf("%w: one of --pos or --region is required", errUsage)
			}
			if chrom == "" {
				return fmt.Errorf("%w: --chrom is required", errUsage)
			}

			c, err := buildCache(sourceArg(args), dbPath, chrom)
			if err != nil {
				return err
			}

			var features []*gtf.Feature
			if start == end {
				features = c.FindFeatures(chrom, start)
			} else {
				features = c.FindOverlapping(chrom, start, end)
			}
			return writeFeatures(cmd.OutOrStdout(), features)
		},
	}

	cmd.Flags().String("chrom", "", "Chromosome")
	cmd.Flags().StringVar(&dbPath, "db", "", "Read features from a DuckDB store instead of a GTF")
	cmd.Flags().Uint64Var(&pos, "pos", 0, "Position to stab")
	cmd.Flags().StringVar(&region, "region", "", "Region to overlap: [chrom:]start-end")

	return cmd
}

// parseRegion parses "[chrom:]start-end" with 1-based inclusive bounds.
func parseRegion(s string) (chrom string, start, end uint64, err error) {
	rest := s
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		chrom, rest = s[:i], s[i+1:]
	}
	a, b, ok := strings.Cut(rest, "-")
	if !ok {
		return "", 0, 0, fmt.Errorf("%w: region %q: expected start-end", errUsage, s)
	}
	start, err = strconv.ParseUint(strings.ReplaceAll(a, ",", ""), 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: region %q: invalid start: %v", errUsage, s, err)
	}
	end, err = strconv.ParseUint(strings.ReplaceAll(b, ",", ""), 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: region %q: invalid end: %v", errUsage, s, err)
	}
	if start > end {
		return "", 0, 0, fmt.Errorf("%w: region %q: start after end", errUsage, s)
	}
	return chrom, start, end, nil
}

// writeFeatures prints features as tab-separated rows ordered by position.
func writeFeatures(w io.Writer, features []*gtf.Feature) error {
	slices.SortFunc(features, func(a, b *gtf.Feature) int {
		return cmp.Or(
			cmp.Compare(a.Start, b.Start),
			cmp.Compare(a.End, b.End),
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(a.TranscriptID, b.TranscriptID),
		)
	})

	if _, err := fmt.Fprintln(w, "chrom\tstart\tend\tstrand\ttype\tgene_name\tgene_id\ttranscript_id"); err != nil {
		return err
	}
	for _, f := range features {
		strand := "+"
		if f.Strand < 0 {
			strand = "-"
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			f.Chrom, f.Start, f.End, strand, f.Type, f.GeneName, f.GeneID, f.TranscriptID); err != nil {
			return err
		}
	}
	return nil
}
