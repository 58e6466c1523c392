// Package gtf reads genomic features from GENCODE GTF files.
package gtf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// Feature is a single GTF record.
type Feature struct {
	Chrom        string // Chromosome, as written in the file (e.g. chr1)
	Source       string // Annotation source (HAVANA, ENSEMBL)
	Type         string // Feature type (gene, transcript, exon, CDS, ...)
	Start        uint64 // 1-based, inclusive
	End          uint64 // 1-based, inclusive
	Strand       int8   // +1 or -1
	GeneID       string
	GeneName     string // "*" when the record carries no gene_name
	TranscriptID string
}

// Loader loads features from a GTF file, gzipped or plain.
type Loader struct {
	path   string
	logger *zap.Logger
}

// NewLoader creates a loader for the GTF file at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path, logger: zap.NewNop()}
}

// SetLogger sets the logger for skipped-line reports.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load reads every feature, or only those on filterChrom if it is
// non-empty.
func (l *Loader) Load(filterChrom string) ([]Feature, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open GTF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	features, skipped, err := Parse(reader, filterChrom)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		l.logger.Warn("skipped malformed GTF lines",
			zap.String("path", l.path),
			zap.Int("lines", skipped))
	}
	l.logger.Info("loaded GTF features",
		zap.String("path", l.path),
		zap.String("chrom", filterChrom),
		zap.Int("features", len(features)))
	return features, nil
}

// Parse reads GTF records from r. It returns the features and the number of
// malformed lines that were skipped.
func Parse(r io.Reader, filterChrom string) ([]Feature, int, error) {
	scanner := bufio.NewScanner(r)
	// Attribute columns can be long
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	want := NormalizeChrom(filterChrom)

	var features []Feature
	skipped := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		feat, err := parseLine(line)
		if err != nil {
			skipped++
			continue
		}

		if want != "" && NormalizeChrom(feat.Chrom) != want {
			continue
		}
		features = append(features, feat)
	}

	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan GTF: %w", err)
	}
	return features, skipped, nil
}

// parseLine parses a single GTF line.
func parseLine(line string) (Feature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return Feature{}, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return Feature{}, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.ParseUint(fields[4], 10, 64)
	if err != nil {
		return Feature{}, fmt.Errorf("parse end: %w", err)
	}
	if start > end {
		return Feature{}, fmt.Errorf("start %d after end %d", start, end)
	}

	attrs := parseAttributes(fields[8])
	name := attrs["gene_name"]
	if name == "" {
		name = "*"
	}

	return Feature{
		Chrom:        fields[0],
		Source:       fields[1],
		Type:         fields[2],
		Start:        start,
		End:          end,
		Strand:       parseStrand(fields[6]),
		GeneID:       attrs["gene_id"],
		GeneName:     name,
		TranscriptID: attrs["transcript_id"],
	}, nil
}

// parseAttributes parses the GTF attribute column.
// Format: key "value"; key "value"; ...
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, " ")
		if !ok {
			continue
		}
		attrs[key] = strings.Trim(strings.TrimSpace(value), "\"")
	}

	return attrs
}

func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}

// NormalizeChrom removes a leading "chr" so that "chr1" and "1" compare
// equal.
func NormalizeChrom(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}
