package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// GENCODE FTP URLs
const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
)

// gencodeURL returns the basic annotation GTF URL for the given assembly.
func gencodeURL(assembly string) string {
	if strings.ToUpper(assembly) == "GRCH37" {
		return fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.basic.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
	}
	// Default to GRCh38
	return fmt.Sprintf("%s/gencode.%s.basic.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
}

func newDownloadCmd() *cobra.Command {
	var assembly string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download GENCODE basic annotation",
		Example: `  # Download GRCh38 annotations (default)
  stabby download

  # Download GRCh37 annotations to a custom directory
  stabby download --assembly GRCh37 --output /data/gencode`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(cmd, map[string]string{"data_dir": "output"})
			outputDir := viper.GetString("data_dir")
			if outputDir == "" {
				return fmt.Errorf("cannot determine data directory; use --output")
			}

			destDir := filepath.Join(outputDir, strings.ToLower(assembly))
			if err := os.MkdirAll(destDir, 0755); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", destDir, err)
			}

			url := gencodeURL(assembly)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Downloading GENCODE %s basic annotation for %s...\n", gencodeVersion, assembly)
			fmt.Fprintf(out, "Destination: %s\n\n", destDir)

			dest := filepath.Join(destDir, filepath.Base(url))
			if err := downloadFile(cmd.Context(), out, url, dest); err != nil {
				return fmt.Errorf("downloading GTF: %w", err)
			}

			fmt.Fprintf(out, "\nDownload complete!\n")
			fmt.Fprintf(out, "To index it, run:\n")
			fmt.Fprintf(out, "  stabby import %s %s\n", dest, filepath.Join(outputDir, "features.duckdb"))
			return nil
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	cmd.Flags().String("output", "", "Output directory (default: ~/.stabby/)")

	return cmd
}

// downloadFile downloads a file from url to destPath, printing progress to out.
func downloadFile(ctx context.Context, out io.Writer, url, destPath string) error {
	// Check if file already exists
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(out, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(out, "  Downloading %s...\n", filepath.Base(destPath))
	logger.Debug("downloading", zap.String("url", url), zap.String("dest", destPath))

	client := &http.Client{
		Timeout: 30 * time.Minute, // Long timeout for large files
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{
		out:       out,
		total:     resp.ContentLength,
		lastPrint: time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(out, "    Done: %s\n", formatSize(pw.downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
