package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleGTF = "../../testdata/sample.gtf"

// execute runs the command tree with a fresh viper state and HOME.
func execute(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Setenv("HOME", home)
	t.Cleanup(func() { logger = zap.NewNop() })

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func dataLines(out string) []string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return lines[1:]
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		input      string
		chrom      string
		start, end uint64
		wantErr    bool
	}{
		{input: "100-200", start: 100, end: 200},
		{input: "chr1:45,331,151-45,331,880", chrom: "chr1", start: 45331151, end: 45331880},
		{input: "12:5-5", chrom: "12", start: 5, end: 5},
		{input: "HLA-A:1-2", chrom: "HLA-A", start: 1, end: 2},
		{input: "100", wantErr: true},
		{input: "a-b", wantErr: true},
		{input: "200-100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			chrom, start, end, err := parseRegion(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.chrom, chrom)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	l, err = newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))

	_, err = newLogger("loud", false)
	assert.ErrorIs(t, err, errUsage)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.0 KB", formatSize(1024))
	assert.Equal(t, "1.5 MB", formatSize(1536*1024))
}

func TestGencodeURL(t *testing.T) {
	assert.Equal(t,
		"https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46/gencode.v46.basic.annotation.gtf.gz",
		gencodeURL("GRCh38"))
	assert.Contains(t, gencodeURL("grch37"), "GRCh37_mapping/gencode.v46lift37.basic.annotation.gtf.gz")
}

func TestQuery_Position(t *testing.T) {
	out, err := execute(t, t.TempDir(), "query", "--chrom", "chr12", "--pos", "25250800", sampleGTF)
	require.NoError(t, err)

	lines := dataLines(out)
	require.Len(t, lines, 2)
	assert.Equal(t, "chr12\t25205246\t25250929\t-\ttranscript\tKRAS\tENSG00000133703\tENST00000311936", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "chr12\t25250751\t25250929\t-\texon\tKRAS"))
}

func TestQuery_Region(t *testing.T) {
	out, err := execute(t, t.TempDir(), "query", "--region", "chr1:45331300-45331430", sampleGTF)
	require.NoError(t, err)

	lines := dataLines(out)
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "\tgene\t")
	assert.Contains(t, lines[1], "\ttranscript\t")
	assert.Contains(t, lines[2], "45331182\t45331334")
	assert.Contains(t, lines[3], "45331420\t45331556")
}

func TestQuery_UsageErrors(t *testing.T) {
	home := t.TempDir()

	_, err := execute(t, home, "query", sampleGTF)
	assert.ErrorIs(t, err, errUsage, "no position")

	_, err = execute(t, home, "query", "--pos", "5", sampleGTF)
	assert.ErrorIs(t, err, errUsage, "no chromosome")

	_, err = execute(t, home, "query", "--chrom", "1", "--pos", "5", "--region", "1-2", sampleGTF)
	assert.ErrorIs(t, err, errUsage, "both position and region")

	_, err = execute(t, home, "query", "--chrom", "1", "--pos", "5")
	assert.ErrorIs(t, err, errUsage, "no source")

	_, err = execute(t, home, "query", "a.gtf", "b.gtf")
	assert.ErrorIs(t, err, errUsage, "too many arguments")
}

func TestDepth(t *testing.T) {
	out, err := execute(t, t.TempDir(), "depth", "--chrom", "12", "--from", "25205000", "--workers", "3", sampleGTF)
	require.NoError(t, err)
	assert.Equal(t, "depth\tpositions\n0\t246\n1\t45505\n2\t179\n", out)
}

func TestDepth_UnknownChromosome(t *testing.T) {
	_, err := execute(t, t.TempDir(), "depth", "--chrom", "7", sampleGTF)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errUsage)
}

func TestDepth_ChromFromConfig(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ".stabby.yaml"), []byte("chrom: \"12\"\nworkers: 2\n"), 0644))

	out, err := execute(t, home, "depth", "--from", "25250900", sampleGTF)
	require.NoError(t, err)
	assert.Equal(t, "depth\tpositions\n0\t0\n1\t0\n2\t30\n", out)
}

func TestImportAndQueryStore(t *testing.T) {
	home := t.TempDir()
	db := filepath.Join(home, "store", "features.duckdb")

	out, err := execute(t, home, "import", sampleGTF, db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 11 features")

	out, err = execute(t, home, "import", sampleGTF, db)
	require.NoError(t, err)
	assert.Contains(t, out, "is up to date")

	out, err = execute(t, home, "import", "--force", sampleGTF, db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 11 features")

	out, err = execute(t, home, "query", "--chrom", "1", "--pos", "45331258", "--db", db)
	require.NoError(t, err)
	assert.Len(t, dataLines(out), 3)
}

func TestVerify(t *testing.T) {
	out, err := execute(t, t.TempDir(), "verify", "--queries", "200", sampleGTF)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1\t9 intervals\t"))
	assert.True(t, strings.HasSuffix(lines[0], "\t0 mismatches\tok"))
	assert.True(t, strings.HasPrefix(lines[1], "12\t2 intervals\t"))
}

func TestConfigSetGet(t *testing.T) {
	home := t.TempDir()

	out, err := execute(t, home, "config", "set", "workers", "8")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, ".stabby.yaml"))

	out, err = execute(t, home, "config", "get", "workers")
	require.NoError(t, err)
	assert.Equal(t, "8\n", out)

	_, err = execute(t, home, "config", "get", "no.such.key")
	assert.Error(t, err)
}

func TestRun_ExitCodes(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() { logger = zap.NewNop() })

	viper.Reset()
	assert.Equal(t, ExitUsage, run([]string{"query", "--no-such-flag"}))
	viper.Reset()
	assert.Equal(t, ExitError, run([]string{"query", "--chrom", "1", "--pos", "1", filepath.Join(t.TempDir(), "missing.gtf")}))
}
