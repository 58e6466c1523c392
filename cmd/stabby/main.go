// Package main provides the stabby command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logger is configured by the root command before any subcommand runs.
var logger = zap.NewNop()

// errUsage marks errors caused by bad arguments rather than failed work.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	logger.Sync()
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, errUsage) {
		return ExitUsage
	}
	return ExitError
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "stabby",
		Short: "Interval stabbing queries over genomic annotations",
		Long: `stabby builds static interval stabbing indexes over GTF features and
answers point and range queries, depth histograms and cross-checks.`,
		Example: `  # Download GENCODE basic annotations (one-time setup)
  stabby download

  # Depth histogram for chromosome 1
  stabby depth --chrom 1 gencode.v46.basic.annotation.gtf.gz

  # Features covering a position
  stabby query --chrom 12 --pos 25245350 gencode.v46.basic.annotation.gtf.gz`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			l, err := newLogger(viper.GetString("log.level"), viper.GetBool("log.development"))
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/.stabby.yaml)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.Bool("log-development", false, "Human-readable development logging")
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.development", pf.Lookup("log-development"))

	cmd.AddCommand(newDepthCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads ~/.stabby.yaml (or cfgFile) and STABBY_* environment
// variables. A missing default config file is not an error.
func initConfig(cfgFile string) error {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("workers", 0)
	viper.SetDefault("data_dir", defaultDataDir())

	viper.SetEnvPrefix("STABBY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".stabby")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// defaultDataDir returns ~/.stabby, or "" if the home directory is unknown.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stabby")
}

// newLogger builds a zap logger writing to stderr at the given level.
func newLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid log level %q", errUsage, level)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// bindFlags binds config keys to the running command's flags. Several
// commands share keys, so binding happens at run time rather than when the
// command tree is built.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}
