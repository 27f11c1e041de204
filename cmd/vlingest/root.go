package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vlingest/configs"
	"vlingest/internal/config"
	"vlingest/internal/logging"

	// register all backends with the storage factory.
	_ "vlingest/internal/storage/all"
)

const embeddedPipeline = "pipelines/sample.yaml"

// globalOpts holds the persistent flags shared by every subcommand.
type globalOpts struct {
	configPath string
	logMode    string
	logLevel   string
	verbose    bool

	logger *zap.Logger
	undo   func()
}

func newRootCmd() *cobra.Command {
	g := &globalOpts{}
	root := &cobra.Command{
		Use:   "vlingest",
		Short: "Normalize viral-load study datasets into one canonical table",
		Long: `vlingest reads each study's raw CSV/Excel files, maps them onto the
canonical viral-load schema, combines the results, and writes them to a
CSV file or a database.

With no --config the built-in sample pipeline is used.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := g.logLevel
			if g.verbose {
				level = "debug"
			}
			lg, err := logging.New(g.logMode, level)
			if err != nil {
				return err
			}
			g.logger = lg
			g.undo = zap.ReplaceGlobals(lg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
			if g.undo != nil {
				g.undo()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "pipeline config path (.yaml/.yml or .json); empty uses the built-in sample")
	pf.StringVar(&g.logMode, "log-mode", "dev", "log encoding: dev (console) or prod (JSON)")
	pf.StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "shorthand for --log-level=debug")

	root.AddCommand(
		newRunCmd(g),
		newValidateCmd(g),
		newStudiesCmd(),
		newServeCmd(g),
	)
	return root
}

// loadPipeline reads --config, or the embedded sample pipeline when unset.
// The returned base directory resolves relative study descriptor paths.
func (g *globalOpts) loadPipeline() (config.Pipeline, string, error) {
	if g.configPath == "" {
		b, err := fs.ReadFile(configs.Pipelines, embeddedPipeline)
		if err != nil {
			return config.Pipeline{}, "", fmt.Errorf("read built-in pipeline: %w", err)
		}
		p, err := config.DecodePipeline(b, embeddedPipeline)
		return p, "", err
	}
	p, err := config.Load(g.configPath)
	if err != nil {
		return config.Pipeline{}, "", err
	}
	return p, filepath.Dir(g.configPath), nil
}

// errInvalidConfig is returned when validation reports at least one error.
var errInvalidConfig = errors.New("configuration is invalid")

// reportIssues prints issues to cmd's error stream and returns
// errInvalidConfig if any is an error.
func reportIssues(cmd *cobra.Command, where string, issues []config.Issue) error {
	for _, iss := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s: %s\n", where, iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("%s: %w", where, errInvalidConfig)
	}
	return nil
}
