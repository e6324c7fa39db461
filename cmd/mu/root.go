package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mu-graph/mu/config"
	"github.com/mu-graph/mu/errs"
	"github.com/mu-graph/mu/extract"
	"github.com/mu-graph/mu/project"
	"github.com/mu-graph/mu/store"
)

var (
	flagPath    string
	flagNoColor bool
	flagVerbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mu",
	Short: "Compress codebases into dense, queryable structural summaries",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setColorEnabled(!flagNoColor)

		zcfg := zap.NewProductionConfig()
		if flagVerbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		l, err := zcfg.Build()
		if err != nil {
			return errs.Wrap(errs.Invariant, "cannot initialize logger", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPath, "path", "", "project root (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(bootstrapCmd, statusCmd, compressCmd, exportCmd,
		queryCmd, qCmd, depsCmd, impactCmd, ancestorsCmd, cyclesCmd, pathCmd,
		diffCmd, searchCmd)
}

// resolveRoot returns the project root: --path if given verbatim, else the
// nearest marker-file root detected upward from the working directory (spec
// §6.1), falling back to the working directory itself when nothing is
// detected.
func resolveRoot() (string, error) {
	if flagPath != "" {
		abs, err := filepath.Abs(flagPath)
		if err != nil {
			return "", errs.Wrap(errs.Config, "cannot resolve --path", err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errs.Wrap(errs.IO, "cannot determine working directory", err)
	}
	info, err := project.Detect(wd)
	if err != nil {
		return wd, nil
	}
	return info.RootPath, nil
}

// muDir returns <root>/.mu, creating it if absent.
func muDir(root string) (string, error) {
	dir := filepath.Join(root, ".mu")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(errs.IO, "cannot create .mu directory", err).WithPath(dir, 0)
	}
	return dir, nil
}

func loadConfig(root string) (*config.Config, error) {
	return config.Load(root, nil)
}

// openStore opens <root>/.mu/mubase, creating the schema on first use.
func openStore(root string) (*store.Store, error) {
	dir, err := muDir(root)
	if err != nil {
		return nil, err
	}
	return store.Open(filepath.Join(dir, "mubase"))
}

func defaultExtractFactory() *extract.Factory {
	return extract.DefaultFactory()
}
