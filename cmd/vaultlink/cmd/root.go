package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/vaultlink/internal/adapters/bbolt"
	"github.com/corey/vaultlink/internal/adapters/vault"
	"github.com/corey/vaultlink/internal/app"
	"github.com/corey/vaultlink/internal/config"
	"github.com/corey/vaultlink/internal/ports"
)

var (
	flagVault        string
	flagConfig       string
	flagNoColor      bool
	flagVerbose      bool
	flagFromSnapshot bool
)

var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:           "vaultlink",
	Short:         "Find unlinked mentions in a markdown vault",
	Long:          "Indexes note titles and aliases, finds where they are mentioned without a link, and lists wikilinks that point nowhere.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		if !resolveColor(flagNoColor) {
			disableColor()
		}
		return nil
	},
}

// vaultRoot returns the absolute vault root (--vault, else cwd).
func vaultRoot() (string, error) {
	dir := flagVault
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	return filepath.Abs(dir)
}

// loadConfig reads --config, else the vault's .vaultlink.yaml, over defaults.
func loadConfig(root string) (config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig)
	}
	return config.LoadVault(root)
}

// session is everything one command needs: config, paths and a built engine.
type session struct {
	root   string
	cfg    config.Config
	paths  *app.Paths
	engine *app.Engine
	close  func()
}

// openProvider returns the vault on disk, or its saved snapshot with
// --from-snapshot. The returned func releases the snapshot store.
func openProvider(root string, cfg config.Config, paths *app.Paths) (ports.DocumentProvider, func(), error) {
	if flagFromSnapshot {
		store, err := bbolt.NewStore(paths.Snapshot)
		if err != nil {
			if isDBLockError(err) {
				return nil, nil, fmt.Errorf("%w\n%s", err, diagnoseDBLock(paths.Snapshot))
			}
			return nil, nil, err
		}
		return bbolt.NewSnapshot(store, root), func() { store.Close() }, nil
	}
	p, err := vault.New(root, vault.WithLogger(logger), vault.WithExclude(cfg.Excluded))
	if err != nil {
		return nil, nil, err
	}
	return p, func() {}, nil
}

// newSession loads config, opens the provider and builds the index.
func newSession(ctx context.Context) (*session, error) {
	root, err := vaultRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	paths := app.NewPaths(root)

	provider, closeProvider, err := openProvider(root, cfg, paths)
	if err != nil {
		return nil, err
	}
	engine, err := app.New(cfg, provider, app.WithLogger(logger))
	if err != nil {
		closeProvider()
		return nil, err
	}
	s := &session{
		root:   root,
		cfg:    cfg,
		paths:  paths,
		engine: engine,
		close: func() {
			engine.Release()
			closeProvider()
		},
	}
	if _, err := engine.BuildIndex(ctx); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", colorYellow, colorReset, err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagVault, "vault", "", "vault root (default: current directory)")
	pf.StringVar(&flagConfig, "config", "", "config file (default: <vault>/"+config.FileName+")")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging on stderr")
	pf.BoolVar(&flagFromSnapshot, "from-snapshot", false, "read notes from the saved snapshot instead of disk")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(missingCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(configCmd)
}
