package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/vaultlink/internal/adapters/bbolt"
	"github.com/corey/vaultlink/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the vault root, config and snapshot paths, and the effective settings as YAML. Does not index.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root, err := vaultRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	paths := app.NewPaths(root)
	configPath := paths.Config
	if flagConfig != "" {
		configPath = flagConfig
	}

	configStatus := fmt.Sprintf("%s✗ not found (defaults)%s", colorYellow, colorReset)
	if _, err := os.Stat(configPath); err == nil {
		configStatus = fmt.Sprintf("%s✓ loaded%s", colorGreen, colorReset)
	}
	snapStatus := fmt.Sprintf("%s✗ none%s", colorYellow, colorReset)
	if _, err := os.Stat(paths.Snapshot); err == nil {
		if store, err := bbolt.NewStore(paths.Snapshot); err == nil {
			if at, ok, _ := store.SavedAt(root); ok {
				snapStatus = fmt.Sprintf("%s✓ %s%s", colorGreen, at.Format("2006-01-02 15:04:05"), colorReset)
			}
			store.Close()
		}
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	fmt.Printf("%s⚡ vaultlink config%s\n", colorBold, colorReset)
	fmt.Printf("  Vault:      %s\n", root)
	fmt.Printf("  Config:     %s  %s\n", configPath, configStatus)
	fmt.Printf("  Snapshot:   %s  %s\n", paths.Snapshot, snapStatus)
	fmt.Println()
	fmt.Print(string(data))
	return nil
}
