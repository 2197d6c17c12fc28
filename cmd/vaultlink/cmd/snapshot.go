package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/vaultlink/internal/adapters/bbolt"
	"github.com/corey/vaultlink/internal/adapters/vault"
	"github.com/corey/vaultlink/internal/app"
)

var flagSnapshotDelete bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save the vault's notes to .vaultlink/snapshot.db",
	Long:  "Other commands read the saved copy with --from-snapshot. --delete removes it.",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().BoolVar(&flagSnapshotDelete, "delete", false, "remove the saved snapshot")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	root, err := vaultRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	store, err := bbolt.NewStore(paths.Snapshot)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("%w\n%s", err, diagnoseDBLock(paths.Snapshot))
		}
		return err
	}
	defer store.Close()

	if flagSnapshotDelete {
		if err := store.DeleteVault(root); err != nil {
			return err
		}
		fmt.Printf("%ssnapshot removed%s\n", colorGreen, colorReset)
		return nil
	}

	provider, err := vault.New(root, vault.WithLogger(logger), vault.WithExclude(cfg.Excluded))
	if err != nil {
		return err
	}
	docs, err := provider.Documents(cmd.Context())
	if err != nil {
		return err
	}
	if err := store.SaveDocuments(root, docs); err != nil {
		return err
	}
	fmt.Printf("%s⚡ saved%s %d notes → %s\n", colorBold, colorReset, len(docs), paths.Snapshot)
	return nil
}
