package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	fsw "github.com/corey/vaultlink/internal/adapters/fsnotify"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index current as notes change",
	Long:  "Builds the index, then re-indexes each note as it is saved, renamed or deleted. Runs until interrupted.",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if flagFromSnapshot {
		return errors.New("watch reads the vault on disk; drop --from-snapshot")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	w, err := fsw.NewWatcher(fsw.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Print(formatStats(s.engine.Stats()))
	fmt.Printf("%swatching %s (ctrl-c to stop)%s\n", colorGray, s.root, colorReset)

	if err := s.engine.Watch(ctx, w, s.root); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Print(formatStats(s.engine.Stats()))
	return nil
}
