package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/vaultlink/internal/domain/mention"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "List unlinked mentions of note titles",
	Long:  "Scans every note (or just [path]) for phrases that match another note's title, alias or variant.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	var mentions []mention.Mention
	if len(args) == 1 {
		mentions, err = s.engine.ScanFile(cmd.Context(), args[0])
	} else {
		mentions, err = s.engine.ScanMentions(cmd.Context())
	}
	if err != nil {
		return err
	}
	fmt.Print(formatMentions(mentions, s.engine.Doc))
	return nil
}
