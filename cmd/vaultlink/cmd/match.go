package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <text>",
	Short: "Show which notes a piece of text mentions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	spans := s.engine.FindMatches(strings.Join(args, " "))
	fmt.Print(formatSpans(spans, s.engine.Doc))
	return nil
}
