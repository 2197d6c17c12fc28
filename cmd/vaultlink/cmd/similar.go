package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var similarCmd = &cobra.Command{
	Use:   "similar <name>",
	Short: "Find an existing note whose title is a near-duplicate of name",
	Long:  "Uses normalized edit distance against every title; the threshold and first/best policy come from config.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	name := strings.Join(args, " ")
	id, ok := s.engine.FindSimilar(name)
	if !ok {
		fmt.Printf("%sno note similar to %q%s\n", colorGray, name, colorReset)
		return nil
	}
	ref, _ := s.engine.Doc(id)
	fmt.Printf("%s[[%s]]%s  %s%s%s\n", colorGreen, ref.Title, colorReset, colorCyan, ref.Path, colorReset)
	return nil
}
