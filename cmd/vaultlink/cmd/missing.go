package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagMissingRender bool

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "List wikilinks that point at notes that do not exist",
	Long:  "With --render, prints a generated reference note for each missing target, quoting the context of every link to it.",
	Args:  cobra.NoArgs,
	RunE:  runMissing,
}

func init() {
	missingCmd.Flags().BoolVar(&flagMissingRender, "render", false, "print a reference note for each missing target")
}

func runMissing(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	missing, err := s.engine.MissingLinks(cmd.Context())
	if err != nil {
		return err
	}
	if !flagMissingRender {
		fmt.Print(formatMissing(missing))
		return nil
	}

	for i, ml := range missing {
		out, err := s.engine.RenderReferenceNote(cmd.Context(), ml.Target)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Println("---")
		}
		fmt.Print(out)
	}
	return nil
}
