package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var flagIndexTerms string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the term index and show counts",
	Long:  "Indexes every note's title, aliases, singular/plural variants and synonym abbreviations. With --terms, prints the keys one note contributes.",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&flagIndexTerms, "terms", "", "print the terms registered for this note title")
}

func runIndex(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Print(formatStats(s.engine.Stats()))
	if flagIndexTerms == "" {
		return nil
	}

	refs := s.engine.Lookup(flagIndexTerms)
	if len(refs) == 0 {
		return fmt.Errorf("no note answers to %q", flagIndexTerms)
	}
	for _, ref := range refs {
		fmt.Printf("  %s%s%s: %s\n", colorCyan, ref.Path, colorReset,
			strings.Join(s.engine.TermsOf(ref.ID), ", "))
	}
	return nil
}
