package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/corey/vaultlink/internal/app"
)

var contextCmd = &cobra.Command{
	Use:   "context <file> <line>",
	Short: "Print the paragraph or list context around a line",
	Long:  "Lines are 1-based. List items print with their parent item and nested children.",
	Args:  cobra.ExactArgs(2),
	RunE:  runContext,
}

func runContext(cmd *cobra.Command, args []string) error {
	line, err := strconv.Atoi(args[1])
	if err != nil || line < 1 {
		return fmt.Errorf("line must be a positive integer, got %q", args[1])
	}

	root, err := vaultRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	provider, closeProvider, err := openProvider(root, cfg, app.NewPaths(root))
	if err != nil {
		return err
	}
	defer closeProvider()
	engine, err := app.New(cfg, provider, app.WithLogger(logger))
	if err != nil {
		return err
	}
	defer engine.Release()

	doc, err := provider.Document(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	block := engine.ExtractContext(doc.Lines, line-1)
	if block == nil {
		return fmt.Errorf("%s has %d lines", doc.Path, len(doc.Lines))
	}
	for _, l := range block {
		fmt.Println(l)
	}
	return nil
}
