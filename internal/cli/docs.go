package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List indexed documents",
	Long: `List the names of all documents the backend has chunked and indexed.

Examples:
  docchat docs`,
	RunE: runDocs,
}

func runDocs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	list, err := apiClient.Documents(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if list.Total == 0 {
		fmt.Println("No documents indexed yet. Try 'docchat upload <path>'.")
		return nil
	}

	color.New(color.FgCyan, color.Bold).Printf("Documents (%d):\n\n", list.Total)
	for _, name := range list.Documents {
		fmt.Printf("- %s\n", name)
	}

	return nil
}
