package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a one-shot question about your documents",
	Long: `Ask a question against the indexed documents and print the answer with
the sources it was drawn from.

Examples:
  docchat ask "What is the refund policy?"
  docchat ask "Summarize the termination clause" --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := context.Background()

	res, err := apiClient.Query(ctx, question)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Width(answerWidth()).Render(res.Answer))

	if len(res.Sources) > 0 {
		color.New(color.FgCyan, color.Bold).Printf("\nSources (%d chunks):\n", res.NumChunks)
		for i, src := range res.Sources {
			fmt.Printf("  [%d] %s (page %d, %s)\n", i+1, src.Filename, src.Page, relevancePercent(src.Relevance))
		}
	}

	if verbose {
		fmt.Printf("\nModel: %s\n", res.Model)
	}

	return nil
}

// answerWidth picks a wrap width from the terminal, capped for readability.
func answerWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	if w > 100 {
		return 100
	}
	return w
}
