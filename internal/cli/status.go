package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"docchat/internal/metrics"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health and collection counts",
	Long: `Check the backend and print its health report, the state of its
collaborators, and the size of the indexed collection.

Examples:
  docchat status
  docchat status --verbose`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	h, err := apiClient.Health(ctx)
	if err != nil {
		return fmt.Errorf("backend unreachable at %s: %w", apiClient.BaseURL(), err)
	}

	header := color.New(color.FgCyan, color.Bold)

	header.Println("Backend")
	fmt.Printf("  Address:   %s\n", apiClient.BaseURL())
	printStateLine("Status", h.Status, "healthy")
	printStateLine("Ollama", h.Ollama, "connected")
	printStateLine("Database", h.Database, "connected")
	fmt.Printf("  Model:     %s\n", h.Model)

	header.Println("\nCollection")
	fmt.Printf("  Documents: %d\n", h.Collection.DocumentCount)
	fmt.Printf("  Chunks:    %d\n", h.Collection.ChunkCount)

	if !verbose {
		return nil
	}

	info, err := apiClient.Stats(ctx)
	if err != nil {
		fmt.Printf("\nStore details unavailable: %v\n", err)
	} else {
		header.Println("\nStore")
		fmt.Printf("  Collection: %s\n", info.CollectionName)
		fmt.Printf("  Directory:  %s\n", info.PersistDirectory)
	}

	printTimings(collector.Snapshot())
	return nil
}

// printStateLine colors the value green when it matches the healthy state.
func printStateLine(label, value, healthy string) {
	c := color.New(color.FgRed)
	if value == healthy {
		c = color.New(color.FgGreen)
	}
	fmt.Printf("  %-10s %s\n", label+":", c.Sprint(value))
}

// printTimings renders the request timings this process has collected.
func printTimings(snap metrics.Snapshot) {
	ops := []struct {
		name string
		s    *metrics.OperationSnapshot
	}{
		{"query", snap.Query},
		{"upload", snap.Upload},
		{"health", snap.Health},
		{"documents", snap.Documents},
		{"stats", snap.Stats},
	}

	color.New(color.FgCyan, color.Bold).Println("\nRequest timings")
	fmt.Printf("  %-10s %6s %8s %8s %8s %7s\n", "OP", "COUNT", "AVG", "MIN", "MAX", "ERRORS")
	for _, op := range ops {
		if op.s == nil {
			continue
		}
		fmt.Printf("  %-10s %6d %6.0fms %6dms %6dms %7d\n",
			op.name, op.s.Count, op.s.AvgTimeMs, op.s.MinTimeMs, op.s.MaxTimeMs, op.s.Errors)
	}
}
