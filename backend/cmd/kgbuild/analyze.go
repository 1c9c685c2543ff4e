package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/source"
)

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Summarize a dry-run statement file",
		Long:  "Count the node labels, relationship types and relationship patterns in a file written by a dry run.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			raw, _, err := source.Decode(data)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", args[0], err)
			}

			var statements []graph.Statement
			if raw != nil {
				if err := json.Unmarshal(raw, &statements); err != nil {
					return fmt.Errorf("%s is not a statement array: %w", args[0], err)
				}
			}

			summary := graph.Summarize(statements)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func printSummary(w io.Writer, s graph.Summary) {
	fmt.Fprintf(w, "Total statements: %d\n", s.Total)
	if s.Unrecognized > 0 {
		fmt.Fprintf(w, "Unrecognized:     %d\n", s.Unrecognized)
	}

	fmt.Fprintln(w, "\nNode labels:")
	for _, label := range graph.SortedKeys(s.NodeLabels) {
		fmt.Fprintf(w, "  %-20s %d\n", label, s.NodeLabels[label])
	}

	fmt.Fprintln(w, "\nRelationship types:")
	for _, t := range graph.SortedKeys(s.RelationshipTypes) {
		fmt.Fprintf(w, "  %-20s %d\n", t, s.RelationshipTypes[t])
	}

	fmt.Fprintln(w, "\nRelationship patterns:")
	for _, p := range graph.SortedKeys(s.RelationshipPatterns) {
		fmt.Fprintf(w, "  %s: %d\n", p, s.RelationshipPatterns[p])
	}
}
