package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dweve-ai/hedl"
	"github.com/dweve-ai/hedl/document"
)

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Report per-type row counts and total field counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			doc, err := hedl.Parse(data)
			if err != nil {
				return userError(err)
			}

			rowCounts := map[string]int{}
			totalFields := 0
			walkErr := doc.Walk(func(n *document.Node) error {
				rowCounts[n.TypeName]++
				totalFields += len(n.Fields)
				return nil
			})
			if walkErr != nil {
				return internalError(walkErr)
			}

			out, err := json.MarshalIndent(map[string]interface{}{
				"rows_by_type": rowCounts,
				"total_fields": totalFields,
			}, "", "  ")
			if err != nil {
				return internalError(fmt.Errorf("marshaling stats: %w", err))
			}
			out = append(out, '\n')
			return writeOutput(cmd.Flags(), out)
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	return cmd
}
