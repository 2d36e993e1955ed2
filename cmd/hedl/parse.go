package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dweve-ai/hedl"
)

func newParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a HEDL document and print a summary of its header",
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
			logger.Debug("parsed document", "version", doc.Version.String())

			summary := map[string]interface{}{
				"version": doc.Version.String(),
				"structs": doc.StructKeys(),
				"aliases": doc.AliasKeys(),
				"nests":   doc.NestKeys(),
			}
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return internalError(fmt.Errorf("marshaling summary: %w", err))
			}
			out = append(out, '\n')
			return writeOutput(cmd.Flags(), out)
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	return cmd
}
