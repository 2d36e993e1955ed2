package main

import (
	"github.com/spf13/cobra"

	"github.com/dweve-ai/hedl"
)

func newCanonicalizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canonicalize [file]",
		Short: "Render a HEDL document's canonical byte form",
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
			return writeOutput(cmd.Flags(), hedl.Canonicalize(doc))
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	return cmd
}
