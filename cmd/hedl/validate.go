package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dweve-ai/hedl"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a HEDL document, reporting the first error found",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			if _, err := hedl.Parse(data); err != nil {
				return userError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	return cmd
}
