package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dweve-ai/hedl"
	"github.com/dweve-ai/hedl/convert"
	"github.com/dweve-ai/hedl/document"
)

func newConvertCommand() *cobra.Command {
	var to, from string

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a HEDL document to or from JSON/YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			cfg := convert.DefaultConfig()

			if from != "" {
				doc, err := decodeWith(from, data, cfg)
				if err != nil {
					return userError(err)
				}
				return writeOutput(cmd.Flags(), hedl.Canonicalize(doc))
			}

			doc, err := hedl.Parse(data)
			if err != nil {
				return userError(err)
			}
			out, err := encodeWith(to, doc, cfg)
			if err != nil {
				return userError(err)
			}
			return writeOutput(cmd.Flags(), out)
		},
	}
	cmd.Flags().StringVar(&to, "to", "json", "target format when converting from HEDL: json|yaml")
	cmd.Flags().StringVar(&from, "from", "", "source format when converting to HEDL: json|yaml")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	return cmd
}

func encodeWith(format string, doc *document.Document, cfg convert.Config) ([]byte, error) {
	switch format {
	case "json":
		return convert.ToJSON(doc, cfg)
	case "yaml":
		return convert.ToYAML(doc, cfg)
	default:
		return nil, fmt.Errorf("unsupported --to format %q (want json or yaml)", format)
	}
}

func decodeWith(format string, data []byte, cfg convert.Config) (*document.Document, error) {
	switch format {
	case "json":
		return convert.FromJSON(data, cfg)
	case "yaml":
		return convert.FromYAML(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported --from format %q (want json or yaml)", format)
	}
}
