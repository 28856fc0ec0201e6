package main

import (
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		input   string
		asJSON  bool
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "generate <transport-type>",
		Short: "Generate a transport order document from JSON order data",
		Example: `  toxml example simple_road | jq .example_input | toxml generate simple_road
  toxml generate ocean_visibility --input order.json --output order.xml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderJSON, err := readInput(cmd, input)
			if err != nil {
				return err
			}

			svc, err := newService()
			if err != nil {
				return err
			}

			res := svc.Generate(cmd.Context(), args[0], orderJSON)
			if asJSON || !res.Success {
				return finish(cmd, &res.Envelope, res)
			}

			if outFile != "" {
				return writeFile(outFile, res.XML)
			}
			_, err = cmd.OutOrStdout().Write([]byte(res.XML))
			return err
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "order data JSON file, - for stdin")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "write the XML to this file instead of stdout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result envelope")
	return cmd
}
