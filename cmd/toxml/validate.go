package main

import (
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var transportType string

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a transport order document",
		Long: `Validate a transport order document read from file or stdin.

Without --type the transport type is detected from the document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			xml, err := readInput(cmd, path)
			if err != nil {
				return err
			}

			svc, err := newService()
			if err != nil {
				return err
			}

			report := svc.Validate(cmd.Context(), xml, transportType)
			return finish(cmd, &report.Envelope, report)
		},
	}

	cmd.Flags().StringVarP(&transportType, "type", "t", "", "expected transport type")
	return cmd
}
