package main

import (
	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the supported transport types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			res := svc.ListTypes(cmd.Context())
			return finish(cmd, &res.Envelope, res)
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <transport-type>",
		Short: "Describe the fields and capabilities of a transport type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			res := svc.TypeInfo(cmd.Context(), args[0])
			return finish(cmd, &res.Envelope, res)
		},
	}
}

func newExampleCmd() *cobra.Command {
	var xmlOnly bool

	cmd := &cobra.Command{
		Use:   "example <transport-type>",
		Short: "Print example order data and the XML generated from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			res := svc.Example(cmd.Context(), args[0])
			if xmlOnly && res.Success {
				_, err = cmd.OutOrStdout().Write([]byte(res.ExampleXML))
				return err
			}
			return finish(cmd, &res.Envelope, res)
		},
	}

	cmd.Flags().BoolVar(&xmlOnly, "xml", false, "print only the example XML")
	return cmd
}

func newRequirementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "requirements <transport-type>",
		Aliases: []string{"reqs"},
		Short:   "Print the parameter requirements and business rules of a transport type",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			res := svc.ParameterRequirements(cmd.Context(), args[0])
			return finish(cmd, &res.Envelope, res)
		},
	}
}
