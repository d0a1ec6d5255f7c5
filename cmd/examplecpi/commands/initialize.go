package commands

import (
	"github.com/spf13/cobra"
)

func initializeCmd() *cobra.Command {
	var program string
	cmd := &cobra.Command{
		Use:   "initialize",
		Short: "Call initialize on the workspace program and print the signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := appCtx.Program(program)
			if err != nil {
				return err
			}
			tx, err := p.Method("initialize").RPC(cmd.Context())
			if err != nil {
				return err
			}
			printSignature(cmd, tx)
			return nil
		},
	}
	cmd.Flags().StringVar(&program, "program", "ExampleCpi", "workspace program name")
	return cmd
}
