package cli

import "github.com/spf13/cobra"

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "apiref",
		Short:   "apiref - API reference models and client examples from OpenAPI documents",
		Version: "1.0.0",

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(
		RenderCommand(),
		ExampleCommand(),
		StacksCommand(),
		LintCommand(),
	)

	return root
}
