package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkoster/apiref/codegen"
)

func StacksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stacks",
		Short: "List the supported code example stacks",
		Args:  cobra.NoArgs,
		RunE:  runStacks,
	}
}

func runStacks(cmd *cobra.Command, _ []string) error {
	out, err := json.MarshalIndent(codegen.Stacks(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stacks: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
