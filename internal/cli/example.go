package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkoster/apiref/codegen"
	"github.com/pkoster/apiref/internal/config"
	"github.com/pkoster/apiref/openapi"
)

func ExampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "example METHOD PATH",
		Short: "Generate a client code example for one operation",
		Args:  cobra.ExactArgs(2),
		RunE:  runExample,
	}

	config.BindCommonFlags(cmd)
	cmd.Flags().String("stack", "", "Target stack (see `apiref stacks`)")

	return cmd
}

func runExample(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	doc, baseURL, err := loadDocument(cmd, cfg)
	if err != nil {
		return err
	}

	op, err := openapi.FindOperation(doc, args[0], args[1])
	if err != nil {
		return err
	}

	stack := cfg.Example.Stack
	if stack == "" {
		stack = codegen.Stacks()[0].Value
	}

	synth, err := codegen.NewSynthesizer(
		codegen.WithTemplateDir(cfg.Templates.Dir),
		codegen.WithLogger(newLogger(cfg)),
	)
	if err != nil {
		return err
	}

	code, err := synth.Generate(cmd.Context(), op, stack, baseURL)
	if err != nil {
		return fmt.Errorf("generating example: %w", err)
	}
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return writeOutput(cmd, cfg.Output, []byte(code))
}
