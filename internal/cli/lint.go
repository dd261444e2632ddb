package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkoster/apiref/internal/config"
	"github.com/pkoster/apiref/lint"
)

func LintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Validate an OpenAPI document and report issues",
		Args:  cobra.NoArgs,
		RunE:  runLint,
	}

	config.BindCommonFlags(cmd)

	return cmd
}

func runLint(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	data, err := readSpec(cmd, cfg.Spec)
	if err != nil {
		return err
	}

	report := lint.Run(data)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := writeOutput(cmd, cfg.Output, append(out, '\n')); err != nil {
		return err
	}

	if !report.Valid {
		return fmt.Errorf("document is invalid: %d issue(s)", len(report.Issues))
	}
	return nil
}
