package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkoster/apiref/internal/config"
	"github.com/pkoster/apiref/reference"
)

func RenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the API reference model as JSON",
		RunE:  runRender,
	}

	config.BindCommonFlags(cmd)

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	doc, baseURL, err := loadDocument(cmd, cfg)
	if err != nil {
		return err
	}

	model := reference.Build(cmd.Context(), doc, baseURL, reference.WithLogger(newLogger(cfg)))

	endpoints := 0
	for _, tag := range model.Tags {
		endpoints += len(tag.Endpoints)
	}
	cmd.PrintErrf("Loaded %s document: %s v%s\n", doc.Dialect(), model.Title, model.Version)
	cmd.PrintErrf("  Tags: %d\n", len(model.Tags))
	cmd.PrintErrf("  Endpoints: %d\n", endpoints)

	out, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	return writeOutput(cmd, cfg.Output, append(out, '\n'))
}
