package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkoster/apiref/internal/config"
	"github.com/pkoster/apiref/openapi"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// loadDocument reads and parses the configured document. The spec may
// be a local path, "-" for stdin, or an http(s) URL. An unset base-url
// is derived from the document's address, then from its own servers
// block.
func loadDocument(cmd *cobra.Command, cfg *config.Config) (*openapi.Document, string, error) {
	data, err := readSpec(cmd, cfg.Spec)
	if err != nil {
		return nil, "", err
	}

	doc, err := openapi.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", cfg.Spec, err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" && isURL(cfg.Spec) {
		baseURL = openapi.BaseURLFromSpecURL(cfg.Spec)
	}
	if baseURL == "" {
		baseURL = doc.ServerURL()
	}
	return doc, baseURL, nil
}

func readSpec(cmd *cobra.Command, spec string) ([]byte, error) {
	if spec == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	if !isURL(spec) {
		data, err := os.ReadFile(spec)
		if err != nil {
			return nil, fmt.Errorf("reading spec file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, spec, nil)
	if err != nil {
		return nil, fmt.Errorf("building spec request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching spec: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching spec: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading spec response: %w", err)
	}
	return data, nil
}

func isURL(spec string) bool {
	return strings.HasPrefix(spec, "http://") || strings.HasPrefix(spec, "https://")
}

// newLogger builds the CLI logger. Diagnostics go to stderr so stdout
// stays clean for artifacts.
func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
}

// writeOutput sends an artifact to the configured file, or stdout when
// none is set.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	cmd.PrintErrf("Written: %s\n", path)
	return nil
}
