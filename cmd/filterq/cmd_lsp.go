package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/filterq/query/lsp"
	"github.com/dhamidi/filterq/telemetry"
)

func newLSPCmd() *cobra.Command {
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		Long: `Start the Language Server Protocol server on stdio.

Every line of a document is one query. The server publishes syntax errors
as diagnostics and answers completion, hover and formatting requests. The
catalog given with --catalog, or with the "catalog" initialization option,
is reloaded whenever it changes on disk.

Set FILTERQ_OTEL_TRACES=1 or FILTERQ_OTEL_METRICS=1 to record requests with
OpenTelemetry; spans are written to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := flags.engine()
			if err != nil {
				return err
			}

			ctx := context.Background()
			provider, err := telemetry.Setup(ctx, telemetry.LoadConfigFromEnv())
			if err != nil {
				return fmt.Errorf("setup telemetry: %w", err)
			}
			defer provider.Shutdown(ctx)

			opts := []lsp.Option{lsp.WithEngine(engine), lsp.WithTelemetry(provider)}
			if flags.catalog != "" {
				opts = append(opts, lsp.WithCatalog(flags.catalog))
			}
			server := lsp.NewServer(version, opts...)
			return server.RunStdio()
		},
	}

	flags.registerCatalog(cmd)

	return cmd
}
