package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/filterq/query/catalog"
	"github.com/dhamidi/filterq/query/complete"
	"github.com/dhamidi/filterq/ui"
)

var log = commonlog.GetLogger("filterq.cmd")

func newUICmd() *cobra.Command {
	var addr string
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web playground",
		Long: `Start a web page for trying out queries. Completions and parse errors
update while typing. The catalog given with --catalog is reloaded whenever
it changes on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := flags.engine()
			if err != nil {
				return err
			}
			server, err := ui.NewServer(engine)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if flags.catalog != "" {
				err := watchCatalog(ctx, flags.catalog, func(cfg complete.Config) {
					server.SetEngine(server.Engine().WithConfig(cfg))
				})
				if err != nil {
					log.Errorf("catalog %s will not be reloaded: %s", flags.catalog, err)
				}
			}

			httpServer := &http.Server{Addr: addr, Handler: server}
			go func() {
				<-ctx.Done()
				httpServer.Shutdown(context.Background())
			}()

			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at http://%s\n", displayAddr)
			if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	flags.registerCatalog(cmd)

	return cmd
}

// watchCatalog reloads path in the background until ctx is done. Errors
// setting up the watch are returned; errors after that are logged.
func watchCatalog(ctx context.Context, path string, onChange func(complete.Config)) error {
	w, err := catalog.NewWatcher(path)
	if err != nil {
		return err
	}
	go func() {
		defer w.Close()
		if err := w.Run(ctx, onChange); err != nil {
			log.Errorf("catalog watcher stopped: %s", err)
		}
	}()
	return nil
}
