package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"assetstudio/internal/http/handlers"
	"assetstudio/internal/http/httpapi"
	"assetstudio/internal/infra"
	"assetstudio/internal/metrics"
)

func (a *app) statusCommand() *cobra.Command {
	var requestID string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Look up a queued request on the image service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			status, err := client.RequestStatus(cmd.Context(), requestID)
			if err != nil {
				return fmt.Errorf("request status: %w", err)
			}
			a.info("Request %s: %s", status.RequestID, status.Status)
			for i, img := range status.Images {
				fmt.Fprintf(a.out, "  %d. %s\n", i+1, img.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&requestID, "request-id", "", "Request id returned by the image service")
	_ = cmd.MarkFlagRequired("request-id")
	return cmd
}

func (a *app) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently saved assets from the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required for history")
			}
			ledger, closeFn, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			assets, err := ledger.ListRecent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			if len(assets) == 0 {
				a.info("No assets recorded yet")
				return nil
			}
			for _, asset := range assets {
				fmt.Fprintf(a.out, "%s  %-8s %s\n", asset.CreatedAt.Local().Format(time.DateTime), asset.Kind, asset.Path)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of rows to show")
	return cmd
}

func (a *app) serveCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the asset API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			collector := metrics.NewCollector("")
			svc, err := a.newServices(cmd.Context(), collector)
			if err != nil {
				return err
			}
			defer svc.close()

			api := handlers.NewApp(svc.studio, svc.client, svc.ledger, &a.logger)
			router := httpapi.NewRouter(api, httpapi.Options{
				Logger:         a.logger,
				Metrics:        collector,
				AllowedOrigins: a.cfg.AllowedOrigins,
			})
			server := infra.NewHTTPServer(a.cfg, router)

			a.logger.Info().Str("addr", server.Addr()).Str("model", svc.client.Model()).Msg("asset API listening")
			if err := server.Run(cmd.Context()); err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			a.logger.Info().Msg("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (defaults to PORT)")
	return cmd
}
