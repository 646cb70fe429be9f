package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Taichi-iskw/enki/internal/httpapi"
)

// serveCmd runs the HTTP API until interrupted
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Serve the media catalog over HTTP on the configured http_addr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		router := httpapi.NewRouter(httpapi.RouterConfig{
			Media:     a.media,
			ReadyFunc: a.pool.Ping,
			Logger:    a.log,
		})
		srv := httpapi.NewServer(a.cfg.HTTPAddr, router)

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.Error("http shutdown", zap.Error(err))
			}
		}()

		if err := srv.Start(a.log); err != nil {
			return err
		}
		a.log.Info("http server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
