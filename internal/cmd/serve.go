package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httptransport "github.com/example/routine-bot/internal/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the event intake HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		events := httptransport.NewEventHandler(a.production, a.debug, a.catalog, a.chat, a.cal, a.cfg.ChannelID, time.Now, a.logger)
		commands := httptransport.NewCommandHandler(a.rotation, a.remote, a.directory, a.production.Ledger, a.chat, a.cal, a.cfg.ChannelID, time.Now, a.logger)
		interactions := httptransport.NewInteractionHandler(a.production, a.debug, a.catalog, a.chat, a.cal, a.cfg.ChannelID, time.Now, a.logger)

		handler := httptransport.NewRouter(httptransport.RouterConfig{
			Events:       events,
			Commands:     commands,
			Interactions: interactions,
			Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(a.logger)},
		})

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", a.cfg.HTTPPort),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("failed to shutdown server", "error", err)
			}
		}()

		a.logger.Info("routinebot listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
