package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facebookgo/clock"
	"github.com/spf13/cobra"

	"study-client/internal/loading"
	transport "study-client/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand that exposes the client engine to a renderer.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the websocket view bridge and share links",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	rt, err := loadRuntime(ctx, configPath)
	if err != nil {
		return err
	}
	defer rt.Close()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = rt.cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	overlay := loading.NewOverlay(rt.coordinator, clock.New())
	defer overlay.Close()
	overlay.Subscribe(func(visible bool) {
		rt.log.Debug("busy overlay changed", "visible", visible)
	})

	wsHandler := transport.NewWSHandler(rt.library, overlay, rt.newSession, rt.log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/s/", wsHandler.SharedVideo)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		rt.log.Info("starting view bridge", "port", finalPort, "api", rt.cfg.API.BaseURL, "api_timeout", rt.gateway.Timeout())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rt.log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		rt.log.Info("shutting down server")
	case <-ctx.Done():
		rt.log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
