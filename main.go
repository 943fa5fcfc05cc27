// Command gameserver starts the OpenFour Connect Four server.
//
// It serves the WebSocket gameplay protocol on /ws, a small read-only REST
// surface under /api, and an MCP observation endpoint on /mcp. Flags and
// OPENFOUR_* environment variables control the listen address, the session
// capacity, per-connection send queues, and debug logging.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/openfour/gameserver/api"
	"github.com/openfour/gameserver/game/config"
	"github.com/openfour/gameserver/game/service"
	"github.com/openfour/gameserver/game/session"
	"github.com/openfour/gameserver/transport/mcp"
	"github.com/openfour/gameserver/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "OpenFour Game Server"
)

func main() {
	// Load .env if present; missing files are fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := &cli.Command{
		Name:    "gameserver",
		Usage:   "real-time Connect Four game server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "HTTP listen address",
				Value:       cfg.Addr,
				Destination: &cfg.Addr,
			},
			&cli.IntFlag{
				Name:        "max-sessions",
				Usage:       "maximum number of concurrently live games",
				Value:       cfg.MaxSessions,
				Destination: &cfg.MaxSessions,
			},
			&cli.IntFlag{
				Name:        "send-queue",
				Usage:       "per-connection outbound event queue size",
				Value:       cfg.SendQueueSize,
				Destination: &cfg.SendQueueSize,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "enable debug logging",
				Value:       cfg.Debug,
				Destination: &cfg.Debug,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			return run(ctx, cfg)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires the registry, service, and transports together and serves
// until a shutdown signal arrives.
func run(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg.Debug)

	registry := session.NewRegistry(cfg.MaxSessions, logger)
	svc := service.New(registry, logger)
	wsHandler := websocket.NewHandler(svc, cfg.SendQueueSize, logger)
	apiServer := api.NewServer(svc, wsHandler, logger)
	mcpServer := mcp.NewServer(svc, AppName, Version)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpServer))

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mainRouter,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.Addr).
			Int("max_sessions", cfg.MaxSessions).
			Msgf("%s v%s listening", AppName, Version)
		logger.Info().Msgf("WebSocket: ws://%s/ws", cfg.Addr)
		logger.Info().Msgf("REST API: http://%s/api", cfg.Addr)
		logger.Info().Msgf("MCP endpoint: http://%s/mcp", cfg.Addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newLogger builds the process logger.
func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stdout).
		With().Str("service", "gameserver").Timestamp().Logger().
		Level(level)
}

// mcpHandler mounts the MCP server on a plain HTTP endpoint.
func mcpHandler(mcpServer *mcp.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}
