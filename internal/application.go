package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/duelrooms-backend/internal/config"
	"github.com/rocketscienceinc/duelrooms-backend/internal/metrics"
	"github.com/rocketscienceinc/duelrooms-backend/internal/notify"
	"github.com/rocketscienceinc/duelrooms-backend/internal/repository"
	"github.com/rocketscienceinc/duelrooms-backend/internal/repository/storage"
	"github.com/rocketscienceinc/duelrooms-backend/internal/transport/rest"
	"github.com/rocketscienceinc/duelrooms-backend/internal/transport/websocket"
	"github.com/rocketscienceinc/duelrooms-backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	stats := metrics.New()

	sink, closeSinks, err := newNotifier(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeSinks()

	dispatcher := notify.NewDispatcher(logger, sink, conf.Notifications.QueueSize, stats.Notifications)
	dispatcher.Start()
	defer dispatcher.Close()

	rooms := repository.NewRoomRepository()
	hub := websocket.NewHub(logger, stats)
	gameManager := usecase.NewGameManager(logger, rooms, hub, dispatcher, stats, conf.Game)
	wsServer := websocket.New(logger, gameManager, hub, conf.AllowedOrigin)

	router := rest.NewRouter(logger, rest.Options{
		AllowedOrigin: conf.AllowedOrigin,
		DebugEndpoint: conf.DebugEndpoint,
	}, gameManager, stats.Handler(), wsServer)

	srv := &http.Server{
		Addr:              ":" + conf.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	// run HTTP and WebSocket server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := srv.ListenAndServe(); httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	dispatcher.Notify("Server started",
		fmt.Sprintf("Dots and Boxes socket server is running on port %s.", conf.HTTPPort))

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}

	// hijacked connections are not closed by Shutdown
	hub.Close()

	return nil
}

// newNotifier - log sink always, telegram and redis when enabled.
func newNotifier(ctx context.Context, logger *slog.Logger, conf *config.Config) (notify.Notifier, func(), error) {
	log := logger.With("component", "app")

	sinks := notify.Multi{notify.NewLogNotifier(logger)}
	closers := make([]func(), 0, 1)

	if conf.Telegram.Enabled {
		telegram, err := notify.NewTelegramNotifier(conf.Telegram.Token, conf.Telegram.ChatIDs)
		if err != nil {
			log.Warn("telegram notifications disabled", "error", err)
		} else {
			sinks = append(sinks, telegram)
		}
	}

	if conf.Redis.Enabled {
		client, err := storage.NewRedis(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis: %w", err)
		}

		sinks = append(sinks, notify.NewRedisNotifier(client, conf.Redis.Channel))
		closers = append(closers, func() {
			if closeErr := client.Close(); closeErr != nil {
				log.Error("could not close redis client", "error", closeErr)
			}
		})
	}

	return sinks, func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}, nil
}
