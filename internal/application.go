package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-client/internal/config"
	"github.com/rocketscienceinc/tictactoe-client/internal/gameclient"
	"github.com/rocketscienceinc/tictactoe-client/internal/view"
	"github.com/rocketscienceinc/tictactoe-client/transport/terminal"
	"github.com/rocketscienceinc/tictactoe-client/transport/web"
)

// RunApp - runs the application in the configured mode.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	newController := ControllerFactory(logger, conf)

	if conf.IsTerminal() {
		controller, err := newController()
		if err != nil {
			return err
		}

		log.Info("Starting terminal UI", "game-server", conf.GameServer.URL)
		if err = terminal.New(logger, controller).Run(ctx); err != nil {
			return fmt.Errorf("terminal UI error: %w", err)
		}

		return nil
	}

	sessions := web.NewSessions(logger, newController, conf.Web.SessionTTL)
	server := web.New(logger, sessions)

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "game-server", conf.GameServer.URL)
	if err := server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// ControllerFactory - every view gets its own game server client.
func ControllerFactory(logger *slog.Logger, conf *config.Config) web.ControllerFactory {
	return func() (*view.Controller, error) {
		client, err := gameclient.New(conf.GameServer.URL, conf.GameServer.Timeout)
		if err != nil {
			return nil, fmt.Errorf("could not create game server client: %w", err)
		}

		return view.NewController(logger, client), nil
	}
}
