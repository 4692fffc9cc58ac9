package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mircad/telelink/agent"
	"github.com/mircad/telelink/config"
	"github.com/mircad/telelink/console"
	"github.com/mircad/telelink/discovery"
	"github.com/mircad/telelink/hardware"
	"github.com/mircad/telelink/web"
)

func main() {
	configPath := flag.String("config", "agent.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	logger := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)})
	slog.SetDefault(slog.New(logger))

	host := cfg.Controller.Host
	port := cfg.Controller.Port
	if host == "" {
		ctrl, err := discovery.Discover(0)
		if err != nil {
			slog.Error("No controller host configured and discovery failed", "error", err)
			os.Exit(1)
		}
		host, port = ctrl.Address, ctrl.Port
	}

	sessionCfg := agent.Config{
		DeviceID:      cfg.Device.ID,
		Owner:         cfg.Device.Owner,
		Host:          host,
		Port:          port,
		CheckInterval: cfg.Controller.CheckInterval,
		Hardware:      hardware.NewSimFactory(),
	}
	if cfg.Console.Enabled {
		sessionCfg.Console = console.NewShell()
	}

	session := agent.New(sessionCfg)

	var webServer *web.Server
	if cfg.Web.Enabled {
		webServer = web.NewServer(session, cfg.Web.Bind)
		go func() {
			if err := webServer.Start(); err != nil {
				slog.Error("Web API failed", "error", err)
			}
		}()
	}

	if err := session.ConnectStream(); err != nil {
		slog.Error("Failed to connect to controller", "host", host, "port", port, "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to controller", "host", host, "port", port, "device", cfg.Device.ID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down")
	session.Disconnect()
	if webServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Web API shutdown failed", "error", err)
		}
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
