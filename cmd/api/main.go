package main

import (
	"os"

	"nutricoach-backend/internal/bootstrap"
	"nutricoach-backend/internal/shared/config"
	"nutricoach-backend/internal/shared/server"
	"nutricoach-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": err})
		os.Exit(1)
	}
	if app.DB != nil {
		defer app.DB.Close()
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.starting", map[string]any{"addr": addr, "env": cfg.Env})

	if err := app.Router.Run(addr); err != nil {
		telemetry.Error("server.stopped", map[string]any{"err": err})
		os.Exit(1)
	}
}
