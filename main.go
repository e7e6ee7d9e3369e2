package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/chazu/sketchsolid/pkg/config"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"
)

//go:embed all:frontend/dist
var assets embed.FS

// configEnv names the environment variable holding the config file path.
const configEnv = "SKETCHSOLID_CONFIG"

func main() {
	cfg := config.Default()
	if path := os.Getenv(configEnv); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Fatal("creating app", zap.Error(err))
	}

	err = wails.Run(&options.App{
		Title:  "sketchsolid",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.Error("wails run", zap.Error(err))
	}
}
