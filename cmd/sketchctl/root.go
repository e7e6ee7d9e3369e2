package main

import (
	"fmt"
	"os"

	"github.com/chazu/sketchsolid/pkg/config"
	"github.com/chazu/sketchsolid/pkg/engine"
	"github.com/chazu/sketchsolid/pkg/kernel"
	"github.com/chazu/sketchsolid/pkg/kernel/sdfx"
	"github.com/chazu/sketchsolid/pkg/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	logLevel   string
	dbPath     string

	cfg    config.Config
	log    *zap.Logger
	kernel kernel.Kernel
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "sketchctl",
		Short:         "Evaluate sketch scripts and manage the sketch library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.log != nil {
				_ = o.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", os.Getenv("SKETCHSOLID_CONFIG"), "TOML config file")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().StringVar(&o.dbPath, "db", "", "override the sketch library path")

	root.AddCommand(
		newEvalCmd(o),
		newExportCmd(o),
		newLibraryCmd(o),
		newConfigCmd(o),
	)
	return root
}

// setup loads the config and builds the logger once flags are parsed.
func (o *options) setup() error {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.dbPath != "" {
		cfg.Store.Path = o.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	o.cfg, o.log = cfg, log
	o.kernel = sdfx.New(sdfx.WithMeshCells(cfg.Extrude.MeshCells))
	return nil
}

// loadScript evaluates the script at path. Script errors are joined into
// the returned error.
func (o *options) loadScript(path string) (*engine.Sketch, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine(
		engine.WithTolerance(o.cfg.Sketch.Tolerance),
		engine.WithLogger(o.log.Named("engine")),
	)
	sk, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		return nil, fmt.Errorf("%s: %w", path, evalErrs[0])
	}
	return sk, nil
}

// sessionFor opens a session holding the script's sketch.
func (o *options) sessionFor(sk *engine.Sketch) (*session.Session, error) {
	s, err := session.New(o.cfg, o.kernel, o.log.Named("session"))
	if err != nil {
		return nil, err
	}
	if err := s.Enter(sk.Orientation, sk.Offset); err != nil {
		return nil, err
	}
	if err := s.Load(sk.Curves); err != nil {
		return nil, err
	}
	return s, nil
}
