package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-drive/config"
	"github.com/lixenwraith/vi-drive/core"
	"github.com/lixenwraith/vi-drive/engine"
	"github.com/lixenwraith/vi-drive/logging"
)

var (
	configFlag  = flag.String("config", "", "Config file (toml, json or yaml)")
	vehicleFlag = flag.String("vehicle", "", "Vehicle profile to drive at startup")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *vehicleFlag != "" {
		cfg.Vehicle = *vehicleFlag
	}

	log, logFile, err := logging.Setup(logging.Options{
		Enabled:        cfg.Log.Enabled,
		Level:          cfg.Log.Level,
		Dir:            cfg.Log.Dir,
		File:           cfg.Log.File,
		GraylogAddress: graylogAddress(cfg),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	core.SetCrashHook(screen.Fini)

	// Panic on the frame loop goroutine: restore the terminal before printing
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mVI-DRIVE CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sb, err := newSandbox(ctx, cfg, screen, engine.NewMonotonicTimeProvider(), log)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Failed to start sandbox: %v\n", err)
		os.Exit(1)
	}

	core.Go(func() { sb.pollEvents() })

	runErr := sb.run(ctx)
	closeErr := sb.close()
	screen.Fini()

	if runErr != nil && runErr != context.Canceled {
		log.Error().Err(runErr).Msg("frame loop stopped")
	}
	if closeErr != nil {
		log.Error().Err(closeErr).Msg("shutdown")
	}
}

func graylogAddress(cfg config.Config) string {
	if !cfg.Graylog.Enabled {
		return ""
	}
	return cfg.Graylog.Address
}
