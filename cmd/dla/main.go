package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/palette"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
)

func main() {
	var (
		configFile = flag.String("config", "", "JSON or TOML configuration file (defaults apply when empty)")
		seed       = flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
		ticks      = flag.Int("ticks", -1, "simulation ticks per frame (overrides the config)")
		logLevel   = flag.String("log", "", "log level: debug, info, warn or error (overrides the config)")
		hue        = flag.Float64("hue", -1, "seed color hue in degrees [0, 360) (overrides the config)")
	)
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile); err != nil {
			stdlog.Fatalf("💥 cannot load %s: %v", *configFile, err)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *ticks >= 0 {
		cfg.TicksPerFrame = *ticks
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *hue >= 0 {
		c, err := palette.FromHSV(*hue, 0.6, 1)
		if err != nil {
			stdlog.Fatalf("💥 invalid -hue: %v", err)
		}
		cfg.SeedColor = c
	}
	if err := cfg.Validate(); err != nil {
		stdlog.Fatalf("💥 %v", err)
	}
	level, _ := simulation.ParseLogLevel(cfg.LogLevel)
	logger := log.New(level, os.Stdout)

	ctx := context.Background()
	system, err := actor.NewActorSystem("InfiniteDLA",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		stdlog.Fatal(err)
	}
	if err := system.Start(ctx); err != nil {
		stdlog.Fatal(err)
	}
	defer func() { _ = system.Stop(ctx) }()

	game, err := simulation.GetNewGame(ctx, cfg, system, logger)
	if err != nil {
		stdlog.Fatal(err)
	}

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("Infinite DLA")
	if err := ebiten.RunGame(game); err != nil {
		logger.Error(err)
		return
	}
}
