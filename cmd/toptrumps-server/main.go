package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/lox/toptrumps/internal/cards"
	"github.com/lox/toptrumps/internal/randutil"
	"github.com/lox/toptrumps/internal/server"
)

// version is set by ldflags during build
var version = "dev"

var CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Config   string           `short:"c" default:"toptrumps.hcl" env:"TOPTRUMPS_CONFIG" help:"Path to HCL configuration file"`
	Addr     string           `short:"a" env:"TOPTRUMPS_ADDR" help:"Server address to bind to (overrides config)"`
	Cards    string           `env:"TOPTRUMPS_CARDS" help:"Path to the card catalog CSV (overrides config)"`
	LogLevel string           `short:"l" env:"TOPTRUMPS_LOG_LEVEL" help:"Log level (overrides config)"`
	Seed     int64            `env:"TOPTRUMPS_SEED" help:"Deterministic seed for shuffles and room codes (0 = time-based)"`
}

func main() {
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("toptrumps-server"),
		kong.Description("Multiplayer Top Trumps room server"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		ctx.Errorf("loading config: %v", err)
		ctx.Exit(1)
	}
	if CLI.Cards != "" {
		cfg.Game.CardsFile = CLI.Cards
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Seed != 0 {
		cfg.Game.Seed = CLI.Seed
	}
	if err := cfg.Validate(); err != nil {
		ctx.Errorf("invalid configuration: %v", err)
		ctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	catalog, err := cards.Load(cfg.Game.CardsFile)
	if err != nil {
		logger.Error("Failed to load card catalog", "file", cfg.Game.CardsFile, "error", err)
		ctx.Exit(1)
	}
	valid := catalog.Valid()
	logger.Info("Loaded card catalog", "file", cfg.Game.CardsFile, "rows", catalog.Len(), "valid", len(valid))

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = randutil.NewFromTime().Int64()
	}

	addr := cfg.GetServerAddress()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}

	clock := quartz.NewReal()
	rooms := server.NewRoomService(valid, seed, cfg.RoomIdleExpiry(), clock, logger)
	srv := server.NewServer(addr, rooms, clock, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info("Starting Top Trumps server", "addr", addr)
		return srv.Start()
	})
	g.Go(func() error {
		return rooms.RunSweeper(gctx, cfg.SweepEvery())
	})
	g.Go(func() error {
		<-gctx.Done()
		// Brief grace before tearing down live sockets
		time.Sleep(500 * time.Millisecond)
		return srv.Stop()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Server exited", "error", err)
		ctx.Exit(1)
	}
	logger.Info("Server shutdown complete")
}
