package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tilecraft.ai/internal/config"
	"tilecraft.ai/internal/logging"
	persistlog "tilecraft.ai/internal/persistence/log"
	"tilecraft.ai/internal/sim/tuning"
	"tilecraft.ai/internal/sim/world"
	"tilecraft.ai/internal/sim/world/terrain/gen"
	"tilecraft.ai/internal/transport/httpapi"
	"tilecraft.ai/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", "./configs/server.toml", "path to server.toml (or set "+config.EnvPath+")")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	tune, err := tuning.Load(cfg.Server.TuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("load tuning: %w", err)
		}
		logger.Warn("tuning file not found, using defaults", zap.String("path", cfg.Server.TuningPath))
		tune = tuning.Defaults()
	}
	policy, err := tune.Policy()
	if err != nil {
		return fmt.Errorf("tuning: %w", err)
	}

	placementSeed := cfg.Server.PlacementSeed
	if placementSeed == 0 {
		placementSeed = time.Now().UnixNano()
	}
	field, err := tune.NoiseField(cfg.Server.Seed)
	if err != nil {
		return fmt.Errorf("noise: %w", err)
	}
	res := gen.Generate(tune.GenParams(cfg.Server.Seed, placementSeed), field)
	res.Grid.SetClearance(tune.Interaction.ClearanceRadius)
	logger.Info("world generated",
		zap.String("world", cfg.Server.WorldID),
		zap.Int64("seed", cfg.Server.Seed),
		zap.Int64("placement_seed", placementSeed),
		zap.Int("width", res.Grid.Width()),
		zap.Int("height", res.Grid.Height()),
		zap.Int("entities", len(res.Grid.Entities())),
		zap.Int("creatures", res.Creatures.Len()),
		zap.Int("spawn_candidates", res.Candidates),
		zap.Bool("spawn_fallback", res.Fallback),
	)

	w := world.New(world.Config{
		ID:               cfg.Server.WorldID,
		TickRateHz:       tune.TickRateHz,
		Seed:             placementSeed,
		CreatureInterval: tune.CreatureInterval(),
		CreatureMaxSpeed: tune.Creatures.MaxSpeed,
		SaveTimeout:      cfg.Save.Timeout,
		InboxSize:        cfg.Server.InboxSize,
		SaveWindowTicks:  tune.RateLimits.SaveWindowTicks,
		SaveMax:          tune.RateLimits.SaveMax,
	}, res, policy, logger)

	ctx, cancel := signalContext()
	defer cancel()

	backend, err := openSaveBackend(ctx, cfg.Save, cfg.Server.DataDir, logger)
	if err != nil {
		return fmt.Errorf("save backend: %w", err)
	}
	defer backend.Close()
	w.SetSaver(backend.saver)

	if cfg.Audit.Enabled {
		dir := cfg.Audit.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.Server.DataDir, "worlds", cfg.Server.WorldID, dir)
		}
		audit := persistlog.NewAuditLogger(dir)
		defer audit.Close()
		w.SetAuditLogger(audit)
	}

	worldDone := make(chan error, 1)
	go func() { worldDone <- w.Run(ctx) }()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(w, ws.Options{OutboxSize: cfg.Server.OutboxSize}, logger.Named("ws")).Handler())
	if backend.service != nil {
		mux.Handle(httpapi.SavePath, httpapi.NewSaveHandler(backend.service, logger.Named("httpapi")))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("save_backend", cfg.Save.Backend))
	serveErr := srv.ListenAndServe()
	cancel()
	if err := <-worldDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("world stopped", zap.Error(err))
	}
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", serveErr)
	}
	logger.Info("shutdown complete", zap.Int("saves_in_flight", w.SavesInFlight()))
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
