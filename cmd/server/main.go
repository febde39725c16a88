package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chatsim/internal/chat"
	"chatsim/internal/config"
	"chatsim/internal/handlers"
	"chatsim/internal/observability"
	"chatsim/internal/server"
	ws "chatsim/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	observability.InitLogger(cfg.ServiceName)
	log := observability.Log
	defer log.Sync()

	if cfg.TracingEnabled {
		tp, err := observability.InitTracer(cfg.ServiceName, cfg.JaegerURL)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer tp.Shutdown(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := cfg.RandSeed
	if seed == 0 {
		seed = rand.Uint64()
	}

	synth := chat.NewSynthesizer(
		chat.Weights{Text: cfg.TextWeight, Image: cfg.ImageWeight, Video: cfg.VideoWeight},
		cfg.DeliverySuccessRate,
		seed,
	)
	store := chat.NewStore(cfg.DefaultPageSize, cfg.MaxPageSize)
	store.Seed(synth, cfg.DialogsCount)
	log.Info("store seeded",
		zap.Int("dialogs", cfg.DialogsCount),
		zap.Uint64("seed", seed))

	hub := ws.NewHub()
	gen := chat.NewGenerator(store, synth, hub, cfg.MessageInterval, log)
	gen.Start(ctx)

	mainSrv := server.New(cfg.HTTPPort, mainRouter(cfg, store, hub), log)
	obsSrv := server.New(cfg.ObsHTTPAddr, obsRouter(), log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := mainSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("main server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := obsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("observability server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdown(mainSrv, obsSrv, hub, log)
		return nil
	})

	return g.Wait()
}

func mainRouter(cfg *config.Config, store *chat.Store, hub *ws.Hub) http.Handler {
	mux := chi.NewRouter()
	mux.Use(observability.MetricsMiddleware(cfg.ServiceName))
	if cfg.TracingEnabled {
		mux.Use(observability.TracingMiddleware(cfg.ServiceName))
	}

	handlers.NewChatHandler(store).Routes(mux)
	mux.Handle("/ws", ws.NewHandler(hub, cfg.ServiceName))
	return mux
}

func obsRouter() http.Handler {
	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/health/live", observability.HealthLiveHandler)
	mux.Get("/health/ready", observability.HealthReadyHandler())
	return mux
}

func shutdown(mainSrv, obsSrv *server.Server, hub *ws.Hub, log *zap.Logger) {
	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mainSrv.Shutdown(ctx); err != nil {
		log.Error("error during main server shutdown", zap.Error(err))
	}
	if err := obsSrv.Shutdown(ctx); err != nil {
		log.Error("error during observability server shutdown", zap.Error(err))
	}
	hub.CloseAll()
	log.Info("shutdown complete, exiting")
}
