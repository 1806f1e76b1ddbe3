package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/hex-tactics-backend/internal/config"
	"github.com/DoyleJ11/hex-tactics-backend/internal/httpapi"
	"github.com/DoyleJ11/hex-tactics-backend/internal/hub"
	"github.com/DoyleJ11/hex-tactics-backend/internal/logging"
	"github.com/DoyleJ11/hex-tactics-backend/internal/room"
	"github.com/DoyleJ11/hex-tactics-backend/internal/ws"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx,
		hub.WithLogger(log),
		hub.WithSweepInterval(cfg.SweepInterval),
		hub.WithRoomOptions(room.WithReconnectGrace(cfg.ReconnectGrace)),
	)

	// Build the router *with* the hub injected
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(h, ws.Options{
			Logger:         log,
			InviteBaseURL:  cfg.InviteBaseURL,
			AllowedOrigins: cfg.AllowedOrigins,
			SendBuffer:     cfg.SendBuffer,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		h.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
