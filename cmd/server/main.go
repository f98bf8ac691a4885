package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/benkosiek/Turn-based-Game/internal/channel"
	"github.com/benkosiek/Turn-based-Game/internal/config"
	"github.com/benkosiek/Turn-based-Game/internal/httpapi"
	"github.com/benkosiek/Turn-based-Game/internal/hub"
	"github.com/benkosiek/Turn-based-Game/internal/lobby"
	"github.com/benkosiek/Turn-based-Game/internal/logging"
	"github.com/benkosiek/Turn-based-Game/internal/match"
	"github.com/benkosiek/Turn-based-Game/internal/telemetry"
)

const shutdownGrace = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, "turn-based-arena")
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		err = multierr.Append(err, shutdownTracing(sctx))
	}()

	h := hub.NewHub(ctx, logger, cfg.MaxMatches,
		match.WithTurnTimeout(cfg.TurnTimeout),
		match.WithDraftTimeout(cfg.DraftTimeout),
		match.WithTeardownDelay(cfg.TeardownDelay),
	)
	lb := lobby.NewLobby(ctx, h.Pair, logger)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.TCPAddr != "" {
		ln, err := net.Listen("tcp", cfg.TCPAddr)
		if err != nil {
			return err
		}
		logger.Info("tcp listening", zap.String("addr", ln.Addr().String()))
		g.Go(func() error { return acceptLoop(gctx, ln, lb, logger) })
		g.Go(func() error {
			<-gctx.Done()
			return ln.Close()
		})
	}

	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.SetupRoutes(h, lb, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	err = g.Wait()

	logger.Info("shutting down")
	// Cancelling the root context stops the lobby, the hub and every session.
	stop()
	h.Wait()
	return err
}

// acceptLoop hands every TCP connection to the lobby until ctx ends.
func acceptLoop(ctx context.Context, ln net.Listener, lb *lobby.Lobby, logger *zap.Logger) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}

		s := channel.NewStream(conn)
		p := channel.NewParticipant(s, logger.With(zap.String("remote", s.RemoteAddr()), zap.String("transport", "tcp")))
		if !lb.Submit(ctx, lobby.Join{Conn: p}) {
			_ = p.Close()
			return nil
		}
	}
}
