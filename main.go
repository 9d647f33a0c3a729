// apps/go-client/main.go
//
// Entry point for the Damage Control Go client.
//
// Usage:
//   go-client [play]   interactive terminal game (default)
//   go-client serve    host sessions over HTTP for a browser front-end
//
// Both modes share the same wiring: configuration from env/.env, the
// archetype/action catalog, the backend gateway and (optionally) the
// SQLite match ledger.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/damage-control/apps/go-client/internal/catalog"
	"github.com/robalobadob/damage-control/apps/go-client/internal/config"
	"github.com/robalobadob/damage-control/apps/go-client/internal/gateway"
	"github.com/robalobadob/damage-control/apps/go-client/internal/httpserver"
	"github.com/robalobadob/damage-control/apps/go-client/internal/ledger"
	"github.com/robalobadob/damage-control/apps/go-client/internal/session"
	"github.com/robalobadob/damage-control/apps/go-client/internal/store"
	"github.com/robalobadob/damage-control/apps/go-client/internal/tui"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [play|serve]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	mode := "play"
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "play":
		err = play(ctx, cfg)
	case "serve":
		err = serve(ctx, cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("mode", mode).Msg("exited")
	}
}

// setupLogging sets the global level and writer. The TUI owns the terminal,
// so play logs to LOG_FILE or nowhere.
func setupLogging(cfg config.Config, interactive bool) (io.Closer, error) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !interactive {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return io.NopCloser(nil), nil
	}
	if cfg.LogFile == "" {
		log.Logger = zerolog.New(io.Discard)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return f, nil
}

// openLedger returns nil when the ledger is disabled or unavailable; matches
// still play, they are just not recorded.
func openLedger(cfg config.Config) *ledger.Ledger {
	if !cfg.LedgerEnabled {
		return nil
	}
	l, err := ledger.Open(cfg.DBPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("ledger unavailable")
		return nil
	}
	return l
}

func play(ctx context.Context, cfg config.Config) error {
	closer, err := setupLogging(cfg, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := catalog.Init(cfg.CatalogFile); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	opts := []session.Option{
		session.WithCatalog(catalog.Default()),
		session.WithTimeout(cfg.GatewayTimeout),
	}
	if l := openLedger(cfg); l != nil {
		defer l.Close()
		opts = append(opts, session.WithRecorder(l))
	}

	gw := gateway.New(cfg.APIURL, cfg.GatewayTimeout)
	sess := session.New(gw, opts...)
	log.Info().Str("session", sess.ID()).Str("api", cfg.APIURL).Msg("starting terminal client")
	return tui.Run(ctx, sess)
}

func serve(ctx context.Context, cfg config.Config) error {
	if _, err := setupLogging(cfg, false); err != nil {
		return err
	}
	if err := catalog.Init(cfg.CatalogFile); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var results httpserver.Results
	if l := openLedger(cfg); l != nil {
		defer l.Close()
		results = l
	}

	srv := httpserver.New(gateway.New(cfg.APIURL, cfg.GatewayTimeout), store.NewMemoryStore(), results, httpserver.Options{
		Secret:         cfg.SessionSecret,
		Origin:         cfg.ClientOrigin,
		Secure:         cfg.Production,
		GatewayTimeout: cfg.GatewayTimeout,
		DailySalt:      cfg.DailySalt,
		Catalog:        catalog.Default(),
	})
	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("api", cfg.APIURL).Msg("starting go-client server")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return srv.RunSweeper(gctx, cfg.SessionTTL, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return hs.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
