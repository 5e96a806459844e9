// Command interviewd runs the mock-interview gateway: the REST API that
// plans interview sessions, scores answers, aggregates session feedback,
// and analyzes resumes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prepworks/interviewd/internal/dotenv"
	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/analysis"
	"github.com/prepworks/interviewd/pkg/gateway/config"
	gatewayserver "github.com/prepworks/interviewd/pkg/gateway/server"
)

type gatewayDeps struct {
	loadConfig   func() (config.Config, error)
	openStore    func(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error)
	newRater     func(ctx context.Context, cfg config.Config, logger *slog.Logger) (analysis.Rater, error)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)
}

func defaultGatewayDeps() gatewayDeps {
	return gatewayDeps{
		loadConfig: config.LoadFromEnv,
		openStore:  openStore,
		newRater:   newRater,
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

// openStore connects to Postgres when a database URL is configured and
// falls back to the in-memory store otherwise. Either way the question
// bank is seeded if empty.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error) {
	var st store.Store
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			if err := store.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return nil, fmt.Errorf("migrate database: %w", err)
			}
		}
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		st = pg
		logger.Info("using postgres store")
	} else {
		st = store.NewMemory()
		logger.Info("using in-memory store", "hint", "set INTERVIEWD_DATABASE_URL for persistence")
	}

	if err := st.SeedQuestions(ctx, store.SeedBank); err != nil {
		st.Close()
		return nil, fmt.Errorf("seed question bank: %w", err)
	}
	return st, nil
}

// newRater builds the LLM feedback rater when an API key is configured.
// Returning nil keeps the rule-based feedback phrasing.
func newRater(ctx context.Context, cfg config.Config, logger *slog.Logger) (analysis.Rater, error) {
	if cfg.RaterAPIKey == "" {
		return nil, nil
	}
	rater, err := analysis.NewLLMRater(ctx, cfg.RaterAPIKey, cfg.RaterModel, logger)
	if err != nil {
		return nil, fmt.Errorf("init llm rater: %w", err)
	}
	logger.Info("llm feedback rater enabled")
	return rater, nil
}

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
	}
}

func runGateway(ctx context.Context, logger *slog.Logger, deps gatewayDeps) error {
	if deps.loadConfig == nil || deps.openStore == nil || deps.newRater == nil {
		return errors.New("missing dependency")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := deps.openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	rater, err := deps.newRater(ctx, cfg, logger)
	if err != nil {
		return err
	}

	gw := gatewayserver.New(cfg, st, analysis.NewAnalyzer(rater), logger)
	httpSrv := buildHTTPServer(cfg, gw.Handler())

	logger.Info("starting gateway", "addr", cfg.Addr, "auth_mode", cfg.AuthMode)

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("gateway stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer, deps gatewayDeps) int {
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	if err := dotenv.Load(".env"); err != nil {
		fmt.Fprintf(stderr, "interviewd: %v\n", err)
		return 1
	}

	if err := runGateway(ctx, logger, deps); err != nil {
		fmt.Fprintf(stderr, "interviewd: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultGatewayDeps()))
}
