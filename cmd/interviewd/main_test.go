package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/analysis"
	"github.com/prepworks/interviewd/pkg/gateway/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGatewayConfig() config.Config {
	return config.Config{
		Addr:                   "127.0.0.1:0",
		AuthMode:               config.AuthModeDisabled,
		ReadHeaderTimeout:      5 * time.Second,
		ReadTimeout:            30 * time.Second,
		HandlerTimeout:         30 * time.Second,
		ShutdownGracePeriod:    2 * time.Second,
		MaxBodyBytes:           1 << 20,
		MaxResumeBytes:         10 << 20,
		DefaultDurationMinutes: 30,
		MinQuestions:           3,
		MaxQuestions:           10,
	}
}

func testDeps(cfg config.Config) gatewayDeps {
	return gatewayDeps{
		loadConfig: func() (config.Config, error) { return cfg, nil },
		openStore: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error) {
			st := store.NewMemory()
			if err := st.SeedQuestions(ctx, store.SeedBank); err != nil {
				return nil, err
			}
			return st, nil
		},
		newRater: func(ctx context.Context, cfg config.Config, logger *slog.Logger) (analysis.Rater, error) {
			return nil, nil
		},
		signalNotify: func(chan<- os.Signal, ...os.Signal) {},
		signalStop:   func(chan<- os.Signal) {},
	}
}

func TestRunGateway_ShutsDownOnSignal(t *testing.T) {
	deps := testDeps(testGatewayConfig())
	deps.signalNotify = func(c chan<- os.Signal, _ ...os.Signal) {
		go func() {
			time.Sleep(50 * time.Millisecond)
			c <- os.Interrupt
		}()
	}
	stopped := false
	deps.signalStop = func(chan<- os.Signal) { stopped = true }

	done := make(chan error, 1)
	go func() { done <- runGateway(context.Background(), testLogger(), deps) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run gateway: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("gateway did not shut down after signal")
	}
	if !stopped {
		t.Fatal("signal subscription was not released")
	}
}

func TestRunGateway_ConfigErrorPropagates(t *testing.T) {
	deps := testDeps(testGatewayConfig())
	deps.loadConfig = func() (config.Config, error) {
		return config.Config{}, errors.New("bad auth mode")
	}
	err := runGateway(context.Background(), testLogger(), deps)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("err=%v, want load config failure", err)
	}
}

func TestRunGateway_StoreErrorPropagates(t *testing.T) {
	deps := testDeps(testGatewayConfig())
	deps.openStore = func(context.Context, config.Config, *slog.Logger) (store.Store, error) {
		return nil, errors.New("connection refused")
	}
	err := runGateway(context.Background(), testLogger(), deps)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("err=%v, want store failure", err)
	}
}

func TestRunGateway_MissingDependenciesRejected(t *testing.T) {
	err := runGateway(context.Background(), testLogger(), gatewayDeps{})
	if err == nil {
		t.Fatal("expected error for empty dependencies")
	}
}

func TestOpenStore_FallsBackToMemory(t *testing.T) {
	cfg := testGatewayConfig()
	st, err := openStore(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	questions, err := st.ListQuestions(context.Background(), store.QuestionFilter{})
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) == 0 {
		t.Fatal("question bank was not seeded")
	}
}

func TestNewRater_DisabledWithoutKey(t *testing.T) {
	rater, err := newRater(context.Background(), testGatewayConfig(), testLogger())
	if err != nil {
		t.Fatalf("new rater: %v", err)
	}
	if rater != nil {
		t.Fatal("expected nil rater without an API key")
	}
}

func TestRunMain_ReportsFailure(t *testing.T) {
	deps := testDeps(testGatewayConfig())
	deps.loadConfig = func() (config.Config, error) {
		return config.Config{}, errors.New("invalid auth mode")
	}
	var buf strings.Builder
	if code := runMain(context.Background(), &buf, deps); code != 1 {
		t.Fatalf("exit code=%d, want 1", code)
	}
	if !strings.Contains(buf.String(), "invalid auth mode") {
		t.Fatalf("stderr=%q", buf.String())
	}
}
