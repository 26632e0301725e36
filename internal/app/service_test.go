package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/farm-ledger/internal/config"
)

type fakeService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return nil
	}
	return f.startErr
}

func (f *fakeService) Stop(ctx context.Context) error {
	f.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllWhenOneFails(t *testing.T) {
	failing := &fakeService{name: "failing", startErr: errors.New("bind failed")}
	blocking := &fakeService{name: "blocking", block: true}
	cleaned := false
	runner := NewRunner(failing, blocking)
	runner.cleanup = func() { cleaned = true }

	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "bind failed" {
		t.Fatalf("expected start error, got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("every service should be stopped")
	}
	if !cleaned {
		t.Fatalf("cleanup should run after stop")
	}
}

func TestRunnerCancelIsClean(t *testing.T) {
	blocking := &fakeService{name: "blocking", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := NewRunner(blocking).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
}

func TestRunnerCleanExitStopsOthers(t *testing.T) {
	finished := &fakeService{name: "finished"}
	blocking := &fakeService{name: "blocking", block: true}
	if err := NewRunner(finished, blocking).Run(context.Background(), time.Second, nil); err != nil {
		t.Fatalf("clean exit should return nil, got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("remaining services should be stopped")
	}
}

func TestRunnerRejectsNilService(t *testing.T) {
	if err := NewRunner(nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected nil service error")
	}
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	if _, err := BuildRunner(&config.Config{}, "batch"); err == nil {
		t.Fatalf("expected unknown mode error")
	}
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("expected nil config error")
	}
}

func TestNormalizeOptionsDefaults(t *testing.T) {
	opts := normalizeOptions(Options{})
	if opts.Mode != ModeAll || opts.ShutdownTimeout != 10*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}
