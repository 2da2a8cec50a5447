package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"blogbot/pkg/logx"
)

func startWatch(t *testing.T, ctx context.Context, path string, reloads *int32) <-chan struct{} {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := Watch(ctx, path, logx.Nop(), func(*Config) {
			atomic.AddInt32(reloads, 1)
		})
		if err != nil {
			t.Errorf("Watch: %v", err)
		}
	}()
	return done
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"schedule": "@every 1h"}`), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var reloads int32
	done := startWatch(t, ctx, path, &reloads)

	time.Sleep(100 * time.Millisecond) // watcher registration
	if err := os.WriteFile(path, []byte(`{"schedule": "@every 2h"}`), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for atomic.LoadInt32(&reloads) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("reload never fired")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	<-done
}

func TestWatchSuppressesReloadAfterShutdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"schedule": "@every 1h"}`), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var reloads int32
	done := startWatch(t, ctx, path, &reloads)

	time.Sleep(100 * time.Millisecond) // watcher registration
	if err := os.WriteFile(path, []byte(`{"schedule": "@every 2h"}`), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	// Cancel while the debounce window is still open, then outwait it.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done
	time.Sleep(400 * time.Millisecond)

	if n := atomic.LoadInt32(&reloads); n != 0 {
		t.Fatalf("reload fired %d time(s) after shutdown", n)
	}
}
