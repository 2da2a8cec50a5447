package config

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"blogbot/pkg/logx"
)

// Watch re-parses the config file whenever it changes on disk and hands the
// committed result to onReload. Events are debounced because editors often
// emit several writes per save; redundant reloads are skipped by content
// hash. Blocks until ctx is done.
func Watch(ctx context.Context, path string, log logx.Logger, onReload func(*Config)) error {
	dir := filepath.Dir(path)
	file := filepath.Base(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	log.Debug("config watcher started", logx.String("dir", dir), logx.String("file", file))

	var (
		timerMu  sync.Mutex
		timer    *time.Timer
		lastHash uint64
	)
	// A reload scheduled right before shutdown must not fire after Watch
	// returns.
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, func() {
			if ctx.Err() != nil {
				return
			}
			cfg, _, err := Load(path)
			if err != nil {
				log.Warn("config reload failed", logx.String("path", path), logx.Err(err))
				return
			}
			h := hashConfig(cfg)
			timerMu.Lock()
			unchanged := h != 0 && h == lastHash
			if !unchanged {
				lastHash = h
			}
			timerMu.Unlock()
			if unchanged {
				log.Debug("config unchanged; skipping reload", logx.String("path", path))
				return
			}
			log.Info("config reloaded", logx.String("path", path))
			onReload(cfg)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Compare by basename; editors rename/replace on save.
			if strings.EqualFold(filepath.Base(ev.Name), file) {
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
					debounce()
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				log.Warn("config watch error", logx.Err(err), logx.String("dir", dir))
			}
		}
	}
}

func hashConfig(cfg *Config) uint64 {
	if cfg == nil {
		return 0
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
