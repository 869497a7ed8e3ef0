package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Live is the part of the configuration a running process applies without a
// restart: the log level and the saturation skews the board is built with.
type Live struct {
	LogLevel   slog.Level
	Saturation SaturationConfig
}

// Live returns the live-reloadable settings of s.
func (s ServiceConfig) Live() Live {
	return Live{LogLevel: s.SlogLevel(), Saturation: s.Saturation}
}

// Watch monitors path and calls apply each time a write changes the live
// settings; the caller re-tunes the board and the logger from them. It runs
// until ctx is cancelled.
//
// The file is loaded once up front as the baseline. A reload that fails to
// load or validate is logged and skipped. Edits to settings that only take
// effect at startup are logged as pending a restart and otherwise ignored.
func Watch(ctx context.Context, path string, apply func(Live)) error {
	prev, err := Load(path)
	if err != nil {
		return fmt.Errorf("config: watch baseline: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	slog.Info("config: watching for saturation and log level changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors that save atomically show up as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// An atomic save replaces the inode; keep following the path.
			_ = watcher.Add(path)

			next, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", path, "err", err)
				continue
			}

			if fields := restartOnly(prev.Scorigami, next.Scorigami); len(fields) > 0 {
				slog.Warn("config: changes take effect after restart", "fields", fields)
			}
			live := next.Scorigami.Live()
			if live == prev.Scorigami.Live() {
				prev = next
				continue
			}
			prev = next

			slog.Info("config: applying live settings",
				"log_level", live.LogLevel.String(),
				"frequency_skew", live.Saturation.Frequency,
				"recency_skew", live.Saturation.Recency)
			apply(live)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// restartOnly names the sections that differ between a and b but are read
// only at startup.
func restartOnly(a, b ServiceConfig) []string {
	var out []string
	if a.HTTPPort != b.HTTPPort {
		out = append(out, "http_port")
	}
	if a.Ledger != b.Ledger {
		out = append(out, "ledger")
	}
	if a.Connectivity != b.Connectivity {
		out = append(out, "connectivity")
	}
	if a.Auth != b.Auth {
		out = append(out, "auth")
	}
	if a.Stream != b.Stream {
		out = append(out, "stream")
	}
	return out
}
