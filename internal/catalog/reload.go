package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/windguide/internal/watcher"
)

// Reload loads source and publishes it in h. On failure h keeps serving the
// previous snapshot.
func Reload(ctx context.Context, h *Holder, source string) (*Catalog, error) {
	c, err := Load(ctx, source)
	if err != nil {
		return nil, err
	}
	h.Swap(c)
	return c, nil
}

// Watch reloads source into h whenever the file changes. onReload, when set, sees
// every attempt: the new snapshot or the error that kept the old one in place.
// Only plain catalog files can be watched.
func Watch(ctx context.Context, h *Holder, source string, logger *zap.Logger, onReload func(*Catalog, error)) (*watcher.Watcher, error) {
	if source == "" || strings.HasPrefix(source, SQLitePrefix) {
		return nil, fmt.Errorf("catalog source %q cannot be watched", source)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	onChange := func(path string) {
		start := time.Now()
		prev := h.Load()
		c, err := Reload(ctx, h, source)
		if err != nil {
			logger.Warn("catalog reload failed; keeping previous snapshot",
				zap.String("path", path),
				zap.String("version", prev.Version()),
				zap.Error(err))
			if onReload != nil {
				onReload(nil, err)
			}
			return
		}
		logger.Info("catalog reloaded",
			zap.String("path", path),
			zap.String("previous", prev.Version()),
			zap.String("version", c.Version()),
			zap.Int("entries", c.Len()),
			zap.Duration("took", time.Since(start)))
		if onReload != nil {
			onReload(c, nil)
		}
	}
	w := watcher.NewWatcher([]string{source}, onChange, watcher.WithLogger(logger))
	if err := w.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to watch catalog: %w", err)
	}
	return w, nil
}
