package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"faturas/internal/acquire"
	"faturas/internal/domain"
	"faturas/internal/logger"
)

const minDebounce = 10 * time.Millisecond

// Watcher processes documents as they land in the inbound directory, one at
// a time, once writes to them have settled.
type Watcher struct {
	svc      IngestService
	fs       *fsnotify.Watcher
	dir      string
	debounce time.Duration
	onResult func(domain.DocumentResult)
	log      *zap.Logger
}

// NewWatcher starts watching dir. onResult, when set, receives every
// document result.
func NewWatcher(svc IngestService, dir string, debounce time.Duration, onResult func(domain.DocumentResult), log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	if debounce < minDebounce {
		debounce = minDebounce
	}
	return &Watcher{
		svc:      svc,
		fs:       fw,
		dir:      dir,
		debounce: debounce,
		onResult: onResult,
		log:      logger.OrNop(log),
	}, nil
}

// Run blocks until ctx is canceled or the ledger fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := map[string]struct{}{}

	w.log.Info("watching inbound directory", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if _, err := acquire.FormatOf(ev.Name); err != nil {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			if err := w.flush(ctx, pending); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) error {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
		delete(pending, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
			continue
		}
		res, err := w.svc.ProcessDocument(ctx, path)
		if err != nil {
			return err
		}
		if w.onResult != nil {
			w.onResult(res)
		}
	}
	return nil
}
