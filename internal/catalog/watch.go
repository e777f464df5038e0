package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gvbsvv/eshop-cart/internal/models"
	log "github.com/sirupsen/logrus"
)

// WatchingReader caches the decoded catalog and drops the cache whenever the
// data file changes on disk. The directory is watched rather than the file so
// that editors which replace the file by rename are still noticed.
type WatchingReader struct {
	file    *FileReader
	watcher *fsnotify.Watcher
	target  string

	mu     sync.RWMutex
	cached []models.Part
	valid  bool
	gen    uint64 // bumped on every invalidation

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatchingReader starts watching the catalog file behind file
func NewWatchingReader(file *FileReader) (*WatchingReader, error) {
	target, err := filepath.Abs(file.Path())
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create catalog watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch catalog dir: %w", err)
	}

	r := &WatchingReader{
		file:    file,
		watcher: w,
		target:  target,
		done:    make(chan struct{}),
	}
	r.wg.Add(1)
	go r.loop()
	return r, nil
}

// Parts implements Reader
func (r *WatchingReader) Parts(ctx context.Context) ([]models.Part, error) {
	r.mu.RLock()
	if r.valid {
		parts := r.cached
		r.mu.RUnlock()
		return parts, nil
	}
	gen := r.gen
	r.mu.RUnlock()

	parts, err := r.file.Parts(ctx)
	if err != nil {
		return nil, err
	}

	// A change that lands while the file is being read must not be masked
	r.mu.Lock()
	if r.gen == gen {
		r.cached = parts
		r.valid = true
	}
	r.mu.Unlock()
	return parts, nil
}

// Invalidate forces the next Parts call to reread the file
func (r *WatchingReader) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.valid = false
	r.gen++
	r.mu.Unlock()
}

// Close stops the watcher
func (r *WatchingReader) Close() error {
	close(r.done)
	err := r.watcher.Close()
	r.wg.Wait()
	return err
}

func (r *WatchingReader) loop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !r.isTarget(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.WithFields(log.Fields{
				"path": event.Name,
				"op":   event.Op.String(),
			}).Debug("Catalog file changed, invalidating cache")
			r.Invalidate()
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.WithField("error", err.Error()).Warn("Catalog watcher error")
			r.Invalidate()
		}
	}
}

func (r *WatchingReader) isTarget(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return abs == r.target
}
