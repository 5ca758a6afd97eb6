package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pdfcombine/internal"
	"pdfcombine/types"
)

// Watcher polls the source directory and triggers a combine run once every
// PDF in it has been present for the configured monitoring time. A new file
// resets the batch, so a partially copied set of files is not picked up
// until the last arrival has settled too.
type Watcher struct {
	cfg    types.Config
	logger *slog.Logger

	mu         sync.Mutex
	firstSeen  map[string]time.Time
	processing map[string]bool
}

func NewWatcher(cfg types.Config) *Watcher {
	return &Watcher{
		cfg:        cfg,
		logger:     slog.Default(),
		firstSeen:  make(map[string]time.Time),
		processing: make(map[string]bool),
	}
}

// EnsureDirs creates the directories the watch service works with.
func EnsureDirs(cfg types.Config) error {
	dirs := []string{cfg.SourceDir, cfg.OutputDir, cfg.ArchiveDir, cfg.BadDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Watch emits one batch of settled source files at a time on batchChan.
// It returns when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, batchChan chan<- []string) {
	w.logger.Info("start monitoring folder", "dir", w.cfg.SourceDir)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer w.logger.Info("file watcher stopped")

	for {
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			batch := w.scan()
			if len(batch) == 0 {
				continue
			}

			select {
			case batchChan <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

// scan returns the current source files when all of them are settled and
// none is already being processed, marking them as in-flight. Otherwise it
// updates the tracking state and returns nil.
func (w *Watcher) scan() []string {
	files, err := internal.CollectSources(w.cfg.SourceDir)
	if err != nil {
		w.logger.Error("error while reading source directory", "error", err)
		return nil
	}

	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	current := make(map[string]bool, len(files))
	ready := len(files) > 0

	for _, file := range files {
		current[file] = true

		if w.processing[file] {
			ready = false
			continue
		}

		firstSeen, tracked := w.firstSeen[file]
		if !tracked {
			w.firstSeen[file] = now
			w.logger.Info("new file detected", "file", file)
			ready = false
			continue
		}

		if now.Sub(firstSeen) < w.cfg.MonitoringTime {
			ready = false
		}
	}

	// Forget files that disappeared from the directory.
	for file := range w.firstSeen {
		if !current[file] {
			delete(w.firstSeen, file)
			delete(w.processing, file)
			w.logger.Info("file removed from tracking", "file", file)
		}
	}

	if !ready {
		return nil
	}

	for _, file := range files {
		w.processing[file] = true
	}
	return files
}

// Done clears the in-flight state of an archived batch.
func (w *Watcher) Done(batch []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, file := range batch {
		delete(w.firstSeen, file)
		delete(w.processing, file)
	}
}

// Archive moves a consumed source file into a dated archive folder, or the
// bad folder when failed is true. Name collisions get a numeric suffix.
func (w *Watcher) Archive(path string, failed bool) {
	root := w.cfg.ArchiveDir
	if failed {
		root = w.cfg.BadDir
	}

	destDir := filepath.Join(root, time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		w.logger.Error("error creating archive directory", "error", err)
		return
	}

	destPath := filepath.Join(destDir, filepath.Base(path))
	counter := 1
	for {
		if _, err := os.Stat(destPath); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(destPath)
		baseName := strings.TrimSuffix(filepath.Base(path), ext)
		destPath = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", baseName, counter, ext))
		counter++
	}

	// Copy and remove instead of rename; archive may be another volume.
	in, err := os.Open(path)
	if err != nil {
		w.logger.Error("error opening file for archive", "error", err)
		return
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		w.logger.Error("error creating archive file", "error", err)
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		w.logger.Error("error moving file to archive", "error", err)
		return
	}

	in.Close()
	os.Remove(path)
	w.logger.Info("file archived", "file", destPath)
}
