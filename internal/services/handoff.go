package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"linkguard/pkg/logger"
)

// Handoff holds at most one pending scan target offered by the host. Consume
// returns it once and clears it.
type Handoff struct {
	mu      sync.Mutex
	pending string
}

func NewHandoff() *Handoff {
	return &Handoff{}
}

// Offer replaces any pending value. Blank values are ignored.
func (h *Handoff) Offer(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	h.mu.Lock()
	h.pending = value
	h.mu.Unlock()
	return true
}

func (h *Handoff) Consume() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == "" {
		return "", false
	}
	v := h.pending
	h.pending = ""
	return v, true
}

// Pending reports whether a value is waiting without consuming it.
func (h *Handoff) Pending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending != ""
}

// HandoffWatcher feeds a Handoff from a file the host writes the pending
// target into. The file is truncated once read.
type HandoffWatcher struct {
	path    string
	handoff *Handoff
	logger  *logger.Logger
}

func NewHandoffWatcher(path string, handoff *Handoff, l *logger.Logger) *HandoffWatcher {
	if l == nil {
		l = logger.NewLogger(logrus.InfoLevel)
	}
	return &HandoffWatcher{path: path, handoff: handoff, logger: l}
}

// Run watches the file's directory until ctx is done. A value already present
// at start is consumed immediately.
func (w *HandoffWatcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create handoff directory %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create handoff watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so the file may be created or replaced.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("error adding directory %s to watcher: %w", dir, err)
	}

	w.consumeFile()

	target := filepath.Clean(w.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.consumeFile()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).WithField("file", w.path).Error("Handoff watcher error")

		case <-ctx.Done():
			w.logger.WithField("file", w.path).Info("Stopping handoff watcher")
			return nil
		}
	}
}

func (w *HandoffWatcher) consumeFile() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.WithError(err).WithField("file", w.path).Error("Failed to read handoff file")
		}
		return
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return
	}
	if err := os.Truncate(w.path, 0); err != nil {
		w.logger.WithError(err).WithField("file", w.path).Error("Failed to clear handoff file")
	}
	if w.handoff.Offer(value) {
		w.logger.WithFields(logger.Fields{"file": w.path, "target": value}).Info("Pending target received")
	}
}
