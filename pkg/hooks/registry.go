// Package hooks runs optional actions after a scan result has been turned
// into a report.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"linkguard/internal/models"
	"linkguard/pkg/report"
)

// HookContext carries one completed scan.
type HookContext struct {
	Context   context.Context
	Result    *models.ScanResult
	Report    *report.Report
	OtherData map[string]interface{} // for extensibility
}

type PostHook interface {
	Name() string
	Description() string
	Execute(ctx HookContext) error
}

type HookInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry holds named post hooks. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]PostHook
}

func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]PostHook)}
}

func (r *Registry) Register(name string, hook PostHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.hooks[name]; exists {
		log.Error(fmt.Sprintf("post hook %s already registered, replacing", name))
	}
	r.hooks[name] = hook
}

func (r *Registry) Get(name string) PostHook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hooks[name]
}

func (r *Registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List describes every registered hook, sorted by name.
func (r *Registry) List() []HookInfo {
	var out []HookInfo
	for _, name := range r.names() {
		if h := r.Get(name); h != nil {
			out = append(out, HookInfo{Name: name, Description: h.Description()})
		}
	}
	return out
}

// RunAll executes every hook in name order. A failing hook does not stop the
// others; all failures are joined.
func (r *Registry) RunAll(ctx HookContext) error {
	var errs []error
	for _, name := range r.names() {
		h := r.Get(name)
		if h == nil {
			continue
		}
		if err := runSafely(h, ctx); err != nil {
			errs = append(errs, fmt.Errorf("hook %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func runSafely(h PostHook, ctx HookContext) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return h.Execute(ctx)
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

func RegisterPostHook(name string, hook PostHook) {
	defaultRegistry.Register(name, hook)
}

func GetPostHook(name string) PostHook {
	return defaultRegistry.Get(name)
}

func ListAvailableHooks() []HookInfo {
	return defaultRegistry.List()
}
