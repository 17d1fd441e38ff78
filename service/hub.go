package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrNotInitialized = errors.New("services not initialized")
	ErrCircularDep    = errors.New("circular dependency")
	ErrUnknownDep     = errors.New("unregistered service")
	ErrDuplicateName  = errors.New("service already registered")
)

// Disabler is implemented by services that may switch themselves off during Init
type Disabler interface {
	IsDisabled() bool
}

// Status is one row of Hub.Status
type Status struct {
	Name     string
	Started  bool
	Disabled bool
}

// Hub owns service instances and drives their lifecycle in dependency order
type Hub struct {
	mu       sync.RWMutex
	services map[string]Service
	order    []string // Dependency order, resolved on InitAll
	started  []string // Completed Start, stopped in reverse
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		services: make(map[string]Service),
		logger:   logger,
	}
}

// Register adds a service; names must be unique
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	h.services[name] = svc
	h.order = nil
	return nil
}

func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// MustGet retrieves a service and casts to T, panicking on absence or mismatch
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// InitAll resolves dependency order and passes args to every Init
// A failed Init stops the services initialized before it, newest first
func (h *Hub) InitAll(args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		order, err := h.resolveOrder()
		if err != nil {
			return err
		}
		h.order = order
	}

	for i, name := range h.order {
		if err := h.services[name].Init(args...); err != nil {
			h.stopReverse(h.order[:i])
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
	}

	h.logger.Debug("services initialized", zap.Strings("order", h.order))
	return nil
}

// StartAll starts services in dependency order, rolling back on failure
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		return ErrNotInitialized
	}

	h.started = h.started[:0]
	for _, name := range h.order {
		if err := h.services[name].Start(); err != nil {
			h.stopReverse(h.started)
			h.started = nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.started = append(h.started, name)
	}

	for _, st := range h.statusLocked() {
		h.logger.Info("service ready", zap.String("service", st.Name), zap.Bool("disabled", st.Disabled))
	}
	return nil
}

// StopAll stops started services in reverse order; every service gets Stop
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.stopReverse(h.started)
	h.started = nil
	return err
}

// Status reports every registered service, in dependency order once resolved
func (h *Hub) Status() []Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.statusLocked()
}

func (h *Hub) statusLocked() []Status {
	names := h.order
	if names == nil {
		names = h.sortedNames()
	}
	out := make([]Status, 0, len(names))
	for _, name := range names {
		st := Status{Name: name, Started: slices.Contains(h.started, name)}
		if d, ok := h.services[name].(Disabler); ok {
			st.Disabled = d.IsDisabled()
		}
		out = append(out, st)
	}
	return out
}

// stopReverse stops names newest first and joins the failures
func (h *Hub) stopReverse(names []string) error {
	var errs []error
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		if err := h.services[name].Stop(); err != nil {
			h.logger.Warn("service stop failed", zap.String("service", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("service %s stop failed: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// resolveOrder is a depth-first topological sort; roots and dependencies are
// visited by name so the order is stable across runs
func (h *Hub) resolveOrder() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	mark := make(map[string]int, len(h.services))
	order := make([]string, 0, len(h.services))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch mark[name] {
		case done:
			return nil
		case visiting:
			start := slices.Index(path, name)
			cycle := append(slices.Clone(path[start:]), name)
			return fmt.Errorf("%w: %s", ErrCircularDep, strings.Join(cycle, " -> "))
		}

		mark[name] = visiting
		path = append(path, name)

		deps := slices.Clone(h.services[name].Dependencies())
		slices.Sort(deps)
		for _, dep := range deps {
			if _, ok := h.services[dep]; !ok {
				return fmt.Errorf("service %s depends on %w: %s", name, ErrUnknownDep, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		mark[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range h.sortedNames() {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (h *Hub) sortedNames() []string {
	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Names returns registered names sorted
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sortedNames()
}
