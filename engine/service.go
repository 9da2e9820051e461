package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Service is a background subsystem outside the frame loop: telemetry, audio, streaming
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Start begins operation; ctx bounds the service lifetime
	Start(ctx context.Context) error

	// Stop halts operation and releases resources
	Stop() error
}

// Hub owns service lifecycle
// Services start in registration order and stop in reverse
type Hub struct {
	mu       sync.Mutex
	services map[string]Service
	order    []string
	started  []string
}

// NewHub creates an empty service hub
func NewHub() *Hub {
	return &Hub{
		services: make(map[string]Service),
	}
}

// Register adds a service instance to the hub
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("service already registered: %s", name)
	}
	h.services[name] = svc
	h.order = append(h.order, name)
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	svc, ok := h.services[name]
	return svc, ok
}

// StartAll starts every service
// On failure, already-started services are stopped in reverse order
func (h *Hub) StartAll(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.started = nil
	for _, name := range h.order {
		if err := h.services[name].Start(ctx); err != nil {
			for i := len(h.started) - 1; i >= 0; i-- {
				h.services[h.started[i]].Stop()
			}
			h.started = nil
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		h.started = append(h.started, name)
	}
	return nil
}

// StopAll stops started services in reverse order and joins their errors
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for i := len(h.started) - 1; i >= 0; i-- {
		name := h.started[i]
		if err := h.services[name].Stop(); err != nil {
			errs = append(errs, fmt.Errorf("service %s stop: %w", name, err))
		}
	}
	h.started = nil
	return errors.Join(errs...)
}

// Names returns registered service names in start order
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.order...)
}
