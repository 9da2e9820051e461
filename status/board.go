// Package status holds live counters and readings shown on the dev overlay.
// Writers cache the pointer returned by a getter once and update it lock-free;
// the overlay reads a sorted snapshot each frame.
package status

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// table maps names to lazily created values
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func newTable[T any]() *table[T] {
	return &table[T]{items: make(map[string]*T)}
}

func (t *table[T]) get(name string) *T {
	t.mu.RLock()
	p, ok := t.items[name]
	t.mu.RUnlock()
	if ok {
		return p
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.items[name]; ok {
		return p
	}
	p = new(T)
	t.items[name] = p
	return p
}

func (t *table[T]) names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.items))
	for k := range t.items {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (t *table[T]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// Board is the set of named counters, gauges and labels
type Board struct {
	counters *table[atomic.Int64]
	gauges   *table[Gauge]
	labels   *table[Label]
}

func NewBoard() *Board {
	return &Board{
		counters: newTable[atomic.Int64](),
		gauges:   newTable[Gauge](),
		labels:   newTable[Label](),
	}
}

// Counter returns the counter registered under name, creating it on first use
func (b *Board) Counter(name string) *atomic.Int64 { return b.counters.get(name) }

// Gauge returns the gauge registered under name, creating it on first use
func (b *Board) Gauge(name string) *Gauge { return b.gauges.get(name) }

// Label returns the label registered under name, creating it on first use
func (b *Board) Label(name string) *Label { return b.labels.get(name) }

// Len returns the number of registered entries
func (b *Board) Len() int {
	return b.counters.len() + b.gauges.len() + b.labels.len()
}

// Lines formats every entry as "name: value", labels first, then gauges, then counters
// Each group is sorted by name
func (b *Board) Lines() []string {
	var out []string
	for _, n := range b.labels.names() {
		out = append(out, fmt.Sprintf("%s: %s", n, b.labels.get(n).Get()))
	}
	for _, n := range b.gauges.names() {
		out = append(out, fmt.Sprintf("%s: %.2f", n, b.gauges.get(n).Get()))
	}
	for _, n := range b.counters.names() {
		out = append(out, fmt.Sprintf("%s: %d", n, b.counters.get(n).Load()))
	}
	return out
}
