package status

import (
	"math"
	"sync/atomic"
)

// Gauge is a float64 readable from any goroutine
// Zero value reads 0
type Gauge struct {
	bits atomic.Uint64
}

func (g *Gauge) Set(v float64) { g.bits.Store(math.Float64bits(v)) }

func (g *Gauge) Get() float64 { return math.Float64frombits(g.bits.Load()) }

// Label is a string readable from any goroutine
// Values longer than MaxLabelLen are cut
type Label struct {
	ptr atomic.Pointer[string]
}

// MaxLabelLen bounds overlay column width
const MaxLabelLen = 24

func (l *Label) Set(v string) {
	if len(v) > MaxLabelLen {
		v = v[:MaxLabelLen]
	}
	l.ptr.Store(&v)
}

func (l *Label) Get() string {
	if p := l.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
