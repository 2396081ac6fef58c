// Package status keeps on/off indicators in sync with the server's status
// push stream.
package status

import (
	"sync"

	"motionberry-cli/pkg/models"
)

// Category names one boolean reported by the status stream.
type Category string

const (
	CategoryCamera    Category = "camera"
	CategoryRecording Category = "recording"
	CategoryMotion    Category = "motion"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryCamera, CategoryRecording, CategoryMotion}

// Indicator is an on/off pair. Exactly one side is active at any time;
// a new indicator shows off.
type Indicator struct {
	on  bool
	off bool
}

func NewIndicator() *Indicator {
	return &Indicator{off: true}
}

// Set activates the on side when active is true and the off side otherwise.
func (i *Indicator) Set(active bool) {
	i.on = active
	i.off = !active
}

func (i *Indicator) On() bool  { return i.on }
func (i *Indicator) Off() bool { return i.off }

// Layout says how many indicators each category has on screen. A category
// with zero (or absent) entries has no pair and is skipped on update.
type Layout map[Category]int

// DefaultLayout shows one indicator per category.
func DefaultLayout() Layout {
	return Layout{CategoryCamera: 1, CategoryRecording: 1, CategoryMotion: 1}
}

// Board holds the indicators for every category.
type Board struct {
	mu         sync.RWMutex
	indicators map[Category][]*Indicator
	known      map[Category]bool
}

func NewBoard(layout Layout) *Board {
	b := &Board{
		indicators: make(map[Category][]*Indicator),
		known:      make(map[Category]bool),
	}
	for cat, n := range layout {
		for i := 0; i < n; i++ {
			b.indicators[cat] = append(b.indicators[cat], NewIndicator())
		}
	}
	return b
}

// Set switches every indicator of cat and returns how many were touched.
// Zero means the category has no indicators, which is not an error.
func (b *Board) Set(cat Category, active bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	inds := b.indicators[cat]
	for _, ind := range inds {
		ind.Set(active)
	}
	if len(inds) > 0 {
		b.known[cat] = true
	}
	return len(inds)
}

// IndicatorState is a copy of one category's indicators.
type IndicatorState struct {
	Category Category
	Count    int
	Known    bool // a value has been received since start
	On       bool
}

// Snapshot is the board state in Categories order, skipping categories
// that have no indicators.
type Snapshot []IndicatorState

// Get returns the state of cat, if the board has indicators for it.
func (s Snapshot) Get(cat Category) (IndicatorState, bool) {
	for _, st := range s {
		if st.Category == cat {
			return st, true
		}
	}
	return IndicatorState{}, false
}

func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var snap Snapshot
	for _, cat := range Categories {
		inds := b.indicators[cat]
		if len(inds) == 0 {
			continue
		}
		snap = append(snap, IndicatorState{
			Category: cat,
			Count:    len(inds),
			Known:    b.known[cat],
			On:       inds[0].On(),
		})
	}
	return snap
}

// Each calls fn for every indicator of cat while holding the read lock.
func (b *Board) Each(cat Category, fn func(*Indicator)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ind := range b.indicators[cat] {
		fn(ind)
	}
}

// Apply copies the fields present in st onto the board and returns the
// categories that were present in the message. Absent fields leave their
// indicators as they were.
func Apply(b *Board, st models.Status) []Category {
	var applied []Category
	set := func(cat Category, v *bool) {
		if v == nil {
			return
		}
		b.Set(cat, *v)
		applied = append(applied, cat)
	}
	set(CategoryCamera, st.IsCameraRunning)
	set(CategoryRecording, st.IsRecording)
	set(CategoryMotion, st.IsMotionDetecting)
	return applied
}
