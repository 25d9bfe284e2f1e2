// Package timeline keeps the bounded per-tick history of a body or a
// contact: a past boundary, a current tick and a foreseen futur, stored as
// a compact sequence where runs of identical states hold one entry.
package timeline

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrOutOfRange is returned when an operation targets a tick the timeline
// cannot serve from its current position.
var ErrOutOfRange = errors.New("tick out of range")

// Entry is a per-tick state snapshot.
type Entry[T any] interface {
	Tick() uint32
	// Same reports whether both snapshots hold the same state, ticks
	// aside.
	Same(other T) bool
	// WithTick returns a copy of the snapshot stamped with tick.
	WithTick(tick uint32) T
}

// Timeline is an ordered, duplicate-tick-free sequence of entries with
// three cursors: past (first entry), current and futur (last entry).
//
// Pointers returned by Ref, CurrentRef and FuturRef are invalidated by the
// next call that reshapes the sequence.
type Timeline[T Entry[T]] struct {
	entries []T
	current int
}

// New creates a timeline holding a single entry, which is at once past,
// current and futur.
func New[T Entry[T]](initial T) *Timeline[T] {
	return &Timeline[T]{entries: []T{initial}}
}

func (tl *Timeline[T]) Len() int {
	return len(tl.entries)
}

func (tl *Timeline[T]) CurrentIndex() int {
	return tl.current
}

func (tl *Timeline[T]) Past() T {
	return tl.entries[0]
}

func (tl *Timeline[T]) Current() T {
	return tl.entries[tl.current]
}

func (tl *Timeline[T]) Futur() T {
	return tl.entries[len(tl.entries)-1]
}

// CurrentRef gives write access to the current entry.
func (tl *Timeline[T]) CurrentRef() *T {
	return &tl.entries[tl.current]
}

// FuturRef gives write access to the futur entry.
func (tl *Timeline[T]) FuturRef() *T {
	return &tl.entries[len(tl.entries)-1]
}

// Ref gives write access to the entry at index i.
func (tl *Timeline[T]) Ref(i int) *T {
	return &tl.entries[i]
}

// Index returns the index of the entry governing tick, -1 before past.
func (tl *Timeline[T]) Index(tick uint32) int {
	return indexForTick(tl.entries, tl.current, tick)
}

// At returns the state at tick, stamped with tick. It fails for ticks
// before past; ticks after futur are not foreseen and fail too.
func (tl *Timeline[T]) At(tick uint32) (T, bool) {
	var zero T
	if tick > tl.Futur().Tick() {
		return zero, false
	}

	i := tl.Index(tick)
	if i < 0 {
		return zero, false
	}

	if tl.entries[i].Tick() == tick {
		return tl.entries[i], true
	}
	return tl.entries[i].WithTick(tick), true
}

// Materialize ensures an entry exists exactly at tick, which must lie
// between current and futur, and returns its index.
func (tl *Timeline[T]) Materialize(tick uint32) (int, error) {
	if tick < tl.Current().Tick() || tick > tl.Futur().Tick() {
		return -1, fmt.Errorf("materialize %d outside [%d, %d]: %w",
			tick, tl.Current().Tick(), tl.Futur().Tick(), ErrOutOfRange)
	}

	i := tl.Index(tick)
	if tl.entries[i].Tick() == tick {
		return i, nil
	}

	tl.entries = slices.Insert(tl.entries, i+1, tl.entries[i].WithTick(tick))
	return i + 1, nil
}

// Step moves current forward by n ticks.
func (tl *Timeline[T]) Step(n uint32) {
	tl.entries, tl.current = step(tl.entries, tl.current, n)
}

// RollBack moves current back to tick.
func (tl *Timeline[T]) RollBack(tick uint32) error {
	var err error
	tl.entries, tl.current, err = rollBack(tl.entries, tl.current, tick)
	return err
}

// Foresee appends a futur entry n ticks after the current futur.
func (tl *Timeline[T]) Foresee(n uint32) {
	tl.entries = foresee(tl.entries, tl.current, n)
}

// ForgetPast drops the history before tick.
func (tl *Timeline[T]) ForgetPast(tick uint32) {
	tl.entries, tl.current = forgetPast(tl.entries, tl.current, tick)
}

// ClearFutur drops every foreseen entry from tick onward.
func (tl *Timeline[T]) ClearFutur(tick uint32) error {
	var err error
	tl.entries, err = clearFutur(tl.entries, tl.current, tick)
	return err
}

// All yields the stored entries from past to futur.
func (tl *Timeline[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range tl.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Between yields one entry per tick from start to end inclusive, running
// backward when start is after end. The range is clipped to [past, futur]
// and the sequence can be ranged over again.
func (tl *Timeline[T]) Between(start, end uint32) iter.Seq[T] {
	return func(yield func(T) bool) {
		lo, hi := tl.Past().Tick(), tl.Futur().Tick()
		if max(start, end) < lo || min(start, end) > hi {
			return
		}
		from := min(max(start, lo), hi)
		to := min(max(end, lo), hi)

		tick := from
		for {
			entry, ok := tl.At(tick)
			if !ok || !yield(entry) {
				return
			}
			if tick == to {
				return
			}
			if from <= to {
				tick++
			} else {
				tick--
			}
		}
	}
}
