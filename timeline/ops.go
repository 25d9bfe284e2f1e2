package timeline

import (
	"fmt"
	"slices"
)

// The functions below implement the timeline algorithms over a plain slice
// and a current index. They never read anything else, so they can be
// exercised without a Body or a Contact.

// indexForTick returns the index of the entry with the greatest tick not
// after tick, or -1 when tick precedes the first entry. The scan starts
// from cur when tick is ahead of it.
func indexForTick[T Entry[T]](entries []T, cur int, tick uint32) int {
	start := 0
	if cur >= 0 && cur < len(entries) && entries[cur].Tick() <= tick {
		start = cur
	} else if len(entries) == 0 || entries[0].Tick() > tick {
		return -1
	}

	i := start
	for i+1 < len(entries) && entries[i+1].Tick() <= tick {
		i++
	}
	return i
}

// step advances cur by n ticks. A current entry that only mirrors its
// predecessor is folded back first, entries met on the way that repeat
// the state reached so far are merged, and the target tick is always
// materialized.
func step[T Entry[T]](entries []T, cur int, n uint32) ([]T, int) {
	if n == 0 {
		return entries, cur
	}
	target := entries[cur].Tick() + n

	if cur > 0 && entries[cur].Same(entries[cur-1]) {
		entries = slices.Delete(entries, cur, cur+1)
		cur--
	}

	for cur+1 < len(entries) && entries[cur+1].Tick() <= target {
		if cur+1 < len(entries)-1 && entries[cur+1].Same(entries[cur]) {
			entries = slices.Delete(entries, cur+1, cur+2)
			continue
		}
		cur++
	}

	if entries[cur].Tick() != target {
		entries = slices.Insert(entries, cur+1, entries[cur].WithTick(target))
		cur++
	}
	return entries, cur
}

// rollBack moves cur back to tick, folding redundant entries passed on the
// way. Rolling back before the first entry extends its state backward,
// keeping the futur tick in place.
func rollBack[T Entry[T]](entries []T, cur int, tick uint32) ([]T, int, error) {
	if tick > entries[cur].Tick() {
		return entries, cur, fmt.Errorf("roll back to %d ahead of current %d: %w", tick, entries[cur].Tick(), ErrOutOfRange)
	}

	for cur > 0 && entries[cur].Tick() > tick {
		if cur < len(entries)-1 && entries[cur].Same(entries[cur-1]) {
			entries = slices.Delete(entries, cur, cur+1)
		}
		cur--
	}

	switch {
	case entries[cur].Tick() > tick && len(entries) == 1:
		entries = slices.Insert(entries, 0, entries[0].WithTick(tick))
	case entries[cur].Tick() > tick:
		entries[0] = entries[0].WithTick(tick)
	case entries[cur].Tick() < tick:
		entries = slices.Insert(entries, cur+1, entries[cur].WithTick(tick))
		cur++
	}
	return entries, cur, nil
}

// foresee appends a futur entry n ticks after the last one, copied from
// it. When the two last entries already hold the same state the newer one
// is dropped first, unless it is the current entry.
func foresee[T Entry[T]](entries []T, cur int, n uint32) []T {
	last := len(entries) - 1
	tick := entries[last].Tick() + n

	if last > 0 && cur != last && entries[last].Same(entries[last-1]) {
		entries = entries[:last]
		last--
	}

	return append(entries, entries[last].WithTick(tick))
}

// forgetPast drops every entry before tick, materializing tick first when
// no entry holds it. tick is clamped to the current tick.
func forgetPast[T Entry[T]](entries []T, cur int, tick uint32) ([]T, int) {
	tick = min(tick, entries[cur].Tick())

	idx := indexForTick(entries, -1, tick)
	if idx < 0 {
		return entries, cur
	}

	if entries[idx].Tick() != tick {
		entries = slices.Insert(entries, idx+1, entries[idx].WithTick(tick))
		if cur > idx {
			cur++
		}
		idx++
	}

	if idx == 0 {
		return entries, cur
	}
	return slices.Delete(entries, 0, idx), cur - idx
}

// clearFutur truncates every entry at or after tick, which must be strictly
// after the current tick.
func clearFutur[T Entry[T]](entries []T, cur int, tick uint32) ([]T, error) {
	if tick <= entries[cur].Tick() {
		return entries, fmt.Errorf("clear futur from %d at or before current %d: %w", tick, entries[cur].Tick(), ErrOutOfRange)
	}

	for i := cur + 1; i < len(entries); i++ {
		if entries[i].Tick() >= tick {
			return slices.Delete(entries, i, len(entries)), nil
		}
	}
	return entries, nil
}
