package ordering

import (
	"math"
	"sort"
	"strings"
)

// DefaultDuration is the fallback duration (minutes) for items without one.
const DefaultDuration = 5.0

// Item is anything ordered by an integer sequence within a collection.
type Item interface {
	OrderKey() string
	OrderSequence() *int
}

// Timed items also carry a duration used by timeline projection.
type Timed interface {
	Item
	OrderDuration() *float64
}

// Entry is a plain Item, handy for callers without their own row type.
type Entry struct {
	ID       string
	Sequence *int
	Duration *float64
}

func (e Entry) OrderKey() string        { return e.ID }
func (e Entry) OrderSequence() *int     { return e.Sequence }
func (e Entry) OrderDuration() *float64 { return e.Duration }

// EffectiveSequence treats a missing sequence as 0.
func EffectiveSequence(seq *int) int {
	if seq == nil {
		return 0
	}
	return *seq
}

// EffectiveDuration treats a missing or non-positive duration as DefaultDuration.
func EffectiveDuration(d *float64) float64 {
	if d == nil || *d <= 0 {
		return DefaultDuration
	}
	return *d
}

// Sort returns a copy of items stably sorted by effective sequence.
// Items with equal sequence keep their input order.
func Sort[T Item](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return EffectiveSequence(out[i].OrderSequence()) < EffectiveSequence(out[j].OrderSequence())
	})
	return out
}

// NextSequence is the sequence assigned to an item appended to a collection of n items.
func NextSequence(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Change is one sequence reassignment.
type Change struct {
	ID   string `json:"id"`
	From int    `json:"from"`
	To   int    `json:"to"`
	// HadSequence is false when the item had no stored sequence before the change.
	HadSequence bool `json:"hadSequence"`
}

// Plan is the outcome of a reorder. Order lists ids in their final order;
// Changes holds only the items whose effective sequence moves.
type Plan struct {
	Order   []string `json:"order"`
	Changes []Change `json:"changes"`
	Ignored bool     `json:"ignored"`
}

// NoOp reports whether the plan needs no writes.
func (p Plan) NoOp() bool { return p.Ignored || len(p.Changes) == 0 }

func indexOf[T Item](items []T, id string) int {
	for i, it := range items {
		if it.OrderKey() == id {
			return i
		}
	}
	return -1
}

func keys[T Item](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.OrderKey())
	}
	return out
}

// PlanReorder moves draggedID to targetIndex in the sorted list and renumbers
// every item 0..N-1. targetIndex is the position after removal of the dragged
// item and is clamped to the valid range. An unknown draggedID yields an
// ignored plan; dropping an item on its own index yields an empty plan.
func PlanReorder[T Item](items []T, draggedID string, targetIndex int) Plan {
	draggedID = strings.TrimSpace(draggedID)
	sorted := Sort(items)
	src := indexOf(sorted, draggedID)
	if draggedID == "" || src < 0 {
		return Plan{Order: keys(sorted), Ignored: true}
	}
	if targetIndex < 0 {
		targetIndex = 0
	}
	if targetIndex > len(sorted)-1 {
		targetIndex = len(sorted) - 1
	}
	if src == targetIndex {
		return Plan{Order: keys(sorted)}
	}

	moved := sorted[src]
	rest := make([]T, 0, len(sorted))
	rest = append(rest, sorted[:src]...)
	rest = append(rest, sorted[src+1:]...)

	final := make([]T, 0, len(sorted))
	final = append(final, rest[:targetIndex]...)
	final = append(final, moved)
	final = append(final, rest[targetIndex:]...)

	return renumber(final)
}

func renumber[T Item](final []T) Plan {
	plan := Plan{Order: keys(final)}
	for i, it := range final {
		seq := it.OrderSequence()
		if seq != nil && *seq == i {
			continue
		}
		if seq == nil && i == 0 {
			continue
		}
		plan.Changes = append(plan.Changes, Change{
			ID:          it.OrderKey(),
			From:        EffectiveSequence(seq),
			To:          i,
			HadSequence: seq != nil,
		})
	}
	return plan
}

// TimelineDropIndex maps a drop at dropPercentage of the timeline width to an
// insertion index in [0, count]. NaN drops append.
func TimelineDropIndex(dropPercentage float64, count int) int {
	if count <= 0 {
		return 0
	}
	if math.IsNaN(dropPercentage) {
		return count
	}
	idx := math.Floor(dropPercentage/100*float64(count) + 0.5)
	if idx < 0 {
		return 0
	}
	if idx > float64(count) {
		return count
	}
	return int(idx)
}

// PlanTimelineDrop converts a continuous drop coordinate to an index and plans the reorder.
func PlanTimelineDrop[T Item](items []T, draggedID string, dropPercentage float64) Plan {
	return PlanReorder(items, draggedID, TimelineDropIndex(dropPercentage, len(items)))
}

// Normalize renumbers the stably sorted list contiguously from 0, repairing
// duplicate or gapped sequences.
func Normalize[T Item](items []T) Plan {
	return renumber(Sort(items))
}

// Duplicates returns the effective sequence values held by more than one item, ascending.
func Duplicates[T Item](items []T) []int {
	counts := map[int]int{}
	for _, it := range items {
		counts[EffectiveSequence(it.OrderSequence())]++
	}
	var out []int
	for seq, n := range counts {
		if n > 1 {
			out = append(out, seq)
		}
	}
	sort.Ints(out)
	return out
}

// Gaps reports whether the effective sequences are not exactly 0..N-1.
func Gaps[T Item](items []T) bool {
	sorted := Sort(items)
	for i, it := range sorted {
		if EffectiveSequence(it.OrderSequence()) != i {
			return true
		}
	}
	return false
}
