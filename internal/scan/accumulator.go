package scan

import "sort"

// Accumulator keeps the unique codes discovered across a run. It only
// grows; nothing is ever removed.
type Accumulator struct {
	seen map[string]struct{}
}

func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]struct{})}
}

// MergeNew diffs a frame's codes against everything seen so far, merges
// them in, and returns only the previously unseen ones sorted
// ascending. A code already in the set comes back empty no matter how
// many later frames still show it.
func (a *Accumulator) MergeNew(codes map[string]struct{}) []string {
	var fresh []string
	for code := range codes {
		if _, ok := a.seen[code]; !ok {
			fresh = append(fresh, code)
		}
	}
	for _, code := range fresh {
		a.seen[code] = struct{}{}
	}
	sort.Strings(fresh)
	return fresh
}

// Len reports how many unique codes have been seen.
func (a *Accumulator) Len() int { return len(a.seen) }

// Sorted returns every unique code in ascending order.
func (a *Accumulator) Sorted() []string {
	codes := make([]string, 0, len(a.seen))
	for code := range a.seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
