package sid

import "sync"

// FcnMap is the process-wide (sat, band) -> GLONASS frequency channel
// number mapping, made an explicit value the caller owns instead of a
// package global (spec.md §5, Design Notes §9 "Global FCN map"). It follows
// a read-mostly, single-writer discipline: concurrent Lookup calls need no
// external locking as long as Set calls are not interleaved from multiple
// goroutines during the same window.
type FcnMap struct {
	mu sync.RWMutex
	m  map[fcnKey]int
}

type fcnKey struct {
	sat, band int
}

// NewFcnMap returns an empty map.
func NewFcnMap() *FcnMap {
	return &FcnMap{m: make(map[fcnKey]int)}
}

// Set records the frequency channel number for (sat, band). Band is 1 for
// L1, 2 for L2.
func (f *FcnMap) Set(sat, band, fcn int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[fcnKey{sat, band}] = fcn
}

// Lookup returns the FCN for (sat, band), and whether it is known. A nil
// receiver always reports not-found, so callers that never deal with
// GLONASS can pass nil.
func (f *FcnMap) Lookup(sat, band int) (int, bool) {
	if f == nil {
		return 0, false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	fcn, ok := f.m[fcnKey{sat, band}]
	return fcn, ok
}
