// Package filter recognizes changes a persisted layer made itself,
// when they come back from the persister it is watching.
package filter

import "sync"

// Echoes counts changes written to a persister whose echoes are not seen yet
type Echoes[C comparable] struct {
	sync.Mutex
	pending map[C]int
}

// NewEchoes creates an empty Echoes
func NewEchoes[C comparable]() *Echoes[C] {
	return &Echoes[C]{pending: make(map[C]int)}
}

// Expect records a change about to be written, it must be called before writing
func (f *Echoes[C]) Expect(change C) {
	f.Lock()
	defer f.Unlock()

	f.pending[change]++
}

// Cancel forgets an expected change, for writes which failed
func (f *Echoes[C]) Cancel(change C) {
	f.Lock()
	defer f.Unlock()

	f.drop(change)
}

// Echo tells if the incoming change is one expected, and consumes it if so
func (f *Echoes[C]) Echo(change C) bool {
	f.Lock()
	defer f.Unlock()

	if f.pending[change] == 0 {
		return false
	}
	f.drop(change)
	return true
}

// Pending returns the number of echoes not seen yet
func (f *Echoes[C]) Pending() int {
	f.Lock()
	defer f.Unlock()

	n := 0
	for _, c := range f.pending {
		n += c
	}
	return n
}

func (f *Echoes[C]) drop(change C) {
	if f.pending[change] <= 1 {
		delete(f.pending, change)
		return
	}
	f.pending[change]--
}
