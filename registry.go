package odd

import (
	"sync"
)

var (
	defaultTable *Table
	defaultOnce  sync.Once
	defaultMu    sync.Mutex
)

// Default returns the process table, built from StdHost on first use.
//
// Everything else in this package takes a *Table explicitly; Default is for hosts
// that want exactly one table per process. It panics if the built-ins cannot be
// registered, since no odd value can be encoded without them.
func Default() *Table {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultOnce.Do(func() {
		t, err := NewTable(StdHost())
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// Reset drops the process table so the next Default builds a fresh one.
// This is primarily useful for test isolation.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultTable = nil
	defaultOnce = sync.Once{}
}
