package id

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

// monotonicNonZeroID only increases. It skips 0 when it overflows.
// The counter occupies a whole cache line, so generators shared by
// goroutines on different cores do not false share with their neighbours.
type monotonicNonZeroID struct {
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
	val uint64
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
}

func (id *monotonicNonZeroID) next() uint64 {
	var v uint64
	if v = atomic.AddUint64(&id.val, 1); v == 0 {
		v = atomic.AddUint64(&id.val, 1)
	}
	return v
}

func MonotonicNonZeroID() (Generator, error) {
	return MonotonicNonZeroIDFrom(0)
}

// MonotonicNonZeroIDFrom starts right after start, the first number is
// start+1 (or 1 if start is the max uint64).
func MonotonicNonZeroIDFrom(start uint64) (Generator, error) {
	src := &monotonicNonZeroID{val: start}
	return &genDelegator{
		number: src.next,
	}, nil
}
