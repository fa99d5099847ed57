package id

import (
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonotonicNonZeroID(t *testing.T) {
	gen, err := MonotonicNonZeroID()
	require.NoError(t, err)
	prev := uint64(0)
	for i := 0; i < 1000; i++ {
		num := gen.Number()
		require.Greater(t, num, prev)
		prev = num
	}
	require.Equal(t, uint64(1000), prev)
	require.Equal(t, "1001", gen.Str())
}

func TestMonotonicNonZeroID_Overflow(t *testing.T) {
	gen, err := MonotonicNonZeroIDFrom(math.MaxUint64 - 1)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), gen.Number())
	require.Equal(t, uint64(1), gen.Number())
	require.Equal(t, strconv.FormatUint(2, 10), gen.Str())
}

func TestMonotonicNonZeroID_Concurrent(t *testing.T) {
	gen, err := MonotonicNonZeroID()
	require.NoError(t, err)

	const workers, total = 8, 1000
	res := make([][]uint64, workers)
	wg := sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			nums := make([]uint64, 0, total)
			for i := 0; i < total; i++ {
				nums = append(nums, gen.Number())
			}
			res[w] = nums
		}(w)
	}
	wg.Wait()

	set := make(map[uint64]struct{}, workers*total)
	for _, nums := range res {
		for i := 1; i < len(nums); i++ {
			require.Greater(t, nums[i], nums[i-1])
		}
		for _, num := range nums {
			set[num] = struct{}{}
		}
	}
	require.Len(t, set, workers*total)
}
