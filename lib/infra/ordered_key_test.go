package infra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedKeyCompare(t *testing.T) {
	res, err := OrderedKeyCompare(1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(-1), res)

	res, err = OrderedKeyCompare("b", "a")
	require.NoError(t, err)
	require.Equal(t, int64(1), res)

	res, err = OrderedKeyCompare(uint8(7), uint8(7))
	require.NoError(t, err)
	require.Equal(t, int64(0), res)

	_, err = OrderedKeyCompare(math.NaN(), 1.0)
	require.ErrorIs(t, err, ErrKeyNotComparable)
	_, err = OrderedKeyCompare(1.0, math.NaN())
	require.ErrorIs(t, err, ErrKeyNotComparable)
	_, err = OrderedKeyCompare(float32(math.NaN()), float32(math.NaN()))
	require.ErrorIs(t, err, ErrKeyNotComparable)

	res, err = OrderedKeyCompare(math.Inf(-1), math.Inf(1))
	require.NoError(t, err)
	require.Equal(t, int64(-1), res)
}

func TestReverseKeyComparator(t *testing.T) {
	cmp := ReverseKeyComparator(OrderedKeyCompare[int])
	res, err := cmp(1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(1), res)

	res, err = cmp(2, 2)
	require.NoError(t, err)
	require.Equal(t, int64(0), res)

	_, err = ReverseKeyComparator(OrderedKeyCompare[float64])(math.NaN(), 0)
	require.ErrorIs(t, err, ErrKeyNotComparable)
}

func TestReverseKeyComparator_ExtremeResults(t *testing.T) {
	extreme := func(i, j int64) (int64, error) {
		switch {
		case i < j:
			return math.MinInt64, nil
		case i > j:
			return math.MaxInt64, nil
		}
		return 0, nil
	}
	cmp := ReverseKeyComparator[int64](extreme)

	res, err := cmp(1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(1), res)

	res, err = cmp(2, 1)
	require.NoError(t, err)
	require.Equal(t, int64(-1), res)

	res, err = cmp(3, 3)
	require.NoError(t, err)
	require.Equal(t, int64(0), res)
}
