package infra

import "errors"

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
// NaN is a member of the type set but not of the order, see OrderedKeyCompare.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

var ErrKeyNotComparable = errors.New("[infra] keys are not mutually comparable")

// KeyComparator
// Assume i is the new key.
//  1. i == j (return 0)
//  2. i > j (return 1), turn to right part.
//  3. i < j (return -1), turn to left part.
//
// A non-nil error means i and j have no defined order. Callers must not
// interpret the int64 result in that case.
type KeyComparator[K any] func(i, j K) (int64, error)

// OrderedKeyCompare is the natural ordering of the OrderedKey types.
// A float NaN is not equal to itself and has no place in a total order,
// so any comparison involving it fails with ErrKeyNotComparable.
func OrderedKeyCompare[K OrderedKey](i, j K) (int64, error) {
	if /* NaN */ i != i || j != j {
		return 0, ErrKeyNotComparable
	}
	if i == j {
		return 0, nil
	} else if i < j {
		return -1, nil
	}
	return 1, nil
}

// ReverseKeyComparator flips the order of cmp. The error is passed through.
func ReverseKeyComparator[K any](cmp KeyComparator[K]) KeyComparator[K] {
	return func(i, j K) (int64, error) {
		res, err := cmp(i, j)
		if err != nil {
			return 0, err
		}
		// Only the sign counts, -math.MinInt64 overflows.
		if res < 0 {
			return 1, nil
		} else if res > 0 {
			return -1, nil
		}
		return 0, nil
	}
}
