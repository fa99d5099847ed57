package tree

import "errors"

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(?)"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "RBDirection(?)"
}

var (
	ErrKeyExists           = errors.New("[rbtree] key exists, replace disabled")
	ErrIteratorInvalidated = errors.New("[rbtree] iterator invalidated by structural modification")
)

// KeyCompareError reports that the key could not be ordered against the
// keys in the tree. The tree has not been modified when it is returned.
type KeyCompareError struct {
	Op  string
	Err error
}

func (e *KeyCompareError) Error() string {
	return "[rbtree] " + e.Op + ": key compare failed: " + e.Err.Error()
}

func (e *KeyCompareError) Unwrap() error {
	return e.Err
}

// RBNode is a read-only handle to a tree node. Handles stay valid until
// the tree is released.
type RBNode[K any, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	Direction() RBDirection
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RBIterator walks the entries in key order.
//
//	it := tree.Iterator()
//	for it.Next() {
//		_ = it.Key()
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type RBIterator[K any, V any] interface {
	Next() bool
	Key() K
	Val() V
	Node() RBNode[K, V]
	Err() error
	Reset()
}

// RBTree is an ordered map. It is not safe for concurrent mutation, callers
// sharing a tree across goroutines must serialize writes themselves.
type RBTree[K any, V any] interface {
	Len() int64
	Height() int
	LeafCount() int64
	Root() RBNode[K, V]

	Put(key K, val V) (prev V, replaced bool, err error)
	Insert(key K, val V, ifNotPresent ...bool) error
	Get(key K) (val V, found bool, err error)
	Contains(key K) (bool, error)

	FirstEntry() (RBNode[K, V], bool)
	LastEntry() (RBNode[K, V], bool)
	HigherEntry(key K) (RBNode[K, V], bool, error)
	LowerEntry(key K) (RBNode[K, V], bool, error)
	CeilingEntry(key K) (RBNode[K, V], bool, error)
	FloorEntry(key K) (RBNode[K, V], bool, error)

	Iterator() RBIterator[K, V]
	ReverseIterator() RBIterator[K, V]
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Preorder(action func(depth int, color RBColor, key K, val V) bool)
	Postorder(action func(depth int, color RBColor, key K, val V) bool)
	LevelOrder(action func(depth int, color RBColor, key K, val V) bool)
	Keys() []K
	Values() []V

	Release()
}
