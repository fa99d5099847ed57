package tree

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

type rbTree[K any, V any] struct {
	arena          *rbArena[K, V]
	cmp            infra.KeyComparator[K]
	tracer         *zap.Logger
	stats          *rbtreeStats
	statsName      string
	root           nodeRef
	count          int64
	modCount       uint64
	gen            uint32
	capacity       int
	isDesc         bool
	isStatsEnabled bool
}

func (tree *rbTree[K, V]) handle(x nodeRef) RBNode[K, V] {
	if x == nilRef {
		return nil
	}
	return rbNodeHandle[K, V]{tree: tree, ref: x, gen: tree.gen}
}

func (tree *rbTree[K, V]) keyCompare(op string, k1, k2 K) (int64, error) {
	res, err := tree.cmp(k1, k2)
	if err != nil {
		return 0, &KeyCompareError{Op: op, Err: err}
	}
	return res, nil
}

func (tree *rbTree[K, V]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	return tree.handle(tree.root)
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// So the shortest path nodes are black nodes. Otherwise,
// the path must contain red node.
// The longest path nodes' number is 2 * shortest path nodes' number.

func (d RBDirection) opposite() RBDirection {
	return -d
}

func (a *rbArena[K, V]) childOf(x nodeRef, dir RBDirection) nodeRef {
	switch dir {
	case Left:
		return a.leftOf(x)
	case Right:
		return a.rightOf(x)
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] child of unknown direction")
}

// replaceChild links y into the slot x occupied under p. y's parent
// is set in the same step.
func (tree *rbTree[K, V]) replaceChild(p, x, y nodeRef, dir RBDirection) {
	a := tree.arena
	switch dir {
	case Root:
		tree.root = y
	case Left:
		a.at(p).left = y
	case Right:
		a.at(p).right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to rotate")
	}
	if y != nilRef {
		a.at(y).parent = p
	}
}

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[K, V]) leftRotate(x nodeRef) {
	a := tree.arena
	if x == nilRef || a.rightOf(x) == nilRef {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y, dir := a.parentOf(x), a.rightOf(x), a.direction(x)
	sc := a.leftOf(y)
	a.at(x).right = sc
	if sc != nilRef {
		a.at(sc).parent = x
	}
	tree.replaceChild(p, x, y, dir)
	a.at(y).left = x
	a.at(x).parent = y
	tree.stats.recordRotate(Left)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K, V]) rightRotate(x nodeRef) {
	a := tree.arena
	if x == nilRef || a.leftOf(x) == nilRef {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	p, y, dir := a.parentOf(x), a.leftOf(x), a.direction(x)
	sd := a.rightOf(y)
	a.at(x).left = sd
	if sd != nilRef {
		a.at(sd).parent = x
	}
	tree.replaceChild(p, x, y, dir)
	a.at(y).right = x
	a.at(x).parent = y
	tree.stats.recordRotate(Right)
}

// rotate lifts the child on the opposite side of dir, i.e. rotate(x, Left)
// is leftRotate(x).
func (tree *rbTree[K, V]) rotate(x nodeRef, dir RBDirection) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate to unknown direction")
	}
}

// Put inserts or replaces the value of key.
// i1: Empty rbtree, the key becomes the root and is painted black.
// i2: Key exists, replace the value in place. No structural change.
// i3: New red leaf under the last visited node, then rebalance.
//
// Every comparison happens before the first write, a comparator error
// leaves the tree untouched.
func (tree *rbTree[K, V]) Put(key K, val V) (prev V, replaced bool, err error) {
	a := tree.arena
	if /* i1 */ tree.root == nilRef {
		// Reject keys that are not ordered against themselves (NaN).
		if _, err = tree.keyCompare("put", key, key); err != nil {
			return prev, false, err
		}
		z := a.alloc(key, val, nilRef)
		tree.root = z
		tree.afterInsert()
		tree.insertRebalance(z)
		return prev, false, nil
	}

	var (
		x, y = tree.root, nilRef
		res  int64
	)
	for x != nilRef {
		y = x
		if res, err = tree.keyCompare("put", key, a.at(x).key); err != nil {
			return prev, false, err
		}
		if /* i2 */ res == 0 {
			node := a.at(x)
			prev, node.val = node.val, val
			tree.stats.incUpdate()
			return prev, true, nil
		} else /* less */ if res < 0 {
			x = a.leftOf(x)
		} else /* greater */ {
			x = a.rightOf(x)
		}
	}

	/* i3 */
	z := a.alloc(key, val, y)
	if res < 0 {
		a.at(y).left = z
	} else {
		a.at(y).right = z
	}
	tree.afterInsert()
	tree.insertRebalance(z)
	return prev, false, nil
}

func (tree *rbTree[K, V]) afterInsert() {
	atomic.AddInt64(&tree.count, 1)
	tree.modCount++
	tree.stats.incInsert()
}

func (tree *rbTree[K, V]) Insert(key K, val V, ifNotPresent ...bool) error {
	if len(ifNotPresent) > 0 && ifNotPresent[0] {
		found, err := tree.Contains(key)
		if err != nil {
			return err
		}
		if found {
			return ErrKeyExists
		}
	}
	_, _, err := tree.Put(key, val)
	return err
}

type rebalanceCase uint8

const (
	caseRecolor rebalanceCase = iota
	caseZigZag
	caseStraight
)

func (c rebalanceCase) String() string {
	switch c {
	case caseRecolor:
		return "A-recolor"
	case caseZigZag:
		return "B-zigzag"
	case caseStraight:
		return "C-straight"
	default:
	}
	return "unknown"
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

The loop runs while X is not the root and its parent P is red. P is red
so it is not the root and the grandpa G exists. U is P's sibling.

A: Both the parent P and the uncle U are red, grandpa G is black.
Repaint P and U into black, G into red. G may be red-violated now,
continue with X = G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

B: The uncle U is black and X is the opposite direction to P.
Rotate P to P's direction, then the old P is the lower node of a straight
line. Fall through to C with X = P.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

C: The uncle U is black and X is the same direction as P.
Rotate G to U's direction and repaint. Nothing above can be violated.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]

The root is painted black at the end, which also covers the first insert.
*/
func (tree *rbTree[K, V]) insertRebalance(x nodeRef) {
	a := tree.arena
	for x != tree.root && a.isRed(a.parentOf(x)) {
		p := a.parentOf(x)
		g := a.parentOf(p)
		if g == nilRef {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] red parent without grandpa, root is not black")
		}

		pDir := a.direction(p)
		u := a.childOf(g, pDir.opposite())
		if /* A */ a.isRed(u) {
			tree.traceRebalance(caseRecolor, x)
			a.setColor(p, Black)
			a.setColor(u, Black)
			a.setColor(g, Red)
			x = g
			continue
		}

		if /* B */ a.direction(x) != pDir {
			tree.traceRebalance(caseZigZag, x)
			tree.rotate(p, pDir)
			x, p = p, x
		}

		/* C */
		tree.traceRebalance(caseStraight, x)
		tree.rotate(g, pDir.opposite())
		a.setColor(p, Black)
		a.setColor(g, Red)
		break
	}
	a.setColor(tree.root, Black)
}

func (tree *rbTree[K, V]) depthOf(x nodeRef) int {
	depth := 0
	for p := tree.arena.parentOf(x); p != nilRef; p = tree.arena.parentOf(p) {
		depth++
	}
	return depth
}

func (tree *rbTree[K, V]) traceRebalance(c rebalanceCase, x nodeRef) {
	tree.stats.recordRebalance(c)
	if tree.tracer == nil {
		return
	}
	if ce := tree.tracer.Check(zapcore.DebugLevel, "rbtree insert rebalance"); ce != nil {
		ce.Write(
			zap.String("case", c.String()),
			zap.Any("key", tree.arena.at(x).key),
			zap.Int("depth", tree.depthOf(x)),
		)
	}
}

// search returns the node of key, or nilRef with the last visited node and
// the last compare result when key is absent.
func (tree *rbTree[K, V]) search(op string, key K) (x, last nodeRef, res int64, err error) {
	a := tree.arena
	for x = tree.root; x != nilRef; {
		last = x
		if res, err = tree.keyCompare(op, key, a.at(x).key); err != nil {
			return nilRef, nilRef, 0, err
		}
		if res == 0 {
			return x, last, 0, nil
		} else if res < 0 {
			x = a.leftOf(x)
		} else {
			x = a.rightOf(x)
		}
	}
	return nilRef, last, res, nil
}

func (tree *rbTree[K, V]) Get(key K) (val V, found bool, err error) {
	x, _, _, err := tree.search("get", key)
	if err != nil || x == nilRef {
		return val, false, err
	}
	return tree.arena.at(x).val, true, nil
}

func (tree *rbTree[K, V]) Contains(key K) (bool, error) {
	x, _, _, err := tree.search("contains", key)
	return x != nilRef, err
}

func (tree *rbTree[K, V]) FirstEntry() (RBNode[K, V], bool) {
	if tree.root == nilRef {
		return nil, false
	}
	return tree.handle(tree.arena.minimum(tree.root)), true
}

func (tree *rbTree[K, V]) LastEntry() (RBNode[K, V], bool) {
	if tree.root == nilRef {
		return nil, false
	}
	return tree.handle(tree.arena.maximum(tree.root)), true
}

// upper is the least node with a key strictly greater than key (inclusive
// when orEqual is set).
func (tree *rbTree[K, V]) upper(op string, key K, orEqual bool) (RBNode[K, V], bool, error) {
	x, last, res, err := tree.search(op, key)
	if err != nil || last == nilRef {
		return nil, false, err
	}
	var y nodeRef
	switch {
	case x != nilRef && orEqual:
		y = x
	case x != nilRef:
		y = tree.arena.succ(x)
	case res < 0:
		// key would be the left child of last.
		y = last
	default:
		y = tree.arena.succ(last)
	}
	return tree.handle(y), y != nilRef, nil
}

// lower is the greatest node with a key strictly less than key (inclusive
// when orEqual is set).
func (tree *rbTree[K, V]) lower(op string, key K, orEqual bool) (RBNode[K, V], bool, error) {
	x, last, res, err := tree.search(op, key)
	if err != nil || last == nilRef {
		return nil, false, err
	}
	var y nodeRef
	switch {
	case x != nilRef && orEqual:
		y = x
	case x != nilRef:
		y = tree.arena.pred(x)
	case res > 0:
		// key would be the right child of last.
		y = last
	default:
		y = tree.arena.pred(last)
	}
	return tree.handle(y), y != nilRef, nil
}

func (tree *rbTree[K, V]) HigherEntry(key K) (RBNode[K, V], bool, error) {
	return tree.upper("higher", key, false)
}

func (tree *rbTree[K, V]) CeilingEntry(key K) (RBNode[K, V], bool, error) {
	return tree.upper("ceiling", key, true)
}

func (tree *rbTree[K, V]) LowerEntry(key K) (RBNode[K, V], bool, error) {
	return tree.lower("lower", key, false)
}

func (tree *rbTree[K, V]) FloorEntry(key K) (RBNode[K, V], bool, error) {
	return tree.lower("floor", key, true)
}

func (tree *rbTree[K, V]) Release() {
	tree.stats.release()
	tree.stats = nil
	tree.arena = newRBArena[K, V](tree.capacity)
	tree.root = nilRef
	atomic.StoreInt64(&tree.count, 0)
	tree.modCount++
	tree.gen++
}

type RBTreeOpt[K any, V any] func(*rbTree[K, V])

func WithRBTreeDesc[K any, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isDesc = true
	}
}

// WithRBTreeCapacity preallocates the node arena.
func WithRBTreeCapacity[K any, V any](capacity int) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.capacity = capacity
	}
}

// WithRBTreeTracer logs every insert rebalance case at debug level.
func WithRBTreeTracer[K any, V any](logger *zap.Logger) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.tracer = logger
	}
}

// WithRBTreeStats records the tree metrics by the global otel meter provider.
func WithRBTreeStats[K any, V any](name string) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isStatsEnabled = true
		tree.statsName = name
	}
}

func newRBTree[K any, V any](cmp infra.KeyComparator[K], opts ...RBTreeOpt[K, V]) *rbTree[K, V] {
	if cmp == nil {
		panic( /* debug assertion */ "[rbtree] nil key comparator")
	}
	tree := &rbTree[K, V]{
		cmp:    cmp,
		root:   nilRef,
		count:  0,
		isDesc: false,
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	if tree.isDesc {
		tree.cmp = infra.ReverseKeyComparator(cmp)
	}
	tree.arena = newRBArena[K, V](tree.capacity)
	if tree.isStatsEnabled {
		tree.stats = newRBTreeStats(tree)
	}
	return tree
}

// NewRBTree orders the keys by their natural order. Float NaN keys are
// rejected with a *KeyCompareError.
func NewRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	return newRBTree[K, V](infra.OrderedKeyCompare[K], opts...)
}

func NewRBTreeWithComparator[K any, V any](cmp infra.KeyComparator[K], opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	return newRBTree[K, V](cmp, opts...)
}
