package tree

import "math"

// nodeRef addresses a node in the arena. The zero value is the nil leaf.
type nodeRef uint32

const (
	nilRef   nodeRef = 0
	maxNodes         = math.MaxUint32
)

type rbNode[K any, V any] struct {
	key    K
	val    V
	parent nodeRef
	left   nodeRef
	right  nodeRef
	color  RBColor
}

// rbArena owns every node of a tree. Parent and child relations are stored
// as refs, so a rotation only rewrites integers and nothing can dangle.
//
// Slot 0 is the nil leaf sentinel. It is black, its links are nilRef and it is
// never written, which lets colorOf/parentOf/leftOf/rightOf read it without
// branching: "absent is black" holds by construction.
type rbArena[K any, V any] struct {
	nodes []rbNode[K, V]
}

func newRBArena[K any, V any](capacity int) *rbArena[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &rbArena[K, V]{
		nodes: make([]rbNode[K, V], 1, capacity+1),
	}
}

func (a *rbArena[K, V]) len() int {
	return len(a.nodes) - 1
}

// alloc appends a red leaf. Pointers returned by at() before alloc must not be
// used after it, the backing array may move.
func (a *rbArena[K, V]) alloc(key K, val V, parent nodeRef) nodeRef {
	if uint64(len(a.nodes)) >= maxNodes {
		panic( /* debug assertion */ "[rbtree] node arena exhausted")
	}
	a.nodes = append(a.nodes, rbNode[K, V]{
		key:    key,
		val:    val,
		parent: parent,
		color:  Red,
	})
	return nodeRef(len(a.nodes) - 1)
}

func (a *rbArena[K, V]) at(x nodeRef) *rbNode[K, V] {
	if x == nilRef {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] dereference nil leaf")
	}
	return &a.nodes[x]
}

func (a *rbArena[K, V]) colorOf(x nodeRef) RBColor {
	return a.nodes[x].color
}

func (a *rbArena[K, V]) parentOf(x nodeRef) nodeRef {
	return a.nodes[x].parent
}

func (a *rbArena[K, V]) leftOf(x nodeRef) nodeRef {
	return a.nodes[x].left
}

func (a *rbArena[K, V]) rightOf(x nodeRef) nodeRef {
	return a.nodes[x].right
}

func (a *rbArena[K, V]) isRed(x nodeRef) bool {
	return a.colorOf(x) == Red
}

func (a *rbArena[K, V]) setColor(x nodeRef, c RBColor) {
	if x == nilRef {
		return
	}
	a.nodes[x].color = c
}

func (a *rbArena[K, V]) direction(x nodeRef) RBDirection {
	if x == nilRef {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}
	p := a.parentOf(x)
	if p == nilRef {
		return Root
	}
	if a.leftOf(p) == x {
		return Left
	}
	return Right
}

func (a *rbArena[K, V]) isLeaf(x nodeRef) bool {
	return x != nilRef && a.leftOf(x) == nilRef && a.rightOf(x) == nilRef
}

var _ RBNode[int, int] = rbNodeHandle[int, int]{}

type rbNodeHandle[K any, V any] struct {
	tree *rbTree[K, V]
	ref  nodeRef
	gen  uint32
}

func (h rbNodeHandle[K, V]) node() *rbNode[K, V] {
	if h.tree.gen != h.gen {
		panic( /* debug assertion */ "[rbtree] stale node handle, the tree has been released")
	}
	return h.tree.arena.at(h.ref)
}

func (h rbNodeHandle[K, V]) Key() K {
	return h.node().key
}

func (h rbNodeHandle[K, V]) Val() V {
	return h.node().val
}

func (h rbNodeHandle[K, V]) Color() RBColor {
	return h.node().color
}

func (h rbNodeHandle[K, V]) Direction() RBDirection {
	_ = h.node()
	return h.tree.arena.direction(h.ref)
}

func (h rbNodeHandle[K, V]) Left() RBNode[K, V] {
	return h.tree.handle(h.node().left)
}

func (h rbNodeHandle[K, V]) Right() RBNode[K, V] {
	return h.tree.handle(h.node().right)
}

func (h rbNodeHandle[K, V]) Parent() RBNode[K, V] {
	return h.tree.handle(h.node().parent)
}
