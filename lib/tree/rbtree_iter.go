package tree

var _ RBIterator[int, int] = (*rbIterator[int, int])(nil)

// rbIterator steps by succ/pred, so it holds no stack and a full walk
// costs O(n). It is fail-fast: once the tree is structurally modified
// after the iterator was created (or reset), Next returns false and Err
// reports ErrIteratorInvalidated.
type rbIterator[K any, V any] struct {
	tree     *rbTree[K, V]
	cur      nodeRef
	modCount uint64
	err      error
	reverse  bool
	started  bool
}

func (it *rbIterator[K, V]) Next() bool {
	if it.err != nil {
		return false
	}
	if it.modCount != it.tree.modCount {
		it.err = ErrIteratorInvalidated
		it.cur = nilRef
		return false
	}

	a := it.tree.arena
	if !it.started {
		it.started = true
		if it.tree.root == nilRef {
			return false
		}
		if it.reverse {
			it.cur = a.maximum(it.tree.root)
		} else {
			it.cur = a.minimum(it.tree.root)
		}
		return true
	}

	if it.cur == nilRef {
		return false
	}
	if it.reverse {
		it.cur = a.pred(it.cur)
	} else {
		it.cur = a.succ(it.cur)
	}
	return it.cur != nilRef
}

func (it *rbIterator[K, V]) current() *rbNode[K, V] {
	if it.cur == nilRef {
		panic( /* debug assertion */ "[rbtree] iterator is not positioned at an entry")
	}
	return it.tree.arena.at(it.cur)
}

func (it *rbIterator[K, V]) Key() K {
	return it.current().key
}

func (it *rbIterator[K, V]) Val() V {
	return it.current().val
}

func (it *rbIterator[K, V]) Node() RBNode[K, V] {
	return it.tree.handle(it.cur)
}

func (it *rbIterator[K, V]) Err() error {
	return it.err
}

// Reset rewinds the iterator and accepts the current tree structure.
func (it *rbIterator[K, V]) Reset() {
	it.cur = nilRef
	it.err = nil
	it.started = false
	it.modCount = it.tree.modCount
}

func (tree *rbTree[K, V]) Iterator() RBIterator[K, V] {
	return &rbIterator[K, V]{
		tree:     tree,
		modCount: tree.modCount,
	}
}

func (tree *rbTree[K, V]) ReverseIterator() RBIterator[K, V] {
	return &rbIterator[K, V]{
		tree:     tree,
		modCount: tree.modCount,
		reverse:  true,
	}
}
