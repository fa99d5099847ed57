package tree

// Navigation never recurses and never allocates, it only follows the
// parent back-references.

func (a *rbArena[K, V]) minimum(x nodeRef) nodeRef {
	if x == nilRef {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] minimum of nil leaf")
	}
	for l := a.leftOf(x); l != nilRef; l = a.leftOf(x) {
		x = l
	}
	return x
}

func (a *rbArena[K, V]) maximum(x nodeRef) nodeRef {
	if x == nilRef {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] maximum of nil leaf")
	}
	for r := a.rightOf(x); r != nilRef; r = a.rightOf(x) {
		x = r
	}
	return x
}

// The succ node of the current node is its next node in sorted order.
// nilRef means x is the maximum.
func (a *rbArena[K, V]) succ(x nodeRef) nodeRef {
	if x == nilRef {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] succ of nil leaf")
	}
	if r := a.rightOf(x); r != nilRef {
		return a.minimum(r)
	}

	p := a.parentOf(x)
	// Backtrack to the first ancestor reached from its left subtree.
	for p != nilRef && x == a.rightOf(p) {
		x = p
		p = a.parentOf(p)
	}
	return p
}

// The pred node of the current node is its previous node in sorted order.
// nilRef means x is the minimum.
func (a *rbArena[K, V]) pred(x nodeRef) nodeRef {
	if x == nilRef {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] pred of nil leaf")
	}
	if l := a.leftOf(x); l != nilRef {
		return a.maximum(l)
	}

	p := a.parentOf(x)
	// Backtrack to the first ancestor reached from its right subtree.
	for p != nilRef && x == a.leftOf(p) {
		x = p
		p = a.parentOf(p)
	}
	return p
}
