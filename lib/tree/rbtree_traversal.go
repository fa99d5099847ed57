package tree

// Inorder traversal, stepping by succ.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	if tree.root == nilRef || action == nil {
		return
	}
	a := tree.arena
	idx := int64(0)
	for x := a.minimum(tree.root); x != nilRef; x = a.succ(x) {
		node := a.at(x)
		if !action(idx, node.color, node.key, node.val) {
			return
		}
		idx++
	}
}

type dfsOrder uint8

const (
	preorder dfsOrder = iota
	postorder
)

// dfs walks the tree by the parent back-references only, no stack.
// prev tells where we came from:
//  1. prev is x's parent, we are going down.
//  2. prev is x's left child, the left subtree is done.
//  3. prev is x's right child, both subtrees are done.
func (tree *rbTree[K, V]) dfs(order dfsOrder, action func(depth int, color RBColor, key K, val V) bool) {
	if tree.root == nilRef || action == nil {
		return
	}
	a := tree.arena
	visit := func(x nodeRef, depth int) bool {
		node := a.at(x)
		return action(depth, node.color, node.key, node.val)
	}

	x, prev, depth := tree.root, nilRef, 0
	for x != nilRef {
		l, r := a.leftOf(x), a.rightOf(x)
		switch {
		case /* 1 */ prev == a.parentOf(x):
			if order == preorder && !visit(x, depth) {
				return
			}
			if l != nilRef {
				prev, x = x, l
				depth++
				continue
			}
			if r != nilRef {
				prev, x = x, r
				depth++
				continue
			}
		case /* 2 */ prev == l:
			if r != nilRef {
				prev, x = x, r
				depth++
				continue
			}
		default: /* 3 */
		}
		if order == postorder && !visit(x, depth) {
			return
		}
		prev, x = x, a.parentOf(x)
		depth--
	}
}

func (tree *rbTree[K, V]) Preorder(action func(depth int, color RBColor, key K, val V) bool) {
	tree.dfs(preorder, action)
}

func (tree *rbTree[K, V]) Postorder(action func(depth int, color RBColor, key K, val V) bool) {
	tree.dfs(postorder, action)
}

// LevelOrder is the BFS traversal, top to bottom and left to right.
func (tree *rbTree[K, V]) LevelOrder(action func(depth int, color RBColor, key K, val V) bool) {
	if tree.root == nilRef || action == nil {
		return
	}

	type item struct {
		ref   nodeRef
		depth int
	}
	a := tree.arena
	queue := make([]item, 0, tree.Len()>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, item{ref: tree.root})
	for head := 0; head < len(queue); head++ {
		it := queue[head]
		node := a.at(it.ref)
		if !action(it.depth, node.color, node.key, node.val) {
			return
		}
		if node.left != nilRef {
			queue = append(queue, item{ref: node.left, depth: it.depth + 1})
		}
		if node.right != nilRef {
			queue = append(queue, item{ref: node.right, depth: it.depth + 1})
		}
	}
}

// Height is the number of nodes on the longest root to leaf path.
func (tree *rbTree[K, V]) Height() int {
	height := 0
	tree.dfs(preorder, func(depth int, _ RBColor, _ K, _ V) bool {
		if depth+1 > height {
			height = depth + 1
		}
		return true
	})
	return height
}

func (tree *rbTree[K, V]) LeafCount() int64 {
	if tree.root == nilRef {
		return 0
	}
	a := tree.arena
	count := int64(0)
	for x := a.minimum(tree.root); x != nilRef; x = a.succ(x) {
		if a.isLeaf(x) {
			count++
		}
	}
	return count
}

func (tree *rbTree[K, V]) Keys() []K {
	keys := make([]K, 0, tree.Len())
	tree.Foreach(func(_ int64, _ RBColor, key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (tree *rbTree[K, V]) Values() []V {
	vals := make([]V, 0, tree.Len())
	tree.Foreach(func(_ int64, _ RBColor, _ K, val V) bool {
		vals = append(vals, val)
		return true
	})
	return vals
}
