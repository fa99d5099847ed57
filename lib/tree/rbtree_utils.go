package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	ErrRedViolation   = errors.New("rbtree red violation")
	ErrBlackViolation = errors.New("rbtree black violation")
	ErrRootViolation  = errors.New("rbtree root violation")
	ErrOrderViolation = errors.New("rbtree order violation")
	ErrLinkViolation  = errors.New("rbtree link violation")
)

func isRed[K any, V any](node RBNode[K, V]) bool {
	return node != nil && node.Color() == Red
}

func isBlack[K any, V any](node RBNode[K, V]) bool {
	return node == nil || node.Color() == Black
}

func blackDepthTo[K any, V any](target, to RBNode[K, V]) int {
	depth := 0
	for aux := target; aux != nil && aux != to; aux = aux.Parent() {
		if isBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// dfsNodes visits every node handle, parents before children.
func dfsNodes[K any, V any](tree RBTree[K, V], fn func(node RBNode[K, V]) error) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	stack := make([]RBNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, root)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		if err := fn(aux); err != nil {
			return err
		}
		if r := aux.Right(); r != nil {
			stack = append(stack, r)
		}
		if l := aux.Left(); l != nil {
			stack = append(stack, l)
		}
	}
	return nil
}

func RedViolationValidate[K any, V any](tree RBTree[K, V]) error {
	return dfsNodes[K, V](tree, func(aux RBNode[K, V]) error {
		if isRed[K, V](aux) && (isRed[K, V](aux.Left()) || isRed[K, V](aux.Right())) {
			return fmt.Errorf("%w: red node %v has a red child", ErrRedViolation, aux.Key())
		}
		return nil
	})
}

// BFS traversal to load all nodes owning a nil leaf.
func bfsLeaves[K any, V any](tree RBTree[K, V]) []RBNode[K, V] {
	root := tree.Root()
	if root == nil {
		return nil
	}

	leaves := make([]RBNode[K, V], 0, tree.Len()>>1+1)
	queue := make([]RBNode[K, V], 0, tree.Len()>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, root)

	for head := 0; head < len(queue); head++ {
		aux := queue[head]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

Each nil leaf to root node black depth are equal. The property then holds
for every subtree as well, the paths below a node share its prefix.
*/
func BlackViolationValidate[K any, V any](tree RBTree[K, V]) error {
	leaves := bfsLeaves[K, V](tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[K, V](leaves[0], nil)
	for i := 1; i < len(leaves); i++ {
		if d := blackDepthTo[K, V](leaves[i], nil); d != blackDepth {
			return fmt.Errorf("%w: black depth %d of %v, expected %d",
				ErrBlackViolation, d, leaves[i].Key(), blackDepth)
		}
	}
	return nil
}

func RootViolationValidate[K any, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		if tree.Len() != 0 {
			return fmt.Errorf("%w: nil root with %d elements", ErrRootViolation, tree.Len())
		}
		return nil
	}
	if root.Parent() != nil {
		return fmt.Errorf("%w: root has a parent", ErrRootViolation)
	}
	if root.Color() != Black {
		return fmt.Errorf("%w: red root %v", ErrRootViolation, root.Key())
	}
	return nil
}

// LinkViolationValidate checks that every child points back to its parent.
func LinkViolationValidate[K any, V any](tree RBTree[K, V]) error {
	count := int64(0)
	err := dfsNodes[K, V](tree, func(aux RBNode[K, V]) error {
		count++
		if l := aux.Left(); l != nil && l.Parent() != aux {
			return fmt.Errorf("%w: left child %v of %v", ErrLinkViolation, l.Key(), aux.Key())
		}
		if r := aux.Right(); r != nil && r.Parent() != aux {
			return fmt.Errorf("%w: right child %v of %v", ErrLinkViolation, r.Key(), aux.Key())
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count != tree.Len() {
		return fmt.Errorf("%w: %d reachable nodes, len %d", ErrLinkViolation, count, tree.Len())
	}
	return nil
}

type keyComparatorHolder[K any] interface {
	comparator() infra.KeyComparator[K]
}

func (tree *rbTree[K, V]) comparator() infra.KeyComparator[K] {
	return tree.cmp
}

// OrderViolationValidate checks the inorder keys are strictly ascending by
// the tree's own comparator (descending trees hold a reversed one).
func OrderViolationValidate[K any, V any](tree RBTree[K, V]) error {
	holder, ok := tree.(keyComparatorHolder[K])
	if !ok {
		return nil
	}
	cmp := holder.comparator()

	var prev K
	it := tree.Iterator()
	for i := 0; it.Next(); i++ {
		if i > 0 {
			res, err := cmp(prev, it.Key())
			if err != nil {
				return multierr.Append(ErrOrderViolation, err)
			}
			if res >= 0 {
				return fmt.Errorf("%w: %v is not less than %v", ErrOrderViolation, prev, it.Key())
			}
		}
		prev = it.Key()
	}
	return it.Err()
}

// Validate runs every rule check and reports all the violations at once.
func Validate[K any, V any](tree RBTree[K, V]) error {
	return multierr.Combine(
		RootViolationValidate[K, V](tree),
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		LinkViolationValidate[K, V](tree),
		OrderViolationValidate[K, V](tree),
	)
}
