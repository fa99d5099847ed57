package tree

import (
	"fmt"
	"io"
	"strings"
)

/*
Fprint writes the tree rotated 90 degrees counterclockwise, one node per
line, right subtree on top. <X> is a RED node, [X] is a BLACK node.

Insert 10, 20, 30:

	    <30>
	[20]
	    <10>
*/
func Fprint[K any, V any](w io.Writer, tree RBTree[K, V]) error {
	type frame struct {
		node  RBNode[K, V]
		depth int
	}
	stack := make([]frame, 0, 64)
	defer func() {
		clear(stack)
	}()

	cur, depth := tree.Root(), 0
	for cur != nil || len(stack) > 0 {
		for ; cur != nil; cur = cur.Right() {
			stack = append(stack, frame{node: cur, depth: depth})
			depth++
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		open, closing := "[", "]"
		if f.node.Color() == Red {
			open, closing = "<", ">"
		}
		if _, err := fmt.Fprintf(w, "%s%s%v%s\n",
			strings.Repeat("    ", f.depth), open, f.node.Key(), closing,
		); err != nil {
			return err
		}
		cur, depth = f.node.Left(), f.depth+1
	}
	return nil
}

func Sprint[K any, V any](tree RBTree[K, V]) string {
	builder := &strings.Builder{}
	_ = Fprint[K, V](builder, tree)
	return builder.String()
}
