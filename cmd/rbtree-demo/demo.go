package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/id"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/xlog"
)

// randomKeys returns n distinct keys above the largest given key (and
// above 0), shuffled. They never collide with the given keys.
func randomKeys(keys []int64, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}
	start := uint64(0)
	if len(keys) > 0 {
		if m := lo.Max(keys); m > 0 {
			start = uint64(m)
		}
	}
	gen, err := id.MonotonicNonZeroIDFrom(start)
	if err != nil {
		return nil, err
	}
	random := make([]int64, 0, n)
	for len(random) < n {
		k := gen.Number()
		if k > math.MaxInt64 {
			return nil, fmt.Errorf("random keys overflow int64 after %d keys", len(random))
		}
		random = append(random, int64(k))
	}
	return lo.Shuffle(random), nil
}

func traversal(out io.Writer, name string, walk func(func(int, tree.RBColor, int64, string) bool)) {
	keys := make([]string, 0, 64)
	walk(func(_ int, _ tree.RBColor, key int64, _ string) bool {
		keys = append(keys, strconv.FormatInt(key, 10))
		return true
	})
	_, _ = fmt.Fprintf(out, "%s: %s\n", name, strings.Join(keys, " "))
}

func runDemo(opts *options, out io.Writer, logger xlog.XLogger, t tree.RBTree[int64, string]) error {
	random, err := randomKeys(opts.keys, opts.random)
	if err != nil {
		logger.ErrorStack(infra.WrapErrorStack(err, "random keys"), "rbtree demo aborted")
		return err
	}

	for i, key := range append(append(make([]int64, 0, len(opts.keys)+len(random)), opts.keys...), random...) {
		prev, replaced, err := t.Put(key, "v"+strconv.Itoa(i))
		if err != nil {
			logger.ErrorStack(infra.WrapErrorStack(err, "rbtree put"), "rbtree demo aborted", zap.Int64("key", key))
			return err
		}
		if replaced {
			logger.Info("rbtree key replaced", zap.Int64("key", key), zap.String("prev", prev))
		}
	}

	if err = tree.Fprint[int64, string](out, t); err != nil {
		return err
	}
	traversal(out, "preorder", t.Preorder)
	traversal(out, "inorder", func(action func(int, tree.RBColor, int64, string) bool) {
		t.Foreach(func(idx int64, color tree.RBColor, key int64, val string) bool {
			return action(int(idx), color, key, val)
		})
	})
	traversal(out, "postorder", t.Postorder)
	traversal(out, "levelorder", t.LevelOrder)
	_, _ = fmt.Fprintf(out, "len: %d\nheight: %d\nleaves: %d\n", t.Len(), t.Height(), t.LeafCount())
	if first, ok := t.FirstEntry(); ok {
		last, _ := t.LastEntry()
		_, _ = fmt.Fprintf(out, "first: %d=%s\nlast: %d=%s\n", first.Key(), first.Val(), last.Key(), last.Val())
	}

	if err = tree.Validate[int64, string](t); err != nil {
		logger.ErrorStack(infra.WrapErrorStack(err, "rbtree validate"), "rbtree demo aborted")
		return err
	}
	logger.Info("rbtree demo done",
		zap.Int64("len", t.Len()),
		zap.Int("distinct", opts.distinct+len(random)),
		zap.Int("height", t.Height()),
	)
	return nil
}
