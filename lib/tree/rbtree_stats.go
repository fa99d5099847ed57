package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xtree/rbtree"
)

var (
	rotateLeftAttrs  = metric.WithAttributeSet(attribute.NewSet(attribute.String("direction", "left")))
	rotateRightAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("direction", "right")))
	rebalanceAttrs   = [...]metric.AddOption{
		caseRecolor:  metric.WithAttributeSet(attribute.NewSet(attribute.String("case", caseRecolor.String()))),
		caseZigZag:   metric.WithAttributeSet(attribute.NewSet(attribute.String("case", caseZigZag.String()))),
		caseStraight: metric.WithAttributeSet(attribute.NewSet(attribute.String("case", caseStraight.String()))),
	}
)

// All the methods are nil receiver safe, a tree without stats holds a nil.
type rbtreeStats struct {
	insertCount    metric.Int64Counter
	updateCount    metric.Int64Counter
	rotateCount    metric.Int64Counter
	rebalanceCount metric.Int64Counter
	size           metric.Int64ObservableGauge
	registration   metric.Registration
}

func (stats *rbtreeStats) incInsert() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1)
}

func (stats *rbtreeStats) incUpdate() {
	if stats == nil {
		return
	}
	stats.updateCount.Add(context.Background(), 1)
}

func (stats *rbtreeStats) recordRotate(dir RBDirection) {
	if stats == nil {
		return
	}
	if dir == Left {
		stats.rotateCount.Add(context.Background(), 1, rotateLeftAttrs)
		return
	}
	stats.rotateCount.Add(context.Background(), 1, rotateRightAttrs)
}

func (stats *rbtreeStats) recordRebalance(c rebalanceCase) {
	if stats == nil || int(c) >= len(rebalanceAttrs) {
		return
	}
	stats.rebalanceCount.Add(context.Background(), 1, rebalanceAttrs[c])
}

func (stats *rbtreeStats) release() {
	if stats == nil || stats.registration == nil {
		return
	}
	_ = stats.registration.Unregister()
	stats.registration = nil
}

func newRBTreeStats[K any, V any](ref *rbTree[K, V]) *rbtreeStats {
	meterName := RBTreeStatsName
	if len(ref.statsName) > 0 {
		meterName = fmt.Sprintf("%s/%s", RBTreeStatsName, ref.statsName)
	}
	meter := otel.Meter(meterName)
	stats := &rbtreeStats{
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.insert.count",
			metric.WithDescription("The number of new nodes inserted into the rbtree."),
		)),
		updateCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.update.count",
			metric.WithDescription("The number of puts replacing the value of an existing key."),
		)),
		rotateCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rotate.count",
			metric.WithDescription("The number of rotations by direction."),
		)),
		rebalanceCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rebalance.count",
			metric.WithDescription("The number of insert rebalance steps by case."),
		)),
		size: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"rbtree.size",
			metric.WithDescription("The number of elements in the rbtree."),
		)),
	}
	stats.registration = lo.Must[metric.Registration](meter.RegisterCallback(
		func(ctx context.Context, ob metric.Observer) error {
			ob.ObserveInt64(stats.size, ref.Len())
			return nil
		},
		stats.size,
	))
	return stats
}
