package rerank

import (
	"context"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/pipeline"
)

// TopN 是截断节点：对已排序的候选去重后取前 N 个。
// 请求里带了 Limit 时优先使用 Limit，节点配置的 N 作为默认值。
type TopN struct {
	N     int
	Dedup bool
}

func (n *TopN) Name() string        { return "rerank.topn" }
func (n *TopN) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopN) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if rctx != nil && rctx.Limit > 0 {
		limit = rctx.Limit
	}

	out := make([]*core.Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if n.Dedup {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
		}
		out = append(out, it)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
