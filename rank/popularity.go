package rank

import (
	"context"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/pipeline"
	"github.com/rushteam/auctionrec/pkg/utils"
)

// Popularity 是热门打分节点：候选分 = 近期窗口内的衰减交互热度。
// 用于冷启动兜底路径，排序规则与个性化路径保持一致。
type Popularity struct{}

func (n *Popularity) Name() string        { return "rank.popularity" }
func (n *Popularity) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *Popularity) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	for _, it := range items {
		if it == nil {
			continue
		}
		if rctx != nil && rctx.Model != nil {
			it.Score = rctx.Model.Popularity(it.ID)
		}
		it.PutLabel("rank_model", utils.Label{Value: "popularity", Source: "rank"})
	}

	SortItems(items)
	return items, nil
}
