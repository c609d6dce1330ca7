package rank

import (
	"context"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/pipeline"
	"github.com/rushteam/auctionrec/pkg/utils"
)

// WeightedSimilarity 是个性化打分节点：候选分 = 用户历史各拍品与候选的
// 相似度按历史交互权重加权求和，再除以用户历史总交互量做归一化。
// 归一化保证重度用户和轻度用户的分数落在可比的量级上。
//
// 依赖 rctx.History（带衰减的历史权重）与 rctx.Model（相似度模型）。
// 模型或历史缺失时返回 core.ErrInsufficientData，由上层切换热门兜底。
type WeightedSimilarity struct{}

func (n *WeightedSimilarity) Name() string        { return "rank.weighted_similarity" }
func (n *WeightedSimilarity) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *WeightedSimilarity) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Model == nil || len(rctx.History) == 0 {
		return nil, core.ErrInsufficientData
	}

	mass := rctx.HistoryMass()
	if mass <= 0 {
		return nil, core.ErrInsufficientData
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		var sum float64
		for hist, w := range rctx.History {
			if hist == it.ID {
				continue
			}
			if sim := rctx.Model.Similarity(hist, it.ID); sim > 0 {
				sum += w * sim
			}
		}
		it.Score = sum / mass
		it.PutLabel("rank_model", utils.Label{Value: "weighted_similarity", Source: "rank"})
	}

	SortItems(items)
	return items, nil
}
