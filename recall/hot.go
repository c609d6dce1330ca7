package recall

import (
	"context"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/pipeline"
	"github.com/rushteam/auctionrec/pkg/utils"
)

// Hot 是热门召回源：目录候选按近期窗口内的衰减交互热度打分。
// 冷启动（用户无历史或个性化打分全为 0）时作为兜底路径使用，
// 产出的拍品统一打上 recall_source=hot，保证兜底结果对外可辨识。
type Hot struct {
	Store core.InteractionStore

	// Category 限定类目；为空表示全部类目。
	Category string
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口。上游已注入候选时基于现有候选打热度分，
// 否则直接拉取目录候选（不经过 Catalog 节点，避免标签混入）。
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 && r.Store != nil {
		category := r.Category
		if category == "" && rctx != nil {
			if v, ok := rctx.Params["category"].(string); ok {
				category = v
			}
		}
		auctions, err := r.Store.GetActiveAuctions(ctx, category)
		if err != nil {
			return nil, err
		}
		items = make([]*core.Item, 0, len(auctions))
		for _, a := range auctions {
			items = append(items, a.Clone())
		}
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if rctx != nil && rctx.Model != nil {
			it.Score = rctx.Model.Popularity(it.ID)
		}
		it.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// Recall 实现 Source 接口。
func (r *Hot) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	return r.Process(ctx, rctx, nil)
}
