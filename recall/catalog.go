package recall

import (
	"context"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/pipeline"
	"github.com/rushteam/auctionrec/pkg/utils"
)

// Catalog 是目录召回源：取竞拍中的拍品作为候选集，交由后续过滤/打分节点处理。
// Catalog 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Catalog struct {
	Store core.InteractionStore

	// Category 限定类目；为空表示全部类目。
	Category string
}

func (r *Catalog) Name() string        { return "recall.catalog" }
func (r *Catalog) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
// 上游已注入候选时（items 非空）原样透传，避免重复拉取目录。
func (r *Catalog) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) > 0 {
		return items, nil
	}
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。存储错误（UNAVAILABLE）原样上抛。
func (r *Catalog) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil {
		return nil, nil
	}
	category := r.Category
	if category == "" && rctx != nil {
		// 请求级类目偏好优先
		if v, ok := rctx.Params["category"].(string); ok {
			category = v
		}
	}
	auctions, err := r.Store.GetActiveAuctions(ctx, category)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(auctions))
	for _, a := range auctions {
		it := a.Clone()
		it.PutLabel("recall_source", utils.Label{Value: "catalog", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
