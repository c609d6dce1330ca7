package filter

import (
	"context"

	"github.com/rushteam/auctionrec/core"
)

// Interacted 过滤用户已经交互过的拍品（浏览/收藏/出价/购买）。
// 推荐结果不应重复曝光用户已经接触过的内容。
type Interacted struct{}

func (f *Interacted) Name() string {
	return "filter.interacted"
}

func (f *Interacted) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil {
		return false, nil
	}
	return rctx.Interacted(item.ID), nil
}
