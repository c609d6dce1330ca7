package filter

import (
	"context"

	"github.com/rushteam/auctionrec/core"
)

// OwnListing 过滤用户自己发布的拍品，卖家不应看到自己的商品出现在推荐里。
type OwnListing struct{}

func (f *OwnListing) Name() string {
	return "filter.own_listing"
}

func (f *OwnListing) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil || rctx.UserID == "" {
		return false, nil
	}
	return item.SellerID == rctx.UserID, nil
}
