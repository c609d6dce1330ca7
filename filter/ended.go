package filter

import (
	"context"
	"time"

	"github.com/rushteam/auctionrec/core"
)

// Ended 过滤已结束的拍卖：状态不是竞拍中，或者截止时间已过。
// 候选集快照与实时状态之间可能有延迟，这里以请求时刻为准兜底判断。
type Ended struct{}

func (f *Ended) Name() string {
	return "filter.ended"
}

func (f *Ended) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item.Status != core.StatusActive {
		return true, nil
	}
	now := time.Now()
	if rctx != nil && !rctx.Now.IsZero() {
		now = rctx.Now
	}
	if !item.EndTime.IsZero() && !item.EndTime.After(now) {
		return true, nil
	}
	return false, nil
}
