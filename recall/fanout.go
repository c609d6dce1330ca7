package recall

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/pipeline"
	"github.com/rushteam/auctionrec/pkg/utils"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并合并结果。
// 典型用法是多个类目的目录召回并发拉取后合并去重。
type Fanout struct {
	Sources       []Source
	Dedup         bool
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	results := make([][]*core.Item, len(n.Sources))

	var mu sync.Mutex
	eg, egctx := errgroup.WithContext(ctx)

	// 限流：使用 semaphore 控制并发数
	sem := make(chan struct{}, n.MaxConcurrent)

	for i, src := range n.Sources {
		idx, s := i, src
		eg.Go(func() error {
			if n.MaxConcurrent > 0 {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-egctx.Done():
					return egctx.Err()
				}
			}

			sctx := egctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(egctx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(sctx, rctx)
			if err != nil {
				return err
			}
			for _, it := range items {
				if it != nil {
					it.PutLabel("recall_fanout", utils.Label{Value: s.Name(), Source: "recall"})
				}
			}
			mu.Lock()
			results[idx] = items
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 按 Sources 顺序合并，保证输出顺序确定
	var all []*core.Item
	seen := make(map[string]bool)
	for _, items := range results {
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
			all = append(all, it)
		}
	}
	return all, nil
}
