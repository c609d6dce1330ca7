// Package config 提供引擎配置加载与 Pipeline Node 工厂的默认装配。
// 独立成包是为了避免 pipeline 与各 Node 包之间的循环依赖。
package config

import (
	"fmt"
	"time"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/filter"
	"github.com/rushteam/auctionrec/pipeline"
	"github.com/rushteam/auctionrec/pkg/conv"
	"github.com/rushteam/auctionrec/rank"
	"github.com/rushteam/auctionrec/recall"
	"github.com/rushteam/auctionrec/rerank"
)

// DefaultFactory 创建默认的 NodeFactory，注册所有内置 Node 类型：
//
//   - recall.catalog：目录召回（竞拍中的拍品）
//   - recall.hot：热门召回（冷启动兜底）
//   - recall.fanout：多召回源并发合并
//   - filter：组合过滤（ended / interacted / own_listing / rule）
//   - rank.weighted_similarity：个性化相似度打分
//   - rank.popularity：热门打分
//   - rerank.topn：去重截断
func DefaultFactory(store core.InteractionStore) *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()

	f.Register("recall.catalog", func(config map[string]interface{}) (pipeline.Node, error) {
		return &recall.Catalog{
			Store:    store,
			Category: conv.ConfigGet(config, "category", ""),
		}, nil
	})

	f.Register("recall.hot", func(config map[string]interface{}) (pipeline.Node, error) {
		return &recall.Hot{
			Store:    store,
			Category: conv.ConfigGet(config, "category", ""),
		}, nil
	})

	f.Register("recall.fanout", func(config map[string]interface{}) (pipeline.Node, error) {
		var sources []recall.Source
		for _, cat := range conv.SliceAnyToString(config["categories"]) {
			sources = append(sources, &recall.Catalog{Store: store, Category: cat})
		}
		if len(sources) == 0 {
			sources = append(sources, &recall.Catalog{Store: store})
		}
		timeout := time.Duration(conv.ConfigGetInt64(config, "timeout_ms", 0)) * time.Millisecond
		return &recall.Fanout{
			Sources:       sources,
			Dedup:         conv.ConfigGet(config, "dedup", true),
			Timeout:       timeout,
			MaxConcurrent: int(conv.ConfigGetInt64(config, "max_concurrent", 0)),
		}, nil
	})

	f.Register("filter", func(config map[string]interface{}) (pipeline.Node, error) {
		filters, err := buildFilters(config)
		if err != nil {
			return nil, err
		}
		return &filter.Node{Filters: filters}, nil
	})

	f.Register("rank.weighted_similarity", func(config map[string]interface{}) (pipeline.Node, error) {
		return &rank.WeightedSimilarity{}, nil
	})

	f.Register("rank.popularity", func(config map[string]interface{}) (pipeline.Node, error) {
		return &rank.Popularity{}, nil
	})

	f.Register("rerank.topn", func(config map[string]interface{}) (pipeline.Node, error) {
		return &rerank.TopN{
			N:     int(conv.ConfigGetInt64(config, "n", 10)),
			Dedup: conv.ConfigGet(config, "dedup", true),
		}, nil
	})

	return f
}

// buildFilters 根据配置组装过滤器列表。
//
// 配置示例：
//
//	type: filter
//	config:
//	  ended: true
//	  interacted: true
//	  own_listing: true
//	  rule: 'item.condition == "junk"'
func buildFilters(config map[string]interface{}) ([]filter.Filter, error) {
	var filters []filter.Filter

	if conv.ConfigGet(config, "ended", true) {
		filters = append(filters, &filter.Ended{})
	}
	if conv.ConfigGet(config, "interacted", true) {
		filters = append(filters, &filter.Interacted{})
	}
	if conv.ConfigGet(config, "own_listing", true) {
		filters = append(filters, &filter.OwnListing{})
	}
	if expr := conv.ConfigGet(config, "rule", ""); expr != "" {
		rule, err := filter.NewRule(expr)
		if err != nil {
			return nil, fmt.Errorf("build rule filter: %w", err)
		}
		filters = append(filters, rule)
	}

	return filters, nil
}
