// Package engine 是对外的门面：组装特征构建、相似度、Pipeline、估价与缓存，
// 暴露 Recommend / EstimatePrice 两个入口。
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rushteam/auctionrec/cache"
	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/feature"
	"github.com/rushteam/auctionrec/filter"
	"github.com/rushteam/auctionrec/pipeline"
	"github.com/rushteam/auctionrec/pkg/utils"
	"github.com/rushteam/auctionrec/price"
	"github.com/rushteam/auctionrec/rank"
	"github.com/rushteam/auctionrec/recall"
	"github.com/rushteam/auctionrec/rerank"
	"github.com/rushteam/auctionrec/similarity"
)

// Engine 是推荐与估价引擎。
//
// 一次 Recommend 的完整链路：
//
//	缓存查询（版本戳 key）
//	  └─ 未命中 → 全量交互快照 → 交互矩阵 → 相似度模型
//	       ├─ 有历史 → 个性化 Pipeline（目录召回 → 过滤 → 加权相似度打分 → TopN）
//	       │     └─ 结果不足 → 热门候选补足（补足项带 recall_source=hot 标签）
//	       └─ 无历史/打分全零 → 热门 Pipeline 兜底（整份结果标记 ColdStart）
//
// 引擎对上游数据只读，从不重试存储错误（重试策略归调用方）。
type Engine struct {
	store     core.InteractionStore
	cache     *cache.ResultCache
	cfg       *core.Config
	builder   *feature.Builder
	sim       *similarity.Engine
	estimator *price.Estimator

	rankPipe *pipeline.Pipeline
	hotPipe  *pipeline.Pipeline
}

// Option 用于自定义引擎装配。
type Option func(*Engine)

// WithRankPipeline 替换个性化 Pipeline（默认：目录召回 → 过滤 → 加权相似度 → TopN）。
func WithRankPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.rankPipe = p }
}

// WithHotPipeline 替换热门兜底 Pipeline（默认：热门召回 → 过滤 → 热度打分 → TopN）。
func WithHotPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.hotPipe = p }
}

// New 创建引擎。store 是交互数据源，kv 是结果缓存后端（nil 表示不缓存），
// cfg 为 nil 时使用默认参数。
func New(store core.InteractionStore, kv core.Store, cfg *core.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	cfg.WithDefaults()

	e := &Engine{
		store:     store,
		cfg:       cfg,
		builder:   feature.NewBuilder(cfg),
		sim:       &similarity.Engine{MinCommonUsers: cfg.MinCommonUsers},
		estimator: price.NewEstimator(store, cfg),
	}
	if kv != nil {
		e.cache = cache.New(kv, cfg.CacheTTL, cfg.ComputeTimeout)
	}

	filters := []filter.Filter{
		&filter.Ended{},
		&filter.Interacted{},
		&filter.OwnListing{},
	}
	e.rankPipe = &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Catalog{Store: store},
		&filter.Node{Filters: filters},
		&rank.WeightedSimilarity{},
		&rerank.TopN{N: cfg.TopK, Dedup: true},
	}}
	e.hotPipe = &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Hot{Store: store},
		&filter.Node{Filters: filters},
		&rank.Popularity{},
		&rerank.TopN{N: cfg.TopK, Dedup: true},
	}}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend 为用户生成推荐列表。limit <= 0 时使用配置的 TopK。
//
// 错误语义：
//   - 空 userID → INVALID_INPUT
//   - 存储故障 → UNAVAILABLE（原样传播）
//   - 计算超过时间预算 → TIMEOUT
//   - 用户无历史从不报错：自动转入热门兜底，结果带 ColdStart 标记
func (e *Engine) Recommend(ctx context.Context, userID string, limit int) (*core.RankedResult, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: empty user id")
	}
	if limit <= 0 {
		limit = e.cfg.TopK
	}

	compute := func(cctx context.Context) ([]byte, error) {
		result, err := e.recommend(cctx, userID, limit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	}

	var (
		data []byte
		err  error
	)
	if e.cache != nil {
		version, verr := e.store.LastUpdated(ctx)
		if verr != nil {
			return nil, verr
		}
		data, _, err = e.cache.Do(ctx, cache.Key("rec", userID, version), compute)
	} else {
		data, err = e.computeDirect(ctx, compute)
	}
	if err != nil {
		return nil, err
	}

	var result core.RankedResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// computeDirect 在没有缓存后端时直接执行计算。
// 时间预算与缓存路径一致：超时统一映射为 TIMEOUT 错误。
func (e *Engine) computeDirect(
	ctx context.Context,
	compute func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	if e.cfg.ComputeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ComputeTimeout)
		defer cancel()
	}
	data, err := compute(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, core.ErrComputationTimeout
		}
		return nil, err
	}
	return data, nil
}

// recommend 是一次完整的推荐计算（缓存未命中时执行）。
func (e *Engine) recommend(ctx context.Context, userID string, limit int) (*core.RankedResult, error) {
	now := time.Now()

	interactions, err := e.store.GetAllInteractions(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	matrix := e.builder.Build(interactions, now)
	model := e.sim.Fit(matrix)

	rctx := &core.RecommendContext{
		UserID: userID,
		Scene:  "recommend",
		Limit:  limit,
		Now:    now,
		Model:  model,
	}

	coldStart := false
	hist, err := matrix.UserHistory(userID)
	if err != nil {
		if !core.IsInsufficientData(err) {
			return nil, err
		}
		coldStart = true
	} else {
		rctx.History = hist
	}

	var items []*core.Item
	if !coldStart {
		items, err = e.rankPipe.Run(ctx, rctx, nil)
		if err != nil {
			if !core.IsInsufficientData(err) {
				return nil, err
			}
			coldStart = true
		} else if allZeroScores(items) {
			// 有历史但历史拍品与任何候选都不相似：个性化信号为零，转入兜底
			coldStart = true
		}
	}

	if coldStart {
		// History 保留：已交互过滤在兜底路径同样生效
		rctx.PutLabel("cold_start", utils.Label{Value: "true", Source: "engine"})
		items, err = e.hotPipe.Run(ctx, rctx, nil)
		if err != nil {
			return nil, err
		}
	} else if len(items) < limit {
		// 个性化结果不足时用热门候选补足，补足项带 recall_source=hot 标签
		items, err = e.pad(ctx, rctx, items, limit)
		if err != nil {
			return nil, err
		}
	}

	return &core.RankedResult{
		UserID:      userID,
		Items:       items,
		ColdStart:   coldStart,
		GeneratedAt: now,
	}, nil
}

// pad 用热门 Pipeline 的产出补足个性化结果，去重后截断到 limit。
// 热度分和个性化分不在同一量纲：补足项的分数按比例压进
// (0, 最后一个个性化分] 区间，整份结果保持分数非递增。
func (e *Engine) pad(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
	limit int,
) ([]*core.Item, error) {
	hot, err := e.hotPipe.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	var floor float64
	if len(items) > 0 {
		floor = items[len(items)-1].Score
	}
	var maxPop float64
	for _, it := range hot {
		if it != nil && it.Score > maxPop {
			maxPop = it.Score
		}
	}

	seen := make(map[string]bool, len(items))
	for _, it := range items {
		seen[it.ID] = true
	}
	for _, it := range hot {
		if len(items) >= limit {
			break
		}
		if it == nil || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		if maxPop > 0 {
			it.Score = floor * it.Score / maxPop
		} else {
			it.Score = 0
		}
		items = append(items, it)
	}
	return items, nil
}

func allZeroScores(items []*core.Item) bool {
	if len(items) == 0 {
		return true
	}
	for _, it := range items {
		if it.Score > 0 {
			return false
		}
	}
	return true
}

// EstimatePrice 对单个拍品估价。
//
// 错误语义：
//   - 空/未知拍品 ID → INVALID_INPUT
//   - 存储故障 → UNAVAILABLE（原样传播）
//   - 样本不足从不报错：降置信度或回退到拍品自身价格
func (e *Engine) EstimatePrice(ctx context.Context, itemID string) (*core.PriceEstimate, error) {
	if itemID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: empty item id")
	}

	compute := func(cctx context.Context) ([]byte, error) {
		item, err := e.store.GetAuction(cctx, itemID)
		if err != nil {
			if core.IsStoreNotFound(err) {
				return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: unknown item "+itemID)
			}
			return nil, err
		}
		est, err := e.estimator.Estimate(cctx, item)
		if err != nil {
			return nil, err
		}
		return json.Marshal(est)
	}

	var (
		data []byte
		err  error
	)
	if e.cache != nil {
		version, verr := e.store.LastUpdated(ctx)
		if verr != nil {
			return nil, verr
		}
		data, _, err = e.cache.Do(ctx, cache.Key("price", itemID, version), compute)
	} else {
		data, err = e.computeDirect(ctx, compute)
	}
	if err != nil {
		return nil, err
	}

	var est core.PriceEstimate
	if err := json.Unmarshal(data, &est); err != nil {
		return nil, err
	}
	return &est, nil
}
