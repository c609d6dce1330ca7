// Package auctionrec 是拍卖场景的推荐与估价引擎（Auction Recommender）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 确定性优先: 同一数据快照下推荐与估价结果完全可复现
// - 兜底优先: 冷启动走热门路径、估价样本不足降置信度，引擎从不因数据稀疏而失败
package auctionrec

import (
	"github.com/rushteam/auctionrec/engine"
	"github.com/rushteam/auctionrec/pipeline"
)

// 轻量 facade：便于用户直接 import "auctionrec" 使用核心抽象。
type Engine = engine.Engine
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)

// NewEngine 创建引擎，等价于 engine.New。
var NewEngine = engine.New
