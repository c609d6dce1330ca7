package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/auctionrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量和函数
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// 定义变量类型
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Program 是规则表达式的解释器，使用 CEL (Common Expression Language) 实现。
// 表达式在 Compile 时编译一次，之后可以被多个 goroutine 并发 Match。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：item.category == "camera" / label.recall_source == "hot"
//   - 数值：item.current_price > 10000.0 / item.score >= 0.5
//   - 逻辑：item.category == "watch" && item.condition != "junk"
//   - 存在性：label.recall_source != null
//   - 包含：label.recall_source.contains("hot")
//
// 示例：
//   - `item.current_price > 1000000.0` → 过滤当前价超过 100 万的拍品
//   - `item.condition == "junk"` → 过滤瑕疵品
//   - `label.recall_source == "hot" && item.score < 0.1` → 过滤低热度兜底候选
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译 CEL 表达式。表达式为空时返回 nil Program，Match 恒为 true。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env error: %v", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}

	return &Program{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式文本
func (p *Program) Expr() string {
	if p == nil {
		return ""
	}
	return p.expr
}

// Match 对单个拍品执行表达式，返回布尔结果。
//
// 注意：CEL 访问不存在的 key 会报错，
// 用户应该使用 label.key != null 来检查存在性，而不是直接访问
func (p *Program) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p == nil || p.prg == nil {
		return true, nil
	}

	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]interface{} {
	labels := make(map[string]interface{})
	if item != nil {
		for k, v := range item.Labels {
			labels[k] = map[string]interface{}{
				"value":  v.Value,
				"source": v.Source,
			}
		}
	}

	itemMap := map[string]interface{}{}
	if item != nil {
		itemMap = map[string]interface{}{
			"id":            item.ID,
			"seller_id":     item.SellerID,
			"category":      item.Category,
			"condition":     item.Condition,
			"status":        string(item.Status),
			"start_price":   item.StartPrice,
			"current_price": item.CurrentPrice,
			"score":         item.Score,
			"meta":          item.Meta,
			"labels":        labels,
		}
	}

	rctxMap := map[string]interface{}{}
	if rctx != nil {
		rctxMap = map[string]interface{}{
			"user_id": rctx.UserID,
			"scene":   rctx.Scene,
			"params":  rctx.Params,
		}
	}

	// label 作为顶层访问入口，label.recall_source 直接返回 value。
	// 注意：CEL 访问不存在的 key 会报错，用 label.key != null 检查存在性
	labelAccessor := make(map[string]interface{})
	for k, v := range labels {
		labelAccessor[k] = v.(map[string]interface{})["value"]
	}

	return map[string]interface{}{
		"item":  itemMap,
		"label": labelAccessor,
		"rctx":  rctxMap,
	}
}
