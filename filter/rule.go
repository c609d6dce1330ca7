package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/auctionrec/core"
	"github.com/rushteam/auctionrec/pkg/dsl"
)

// Rule 是基于 CEL 表达式的规则过滤器，表达式命中的拍品会被过滤掉。
// 表达式在构造时编译一次，之后可并发使用。
//
// 示例：
//   - `item.current_price > 1000000.0` → 过滤当前价超过 100 万的拍品
//   - `item.condition == "junk"` → 过滤瑕疵品
type Rule struct {
	expr string
	prg  *dsl.Program
}

// NewRule 编译表达式并创建规则过滤器。表达式非法时返回错误。
func NewRule(expr string) (*Rule, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("rule filter: %w", err)
	}
	return &Rule{expr: expr, prg: prg}, nil
}

func (f *Rule) Name() string {
	return "filter.rule"
}

func (f *Rule) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.prg == nil {
		return false, nil
	}
	return f.prg.Match(item, rctx)
}
