// Package cache 实现结果缓存：版本戳 key + TTL 双重失效，
// 并用 single-flight 合并同 key 的并发计算。
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/auctionrec/core"
)

// ResultCache 是推荐/估价结果的读穿缓存。
//
// 失效策略是双重的：
//   - 版本戳：key 携带数据源的 LastUpdated 时间戳，新数据到达即产生新 key，
//     旧结果自然不再被读到，无需显式失效。
//   - TTL：版本戳不变时的兜底过期，防止数据源时间戳异常导致结果永不过期。
//
// 并发策略：同一 key 的并发未命中只会触发一次计算（single-flight），
// 其余请求等待同一份结果。计算在与调用方解耦的 context 上执行，
// 发起方中途取消不会中断计算，结果照常写入缓存供后续请求使用。
type ResultCache struct {
	store   core.Store
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
}

// New 创建结果缓存。ttl 是兜底过期时间，timeout 是单次计算的时间预算。
func New(store core.Store, ttl, timeout time.Duration) *ResultCache {
	return &ResultCache{
		store:   store,
		ttl:     ttl,
		timeout: timeout,
	}
}

// Key 生成版本戳缓存 key：kind:id:数据版本（LastUpdated 的 unix 秒）。
func Key(kind, id string, version time.Time) string {
	return fmt.Sprintf("%s:%s:%d", kind, id, version.Unix())
}

// Do 读穿缓存：命中直接返回，未命中时执行 compute 并写回。
// 返回值第二项表示是否缓存命中。
//
// 读缓存失败按未命中处理（缓存故障不应放大为请求失败）；
// 计算超过时间预算返回 ErrComputationTimeout。
func (c *ResultCache) Do(
	ctx context.Context,
	key string,
	compute func(ctx context.Context) ([]byte, error),
) ([]byte, bool, error) {
	if c.store != nil {
		if data, err := c.store.Get(ctx, key); err == nil && len(data) > 0 {
			return data, true, nil
		}
	}

	// 计算运行在脱离调用方取消信号的 context 上：
	// 请求中途被取消时计算继续完成并写入缓存，只有时间预算能终止它。
	ch := c.group.DoChan(key, func() (interface{}, error) {
		cctx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(cctx, c.timeout)
			defer cancel()
		}

		data, err := compute(cctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, core.ErrComputationTimeout
			}
			return nil, err
		}

		if c.store != nil && len(data) > 0 {
			ttl := int(c.ttl / time.Second)
			// 写缓存失败不影响本次结果
			_ = c.store.Set(cctx, key, data, ttl)
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		data, _ := res.Val.([]byte)
		return data, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Invalidate 显式删除一个缓存 key（调试/运维用，常规失效依赖版本戳和 TTL）。
func (c *ResultCache) Invalidate(ctx context.Context, key string) error {
	if c.store == nil {
		return nil
	}
	return c.store.Delete(ctx, key)
}
