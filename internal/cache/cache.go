// Package cache 缓存高分学伴列表。
//
// 列表依赖 rating 与 partnerCount，任何档案修改或计数变化都必须调用 Invalidate。
// 读库前先取 Generation，回填时带上该值；期间发生过 Invalidate 的回填会被丢弃，
// 避免旧结果覆盖新的失效。
package cache

import (
	"context"

	"github.com/d60-Lab/study-partner/internal/model"
)

// TopRated 按 limit 缓存 TopRated 结果
type TopRated interface {
	// Generation 当前代数，每次 Invalidate 递增
	Generation(ctx context.Context) uint64
	Get(ctx context.Context, limit int) ([]*model.Partner, bool)
	// Set 仅当代数仍为 gen 时写入
	Set(ctx context.Context, gen uint64, limit int, list []*model.Partner)
	Invalidate(ctx context.Context)
}

// Noop 从不命中
type Noop struct{}

func (Noop) Generation(context.Context) uint64                  { return 0 }
func (Noop) Get(context.Context, int) ([]*model.Partner, bool)  { return nil, false }
func (Noop) Set(context.Context, uint64, int, []*model.Partner) {}
func (Noop) Invalidate(context.Context)                         {}

func clonePartners(in []*model.Partner) []*model.Partner {
	out := make([]*model.Partner, len(in))
	for i, p := range in {
		cp := *p
		out[i] = &cp
	}
	return out
}
