package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/d60-Lab/study-partner/internal/auth"
)

var tracer = otel.Tracer("github.com/d60-Lab/study-partner/internal/service")

const (
	defaultQueryTimeout = 5 * time.Second
	defaultAnonymous    = "anonymous@example.com"
)

// Options 服务公共配置
type Options struct {
	// EnforceOwnership 关闭后不校验归属（仅用于信任调用方的部署）
	EnforceOwnership bool
	QueryTimeout     time.Duration
	DefaultRating    float64
	AnonymousUser    string
	AdminEmails      []string
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = defaultQueryTimeout
	}
	if o.AnonymousUser == "" {
		o.AnonymousUser = defaultAnonymous
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.QueryTimeout)
}

// owns 校验调用方是否为资源所有者；邮箱按原样比较，与存储层的等值查询一致
func (o Options) owns(caller auth.Identity, owner string) bool {
	if !o.EnforceOwnership {
		return true
	}
	return o.effectiveEmail(caller) == owner
}

func (o Options) effectiveEmail(caller auth.Identity) string {
	if caller.IsZero() {
		return o.AnonymousUser
	}
	return caller.Email
}

func (o Options) isAdmin(caller auth.Identity) bool {
	if !o.EnforceOwnership {
		return true
	}
	if caller.IsZero() {
		return false
	}
	for _, e := range o.AdminEmails {
		if e == caller.Email {
			return true
		}
	}
	return false
}
