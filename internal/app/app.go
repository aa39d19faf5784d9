// Package app 负责装配仓储、缓存与服务，供 server 与 CLI 共用
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/study-partner/config"
	"github.com/d60-Lab/study-partner/internal/cache"
	"github.com/d60-Lab/study-partner/internal/repository"
	"github.com/d60-Lab/study-partner/internal/service"
	"github.com/d60-Lab/study-partner/pkg/logger"
)

type Services struct {
	Matching  service.MatchingService
	Partners  service.PartnerService
	Directory service.DirectoryService
	Profiles  service.ProfileService
}

// ServiceOptions 从配置生成服务参数
func ServiceOptions(cfg *config.Config) service.Options {
	return service.Options{
		EnforceOwnership: cfg.Auth.EnforceOwnership,
		QueryTimeout:     cfg.Database.QueryTimeout,
		DefaultRating:    cfg.Partner.DefaultRating,
		AnonymousUser:    cfg.Partner.AnonymousUser,
		AdminEmails:      cfg.Auth.AdminEmails,
	}
}

func NewServices(cfg *config.Config, db *gorm.DB, topRated cache.TopRated) *Services {
	if topRated == nil {
		topRated = cache.Noop{}
	}
	opts := ServiceOptions(cfg)
	partners := repository.NewPartnerRepository(db)
	requests := repository.NewRequestRepository(db)

	return &Services{
		Matching:  service.NewMatchingService(repository.NewTxManager(db), requests, partners, topRated, opts),
		Partners:  service.NewPartnerService(partners, topRated, opts),
		Directory: service.NewDirectoryService(partners, topRated, opts),
		Profiles:  service.NewProfileService(repository.NewUserRepository(db), opts),
	}
}

// NewTopRatedCache 按 cache.backend 选择实现；redis 不可达时退化为进程内缓存。
// 返回的 close 函数释放 redis 连接。
func NewTopRatedCache(cfg *config.Config) (cache.TopRated, func() error, error) {
	noClose := func() error { return nil }
	switch cfg.Cache.Backend {
	case "none":
		return cache.Noop{}, noClose, nil
	case "memory":
		return cache.NewMemory(cfg.Cache.Size, cfg.Cache.TTL), noClose, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			logger.Warn("redis unreachable, falling back to memory cache",
				zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			return cache.NewMemory(cfg.Cache.Size, cfg.Cache.TTL), noClose, nil
		}
		return cache.NewRedis(client, cfg.Cache.TTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}
