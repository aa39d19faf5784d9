package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/study-partner/internal/metrics"
	"github.com/d60-Lab/study-partner/internal/model"
	"github.com/d60-Lab/study-partner/pkg/logger"
)

const (
	topRatedKeyPrefix = "partners:top-rated"
	// topRatedGenKey 不过期，INCR 即失效
	topRatedGenKey = topRatedKeyPrefix + ":gen"
)

// dataKey 每一代一个 hash，field 为 limit
func dataKey(gen uint64) string {
	return fmt.Sprintf("%s:%d", topRatedKeyPrefix, gen)
}

// Redis 按代数分 key 存储；旧代的迟到写入落在无人读取的 key 上，随 TTL 过期。
// redis 故障按未命中处理。
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// cachedPartner 保留 JSON 中隐藏的字段
type cachedPartner struct {
	model.Partner
	Rank int `json:"rank"`
}

func (r *Redis) Generation(ctx context.Context) uint64 {
	gen, err := r.client.Get(ctx, topRatedGenKey).Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn("top-rated cache generation read failed", zap.Error(err))
	}
	return gen
}

func (r *Redis) Get(ctx context.Context, limit int) ([]*model.Partner, bool) {
	data, err := r.client.HGet(ctx, dataKey(r.Generation(ctx)), strconv.Itoa(limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("top-rated cache read failed", zap.Error(err))
		}
		metrics.CacheMisses.Inc()
		return nil, false
	}
	var rows []cachedPartner
	if err := json.Unmarshal(data, &rows); err != nil {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	out := make([]*model.Partner, len(rows))
	for i := range rows {
		p := rows[i].Partner
		p.ExperienceRank = rows[i].Rank
		out[i] = &p
	}
	metrics.CacheHits.Inc()
	return out, true
}

func (r *Redis) Set(ctx context.Context, gen uint64, limit int, list []*model.Partner) {
	rows := make([]cachedPartner, len(list))
	for i, p := range list {
		rows[i] = cachedPartner{Partner: *p, Rank: p.ExperienceRank}
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}
	key := dataKey(gen)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(limit), payload)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("top-rated cache write failed", zap.Error(err))
	}
}

func (r *Redis) Invalidate(ctx context.Context) {
	gen, err := r.client.Incr(ctx, topRatedGenKey).Uint64()
	if err != nil {
		logger.Warn("top-rated cache invalidate failed", zap.Error(err))
		return
	}
	// 上一代立即释放；迟到的写入由 TTL 回收
	if err := r.client.Del(ctx, dataKey(gen-1)).Err(); err != nil {
		logger.Warn("top-rated cache cleanup failed", zap.Error(err))
	}
}
