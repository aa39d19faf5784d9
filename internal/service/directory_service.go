package service

import (
	"context"

	"github.com/d60-Lab/study-partner/internal/cache"
	"github.com/d60-Lab/study-partner/internal/model"
	"github.com/d60-Lab/study-partner/internal/repository"
)

const (
	DefaultTopRatedLimit = 6
	MaxTopRatedLimit     = 50
)

// DirectoryService 学伴目录只读查询
type DirectoryService interface {
	ListPartners(ctx context.Context, search, sort string) ([]*model.Partner, error)
	TopRated(ctx context.Context, limit int) ([]*model.Partner, error)
	GetPartner(ctx context.Context, id string) (*model.Partner, error)
}

type directoryService struct {
	partners repository.PartnerRepository
	topRated cache.TopRated
	opts     Options
}

func NewDirectoryService(partners repository.PartnerRepository, topRated cache.TopRated, opts Options) DirectoryService {
	if topRated == nil {
		topRated = cache.Noop{}
	}
	return &directoryService{partners: partners, topRated: topRated, opts: opts.withDefaults()}
}

func (s *directoryService) ListPartners(ctx context.Context, search, sort string) ([]*model.Partner, error) {
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()
	list, err := s.partners.List(ctx, repository.PartnerFilter{Search: search, Sort: sort})
	if err != nil {
		return nil, storeErr(err, "partner")
	}
	return list, nil
}

func (s *directoryService) TopRated(ctx context.Context, limit int) ([]*model.Partner, error) {
	if limit <= 0 {
		limit = DefaultTopRatedLimit
	}
	if limit > MaxTopRatedLimit {
		limit = MaxTopRatedLimit
	}
	// 代数需在读库前获取，读库期间的失效会让本次回填作废
	gen := s.topRated.Generation(ctx)
	if list, ok := s.topRated.Get(ctx, limit); ok {
		return list, nil
	}

	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()
	list, err := s.partners.TopRated(ctx, limit)
	if err != nil {
		return nil, storeErr(err, "partner")
	}
	s.topRated.Set(ctx, gen, limit, list)
	return list, nil
}

func (s *directoryService) GetPartner(ctx context.Context, id string) (*model.Partner, error) {
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()
	p, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "partner")
	}
	return p, nil
}
