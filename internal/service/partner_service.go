package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/study-partner/internal/auth"
	"github.com/d60-Lab/study-partner/internal/cache"
	"github.com/d60-Lab/study-partner/internal/model"
	"github.com/d60-Lab/study-partner/internal/repository"
	"github.com/d60-Lab/study-partner/pkg/logger"
)

// CreatePartnerInput 新建档案参数
type CreatePartnerInput struct {
	Name             string
	ProfileImage     string
	Subject          string
	StudyMode        string
	AvailabilityTime string
	Location         string
	ExperienceLevel  string
	Email            string
}

// PartnerService 学伴档案写操作，仅所有者可修改或删除
type PartnerService interface {
	Create(ctx context.Context, caller auth.Identity, in CreatePartnerInput) (*model.Partner, error)
	Update(ctx context.Context, id string, caller auth.Identity, patch model.PartnerPatch) (*model.Partner, error)
	Delete(ctx context.Context, id string, caller auth.Identity) error
}

type partnerService struct {
	partners repository.PartnerRepository
	topRated cache.TopRated
	opts     Options
}

func NewPartnerService(partners repository.PartnerRepository, topRated cache.TopRated, opts Options) PartnerService {
	if topRated == nil {
		topRated = cache.Noop{}
	}
	return &partnerService{partners: partners, topRated: topRated, opts: opts.withDefaults()}
}

func (s *partnerService) Create(ctx context.Context, caller auth.Identity, in CreatePartnerInput) (*model.Partner, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	now := s.opts.Now()
	p := &model.Partner{
		ID:               uuid.New().String(),
		Name:             in.Name,
		ProfileImage:     in.ProfileImage,
		Subject:          strings.TrimSpace(in.Subject),
		StudyMode:        in.StudyMode,
		AvailabilityTime: in.AvailabilityTime,
		Location:         in.Location,
		ExperienceLevel:  in.ExperienceLevel,
		Email:            in.Email,
		Rating:           s.opts.DefaultRating,
		PartnerCount:     0,
		CreatedBy:        s.opts.effectiveEmail(caller),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.partners.Create(ctx, p); err != nil {
		return nil, storeErr(err, "partner")
	}
	s.topRated.Invalidate(ctx)
	logger.Info("partner created", zap.String("partner_id", p.ID), zap.String("created_by", p.CreatedBy))
	return p, nil
}

func (s *partnerService) Update(ctx context.Context, id string, caller auth.Identity, patch model.PartnerPatch) (*model.Partner, error) {
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	p, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "partner")
	}
	if !s.opts.owns(caller, p.CreatedBy) {
		return nil, fmt.Errorf("%w: not authorized to update this profile", ErrForbidden)
	}
	if patch.Subject != nil && strings.TrimSpace(*patch.Subject) == "" {
		return nil, fmt.Errorf("%w: subject must not be empty", ErrValidation)
	}

	cols := patch.Columns()
	if patch.Subject != nil {
		cols["subject"] = strings.TrimSpace(*patch.Subject)
	}
	cols["updated_at"] = s.opts.Now()
	if err := s.partners.Update(ctx, id, cols); err != nil {
		return nil, storeErr(err, "partner")
	}
	s.topRated.Invalidate(ctx)

	updated, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "partner")
	}
	return updated, nil
}

// Delete 不级联删除请求；残留请求的 partnerDetails 为 null
func (s *partnerService) Delete(ctx context.Context, id string, caller auth.Identity) error {
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	p, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "partner")
	}
	if !s.opts.owns(caller, p.CreatedBy) {
		return fmt.Errorf("%w: not authorized to delete this profile", ErrForbidden)
	}
	deleted, err := s.partners.Delete(ctx, id)
	if err != nil {
		return storeErr(err, "partner")
	}
	if !deleted {
		return fmt.Errorf("partner %w", ErrNotFound)
	}
	s.topRated.Invalidate(ctx)
	logger.Info("partner deleted", zap.String("partner_id", id))
	return nil
}
