package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/study-partner/internal/auth"
	"github.com/d60-Lab/study-partner/internal/cache"
	"github.com/d60-Lab/study-partner/internal/metrics"
	"github.com/d60-Lab/study-partner/internal/model"
	"github.com/d60-Lab/study-partner/internal/repository"
	"github.com/d60-Lab/study-partner/pkg/logger"
)

// CreateRequestInput 新建请求参数
type CreateRequestInput struct {
	SenderEmail string
	SenderName  string
	PartnerID   string
	Message     string
}

// MatchingService 学伴请求服务，维护 partnerCount 与请求集合一致
type MatchingService interface {
	CreateRequest(ctx context.Context, in CreateRequestInput) (*model.Request, error)
	DeleteRequest(ctx context.Context, id string, caller auth.Identity) error
	UpdateRequest(ctx context.Context, id string, caller auth.Identity, patch model.RequestPatch) (*model.Request, error)
	ListRequestsForUser(ctx context.Context, email string, caller auth.Identity) ([]*model.RequestWithPartner, error)
	ListAllRequests(ctx context.Context) ([]*model.Request, error)
	// ReconcileCounters 按请求集合重算所有 partnerCount，返回被修正的学伴数
	ReconcileCounters(ctx context.Context, caller auth.Identity) (int64, error)
}

type matchingService struct {
	tx       repository.TxManager
	requests repository.RequestRepository
	partners repository.PartnerRepository
	topRated cache.TopRated
	locks    *keyedMutex
	opts     Options
}

func NewMatchingService(
	tx repository.TxManager,
	requests repository.RequestRepository,
	partners repository.PartnerRepository,
	topRated cache.TopRated,
	opts Options,
) MatchingService {
	if topRated == nil {
		topRated = cache.Noop{}
	}
	return &matchingService{
		tx:       tx,
		requests: requests,
		partners: partners,
		topRated: topRated,
		locks:    newKeyedMutex(),
		opts:     opts.withDefaults(),
	}
}

func (s *matchingService) CreateRequest(ctx context.Context, in CreateRequestInput) (*model.Request, error) {
	in.SenderEmail = strings.TrimSpace(in.SenderEmail)
	in.PartnerID = strings.TrimSpace(in.PartnerID)
	if in.SenderEmail == "" {
		return nil, fmt.Errorf("%w: senderEmail is required", ErrValidation)
	}
	if in.PartnerID == "" {
		return nil, fmt.Errorf("%w: partnerId is required", ErrValidation)
	}

	ctx, span := tracer.Start(ctx, "matching.CreateRequest", trace.WithAttributes(attribute.String("partner.id", in.PartnerID)))
	defer span.End()
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	unlock := s.locks.Lock(in.PartnerID)
	defer unlock()

	now := s.opts.Now()
	req := &model.Request{
		ID:          uuid.New().String(),
		SenderEmail: in.SenderEmail,
		SenderName:  in.SenderName,
		PartnerID:   in.PartnerID,
		Message:     in.Message,
		Status:      model.RequestStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var counted bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		exists, err := repos.Requests.Exists(ctx, req.SenderEmail, req.PartnerID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateRequest
		}
		// 唯一索引兜底跨进程并发
		if err := repos.Requests.Create(ctx, req); err != nil {
			return err
		}
		counted, err = repos.Partners.IncrementCount(ctx, req.PartnerID)
		return err
	})
	if err != nil {
		err = storeErr(err, "partner")
		if errors.Is(err, ErrDuplicateRequest) {
			metrics.DuplicateRequests.Inc()
			logger.Info("duplicate request rejected", zap.String("sender", req.SenderEmail), zap.String("partner_id", req.PartnerID))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error("create request failed", zap.Error(err), zap.String("partner_id", req.PartnerID))
		}
		return nil, err
	}

	metrics.RequestsCreated.Inc()
	if counted {
		s.topRated.Invalidate(ctx)
	} else {
		// 请求仍然保留，计数由 ReconcileCounters 修复
		metrics.OrphanCounterUpdates.WithLabelValues("increment").Inc()
		logger.Warn("partner not found, counter not incremented",
			zap.String("request_id", req.ID), zap.String("partner_id", req.PartnerID))
	}
	logger.Info("request created", zap.String("request_id", req.ID), zap.String("partner_id", req.PartnerID))
	return req, nil
}

func (s *matchingService) DeleteRequest(ctx context.Context, id string, caller auth.Identity) error {
	ctx, span := tracer.Start(ctx, "matching.DeleteRequest", trace.WithAttributes(attribute.String("request.id", id)))
	defer span.End()
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "request")
	}
	if !s.opts.owns(caller, req.SenderEmail) {
		return fmt.Errorf("%w: not authorized to delete this request", ErrForbidden)
	}

	unlock := s.locks.Lock(req.PartnerID)
	defer unlock()

	var counted bool
	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		deleted, err := repos.Requests.Delete(ctx, req.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("request %w", ErrNotFound)
		}
		counted, err = repos.Partners.DecrementCount(ctx, req.PartnerID)
		return err
	})
	if err != nil {
		err = storeErr(err, "request")
		span.RecordError(err)
		return err
	}

	metrics.RequestsDeleted.Inc()
	if counted {
		s.topRated.Invalidate(ctx)
	} else {
		metrics.OrphanCounterUpdates.WithLabelValues("decrement").Inc()
		logger.Warn("partner not found, counter not decremented",
			zap.String("request_id", req.ID), zap.String("partner_id", req.PartnerID))
	}
	return nil
}

func (s *matchingService) UpdateRequest(ctx context.Context, id string, caller auth.Identity, patch model.RequestPatch) (*model.Request, error) {
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "request")
	}
	if !s.opts.owns(caller, req.SenderEmail) {
		return nil, fmt.Errorf("%w: not authorized to update this request", ErrForbidden)
	}

	cols := map[string]any{"updated_at": s.opts.Now()}
	if patch.Message != nil {
		cols["message"] = *patch.Message
	}
	if patch.Status != nil {
		status := strings.TrimSpace(*patch.Status)
		if status == "" {
			return nil, fmt.Errorf("%w: status must not be empty", ErrValidation)
		}
		cols["status"] = status
	}
	if err := s.requests.Update(ctx, id, cols); err != nil {
		return nil, storeErr(err, "request")
	}
	updated, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "request")
	}
	return updated, nil
}

func (s *matchingService) ListRequestsForUser(ctx context.Context, email string, caller auth.Identity) ([]*model.RequestWithPartner, error) {
	if s.opts.EnforceOwnership && email != caller.Email {
		return nil, fmt.Errorf("%w: not authorized to view these requests", ErrForbidden)
	}
	ctx, span := tracer.Start(ctx, "matching.ListRequestsForUser")
	defer span.End()
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	reqs, err := s.requests.ListBySender(ctx, email)
	if err != nil {
		return nil, storeErr(err, "request")
	}

	ids := make([]string, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, r := range reqs {
		if _, ok := seen[r.PartnerID]; !ok {
			seen[r.PartnerID] = struct{}{}
			ids = append(ids, r.PartnerID)
		}
	}
	partners, err := s.partners.GetByIDs(ctx, ids)
	if err != nil {
		// 详情缺失不影响列表本身
		logger.Warn("failed to populate partner details", zap.Error(err), zap.String("sender", email))
		partners = nil
	}

	res := make([]*model.RequestWithPartner, len(reqs))
	for i, r := range reqs {
		res[i] = &model.RequestWithPartner{Request: *r, PartnerDetails: partners[r.PartnerID]}
	}
	return res, nil
}

func (s *matchingService) ListAllRequests(ctx context.Context) ([]*model.Request, error) {
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()
	list, err := s.requests.ListAll(ctx)
	return list, storeErr(err, "request")
}

func (s *matchingService) ReconcileCounters(ctx context.Context, caller auth.Identity) (int64, error) {
	if !s.opts.isAdmin(caller) {
		return 0, fmt.Errorf("%w: reconciliation requires an admin identity", ErrForbidden)
	}
	ctx, span := tracer.Start(ctx, "matching.ReconcileCounters")
	defer span.End()
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	fixed, err := s.partners.RecountAll(ctx)
	if err != nil {
		return 0, storeErr(err, "partner")
	}
	if fixed > 0 {
		metrics.CountersReconciled.Add(float64(fixed))
		s.topRated.Invalidate(ctx)
		logger.Warn("partner counters drifted and were corrected", zap.Int64("partners", fixed))
	}
	return fixed, nil
}
