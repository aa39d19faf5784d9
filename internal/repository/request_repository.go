package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/study-partner/internal/model"
)

type RequestRepository interface {
	// Create 插入请求；(sender_email, partner_id) 重复时返回 ErrDuplicateKey
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id string) (*model.Request, error)
	Exists(ctx context.Context, senderEmail, partnerID string) (bool, error)
	// ListBySender 按 created_at 倒序
	ListBySender(ctx context.Context, senderEmail string) ([]*model.Request, error)
	ListAll(ctx context.Context) ([]*model.Request, error)
	Update(ctx context.Context, id string, cols map[string]any) error
	// Delete 返回是否删除了记录
	Delete(ctx context.Context, id string) (bool, error)
	CountByPartner(ctx context.Context, partnerID string) (int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository { return &requestRepository{db: db} }

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return translate(r.db.WithContext(ctx).Create(req).Error)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) Exists(ctx context.Context, senderEmail, partnerID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Request{}).
		Where("sender_email = ? AND partner_id = ?", senderEmail, partnerID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *requestRepository) ListBySender(ctx context.Context, senderEmail string) ([]*model.Request, error) {
	var res []*model.Request
	err := r.db.WithContext(ctx).
		Where("sender_email = ?", senderEmail).
		Order("created_at DESC").
		Order("id DESC").
		Find(&res).Error
	return res, err
}

func (r *requestRepository) ListAll(ctx context.Context) ([]*model.Request, error) {
	var res []*model.Request
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&res).Error
	return res, err
}

func (r *requestRepository) Update(ctx context.Context, id string, cols map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Request{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *requestRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Request{})
	return res.RowsAffected > 0, res.Error
}

func (r *requestRepository) CountByPartner(ctx context.Context, partnerID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Request{}).Where("partner_id = ?", partnerID).Count(&cnt).Error
	return cnt, err
}
