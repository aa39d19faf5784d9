package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/study-partner/internal/model"
)

// 排序方式
const (
	SortExpert = "expert"
	SortRating = "rating"
)

// PartnerFilter 列表查询条件
type PartnerFilter struct {
	Search string // subject 子串，大小写不敏感
	Sort   string // expert, rating；其他值保持存储顺序
}

type PartnerRepository interface {
	Create(ctx context.Context, p *model.Partner) error
	GetByID(ctx context.Context, id string) (*model.Partner, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Partner, error)
	Update(ctx context.Context, id string, cols map[string]any) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter PartnerFilter) ([]*model.Partner, error)
	TopRated(ctx context.Context, limit int) ([]*model.Partner, error)
	// IncrementCount / DecrementCount 返回学伴是否存在；递减不会低于 0
	IncrementCount(ctx context.Context, id string) (bool, error)
	DecrementCount(ctx context.Context, id string) (bool, error)
	// RecountAll 按 requests 表重算 partner_count，返回被修正的学伴数
	RecountAll(ctx context.Context) (int64, error)
}

type partnerRepository struct{ db *gorm.DB }

func NewPartnerRepository(db *gorm.DB) PartnerRepository { return &partnerRepository{db: db} }

func (r *partnerRepository) Create(ctx context.Context, p *model.Partner) error {
	p.ExperienceRank = model.ExperienceRank(p.ExperienceLevel)
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *partnerRepository) GetByID(ctx context.Context, id string) (*model.Partner, error) {
	var p model.Partner
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partnerRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Partner, error) {
	res := make(map[string]*model.Partner, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var list []*model.Partner
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, p := range list {
		res[p.ID] = p
	}
	return res, nil
}

func (r *partnerRepository) Update(ctx context.Context, id string, cols map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Partner{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *partnerRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Partner{})
	return res.RowsAffected > 0, res.Error
}

func (r *partnerRepository) List(ctx context.Context, filter PartnerFilter) ([]*model.Partner, error) {
	q := r.db.WithContext(ctx).Model(&model.Partner{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where(`LOWER(subject) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(s))+"%")
	}
	switch filter.Sort {
	case SortExpert:
		q = q.Order("experience_rank DESC")
	case SortRating:
		q = q.Order("rating DESC")
	}
	var res []*model.Partner
	err := q.Order("created_at ASC").Order("id ASC").Find(&res).Error
	return res, err
}

func (r *partnerRepository) TopRated(ctx context.Context, limit int) ([]*model.Partner, error) {
	var res []*model.Partner
	err := r.db.WithContext(ctx).
		Order("rating DESC").
		Order("partner_count DESC").
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *partnerRepository) IncrementCount(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Partner{}).
		Where("id = ?", id).
		UpdateColumn("partner_count", gorm.Expr("partner_count + ?", 1))
	return res.RowsAffected > 0, res.Error
}

func (r *partnerRepository) DecrementCount(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Partner{}).
		Where("id = ?", id).
		UpdateColumn("partner_count", gorm.Expr("CASE WHEN partner_count > 0 THEN partner_count - 1 ELSE 0 END"))
	return res.RowsAffected > 0, res.Error
}

const recountSQL = `
UPDATE partners
SET partner_count = (SELECT COUNT(*) FROM requests WHERE requests.partner_id = partners.id)
WHERE partner_count <> (SELECT COUNT(*) FROM requests WHERE requests.partner_id = partners.id)`

func (r *partnerRepository) RecountAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(recountSQL)
	return res.RowsAffected, res.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
