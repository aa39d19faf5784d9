package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/study-partner/internal/model"
)

type UserRepository interface {
	// FirstOrCreate 不存在时以 defaults 创建
	FirstOrCreate(ctx context.Context, defaults *model.User) (*model.User, error)
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) FirstOrCreate(ctx context.Context, defaults *model.User) (*model.User, error) {
	u := *defaults
	err := r.db.WithContext(ctx).Where(model.User{Email: defaults.Email}).FirstOrCreate(&u).Error
	if translate(err) == ErrDuplicateKey {
		// 并发首次访问，另一方已创建
		err = r.db.WithContext(ctx).Where("email = ?", defaults.Email).First(&u).Error
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
