package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/d60-Lab/study-partner/internal/model"
	"github.com/d60-Lab/study-partner/internal/repository"
)

// ProfileService 首次访问时创建用户资料
type ProfileService interface {
	GetOrCreate(ctx context.Context, email string) (*model.User, error)
}

type profileService struct {
	users repository.UserRepository
	opts  Options
}

func NewProfileService(users repository.UserRepository, opts Options) ProfileService {
	return &profileService{users: users, opts: opts.withDefaults()}
}

func (s *profileService) GetOrCreate(ctx context.Context, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	ctx, cancel := s.opts.bounded(ctx)
	defer cancel()

	u, err := s.users.FirstOrCreate(ctx, &model.User{Email: email, Name: "User", CreatedAt: s.opts.Now()})
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}
