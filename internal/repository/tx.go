package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories 同一事务内的仓储集合
type Repositories struct {
	Partners PartnerRepository
	Requests RequestRepository
}

// TxManager 在一个数据库事务内执行跨仓储写入
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type gormTxManager struct{ db *gorm.DB }

func NewTxManager(db *gorm.DB) TxManager { return &gormTxManager{db: db} }

func (m *gormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Repositories{
			Partners: NewPartnerRepository(tx),
			Requests: NewRequestRepository(tx),
		})
	})
}
