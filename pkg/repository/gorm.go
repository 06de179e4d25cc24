package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormSession runs a Repository on a gorm database handle.
type GormSession struct {
	db *gorm.DB
}

var _ Session = (*GormSession)(nil)

// NewGormSession wraps db.
func NewGormSession(db *gorm.DB) (*GormSession, error) {
	if db == nil {
		return nil, fmt.Errorf("repository: gorm db is required")
	}
	return &GormSession{db: db}, nil
}

func (s *GormSession) All(ctx context.Context, dest any) error {
	return s.db.WithContext(ctx).Find(dest).Error
}

func (s *GormSession) First(ctx context.Context, dest any, id uint) error {
	err := s.db.WithContext(ctx).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormSession) Begin(ctx context.Context) (Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormTx{tx: tx}, nil
}

type gormTx struct {
	tx *gorm.DB
}

func (t *gormTx) Insert(ctx context.Context, entity any) error {
	return t.tx.WithContext(ctx).Create(entity).Error
}

func (t *gormTx) Save(ctx context.Context, entity any) error {
	return t.tx.WithContext(ctx).Save(entity).Error
}

func (t *gormTx) Remove(ctx context.Context, entity any) error {
	return t.tx.WithContext(ctx).Delete(entity).Error
}

func (t *gormTx) Reload(ctx context.Context, entity any) error {
	return t.tx.WithContext(ctx).First(entity).Error
}

func (t *gormTx) Commit() error {
	return t.tx.Commit().Error
}

func (t *gormTx) Rollback() error {
	return t.tx.Rollback().Error
}
