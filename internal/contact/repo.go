package contact

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, c *Contact) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(c).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Contact, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Contact
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, status Status) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	var c Contact
	if err := db.Select("id").Where("id = ?", id).First(&c).Error; err != nil {
		return err
	}
	return db.Model(&Contact{}).Where("id = ?", id).Update("status", status).Error
}

// List 支持按 status 过滤 + 分页。
func (r *Repo) List(ctx context.Context, status Status, offset, limit int) ([]Contact, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&Contact{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contacts []Contact
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&contacts).Error; err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}
