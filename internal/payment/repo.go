package payment

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

func (r *Repo) Create(ctx context.Context, tx *Transaction) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(tx).Error
}

func (r *Repo) GetByTxRef(ctx context.Context, txRef string) (*Transaction, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var tx Transaction
	if err := db.Where("tx_ref = ?", txRef).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, txRef string, status TxStatus) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	var tx Transaction
	if err := db.Select("id").Where("tx_ref = ?", txRef).First(&tx).Error; err != nil {
		return err
	}
	return db.Model(&Transaction{}).Where("tx_ref = ?", txRef).Update("status", status).Error
}
