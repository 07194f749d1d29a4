package vehicle

import (
	"context"
	"fmt"
	"strings"

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

func (r *Repo) Create(ctx context.Context, v *Vehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(v).Error
}

func (r *Repo) Save(ctx context.Context, v *Vehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(v).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	if err := db.Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := db.Where("id = ?", id).Delete(&Vehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFilter 目录查询条件。Search 在 name/brand/model 上做不区分大小写的子串匹配（OR），
// 其余条件按 AND 组合。
type ListFilter struct {
	Type          string
	Search        string
	MinPrice      int64
	MaxPrice      int64
	Location      string
	OnlyAvailable bool
	Offset        int
	Limit         int
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]Vehicle, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := db.Model(&Vehicle{})
	if f.OnlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	if f.MinPrice > 0 {
		q = q.Where("price_per_day >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price_per_day <= ?", f.MaxPrice)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(model) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vehicles []Vehicle
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&vehicles).Error; err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

// AdjustStock 以单条条件 UPDATE 原子地增减库存，并在同一事务里重算 is_available，
// 避免并发读改写丢更新或把库存减成负数。
func (r *Repo) AdjustStock(ctx context.Context, id string, delta int) (*Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}

	var out *Vehicle
	err := db.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&Vehicle{}).Where("id = ?", id)
		if delta < 0 {
			// 库存不足时不更新任何行
			q = q.Where("stock >= ?", -delta)
		}
		res := q.Update("stock", gorm.Expr("stock + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 要么记录不存在，要么库存不足，区分后抛给上层
			var exists int64
			if err := tx.Model(&Vehicle{}).Where("id = ?", id).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrInsufficientStock
		}

		if err := tx.Model(&Vehicle{}).Where("id = ?", id).
			UpdateColumn("is_available", gorm.Expr("stock > 0")).Error; err != nil {
			return err
		}

		var v Vehicle
		if err := tx.Where("id = ?", id).First(&v).Error; err != nil {
			return err
		}
		out = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetStock 绝对设置库存（stock=0 是合法的“下架但不删除”状态）。
func (r *Repo) SetStock(ctx context.Context, id string, stock int) (*Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}

	var out *Vehicle
	err := db.Transaction(func(tx *gorm.DB) error {
		var v Vehicle
		if err := tx.Where("id = ?", id).First(&v).Error; err != nil {
			return err
		}
		if err := tx.Model(&Vehicle{}).Where("id = ?", id).Updates(map[string]any{
			"stock":        stock,
			"is_available": stock > 0,
		}).Error; err != nil {
			return err
		}
		v.Stock = stock
		v.SyncAvailability()
		out = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecalcAvailability 按库存重算 is_available（订单进入终态时由 order 侧调用）。
func (r *Repo) RecalcAvailability(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Model(&Vehicle{}).Where("id = ?", id).
		UpdateColumn("is_available", gorm.Expr("stock > 0")).Error
}
