package vehicle

import (
	"strings"
	"time"
)

// Vehicle 是 vehicles 表的 GORM 模型。
// is_available 是 stock 的派生缓存（stock > 0），任何写 stock 的路径都必须同时维护它。
type Vehicle struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"size:128;not null"`
	Brand       string    `gorm:"index;size:64;not null"`
	Model       string    `gorm:"size:64;not null"`
	Type        string    `gorm:"index;size:32"` // suv / sedan / van ...
	Location    string    `gorm:"index;size:64"`
	ImageURL    string    `gorm:"size:255"`
	PricePerDay int64     `gorm:"not null"` // 日租金（单位：分）
	Stock       int       `gorm:"not null;default:0"`
	IsAvailable bool      `gorm:"index;not null;default:false"`
	Features    string    `gorm:"size:512"` // 逗号分隔，例如 "gps,bluetooth"
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// SyncAvailability 按库存重算可用性。
func (v *Vehicle) SyncAvailability() {
	v.IsAvailable = v.Stock > 0
}

func (v Vehicle) FeaturesSlice() []string {
	if strings.TrimSpace(v.Features) == "" {
		return nil
	}
	parts := strings.Split(v.Features, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func FeaturesJoin(features []string) string {
	if len(features) == 0 {
		return ""
	}
	out := make([]string, 0, len(features))
	for _, f := range features {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, ",")
}
