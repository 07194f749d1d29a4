package contact

import (
	"strings"
	"time"
)

// Status 工单状态（仅做合法值校验，不限制流转顺序）。
type Status string

const (
	StatusPending  Status = "pending"
	StatusReplied  Status = "replied"
	StatusResolved Status = "resolved"
)

// ParseStatus 解析外部传入的状态（大小写不敏感）。
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusReplied, StatusResolved:
		return s, true
	}
	return "", false
}

// Contact 是 contacts 表的 GORM 模型（客服工单）。
type Contact struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:128;not null"`
	Email     string    `gorm:"size:128;not null"`
	Phone     string    `gorm:"size:32"`
	Subject   string    `gorm:"size:255"`
	Message   string    `gorm:"type:text;not null"`
	Status    Status    `gorm:"type:varchar(16);index;not null;default:'pending'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
