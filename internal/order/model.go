package order

import "time"

// Status 订单状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending   Status = "PENDING"   // 已创建，待确认
	StatusConfirmed Status = "CONFIRMED" // 已确认，待取车
	StatusActive    Status = "ACTIVE"    // 租期进行中
	StatusCompleted Status = "COMPLETED" // 已完成
	StatusCancelled Status = "CANCELLED" // 已取消
)

// Order 订单 GORM 模型。
// total_days / total_amount 在创建时一次性计算并冻结，之后车辆改价不回溯。
type Order struct {
	ID string `gorm:"primaryKey;size:36"`

	// 业务关联
	VehicleID string `gorm:"index;size:36;not null"` // 关联车辆
	UserID    string `gorm:"index;size:36"`          // 下单用户（游客下单时可为空）
	Status    Status `gorm:"type:varchar(16);index;not null"`

	// 客户联系信息
	CustomerName  string `gorm:"size:128;not null"`
	CustomerEmail string `gorm:"size:128;not null"`
	CustomerPhone string `gorm:"size:32"`

	// 租期
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	TotalDays int       `gorm:"not null"`

	// 金额信息（单位：分）
	DailyRate   int64  `gorm:"not null"` // 下单时的日租金快照
	TotalAmount int64  `gorm:"not null"`
	Currency    string `gorm:"size:8;not null;default:'NGN'"`

	// 时间信息
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	ConfirmedAt *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}
