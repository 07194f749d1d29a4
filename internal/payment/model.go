package payment

import "time"

// TxStatus 支付交易状态（以网关侧为准）。
type TxStatus string

const (
	TxInitialized TxStatus = "initialized"
	TxSuccessful  TxStatus = "successful"
	TxFailed      TxStatus = "failed"
)

// Transaction 是 payment_transactions 表的 GORM 模型。
// Amount 为最小货币单位（kobo/cent）的整数，避免浮点误差。
type Transaction struct {
	ID          string    `gorm:"primaryKey;size:36"`
	TxRef       string    `gorm:"uniqueIndex;size:64;not null"`
	OrderID     string    `gorm:"size:36;index"`
	Amount      int64     `gorm:"not null"`
	Currency    string    `gorm:"size:8;not null;default:'NGN'"`
	Email       string    `gorm:"size:128;not null"`
	Status      TxStatus  `gorm:"type:varchar(16);index;not null;default:'initialized'"`
	CheckoutURL string    `gorm:"size:512"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
