package order

import (
	"fmt"
	"strings"
	"time"
)

// AllowTransition 定义订单状态机的允许流转关系。
var AllowTransition = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	// 终态：不允许从 COMPLETED / CANCELLED 再流转
	StatusCompleted: {},
	StatusCancelled: {},
}

// ParseStatus 解析外部传入的状态（大小写不敏感）。
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("unknown order status: %q", raw)
}

// IsTerminal 判断是否为终态（终态会把车辆释放回目录）。
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对订单应用状态变更，并维护关键时间字段。
func ApplyTransition(o *Order, to Status, now time.Time) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	from := o.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid order status transition: %s -> %s", from, to)
	}

	o.Status = to

	switch to {
	case StatusConfirmed:
		if o.ConfirmedAt == nil {
			t := now
			o.ConfirmedAt = &t
		}
	case StatusActive:
		if o.StartedAt == nil {
			t := now
			o.StartedAt = &t
		}
	case StatusCompleted:
		if o.CompletedAt == nil {
			t := now
			o.CompletedAt = &t
		}
	case StatusCancelled:
		if o.CancelledAt == nil {
			t := now
			o.CancelledAt = &t
		}
	}
	return nil
}
