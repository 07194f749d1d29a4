package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/WheelsHub/WheelsHub/internal/common/logger"
	"github.com/WheelsHub/WheelsHub/internal/event"
	"github.com/WheelsHub/WheelsHub/internal/vehicle"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidInput 入参校验失败。
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidDateRange 结束日期不晚于开始日期。
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrVehicleNotFound 引用的车辆不存在。
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrVehicleUnavailable 请求租期内没有可出租的单位。
	ErrVehicleUnavailable = errors.New("vehicle not available for the requested dates")
	// ErrNotFound 订单不存在。
	ErrNotFound = errors.New("order not found")
	// ErrInvalidTransition 不允许的状态流转。
	ErrInvalidTransition = errors.New("invalid status transition")
)

const day = 24 * time.Hour

// RentalDays 计算租期天数：ceil((end - start) / 1 天)，end 必须晚于 start。
func RentalDays(start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, ErrInvalidDateRange
	}
	d := end.Sub(start)
	days := int((d + day - 1) / day)
	return days, nil
}

// Service 封装订单领域的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo     *Repo
	vehicles *vehicle.Repo
	events   *event.Publisher
	log      logger.Logger
}

func NewService(repo *Repo, vehicles *vehicle.Repo, events *event.Publisher, log logger.Logger) *Service {
	return &Service{repo: repo, vehicles: vehicles, events: events, log: log}
}

// CreateOrderInput 创建订单的入参。
type CreateOrderInput struct {
	VehicleID     string
	UserID        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StartDate     time.Time
	EndDate       time.Time
	Currency      string
}

// orderEvent Kafka 事件载荷。
type orderEvent struct {
	OrderID     string `json:"order_id"`
	VehicleID   string `json:"vehicle_id"`
	Status      Status `json:"status"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
	OccurredAt  int64  `json:"occurred_at"`
}

// CreateOrder 创建订单：
// - end 必须晚于 start，天数按 ceil 计算
// - 日租金在创建时冻结到订单上
// - 租期内未终态的重叠订单数达到库存时拒绝（防止超售）
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if s == nil || s.repo == nil || s.vehicles == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if strings.TrimSpace(in.VehicleID) == "" {
		return nil, fmt.Errorf("%w: vehicle_id required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		return nil, fmt.Errorf("%w: customer email required", ErrInvalidInput)
	}

	days, err := RentalDays(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	v, err := s.vehicles.FindByID(ctx, strings.TrimSpace(in.VehicleID))
	if err == gorm.ErrRecordNotFound {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}

	overlapping, err := s.repo.CountOverlapping(ctx, v.ID, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if overlapping >= int64(v.Stock) {
		return nil, ErrVehicleUnavailable
	}

	o := &Order{
		ID:            uuid.NewString(),
		VehicleID:     v.ID,
		UserID:        strings.TrimSpace(in.UserID),
		Status:        StatusPending,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		TotalDays:     days,
		DailyRate:     v.PricePerDay,
		TotalAmount:   v.PricePerDay * int64(days),
		Currency:      defaultCurrency(in.Currency),
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, event.TopicOrderCreated, o)
	return o, nil
}

// UpdateStatus 根据状态机规则进行状态流转。
// 进入终态（COMPLETED / CANCELLED）时按库存重算车辆可用性，把车辆释放回目录。
func (s *Service) UpdateStatus(ctx context.Context, orderID string, to Status, now time.Time) (*Order, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order_id required", ErrInvalidInput)
	}
	if to == "" {
		return nil, fmt.Errorf("%w: target status required", ErrInvalidInput)
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := ApplyTransition(o, to, now); err != nil {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if IsTerminal(to) && s.vehicles != nil {
		if err := s.vehicles.RecalcAvailability(ctx, o.VehicleID); err != nil {
			return nil, fmt.Errorf("recalc vehicle availability: %w", err)
		}
	}

	if from != to {
		s.publish(ctx, event.TopicOrderStatusUpdated, o)
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id required", ErrInvalidInput)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, f ListFilter) ([]Order, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	f.UserID = strings.TrimSpace(f.UserID)
	f.VehicleID = strings.TrimSpace(f.VehicleID)
	return s.repo.List(ctx, f)
}

// publish 事件发布失败只告警，不影响订单主流程。
func (s *Service) publish(ctx context.Context, topic string, o *Order) {
	if s.events == nil {
		return
	}
	evt := orderEvent{
		OrderID:     o.ID,
		VehicleID:   o.VehicleID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		OccurredAt:  time.Now().Unix(),
	}
	if err := s.events.Publish(ctx, topic, o.ID, evt); err != nil && s.log != nil {
		s.log.Warnf("failed to publish %s event order=%s: %v", topic, o.ID, err)
	}
}

func defaultCurrency(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return "NGN"
	}
	return strings.ToUpper(c)
}
