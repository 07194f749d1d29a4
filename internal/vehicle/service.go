package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidInput 入参校验失败（handler 映射为 400）。
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound 车辆不存在（handler 映射为 404）。
	ErrNotFound = errors.New("vehicle not found")
	// ErrInsufficientStock 库存不足以扣减（handler 映射为 409）。
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockOp 库存调整操作。
type StockOp string

const (
	OpIncrement StockOp = "increment"
	OpDecrement StockOp = "decrement"
	OpSet       StockOp = "set"
)

// Service 封装车辆目录的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// VehicleInput 创建/整体更新车辆的入参。
type VehicleInput struct {
	Name        string
	Brand       string
	Model       string
	Type        string
	Location    string
	ImageURL    string
	PricePerDay int64
	Stock       int
	Features    []string
}

func (in *VehicleInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Brand) == "" {
		return fmt.Errorf("%w: brand required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Model) == "" {
		return fmt.Errorf("%w: model required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return fmt.Errorf("%w: image required", ErrInvalidInput)
	}
	if in.PricePerDay <= 0 {
		return fmt.Errorf("%w: price_per_day must be positive", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", ErrInvalidInput)
	}
	return nil
}

func (in *VehicleInput) apply(v *Vehicle) {
	v.Name = strings.TrimSpace(in.Name)
	v.Brand = strings.TrimSpace(in.Brand)
	v.Model = strings.TrimSpace(in.Model)
	v.Type = strings.TrimSpace(in.Type)
	v.Location = strings.TrimSpace(in.Location)
	v.ImageURL = strings.TrimSpace(in.ImageURL)
	v.PricePerDay = in.PricePerDay
	v.Stock = in.Stock
	v.Features = FeaturesJoin(in.Features)
	v.SyncAvailability()
}

func (s *Service) Create(ctx context.Context, in VehicleInput) (*Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	v := &Vehicle{ID: uuid.NewString()}
	in.apply(v)
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Update(ctx context.Context, id string, in VehicleInput) (*Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id required", ErrInvalidInput)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	v, err := s.repo.FindByID(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	in.apply(v)
	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id required", ErrInvalidInput)
	}
	v, err := s.repo.FindByID(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: id required", ErrInvalidInput)
	}
	err := s.repo.Delete(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return ErrNotFound
	}
	return err
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Vehicle, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, f)
}

// AdjustStock 处理 increment / decrement / set 三种库存操作。
// increment/decrement 的 value 缺省为 1；set 允许显式设为 0（下架但不删除）。
func (s *Service) AdjustStock(ctx context.Context, id string, op StockOp, value int) (*Vehicle, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id required", ErrInvalidInput)
	}

	var (
		v   *Vehicle
		err error
	)
	switch op {
	case OpIncrement, OpDecrement:
		if value == 0 {
			value = 1
		}
		if value < 0 {
			return nil, fmt.Errorf("%w: value must be positive", ErrInvalidInput)
		}
		delta := value
		if op == OpDecrement {
			delta = -value
		}
		v, err = s.repo.AdjustStock(ctx, id, delta)
	case OpSet:
		if value < 0 {
			return nil, fmt.Errorf("%w: stock must be >= 0", ErrInvalidInput)
		}
		v, err = s.repo.SetStock(ctx, id, value)
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrInvalidInput, op)
	}

	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
