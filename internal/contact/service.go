package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidInput 入参校验失败。
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound 工单不存在。
	ErrNotFound = errors.New("contact not found")
)

// Service 封装客服工单用例。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// CreateInput 提交工单的入参。
type CreateInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Contact, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("%w: email required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("%w: message required", ErrInvalidInput)
	}

	c := &Contact{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
		Status:  StatusPending,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateStatus 更新工单状态；只校验合法值，不限制流转顺序。
func (s *Service) UpdateStatus(ctx context.Context, id string, raw string) (*Contact, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id required", ErrInvalidInput)
	}
	status, ok := ParseStatus(raw)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status, offset, limit int) ([]Contact, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, status, offset, limit)
}
