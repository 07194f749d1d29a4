package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/WheelsHub/WheelsHub/internal/common/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidInput 入参校验失败。
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound 交易不存在。
	ErrNotFound = errors.New("transaction not found")
)

const defaultCurrency = "NGN"

// Service 支付用例：发起收款并按 tx_ref 核验结果。
type Service struct {
	repo    *Repo
	gateway *Gateway
	log     logger.Logger
}

func NewService(repo *Repo, gateway *Gateway, log logger.Logger) *Service {
	return &Service{repo: repo, gateway: gateway, log: log}
}

// InitializeInput 发起收款的入参。
type InitializeInput struct {
	Amount   int64
	Currency string
	Email    string
	OrderID  string
}

// Initialize 生成 tx_ref，调用网关创建收款，并落库一条 initialized 交易。
func (s *Service) Initialize(ctx context.Context, in InitializeInput) (*Transaction, error) {
	if s == nil || s.repo == nil || s.gateway == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("%w: email required", ErrInvalidInput)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	txRef := "whx-" + uuid.NewString()
	res, err := s.gateway.Initialize(ctx, InitializeRequest{
		TxRef:    txRef,
		Amount:   in.Amount,
		Currency: currency,
		Email:    strings.TrimSpace(in.Email),
	})
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		ID:          uuid.NewString(),
		TxRef:       txRef,
		OrderID:     strings.TrimSpace(in.OrderID),
		Amount:      in.Amount,
		Currency:    currency,
		Email:       strings.TrimSpace(in.Email),
		Status:      TxInitialized,
		CheckoutURL: res.CheckoutURL,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Verify 以网关查询结果为准更新本地交易状态。
func (s *Service) Verify(ctx context.Context, txRef string) (*Transaction, error) {
	if s == nil || s.repo == nil || s.gateway == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	txRef = strings.TrimSpace(txRef)
	if txRef == "" {
		return nil, fmt.Errorf("%w: txRef required", ErrInvalidInput)
	}

	tx, err := s.repo.GetByTxRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	res, err := s.gateway.Verify(ctx, txRef)
	if err != nil {
		return nil, err
	}
	if res.Status != tx.Status {
		if err := s.repo.UpdateStatus(ctx, txRef, res.Status); err != nil {
			return nil, err
		}
		tx.Status = res.Status
		if s.log != nil {
			s.log.Infof("payment %s verified as %s", txRef, res.Status)
		}
	}
	return tx, nil
}
