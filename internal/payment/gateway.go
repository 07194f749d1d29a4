package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/WheelsHub/WheelsHub/internal/common/config"
	"github.com/WheelsHub/WheelsHub/internal/common/middleware"
)

// ErrGatewayUnavailable 网关不可达或返回非预期响应。
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Gateway 第三方支付网关客户端（HTTPS JSON API，Bearer 商户密钥鉴权）。
type Gateway struct {
	baseURL     string
	secretKey   string
	redirectURL string
	client      *http.Client
	breaker     *middleware.CircuitBreaker
}

func NewGateway(cfg config.PaymentConfig) *Gateway {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		baseURL:     cfg.BaseURL,
		secretKey:   cfg.SecretKey,
		redirectURL: cfg.RedirectURL,
		client:      &http.Client{Timeout: timeout},
		breaker:     middleware.NewCircuitBreaker("payment-gateway", 5, 30*time.Second),
	}
}

// InitializeRequest 发起收款的出站请求体。
type InitializeRequest struct {
	TxRef       string `json:"tx_ref"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	RedirectURL string `json:"redirect_url"`
}

// InitializeResult 网关返回的收款链接。
type InitializeResult struct {
	CheckoutURL string
}

// VerifyResult 网关侧的交易查询结果。
type VerifyResult struct {
	TxRef    string
	Status   TxStatus
	Amount   int64
	Currency string
}

type gatewayEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	Link string `json:"link"`
}

type verifyData struct {
	TxRef    string `json:"tx_ref"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Initialize 向网关创建一笔收款，返回托管收银台链接。
func (g *Gateway) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("gateway not initialized")
	}
	if req.RedirectURL == "" {
		req.RedirectURL = g.redirectURL
	}

	var result *InitializeResult
	err := g.breaker.Call(ctx, func() error {
		body, err := json.Marshal(req)
		if err != nil {
			return err
		}
		env, err := g.do(ctx, http.MethodPost, "/payments", bytes.NewReader(body))
		if err != nil {
			return err
		}
		var data initializeData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return fmt.Errorf("%w: malformed initialize response", ErrGatewayUnavailable)
		}
		if data.Link == "" {
			return fmt.Errorf("%w: gateway returned no checkout link", ErrGatewayUnavailable)
		}
		result = &InitializeResult{CheckoutURL: data.Link}
		return nil
	})
	if err != nil {
		if errors.Is(err, middleware.ErrCircuitOpen) {
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		return nil, err
	}
	return result, nil
}

// Verify 按 tx_ref 查询交易真实状态。
func (g *Gateway) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("gateway not initialized")
	}

	var result *VerifyResult
	err := g.breaker.Call(ctx, func() error {
		env, err := g.do(ctx, http.MethodGet, "/transactions/"+txRef+"/verify", nil)
		if err != nil {
			return err
		}
		var data verifyData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return fmt.Errorf("%w: malformed verify response", ErrGatewayUnavailable)
		}
		// 未知/缺失状态不覆盖本地记录
		status := TxInitialized
		switch data.Status {
		case "successful":
			status = TxSuccessful
		case "failed", "cancelled":
			status = TxFailed
		}
		result = &VerifyResult{
			TxRef:    data.TxRef,
			Status:   status,
			Amount:   data.Amount,
			Currency: data.Currency,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, middleware.ErrCircuitOpen) {
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		return nil, err
	}
	return result, nil
}

func (g *Gateway) do(ctx context.Context, method, path string, body io.Reader) (*gatewayEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: gateway status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var env gatewayEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: non-JSON gateway response", ErrGatewayUnavailable)
	}
	if env.Status != "success" {
		return nil, fmt.Errorf("%w: gateway rejected request: %s", ErrGatewayUnavailable, env.Message)
	}
	return &env, nil
}
