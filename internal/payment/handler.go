package payment

import (
	"errors"
	"net/http"

	"github.com/WheelsHub/WheelsHub/internal/common/httpx"
	"github.com/gin-gonic/gin"
)

// Handler 支付接口的 HTTP 适配层。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// TransactionDTO 对外 JSON 表示。
type TransactionDTO struct {
	TxRef       string   `json:"txRef"`
	OrderID     string   `json:"orderId,omitempty"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Email       string   `json:"email"`
	Status      TxStatus `json:"status"`
	CheckoutURL string   `json:"checkoutUrl,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}

func toDTO(tx *Transaction) TransactionDTO {
	return TransactionDTO{
		TxRef:       tx.TxRef,
		OrderID:     tx.OrderID,
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		Email:       tx.Email,
		Status:      tx.Status,
		CheckoutURL: tx.CheckoutURL,
		CreatedAt:   tx.CreatedAt.Unix(),
	}
}

type initializeRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Email    string `json:"email"`
	OrderID  string `json:"orderId"`
}

// Initialize 处理 POST /api/payment/initialize。
func (h *Handler) Initialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, err := h.svc.Initialize(c.Request.Context(), InitializeInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Email:    req.Email,
		OrderID:  req.OrderID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, gin.H{"txRef": tx.TxRef, "checkoutUrl": tx.CheckoutURL})
}

// Verify 处理 GET /api/payment/verify/:txRef。
func (h *Handler) Verify(c *gin.Context) {
	tx, err := h.svc.Verify(c.Request.Context(), c.Param("txRef"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, toDTO(tx))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "transaction not found")
	case errors.Is(err, ErrGatewayUnavailable):
		httpx.Error(c, http.StatusBadGateway, "payment gateway unavailable")
	default:
		httpx.Error(c, http.StatusInternalServerError, "internal error")
	}
}
