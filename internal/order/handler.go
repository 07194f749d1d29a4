package order

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/WheelsHub/WheelsHub/internal/common/httpx"
	"github.com/WheelsHub/WheelsHub/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 订单的 HTTP 适配层。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// OrderDTO 对外 JSON 表示。
type OrderDTO struct {
	ID            string `json:"id"`
	VehicleID     string `json:"vehicleId"`
	UserID        string `json:"userId,omitempty"`
	Status        Status `json:"status"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	TotalDays     int    `json:"totalDays"`
	DailyRate     int64  `json:"dailyRate"`
	TotalAmount   int64  `json:"totalAmount"`
	Currency      string `json:"currency"`
	CreatedAt     int64  `json:"createdAt"`
	UpdatedAt     int64  `json:"updatedAt"`
}

func toDTO(o *Order) OrderDTO {
	return OrderDTO{
		ID:            o.ID,
		VehicleID:     o.VehicleID,
		UserID:        o.UserID,
		Status:        o.Status,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		StartDate:     o.StartDate.Format(time.RFC3339),
		EndDate:       o.EndDate.Format(time.RFC3339),
		TotalDays:     o.TotalDays,
		DailyRate:     o.DailyRate,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		CreatedAt:     o.CreatedAt.Unix(),
		UpdatedAt:     o.UpdatedAt.Unix(),
	}
}

type createOrderRequest struct {
	VehicleID     string `json:"vehicleId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Currency      string `json:"currency"`
}

// parseDate 接受 "2006-01-02" 或 RFC3339 两种格式。
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// Create 处理 POST /api/orders。
func (h *Handler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		httpx.Error(c, http.StatusBadRequest, "Invalid date range")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		httpx.Error(c, http.StatusBadRequest, "Invalid date range")
		return
	}

	in := CreateOrderInput{
		VehicleID:     req.VehicleID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		StartDate:     start,
		EndDate:       end,
		Currency:      req.Currency,
	}
	// 已登录用户的订单归属到其账号
	if ai, ok := server.AuthFromContext(c); ok {
		in.UserID = ai.Subject
	}

	o, err := h.svc.CreateOrder(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.Created(c, toDTO(o))
}

type statusRequest struct {
	Status string `json:"status"`
}

// PatchStatus 处理 PATCH /api/orders/:id/status。
func (h *Handler) PatchStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	to, err := ParseStatus(req.Status)
	if err != nil {
		httpx.Error(c, http.StatusBadRequest, "unknown order status")
		return
	}

	o, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), to, time.Now())
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, toDTO(o))
}

// Get 处理 GET /api/orders/:id；非管理员只能查看自己的订单。
func (h *Handler) Get(c *gin.Context) {
	o, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if ai, ok := server.AuthFromContext(c); ok && !isAdmin(ai) && o.UserID != ai.Subject {
		httpx.Error(c, http.StatusNotFound, "order not found")
		return
	}
	httpx.OK(c, toDTO(o))
}

// List 处理 GET /api/orders；管理员可按任意条件过滤，普通用户固定只看自己的。
func (h *Handler) List(c *gin.Context) {
	f := ListFilter{
		UserID:    c.Query("userId"),
		VehicleID: c.Query("vehicleId"),
	}
	if raw := c.Query("status"); raw != "" {
		st, err := ParseStatus(raw)
		if err != nil {
			httpx.Error(c, http.StatusBadRequest, "unknown order status")
			return
		}
		f.Status = st
	}
	if ai, ok := server.AuthFromContext(c); ok && !isAdmin(ai) {
		f.UserID = ai.Subject
	}

	page, size := 1, 20
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			size = v
		}
	}
	f.Offset = (page - 1) * size
	f.Limit = size

	orders, total, err := h.svc.ListOrders(c.Request.Context(), f)
	if err != nil {
		httpx.Error(c, http.StatusInternalServerError, "failed to list orders")
		return
	}
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, toDTO(&orders[i]))
	}
	httpx.OK(c, gin.H{"orders": out, "total": total})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidDateRange):
		httpx.Error(c, http.StatusBadRequest, "Invalid date range")
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrVehicleNotFound):
		httpx.Error(c, http.StatusNotFound, "vehicle not found")
	case errors.Is(err, ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "order not found")
	case errors.Is(err, ErrVehicleUnavailable):
		httpx.Error(c, http.StatusConflict, "vehicle not available for the requested dates")
	case errors.Is(err, ErrInvalidTransition):
		httpx.Error(c, http.StatusConflict, err.Error())
	default:
		httpx.Error(c, http.StatusInternalServerError, "internal error")
	}
}

func isAdmin(ai server.AuthInfo) bool {
	for _, r := range ai.Roles {
		if r == "admin" {
			return true
		}
	}
	return false
}
