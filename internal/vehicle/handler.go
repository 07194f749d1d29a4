package vehicle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/WheelsHub/WheelsHub/internal/common/httpx"
	"github.com/gin-gonic/gin"
)

// Handler 车辆目录的 HTTP 适配层：解析/校验请求，把 service 错误映射为状态码。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// VehicleDTO 对外 JSON 表示（features 展开为数组）。
type VehicleDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Type        string   `json:"type,omitempty"`
	Location    string   `json:"location,omitempty"`
	Image       string   `json:"image"`
	PricePerDay int64    `json:"pricePerDay"`
	Stock       int      `json:"stock"`
	IsAvailable bool     `json:"isAvailable"`
	Features    []string `json:"features"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

func toDTO(v *Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:          v.ID,
		Name:        v.Name,
		Brand:       v.Brand,
		Model:       v.Model,
		Type:        v.Type,
		Location:    v.Location,
		Image:       v.ImageURL,
		PricePerDay: v.PricePerDay,
		Stock:       v.Stock,
		IsAvailable: v.IsAvailable,
		Features:    v.FeaturesSlice(),
		CreatedAt:   v.CreatedAt.Unix(),
		UpdatedAt:   v.UpdatedAt.Unix(),
	}
}

func toDTOs(vs []Vehicle) []VehicleDTO {
	out := make([]VehicleDTO, 0, len(vs))
	for i := range vs {
		out = append(out, toDTO(&vs[i]))
	}
	return out
}

type vehicleRequest struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Type        string   `json:"type"`
	Location    string   `json:"location"`
	Image       string   `json:"image"`
	PricePerDay int64    `json:"pricePerDay"`
	Stock       int      `json:"stock"`
	Features    []string `json:"features"`
}

func (req *vehicleRequest) toInput() VehicleInput {
	return VehicleInput{
		Name:        req.Name,
		Brand:       req.Brand,
		Model:       req.Model,
		Type:        req.Type,
		Location:    req.Location,
		ImageURL:    req.Image,
		PricePerDay: req.PricePerDay,
		Stock:       req.Stock,
		Features:    req.Features,
	}
}

// List 公开目录：只返回 is_available=true 的车辆。
func (h *Handler) List(c *gin.Context) {
	h.list(c, true)
}

// ListAll 管理端目录：不按可用性过滤。
func (h *Handler) ListAll(c *gin.Context) {
	h.list(c, false)
}

func (h *Handler) list(c *gin.Context, onlyAvailable bool) {
	f := ListFilter{
		Type:          c.Query("type"),
		Search:        c.Query("search"),
		Location:      c.Query("location"),
		OnlyAvailable: onlyAvailable,
	}
	if raw := c.Query("minPrice"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			f.MinPrice = v
		}
	}
	if raw := c.Query("maxPrice"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			f.MaxPrice = v
		}
	}
	page, size := pageParams(c)
	f.Offset = (page - 1) * size
	f.Limit = size

	vs, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		httpx.Error(c, http.StatusInternalServerError, "failed to list vehicles")
		return
	}
	httpx.OK(c, gin.H{"vehicles": toDTOs(vs), "total": total})
}

func (h *Handler) Get(c *gin.Context) {
	v, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, toDTO(v))
}

func (h *Handler) Create(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.svc.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.Created(c, toDTO(v))
}

func (h *Handler) Update(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, toDTO(v))
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, nil)
}

type stockRequest struct {
	Operation string `json:"operation"`
	Value     int    `json:"value"`
}

// PatchStock 处理 PATCH /api/vehicles/:id/stock，operation ∈ {increment, decrement, set}。
func (h *Handler) PatchStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.svc.AdjustStock(c.Request.Context(), c.Param("id"), StockOp(req.Operation), req.Value)
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, toDTO(v))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "vehicle not found")
	case errors.Is(err, ErrInsufficientStock):
		httpx.Error(c, http.StatusConflict, "insufficient stock")
	default:
		httpx.Error(c, http.StatusInternalServerError, "internal error")
	}
}

func pageParams(c *gin.Context) (page, size int) {
	page, size = 1, 20
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
	return page, size
}
