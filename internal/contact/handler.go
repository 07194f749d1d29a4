package contact

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/WheelsHub/WheelsHub/internal/common/httpx"
	"github.com/gin-gonic/gin"
)

// Handler 客服工单的 HTTP 适配层。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ContactDTO 对外 JSON 表示。
type ContactDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
	Status    Status `json:"status"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func toDTO(c *Contact) ContactDTO {
	return ContactDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Subject:   c.Subject,
		Message:   c.Message,
		Status:    c.Status,
		CreatedAt: c.CreatedAt.Unix(),
		UpdatedAt: c.UpdatedAt.Unix(),
	}
}

type createRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Create 处理 POST /api/contact（公开）。
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ct, err := h.svc.Create(c.Request.Context(), CreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.Created(c, toDTO(ct))
}

// List 处理 GET /api/contact（管理端）。
func (h *Handler) List(c *gin.Context) {
	var status Status
	if raw := c.Query("status"); raw != "" {
		st, ok := ParseStatus(raw)
		if !ok {
			httpx.Error(c, http.StatusBadRequest, "unknown contact status")
			return
		}
		status = st
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

	contacts, total, err := h.svc.List(c.Request.Context(), status, (page-1)*size, size)
	if err != nil {
		httpx.Error(c, http.StatusInternalServerError, "failed to list contacts")
		return
	}
	out := make([]ContactDTO, 0, len(contacts))
	for i := range contacts {
		out = append(out, toDTO(&contacts[i]))
	}
	httpx.OK(c, gin.H{"contacts": out, "total": total})
}

type statusRequest struct {
	Status string `json:"status"`
}

// PatchStatus 处理 PATCH /api/contact/:id/status（管理端）。
func (h *Handler) PatchStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ct, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, toDTO(ct))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "contact not found")
	default:
		httpx.Error(c, http.StatusInternalServerError, "internal error")
	}
}
