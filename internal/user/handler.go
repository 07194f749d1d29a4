package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/WheelsHub/WheelsHub/internal/common/httpx"
	"github.com/WheelsHub/WheelsHub/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 用户/鉴权的 HTTP 适配层。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// UserDTO 对外 JSON 表示（不含口令散列）。
type UserDTO struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Nickname  string   `json:"nickname,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
}

func toDTO(u *User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Phone:     u.Phone,
		Email:     u.Email,
		Roles:     u.RolesSlice(),
		CreatedAt: u.CreatedAt.Unix(),
		UpdatedAt: u.UpdatedAt.Unix(),
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// Register 处理 POST /api/auth/register。
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Nickname: req.Nickname,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.Created(c, toDTO(u))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 处理 POST /api/auth/login。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, gin.H{
		"accessToken": res.AccessToken,
		"expiresAt":   res.ExpiresAt.Unix(),
		"user":        toDTO(res.User),
	})
}

// Profile 处理 GET /api/user/profile（需登录）。
func (h *Handler) Profile(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok || ai.Subject == "" {
		httpx.Error(c, http.StatusUnauthorized, "missing auth")
		return
	}
	u, err := h.svc.Get(c.Request.Context(), ai.Subject)
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, toDTO(u))
}

// List 处理 GET /api/user（管理端）。
func (h *Handler) List(c *gin.Context) {
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

	users, total, err := h.svc.List(c.Request.Context(), (page-1)*size, size)
	if err != nil {
		httpx.Error(c, http.StatusInternalServerError, "failed to list users")
		return
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, toDTO(&users[i]))
	}
	httpx.OK(c, gin.H{"users": out, "total": total})
}

type roleRequest struct {
	Role string `json:"role"`
}

// PatchRole 处理 PATCH /api/user/:id/role（管理端）。
func (h *Handler) PatchRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.svc.UpdateRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpx.OK(c, toDTO(u))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUsernameTaken):
		httpx.Error(c, http.StatusConflict, "username already exists")
	case errors.Is(err, ErrInvalidCredentials):
		httpx.Error(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ErrNotFound):
		httpx.Error(c, http.StatusNotFound, "user not found")
	default:
		httpx.Error(c, http.StatusInternalServerError, "internal error")
	}
}
