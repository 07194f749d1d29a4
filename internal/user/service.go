package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/WheelsHub/WheelsHub/internal/common/auth"
	"github.com/WheelsHub/WheelsHub/internal/common/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidInput 入参校验失败。
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound 用户不存在。
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken 用户名已被占用。
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials 用户名或密码错误。
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service 封装用户领域用例：注册、登录、角色管理。
type Service struct {
	repo    *Repo
	authCfg config.AuthConfig
}

func NewService(repo *Repo, authCfg config.AuthConfig) *Service {
	return &Service{repo: repo, authCfg: authCfg}
}

// RegisterInput 注册入参。
type RegisterInput struct {
	Username string
	Password string
	Nickname string
	Phone    string
	Email    string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username/password required", ErrInvalidInput)
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password, salt)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Nickname:     strings.TrimSpace(in.Nickname),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        strings.TrimSpace(in.Email),
		Roles:        RolesJoin([]string{RoleUser}),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LoginResult 登录结果：用户 + access token。
type LoginResult struct {
	User        *User
	AccessToken string
	ExpiresAt   time.Time
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username/password required", ErrInvalidInput)
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := auth.GenerateAccessToken(s.authCfg, u.ID, u.RolesSlice(), 24*time.Hour)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, AccessToken: token, ExpiresAt: exp}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id required", ErrInvalidInput)
	}
	u, err := s.repo.FindByID(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, offset, limit)
}

// UpdateRole 设置用户角色，role ∈ {USER, ADMIN}（大小写不敏感）。
// ADMIN 同时保留 user 角色，便于普通接口放行。
func (s *Service) UpdateRole(ctx context.Context, id, role string) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id required", ErrInvalidInput)
	}

	var roles []string
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleUser:
		roles = []string{RoleUser}
	case RoleAdmin:
		roles = []string{RoleUser, RoleAdmin}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	if err := s.repo.UpdateRoles(ctx, id, RolesJoin(roles)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}
