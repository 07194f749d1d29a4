package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/WheelsHub/WheelsHub/internal/common/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	authCfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "wheelshub",
		Audience:  "wheelshub",
	}
	return NewService(NewRepo(db), authCfg)
}

func TestRegisterLoginAndRoleUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Username: "ada", Password: "p@ssw0rd", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := u.RolesSlice(); len(got) != 1 || got[0] != RoleUser {
		t.Fatalf("expected default user role, got %#v", got)
	}

	// 重复用户名
	if _, err := svc.Register(ctx, RegisterInput{Username: "ada", Password: "x"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// 登录成功签发 token
	res, err := svc.Login(ctx, "ada", "p@ssw0rd")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatalf("expected access token")
	}

	// 错误口令
	if _, err := svc.Login(ctx, "ada", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// 提升为管理员（大小写不敏感），保留 user 角色
	u2, err := svc.UpdateRole(ctx, u.ID, "ADMIN")
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	roles := u2.RolesSlice()
	if len(roles) != 2 || roles[1] != RoleAdmin {
		t.Fatalf("expected [user admin], got %#v", roles)
	}

	if _, err := svc.UpdateRole(ctx, u.ID, "superuser"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
	if _, err := svc.UpdateRole(ctx, "missing", "USER"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
