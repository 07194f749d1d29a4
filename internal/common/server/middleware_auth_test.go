package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WheelsHub/WheelsHub/internal/common/auth"
	"github.com/WheelsHub/WheelsHub/internal/common/config"
	"github.com/gin-gonic/gin"
)

func TestJWTAuthAndRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authCfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "wheelshub",
		Audience:  "wheelshub",
	}

	engine := gin.New()
	engine.GET("/admin-only", JWTAuth(authCfg, nil), RequireRoles(authCfg, "admin"), func(c *gin.Context) {
		ai, ok := AuthFromContext(c)
		if !ok {
			t.Fatalf("missing auth info in ctx")
		}
		if ai.Subject != "u-1" {
			t.Fatalf("subject mismatch: %s", ai.Subject)
		}
		c.String(http.StatusOK, "ok")
	})

	// 带 admin 角色的 token，应放行
	token, _, err := auth.GenerateAccessToken(authCfg, "u-1", []string{"user", "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	// 只有 user 角色的 token，应被拒绝
	token2, _, err := auth.GenerateAccessToken(authCfg, "u-1", []string{"user"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token2: %v", err)
	}
	req2 := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req2.Header.Set("Authorization", "Bearer "+token2)
	rec2 := httptest.NewRecorder()
	engine.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec2.Code)
	}

	// 缺失 token，应返回 401
	req3 := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	rec3 := httptest.NewRecorder()
	engine.ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec3.Code)
	}
}
