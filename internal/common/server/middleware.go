package server

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/WheelsHub/WheelsHub/internal/common/auth"
	"github.com/WheelsHub/WheelsHub/internal/common/config"
	"github.com/WheelsHub/WheelsHub/internal/common/httpx"
	"github.com/WheelsHub/WheelsHub/internal/common/logger"
	"github.com/WheelsHub/WheelsHub/internal/common/middleware"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

const authContextKey = "wheelshub.auth"

// AuthInfo 从 JWT 中解析出的最小用户信息（放入请求上下文，供业务侧使用）。
type AuthInfo struct {
	Subject string   // 用户 ID
	Roles   []string // 角色列表（RBAC）
}

// AuthFromContext 从请求上下文中取出鉴权信息。
func AuthFromContext(c *gin.Context) (AuthInfo, bool) {
	v, ok := c.Get(authContextKey)
	if !ok {
		return AuthInfo{}, false
	}
	ai, ok := v.(AuthInfo)
	return ai, ok
}

// Recovery 防止 panic 直接把进程打崩，并记录栈信息。
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if log != nil {
					log.Errorf("panic in http handler path=%s err=%v stack=%s", c.FullPath(), r, string(debug.Stack()))
				}
				httpx.AbortError(c, 500, "internal error")
			}
		}()
		c.Next()
	}
}

// AccessLog 记录每个 HTTP 请求的耗时/状态码。
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		cost := time.Since(start)

		if log == nil {
			return
		}
		fields := map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"cost":   cost.String(),
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}
		if c.Writer.Status() >= 500 {
			log.WithFields(fields).Warn("http request failed")
		} else {
			log.WithFields(fields).Info("http request ok")
		}
	}
}

// Tracing 为每个请求创建 server span，并尝试从请求头续接上游链路。
func Tracing(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := opentracing.GlobalTracer()

		var parent opentracing.SpanContext
		if sc, err := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(c.Request.Header)); err == nil {
			parent = sc
		}

		operation := fmt.Sprintf("%s %s", c.Request.Method, c.FullPath())
		var span opentracing.Span
		if parent != nil {
			span = tracer.StartSpan(operation, ext.RPCServerOption(parent))
		} else {
			span = tracer.StartSpan(operation)
		}
		defer span.Finish()

		ext.SpanKindRPCServer.Set(span)
		ext.Component.Set(span, "http")
		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)
		if serviceName != "" {
			span.SetTag("service", serviceName)
		}

		c.Request = c.Request.WithContext(opentracing.ContextWithSpan(c.Request.Context(), span))
		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
		if c.Writer.Status() >= 500 {
			ext.Error.Set(span, true)
		}
	}
}

// RateLimit 入口限流；超限返回 429。
func RateLimit(limiter middleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.Request.Context()) {
			httpx.AbortError(c, 429, "too many requests")
			return
		}
		c.Next()
	}
}

// JWTAuth 用于 JWT 鉴权：
// - 从 `Authorization: Bearer <token>` 读取 token
// - 校验签名与标准字段，可选校验 iss/aud
// - 将解析结果写入请求上下文
func JWTAuth(cfg config.AuthConfig, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}
		if strings.TrimSpace(cfg.JWTSecret) == "" {
			if log != nil {
				log.Warn("auth enabled but jwt_secret is empty")
			}
			httpx.AbortError(c, 401, "auth not configured")
			return
		}

		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			httpx.AbortError(c, 401, "missing authorization")
			return
		}
		tokenStr := raw
		if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
			tokenStr = strings.TrimSpace(tokenStr[len("bearer "):])
		}
		if tokenStr == "" {
			httpx.AbortError(c, 401, "invalid authorization")
			return
		}

		claims, err := auth.ParseAccessToken(cfg, tokenStr)
		if err != nil {
			httpx.AbortError(c, 401, "invalid token")
			return
		}

		c.Set(authContextKey, AuthInfo{
			Subject: claims.Subject,
			Roles:   claims.Roles,
		})
		c.Next()
	}
}

// OptionalJWTAuth 与 JWTAuth 类似，但允许匿名请求：
// 带合法 token 时写入上下文，不带或非法则按游客继续处理。
func OptionalJWTAuth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || strings.TrimSpace(cfg.JWTSecret) == "" {
			c.Next()
			return
		}
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			raw = strings.TrimSpace(raw[len("bearer "):])
		}
		if raw == "" {
			c.Next()
			return
		}
		if claims, err := auth.ParseAccessToken(cfg, raw); err == nil {
			c.Set(authContextKey, AuthInfo{
				Subject: claims.Subject,
				Roles:   claims.Roles,
			})
		}
		c.Next()
	}
}

// RequireRoles 要求 token roles 与 required 有交集；未配置鉴权时放行。
func RequireRoles(cfg config.AuthConfig, required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || len(required) == 0 {
			c.Next()
			return
		}
		ai, ok := AuthFromContext(c)
		if !ok {
			httpx.AbortError(c, 401, "missing auth context")
			return
		}
		if !hasAnyRole(ai.Roles, required) {
			httpx.AbortError(c, 403, "permission denied")
			return
		}
		c.Next()
	}
}

func hasAnyRole(got, required []string) bool {
	if len(got) == 0 || len(required) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(got))
	for _, r := range got {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		set[r] = struct{}{}
	}
	for _, r := range required {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
