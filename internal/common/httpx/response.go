package httpx

import (
	"github.com/gin-gonic/gin"
)

// Response 统一 JSON 响应包装。
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK 成功响应（200）。
func OK(c *gin.Context, data any) {
	c.JSON(200, Response{Success: true, Data: data})
}

// Created 创建成功响应（201）。
func Created(c *gin.Context, data any) {
	c.JSON(201, Response{Success: true, Data: data})
}

// Error 失败响应，附带错误信息。
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Message: msg})
}

// AbortError 失败响应并中断后续 handler（用于中间件）。
func AbortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: msg})
}
