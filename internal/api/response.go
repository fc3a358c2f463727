// Package api IO 板 REST 控制接口：门锁、称重、系统管理、原始帧、轮询快照与命令审计查询。
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/io-board/internal/api/middleware"
	"github.com/taoyao-code/io-board/internal/boarderr"
	"github.com/taoyao-code/io-board/internal/dispatch"
)

// StandardResponse 标准响应格式
type StandardResponse struct {
	Code      int         `json:"code"`           // 0=成功, >0=错误码
	Message   string      `json:"message"`        // 消息
	Data      interface{} `json:"data,omitempty"` // 业务数据
	RequestID string      `json:"request_id"`     // 请求追踪ID
	Timestamp int64       `json:"timestamp"`      // 时间戳
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, StandardResponse{
		Code:      0,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(middleware.RequestIDKey),
		Timestamp: time.Now().Unix(),
	})
}

func respondError(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, StandardResponse{
		Code:      status,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(middleware.RequestIDKey),
		Timestamp: time.Now().Unix(),
	})
}

// respondBoardError 按错误类别映射 HTTP 状态码
func respondBoardError(c *gin.Context, err error) {
	data := map[string]interface{}{"kind": boarderr.KindOf(err).String()}
	var ex *dispatch.ExhaustedError
	if errors.As(err, &ex) {
		data["attempts"] = ex.Attempts
	}
	respondError(c, classifyError(err), err.Error(), data)
}

func classifyError(err error) int {
	switch boarderr.KindOf(err) {
	case boarderr.KindValidation:
		return http.StatusBadRequest
	case boarderr.KindConnection:
		return http.StatusServiceUnavailable
	case boarderr.KindTimeout:
		return http.StatusGatewayTimeout
	case boarderr.KindCommunication, boarderr.KindFrame, boarderr.KindChecksum, boarderr.KindResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
