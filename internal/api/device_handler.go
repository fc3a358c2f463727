package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/device"
)

// DeadBolt 门锁能力
type DeadBolt interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Status(ctx context.Context) (device.DoorLockStatus, error)
}

// LoadCell 称重能力
type LoadCell interface {
	ReadAll(ctx context.Context) ([]device.Reading, error)
	ReadChannel(ctx context.Context, channel int) (device.Reading, error)
	ZeroCalibration(ctx context.Context) error
	LastReadings() []device.Reading
}

// System 系统管理能力
type System interface {
	Info(ctx context.Context) (device.SystemInfo, error)
	SetProductionNumber(ctx context.Context, number string) error
	ErrorHistory(ctx context.Context) ([]device.ErrorEntry, error)
	ClearErrorHistory(ctx context.Context) error
	FactoryReset(ctx context.Context) error
	SystemReset(ctx context.Context) error
}

// DeviceHandler 设备控制处理器
type DeviceHandler struct {
	door   DeadBolt
	scale  LoadCell
	system System
	logger *zap.Logger
}

// NewDeviceHandler 创建设备控制处理器
func NewDeviceHandler(door DeadBolt, scale LoadCell, system System, logger *zap.Logger) *DeviceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceHandler{door: door, scale: scale, system: system, logger: logger}
}

// WeightsResponse 称重结果
type WeightsResponse struct {
	Readings []device.Reading `json:"readings"`
	Total    float64          `json:"total"`
}

// ProductionNumberRequest 写入生产编号
type ProductionNumberRequest struct {
	ProductionNumber string `json:"production_number" binding:"required"`
}

// DoorStatus 查询门锁状态
// @Summary 查询门锁状态
// @Description 发送 RQ-ID，返回门(OPENED/CLOSED)与锁(LOCKED/UNLOCKED)状态
// @Tags 门锁
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse{data=device.DoorLockStatus}
// @Failure 504 {object} StandardResponse "设备无响应"
// @Router /api/deadbolt/status [get]
func (h *DeviceHandler) DoorStatus(c *gin.Context) {
	st, err := h.door.Status(c.Request.Context())
	if err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "ok", st)
}

// OpenDoor 开门
// @Summary 开门
// @Tags 门锁
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse
// @Failure 429 {object} StandardResponse "命令过于频繁"
// @Failure 504 {object} StandardResponse "设备无响应"
// @Router /api/deadbolt/open [post]
func (h *DeviceHandler) OpenDoor(c *gin.Context) {
	if err := h.door.Open(c.Request.Context()); err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "door opened", nil)
}

// CloseDoor 关门
// @Summary 关门
// @Tags 门锁
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse
// @Failure 504 {object} StandardResponse "设备无响应"
// @Router /api/deadbolt/close [post]
func (h *DeviceHandler) CloseDoor(c *gin.Context) {
	if err := h.door.Close(c.Request.Context()); err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "door closed", nil)
}

// Weights 读取全部通道
// @Summary 读取称重
// @Description 发送 RQ-IW，返回 10 个通道读数与总重；cached=true 时返回最近一次缓存，不访问设备
// @Tags 称重
// @Produce json
// @Security ApiKeyAuth
// @Param cached query bool false "仅返回缓存"
// @Success 200 {object} StandardResponse{data=WeightsResponse}
// @Failure 504 {object} StandardResponse "设备无响应"
// @Router /api/loadcell/weights [get]
func (h *DeviceHandler) Weights(c *gin.Context) {
	if c.Query("cached") == "true" {
		readings := h.scale.LastReadings()
		respondOK(c, "ok", WeightsResponse{Readings: readings, Total: device.Total(readings)})
		return
	}
	readings, err := h.scale.ReadAll(c.Request.Context())
	if err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "ok", WeightsResponse{Readings: readings, Total: device.Total(readings)})
}

// Channel 读取单个通道
// @Summary 读取单个通道
// @Tags 称重
// @Produce json
// @Security ApiKeyAuth
// @Param channel path int true "通道号 1-10"
// @Success 200 {object} StandardResponse{data=device.Reading}
// @Failure 400 {object} StandardResponse "通道号无效"
// @Router /api/loadcell/channels/{channel} [get]
func (h *DeviceHandler) Channel(c *gin.Context) {
	ch, err := strconv.Atoi(c.Param("channel"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid channel: "+c.Param("channel"), nil)
		return
	}
	r, err := h.scale.ReadChannel(c.Request.Context(), ch)
	if err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "ok", r)
}

// ZeroCalibration 零点校准
// @Summary 零点校准
// @Tags 称重
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse
// @Router /api/loadcell/zero [post]
func (h *DeviceHandler) ZeroCalibration(c *gin.Context) {
	if err := h.scale.ZeroCalibration(c.Request.Context()); err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "zero calibration completed", nil)
}

// SystemInfo 查询系统信息
// @Summary 查询系统信息
// @Tags 系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse{data=device.SystemInfo}
// @Failure 502 {object} StandardResponse "应答无效"
// @Router /api/system/info [get]
func (h *DeviceHandler) SystemInfo(c *gin.Context) {
	info, err := h.system.Info(c.Request.Context())
	if err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "ok", info)
}

// SetProductionNumber 写入生产编号
// @Summary 写入生产编号
// @Tags 系统
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ProductionNumberRequest true "生产编号(ASCII)"
// @Success 200 {object} StandardResponse
// @Failure 400 {object} StandardResponse "参数错误"
// @Router /api/system/production-number [put]
func (h *DeviceHandler) SetProductionNumber(c *gin.Context) {
	var req ProductionNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求: "+err.Error(), nil)
		return
	}
	if err := h.system.SetProductionNumber(c.Request.Context(), req.ProductionNumber); err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "production number set", gin.H{"production_number": req.ProductionNumber})
}

// ErrorHistory 查询错误历史
// @Summary 查询错误历史
// @Tags 系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse{data=[]device.ErrorEntry}
// @Router /api/system/errors [get]
func (h *DeviceHandler) ErrorHistory(c *gin.Context) {
	entries, err := h.system.ErrorHistory(c.Request.Context())
	if err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "ok", entries)
}

// ClearErrorHistory 清除错误历史
// @Summary 清除错误历史
// @Tags 系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse
// @Router /api/system/errors [delete]
func (h *DeviceHandler) ClearErrorHistory(c *gin.Context) {
	if err := h.system.ClearErrorHistory(c.Request.Context()); err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "error history cleared", nil)
}

// FactoryReset 恢复出厂设置
// @Summary 恢复出厂设置
// @Description 需要 confirm=true
// @Tags 系统
// @Produce json
// @Security ApiKeyAuth
// @Param confirm query bool true "确认"
// @Success 200 {object} StandardResponse
// @Failure 400 {object} StandardResponse "未确认"
// @Router /api/system/factory-reset [post]
func (h *DeviceHandler) FactoryReset(c *gin.Context) {
	if c.Query("confirm") != "true" {
		respondError(c, http.StatusBadRequest, "factory reset requires confirm=true", nil)
		return
	}
	h.logger.Warn("factory reset requested via api", zap.String("remote_addr", c.ClientIP()))
	if err := h.system.FactoryReset(c.Request.Context()); err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "factory reset completed", nil)
}

// SystemReset 重启 IO 板
// @Summary 重启 IO 板
// @Tags 系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse
// @Router /api/system/reset [post]
func (h *DeviceHandler) SystemReset(c *gin.Context) {
	if err := h.system.SystemReset(c.Request.Context()); err != nil {
		respondBoardError(c, err)
		return
	}
	respondOK(c, "system reset completed", nil)
}
