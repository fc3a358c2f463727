package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/dispatch"
	"github.com/taoyao-code/io-board/internal/filter"
	"github.com/taoyao-code/io-board/internal/monitor"
	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
	"github.com/taoyao-code/io-board/internal/serialport"
	"github.com/taoyao-code/io-board/internal/storage"
	"github.com/taoyao-code/io-board/internal/storage/models"
)

// RawInvoker 预构造帧发送
type RawInvoker interface {
	InvokeRaw(ctx context.Context, key string, opts ...dispatch.CallOption) ([]byte, error)
}

// MonitorView 轮询快照与滤波器
type MonitorView interface {
	Snapshot() monitor.Snapshot
	Filter() *filter.Bank
	ResetFilter()
}

// OpsHandler 运维接口处理器；各依赖均可为 nil，对应接口返回 503
type OpsHandler struct {
	raw       RawInvoker
	mon       MonitorView
	repo      storage.Repo
	listPorts func() ([]string, error)
	portName  string
	logger    *zap.Logger
}

// OpsOptions OpsHandler 依赖
type OpsOptions struct {
	Raw       RawInvoker
	Monitor   MonitorView
	Repo      storage.Repo
	ListPorts func() ([]string, error)
	PortName  string
	Logger    *zap.Logger
}

// NewOpsHandler 创建运维接口处理器
func NewOpsHandler(o OpsOptions) *OpsHandler {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.ListPorts == nil {
		o.ListPorts = serialport.ListPorts
	}
	return &OpsHandler{
		raw:       o.Raw,
		mon:       o.Monitor,
		repo:      o.Repo,
		listPorts: o.ListPorts,
		portName:  o.PortName,
		logger:    o.Logger,
	}
}

// PortsResponse 串口列表
type PortsResponse struct {
	Ports   []string `json:"ports"`
	Default string   `json:"default"`
	Current string   `json:"current"`
}

// RawResponse 原始帧应答
type RawResponse struct {
	Key        string `json:"key"`
	RequestHex string `json:"request_hex"`
	PayloadHex string `json:"payload_hex"`
	Payload    string `json:"payload"`
}

// FilterRequest 滤波器调整；字段为空表示不修改
type FilterRequest struct {
	Enabled          *bool    `json:"enabled"`
	ProcessNoise     *float64 `json:"process_noise"`
	MeasurementNoise *float64 `json:"measurement_noise"`
	Reset            bool     `json:"reset"`
}

// FilterState 滤波器当前参数
type FilterState struct {
	Enabled          bool    `json:"enabled"`
	ProcessNoise     float64 `json:"process_noise"`
	MeasurementNoise float64 `json:"measurement_noise"`
}

// CmdLogView 命令日志视图，负载以十六进制展示
type CmdLogView struct {
	ID          int64     `json:"id"`
	Command     string    `json:"command"`
	SubCommand  string    `json:"subcommand"`
	RequestHex  string    `json:"request_hex"`
	ResponseHex string    `json:"response_hex"`
	Success     bool      `json:"success"`
	Attempts    int32     `json:"attempts"`
	DurationMs  int32     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CollectRecordView 采集记录视图
type CollectRecordView struct {
	ID        int64           `json:"id"`
	SysID     string          `json:"sys_id"`
	DeviceIdx string          `json:"device_idx"`
	Total     float64         `json:"total"`
	Weights   json.RawMessage `json:"weights,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Ports 列出可用串口
// @Summary 列出可用串口
// @Tags 运维
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse{data=PortsResponse}
// @Router /api/ports [get]
func (h *OpsHandler) Ports(c *gin.Context) {
	ports, err := h.listPorts()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "list ports failed: "+err.Error(), nil)
		return
	}
	respondOK(c, "ok", PortsResponse{Ports: ports, Default: serialport.DefaultPort(ports), Current: h.portName})
}

// RawKeys 列出预构造帧
// @Summary 列出预构造帧名称
// @Tags 运维
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse{data=[]string}
// @Router /api/raw [get]
func (h *OpsHandler) RawKeys(c *gin.Context) {
	keys := ioboard.PrebuiltKeys()
	sort.Strings(keys)
	respondOK(c, "ok", keys)
}

// SendRaw 发送预构造帧（单次尝试）
// @Summary 发送预构造帧
// @Description 按名称发送预构造帧，不重试，返回应答 payload
// @Tags 运维
// @Produce json
// @Security ApiKeyAuth
// @Param key path string true "帧名称，如 ID、IW、DC_OPEN"
// @Success 200 {object} StandardResponse{data=RawResponse}
// @Failure 400 {object} StandardResponse "未知帧名称"
// @Router /api/raw/{key} [post]
func (h *OpsHandler) SendRaw(c *gin.Context) {
	if h.raw == nil {
		respondError(c, http.StatusServiceUnavailable, "dispatcher not available", nil)
		return
	}
	key := c.Param("key")
	payload, err := h.raw.InvokeRaw(c.Request.Context(), key)
	if err != nil {
		respondBoardError(c, err)
		return
	}
	tx, _ := ioboard.Prebuilt(key)
	respondOK(c, "ok", RawResponse{
		Key:        key,
		RequestHex: hex.EncodeToString(tx),
		PayloadHex: hex.EncodeToString(payload),
		Payload:    string(payload),
	})
}

// Monitor 查询轮询快照
// @Summary 查询轮询快照
// @Description 最近一次轮询的门锁状态、原始/滤波读数与熔断器状态；不访问设备
// @Tags 运维
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StandardResponse{data=monitor.Snapshot}
// @Router /api/monitor [get]
func (h *OpsHandler) Monitor(c *gin.Context) {
	if h.mon == nil {
		respondError(c, http.StatusServiceUnavailable, "monitor disabled", nil)
		return
	}
	respondOK(c, "ok", h.mon.Snapshot())
}

// UpdateFilter 调整称重滤波器
// @Summary 调整称重滤波器
// @Tags 运维
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body FilterRequest true "滤波参数"
// @Success 200 {object} StandardResponse{data=FilterState}
// @Router /api/monitor/filter [put]
func (h *OpsHandler) UpdateFilter(c *gin.Context) {
	if h.mon == nil {
		respondError(c, http.StatusServiceUnavailable, "monitor disabled", nil)
		return
	}
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求: "+err.Error(), nil)
		return
	}
	if (req.ProcessNoise != nil && *req.ProcessNoise <= 0) || (req.MeasurementNoise != nil && *req.MeasurementNoise <= 0) {
		respondError(c, http.StatusBadRequest, "noise parameters must be positive", nil)
		return
	}

	bank := h.mon.Filter()
	var q, r float64
	if req.ProcessNoise != nil {
		q = *req.ProcessNoise
	}
	if req.MeasurementNoise != nil {
		r = *req.MeasurementNoise
	}
	bank.SetParams(q, r)
	if req.Enabled != nil {
		bank.SetEnabled(*req.Enabled)
	}
	if req.Reset {
		h.mon.ResetFilter()
	}

	st := FilterState{Enabled: bank.Enabled()}
	if ch := bank.Channel(0); ch != nil {
		st.ProcessNoise, st.MeasurementNoise = ch.Params()
	}
	h.logger.Info("loadcell filter updated",
		zap.Bool("enabled", st.Enabled),
		zap.Float64("process_noise", st.ProcessNoise),
		zap.Float64("measurement_noise", st.MeasurementNoise),
		zap.Bool("reset", req.Reset))
	respondOK(c, "ok", st)
}

// CmdLogs 查询命令审计日志
// @Summary 查询命令审计日志
// @Tags 审计
// @Produce json
// @Security ApiKeyAuth
// @Param subcommand query string false "子命令，如 IW"
// @Param failed query bool false "仅失败"
// @Param since query string false "起始时间 RFC3339"
// @Param limit query int false "条数(默认100，最大1000)"
// @Success 200 {object} StandardResponse{data=[]CmdLogView}
// @Failure 503 {object} StandardResponse "未启用数据库"
// @Router /api/cmdlogs [get]
func (h *OpsHandler) CmdLogs(c *gin.Context) {
	if h.repo == nil {
		respondError(c, http.StatusServiceUnavailable, "database disabled", nil)
		return
	}
	q := storage.CmdLogQuery{
		SubCommand: c.Query("subcommand"),
		OnlyFailed: c.Query("failed") == "true",
		Limit:      queryInt(c, "limit"),
	}
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid since: "+v, nil)
			return
		}
		q.Since = t
	}
	logs, err := h.repo.ListCmdLogs(c.Request.Context(), q)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	out := make([]CmdLogView, 0, len(logs))
	for _, l := range logs {
		out = append(out, cmdLogView(l))
	}
	respondOK(c, "ok", out)
}

// PurgeCmdLogs 清理命令审计日志
// @Summary 清理早于指定时间的审计日志
// @Tags 审计
// @Produce json
// @Security ApiKeyAuth
// @Param before query string true "截止时间 RFC3339"
// @Success 200 {object} StandardResponse
// @Router /api/cmdlogs [delete]
func (h *OpsHandler) PurgeCmdLogs(c *gin.Context) {
	if h.repo == nil {
		respondError(c, http.StatusServiceUnavailable, "database disabled", nil)
		return
	}
	before, err := time.Parse(time.RFC3339, c.Query("before"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "before is required (RFC3339)", nil)
		return
	}
	n, err := h.repo.PurgeCmdLogs(c.Request.Context(), before)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	h.logger.Info("cmd logs purged", zap.Time("before", before), zap.Int64("deleted", n))
	respondOK(c, "ok", gin.H{"deleted": n})
}

// CollectRecords 查询采集记录
// @Summary 查询采集记录
// @Tags 审计
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "条数(默认100，最大1000)"
// @Success 200 {object} StandardResponse{data=[]CollectRecordView}
// @Router /api/collects [get]
func (h *OpsHandler) CollectRecords(c *gin.Context) {
	if h.repo == nil {
		respondError(c, http.StatusServiceUnavailable, "database disabled", nil)
		return
	}
	recs, err := h.repo.ListCollectRecords(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	out := make([]CollectRecordView, 0, len(recs))
	for _, r := range recs {
		out = append(out, collectRecordView(r))
	}
	respondOK(c, "ok", out)
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

func cmdLogView(l models.CmdLog) CmdLogView {
	v := CmdLogView{
		ID:          l.ID,
		Command:     l.Command,
		SubCommand:  l.SubCommand,
		RequestHex:  hex.EncodeToString(l.Request),
		ResponseHex: hex.EncodeToString(l.Response),
		Success:     l.Success,
		Attempts:    l.Attempts,
		DurationMs:  l.DurationMs,
		CreatedAt:   l.CreatedAt,
	}
	if l.Error != nil {
		v.Error = *l.Error
	}
	return v
}

func collectRecordView(r models.CollectRecord) CollectRecordView {
	v := CollectRecordView{
		ID:        r.ID,
		SysID:     r.SysID,
		DeviceIdx: r.DeviceIdx,
		Total:     r.Total,
		CreatedAt: r.CreatedAt,
	}
	if json.Valid(r.Weights) {
		v.Weights = r.Weights
	}
	return v
}
