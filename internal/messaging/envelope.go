// Package messaging 命令信封接口：接收 JSON 命令信封，转为门锁/称重/系统调用，
// 并生成应答信封与周期健康信封。传输层见 Bus（Redis pub/sub）。
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// 接口 ID
const (
	IFReboot         = "IF_01"
	IFHealth         = "IF_02"
	IFDoorManual     = "IF_03"
	IFDoorCollect    = "IF_04"
	IFCollectProcess = "IF_06"
)

// 结果码
const (
	ResultSuccess = "0000"
	ResultFailure = "9999"
)

// 设备状态码
const (
	StatusNormal       = "0"
	StatusError        = "1"
	StatusNotInstalled = "9"
)

// 门动作与采集阶段
const (
	DoorOpen     = "OPEN"
	DoorClose    = "CLOSE"
	CollectStart = "START"
	CollectEnd   = "END"
)

// DefaultHost 默认 IF_HOST
const DefaultHost = "CRKPNTCHAI"

// dateLayout yyyyMMddHHmmss
const dateLayout = "20060102150405"

// Header 信封头
type Header struct {
	IFID    string `json:"IF_ID"`
	IFSysID string `json:"IF_SYSID"`
	IFHost  string `json:"IF_HOST"`
	IFDate  string `json:"IF_DATE"`
}

// Envelope 出站信封
type Envelope struct {
	Header Header `json:"HEADER"`
	Data   any    `json:"DATA"`
}

// inbound 入站信封，DATA 延迟解析
type inbound struct {
	Header Header          `json:"HEADER"`
	Data   json.RawMessage `json:"DATA"`
}

// CommandData 入站 DATA 中会用到的字段
type CommandData struct {
	DeviceIdx    string `json:"device_idx"`
	DivisionIdx  string `json:"division_idx"`
	DoorState    string `json:"door_state"`
	CollectState string `json:"collect_state"`
}

// Result 应答 DATA 的公共部分
type Result struct {
	DeviceIdx   string `json:"device_idx"`
	DivisionIdx string `json:"division_idx"`
	ResultCd    string `json:"result_cd"`
	ResultMsg   string `json:"result_msg"`
}

// DoorManualAck IF_03 应答
type DoorManualAck struct {
	Result
	DoorState string `json:"door_state"`
}

// DoorCollectAck IF_04 应答
type DoorCollectAck struct {
	Result
	DoorState      string `json:"door_state"`
	CameraStatus   string `json:"camera_status"`
	DeadboltStatus string `json:"deadbolt_status"`
	LoadcellStatus string `json:"loadcell_status"`
}

// CollectAck IF_06 应答；END 阶段附带称重结果
type CollectAck struct {
	Result
	CollectState   string             `json:"collect_state"`
	TotalWeight    *float64           `json:"total_weight,omitempty"`
	ChannelWeights map[string]float64 `json:"channel_weights,omitempty"`
}

// HealthData IF_02 健康信封
type HealthData struct {
	DeviceIdx          string `json:"device_idx"`
	DivisionIdx        string `json:"division_idx"`
	CameraStatus       string `json:"camera_status"`
	DeadboltStatus     string `json:"deadbolt_status"`
	LoadcellStatus     string `json:"loadcell_status"`
	CardTerminalStatus string `json:"card_terminal_status"`
}

// NewSysID 生成 IF_SYSID
func NewSysID() string { return uuid.NewString() }

// NewEnvelope 构造出站信封；sysID 为空时生成新的
func NewEnvelope(ifID, sysID, host string, now time.Time, data any) Envelope {
	if sysID == "" {
		sysID = NewSysID()
	}
	if host == "" {
		host = DefaultHost
	}
	return Envelope{
		Header: Header{IFID: ifID, IFSysID: sysID, IFHost: host, IFDate: now.Format(dateLayout)},
		Data:   data,
	}
}

// parseInbound 解析入站信封
func parseInbound(raw []byte) (inbound, CommandData, error) {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, CommandData{}, fmt.Errorf("parse envelope: %w", err)
	}
	var data CommandData
	if len(in.Data) > 0 && string(in.Data) != "null" {
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return in, CommandData{}, fmt.Errorf("parse envelope data: %w", err)
		}
	}
	return in, data, nil
}
