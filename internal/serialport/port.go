package serialport

import (
	"fmt"
	"runtime"
	"time"

	"go.bug.st/serial"
)

// 线路参数固定：38400 baud, 8N1
const (
	BaudRate = 38400
	DataBits = 8
)

// Port 通道所需的最小串口能力，go.bug.st/serial.Port 满足该接口；测试中可替换
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Drain() error
	ResetInputBuffer() error
	ResetOutputBuffer() error
	SetReadTimeout(t time.Duration) error
	Close() error
}

// Opener 打开指定端口
type Opener func(name string) (Port, error)

// Mode 固定线路参数
func Mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: BaudRate,
		DataBits: DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial 使用 go.bug.st/serial 打开真实串口
func OpenSerial(name string) (Port, error) {
	p, err := serial.Open(name, Mode())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return p, nil
}

// ListPorts 枚举系统可用串口名称
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

// DefaultPort 选择默认端口：
// Windows 取第一个；其它平台优先 /dev/ttyUSB0、/dev/ttyTHS0，否则取第一个
func DefaultPort(ports []string) string {
	if len(ports) == 0 {
		return ""
	}
	if runtime.GOOS == "windows" {
		return ports[0]
	}
	for _, preferred := range []string{"/dev/ttyUSB0", "/dev/ttyTHS0"} {
		for _, p := range ports {
			if p == preferred {
				return p
			}
		}
	}
	return ports[0]
}
