package ioboard

// Frame IO 板帧结构
// 布局：STX(0x02) | cmd[2] ASCII | subcmd[2] ASCII | payload[..] | ETX(0x03) | LRC[1]
// LRC = cmd[0] 至 ETX（含）所有字节异或，不含 STX
type Frame struct {
	Command    Command
	SubCommand SubCommand
	Payload    []byte
}

const (
	STX byte = 0x02
	ETX byte = 0x03

	// MinFrameLen STX + cmd(2) + subcmd(2) + ETX + LRC
	MinFrameLen = 7
	// headerLen STX + cmd(2) + subcmd(2)，payload 起始偏移
	headerLen = 5
)

// Command 命令类别（封闭集合）
type Command uint8

const (
	CommandUnknown Command = iota
	CommandMC              // Machine Control，控制类（有副作用）
	CommandRQ              // Request，查询类（只读）
)

var commandCodes = map[Command][2]byte{
	CommandMC: {'M', 'C'},
	CommandRQ: {'R', 'Q'},
}

// Code 返回两字节 ASCII 码；未知命令返回零值
func (c Command) Code() [2]byte { return commandCodes[c] }

func (c Command) Valid() bool {
	_, ok := commandCodes[c]
	return ok
}

func (c Command) String() string {
	if !c.Valid() {
		return "UNKNOWN"
	}
	code := c.Code()
	return string(code[:])
}

// ParseCommand 按两字节 ASCII 码查找命令
func ParseCommand(b []byte) Command {
	if len(b) != 2 {
		return CommandUnknown
	}
	for c, code := range commandCodes {
		if code[0] == b[0] && code[1] == b[1] {
			return c
		}
	}
	return CommandUnknown
}

// SubCommand 子命令（封闭集合）
type SubCommand uint8

const (
	SubUnknown SubCommand = iota
	SubDC                 // Door Control 门锁控制
	SubID                 // Input Door status 门/锁状态查询
	SubIW                 // Input Weight 称重查询
	SubLZ                 // Load Zero 称重清零
	SubMI                 // Machine Info 设备信息查询
	SubER                 // Error history 故障记录查询
	SubEZ                 // Error Zero 故障记录清除
	SubWP                 // Write Production number 写生产编号
	SubPD                 // Production Default 恢复出厂
	SubRT                 // Reset 系统复位
)

var subCommandCodes = map[SubCommand][2]byte{
	SubDC: {'D', 'C'},
	SubID: {'I', 'D'},
	SubIW: {'I', 'W'},
	SubLZ: {'L', 'Z'},
	SubMI: {'M', 'I'},
	SubER: {'E', 'R'},
	SubEZ: {'E', 'Z'},
	SubWP: {'W', 'P'},
	SubPD: {'P', 'D'},
	SubRT: {'R', 'T'},
}

func (s SubCommand) Code() [2]byte { return subCommandCodes[s] }

func (s SubCommand) Valid() bool {
	_, ok := subCommandCodes[s]
	return ok
}

func (s SubCommand) String() string {
	if !s.Valid() {
		return "UNKNOWN"
	}
	code := s.Code()
	return string(code[:])
}

// ParseSubCommand 按两字节 ASCII 码查找子命令
func ParseSubCommand(b []byte) SubCommand {
	if len(b) != 2 {
		return SubUnknown
	}
	for s, code := range subCommandCodes {
		if code[0] == b[0] && code[1] == b[1] {
			return s
		}
	}
	return SubUnknown
}
