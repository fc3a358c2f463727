package ioboard

import (
	"errors"
	"fmt"

	"github.com/taoyao-code/io-board/internal/boarderr"
)

var (
	ErrFrameTooShort     = errors.New("frame too short")
	ErrBadStart          = errors.New("bad start byte")
	ErrEtxNotFound       = errors.New("etx not found")
	ErrChecksumMismatch  = errors.New("checksum mismatch")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrUnknownSubcommand = errors.New("unknown subcommand")
)

// Checksum LRC：data 中所有字节异或。调用方传入 cmd[0]..ETX 区间，不含 STX
func Checksum(data []byte) byte {
	var lrc byte
	for _, b := range data {
		lrc ^= b
	}
	return lrc
}

// Encode 构造一帧下行数据（含 LRC）
func Encode(f Frame) []byte {
	buf := make([]byte, 0, MinFrameLen+len(f.Payload))
	cmd := f.Command.Code()
	sub := f.SubCommand.Code()
	buf = append(buf, STX)
	buf = append(buf, cmd[:]...)
	buf = append(buf, sub[:]...)
	buf = append(buf, f.Payload...)
	buf = append(buf, ETX)
	buf = append(buf, Checksum(buf[1:]))
	return buf
}

// Build 便捷构造
func Build(cmd Command, sub SubCommand, payload []byte) []byte {
	return Encode(Frame{Command: cmd, SubCommand: sub, Payload: payload})
}

// Decode 解析一帧上行数据
// 设备固件 LRC 不可靠，validateChecksum=false 时不检查末字节。
// ETX 先按 len-2 定位，失败再从尾部向前查找（payload 中可能出现 0x03）。
// 返回的 payload 与 raw 共享底层数组。
func Decode(raw []byte, validateChecksum bool) (Frame, []byte, error) {
	if len(raw) < MinFrameLen {
		return Frame{}, nil, frameErr(fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(raw)))
	}
	if raw[0] != STX {
		return Frame{}, nil, frameErr(fmt.Errorf("%w: 0x%02X", ErrBadStart, raw[0]))
	}

	etxPos := findETX(raw)
	if etxPos < 0 {
		return Frame{}, nil, frameErr(ErrEtxNotFound)
	}

	if validateChecksum {
		want := Checksum(raw[1 : etxPos+1])
		got := raw[etxPos+1]
		if want != got {
			return Frame{}, nil, boarderr.Wrap(boarderr.KindChecksum, "decode",
				fmt.Errorf("%w: want 0x%02X got 0x%02X", ErrChecksumMismatch, want, got))
		}
	}

	cmd := ParseCommand(raw[1:3])
	if cmd == CommandUnknown {
		return Frame{}, nil, frameErr(fmt.Errorf("%w: %q", ErrUnknownCommand, raw[1:3]))
	}
	sub := ParseSubCommand(raw[3:5])
	if sub == SubUnknown {
		return Frame{}, nil, frameErr(fmt.Errorf("%w: %q", ErrUnknownSubcommand, raw[3:5]))
	}

	payload := raw[headerLen:etxPos]
	return Frame{Command: cmd, SubCommand: sub, Payload: payload}, payload, nil
}

// findETX 返回 ETX 下标；未找到返回 -1
func findETX(raw []byte) int {
	pos := len(raw) - 2
	if raw[pos] == ETX {
		return pos
	}
	for i := pos - 1; i >= headerLen; i-- {
		if raw[i] == ETX {
			return i
		}
	}
	return -1
}

func frameErr(err error) error {
	return boarderr.Wrap(boarderr.KindFrame, "decode", err)
}
