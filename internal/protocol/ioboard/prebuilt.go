package ioboard

// 常用无变长数据的下行帧，启动时一次性构造
var prebuilt = map[string][]byte{
	"DC_OPEN":  Build(CommandMC, SubDC, []byte{'O'}),
	"DC_CLOSE": Build(CommandMC, SubDC, []byte{'C'}),
	"ID":       Build(CommandRQ, SubID, nil),
	"IW":       Build(CommandRQ, SubIW, nil),
	"LZ":       Build(CommandMC, SubLZ, nil),
	"MI":       Build(CommandRQ, SubMI, nil),
	"ER":       Build(CommandRQ, SubER, nil),
	"EZ":       Build(CommandMC, SubEZ, nil),
	"PD":       Build(CommandMC, SubPD, nil),
	"RT":       Build(CommandMC, SubRT, nil),
}

// Prebuilt 按名称返回预构造帧的副本
func Prebuilt(key string) ([]byte, bool) {
	f, ok := prebuilt[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(f))
	copy(out, f)
	return out, true
}

// PrebuiltKeys 预构造帧名称列表
func PrebuiltKeys() []string {
	keys := make([]string, 0, len(prebuilt))
	for k := range prebuilt {
		keys = append(keys, k)
	}
	return keys
}
