package messaging

import "strings"

// 相对主题
const (
	TopicRebootCmd      = "cmd/reboot"
	TopicRebootAck      = "ack/reboot"
	TopicHealth         = "health"
	TopicDoorManualCmd  = "cmd/door/manual"
	TopicDoorManualAck  = "ack/door/manual"
	TopicDoorCollectCmd = "cmd/door/collect"
	TopicDoorCollectAck = "ack/door/collect"
	TopicCollectCmd     = "cmd/collect"
	TopicCollectAck     = "ack/collect"
)

// BaseTopic chai/device/{idx}
func BaseTopic(deviceIdx string) string {
	return "chai/device/" + deviceIdx
}

// FullTopic 拼接完整主题
func FullTopic(deviceIdx, rel string) string {
	return BaseTopic(deviceIdx) + "/" + rel
}

// SubscribeTopics 订阅主题，按接口 ID
func SubscribeTopics(deviceIdx string) map[string]string {
	return map[string]string{
		IFReboot:         FullTopic(deviceIdx, TopicRebootCmd),
		IFDoorManual:     FullTopic(deviceIdx, TopicDoorManualCmd),
		IFDoorCollect:    FullTopic(deviceIdx, TopicDoorCollectCmd),
		IFCollectProcess: FullTopic(deviceIdx, TopicCollectCmd),
	}
}

// PublishTopics 发布主题，按接口 ID
func PublishTopics(deviceIdx string) map[string]string {
	return map[string]string{
		IFReboot:         FullTopic(deviceIdx, TopicRebootAck),
		IFHealth:         FullTopic(deviceIdx, TopicHealth),
		IFDoorManual:     FullTopic(deviceIdx, TopicDoorManualAck),
		IFDoorCollect:    FullTopic(deviceIdx, TopicDoorCollectAck),
		IFCollectProcess: FullTopic(deviceIdx, TopicCollectAck),
	}
}

// AckTopicFor 命令主题对应的应答主题；非命令主题返回 false
func AckTopicFor(cmdTopic string) (string, bool) {
	base, rel, ok := strings.Cut(cmdTopic, "/cmd/")
	if !ok || rel == "" {
		return "", false
	}
	return base + "/ack/" + rel, true
}
