package app

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// GenerateInstanceID 生成进程实例ID
// 优先使用环境变量 IOBOARD_INSTANCE_ID，否则生成 io-board-{hostname}-{uuid前8位}
func GenerateInstanceID() string {
	if id := os.Getenv("IOBOARD_INSTANCE_ID"); id != "" {
		return id
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	shortUUID := uuid.New().String()[:8]
	return fmt.Sprintf("io-board-%s-%s", hostname, shortUUID)
}
