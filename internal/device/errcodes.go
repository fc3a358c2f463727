package device

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrorCodes 设备错误码 -> 说明
type ErrorCodes struct {
	Codes map[string]string `yaml:"codes"`
}

// DefaultErrorCodes 内置错误码表
func DefaultErrorCodes() *ErrorCodes {
	return &ErrorCodes{
		Codes: map[string]string{
			"0000": "无错误",
		},
	}
}

// LoadErrorCodes 从 YAML 文件加载错误码表
func LoadErrorCodes(path string) (*ErrorCodes, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read error codes: %w", err)
	}
	var c ErrorCodes
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal error codes: %w", err)
	}
	if c.Codes == nil {
		c.Codes = make(map[string]string)
	}
	return &c, nil
}

// Describe 查询错误码说明
func (c *ErrorCodes) Describe(code string) (string, bool) {
	if c == nil || c.Codes == nil || code == "" {
		return "", false
	}
	v, ok := c.Codes[code]
	return v, ok
}
