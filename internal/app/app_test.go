package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	cfgpkg "github.com/taoyao-code/io-board/internal/config"
)

func TestResolvePort(t *testing.T) {
	list := func(ports ...string) func() ([]string, error) {
		return func() ([]string, error) { return ports, nil }
	}

	got, err := ResolvePort(cfgpkg.SerialConfig{Port: "/dev/ttyS3"}, list("/dev/ttyUSB0"))
	if err != nil || got != "/dev/ttyS3" {
		t.Errorf("configured port: got %q, %v", got, err)
	}

	if _, err := ResolvePort(cfgpkg.SerialConfig{}, list()); err == nil {
		t.Error("expected error when no port is available")
	}

	failing := func() ([]string, error) { return nil, errors.New("permission denied") }
	if _, err := ResolvePort(cfgpkg.SerialConfig{}, failing); err == nil {
		t.Error("expected list error to propagate")
	}
}

func TestDispatchConfig(t *testing.T) {
	cfg := cfgpkg.SerialConfig{Timeout: 2 * time.Second, RetryCount: 5, RetryDelay: 50 * time.Millisecond, ValidateChecksum: true}
	dc := DispatchConfig(cfg)
	if dc.Timeout != cfg.Timeout || dc.RetryCount != 5 || dc.RetryDelay != cfg.RetryDelay || !dc.ValidateChecksum {
		t.Errorf("unexpected dispatch config: %+v", dc)
	}
}

func TestGenerateInstanceID(t *testing.T) {
	t.Setenv("IOBOARD_INSTANCE_ID", "cabinet-7")
	if got := GenerateInstanceID(); got != "cabinet-7" {
		t.Errorf("env override: got %q", got)
	}

	t.Setenv("IOBOARD_INSTANCE_ID", "")
	if got := GenerateInstanceID(); !strings.HasPrefix(got, "io-board-") {
		t.Errorf("generated id %q lacks prefix", got)
	}
}
