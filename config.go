package zrtos

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/evan-idocoding/zrtos/rt/tick"
)

// ErrInvalidConfig is returned by Config.Validate and the config loaders.
var ErrInvalidConfig = errors.New("zrtos: invalid config")

// Config is the runtime configuration. The zero value is not valid; start from DefaultConfig.
type Config struct {
	// TickPeriod is the clock period. Fixed for the lifetime of a Runtime.
	TickPeriod time.Duration `yaml:"tick_period"`
	// ShutdownGrace is how many ticks Shutdown waits for the clock driver to exit.
	ShutdownGrace tick.Span `yaml:"shutdown_grace_ticks"`
	// MaxTasks bounds live (not yet deleted) tasks. 0 means unlimited.
	MaxTasks int64 `yaml:"max_tasks"`

	// LogLevel and LogFormat are applied by ApplyLogging, not by New.
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// OpsAddr is the listen address of the ops HTTP surface. Empty disables it.
	OpsAddr string `yaml:"ops_addr"`
	// OpsTokens, when set, are required (X-Ops-Token header) by the ops write routes.
	OpsTokens []string `yaml:"ops_tokens,omitempty"`
	// OpsAllowIPs, when set, restricts the ops write routes to these IPs or CIDRs.
	OpsAllowIPs []string `yaml:"ops_allow_ips,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		TickPeriod:    tick.DefaultPeriod,
		ShutdownGrace: tick.DefaultShutdownGrace,
		LogLevel:      "info",
		LogFormat:     LogFormatText,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.TickPeriod <= 0 {
		return fmt.Errorf("%w: tick_period must be > 0 (got %s)", ErrInvalidConfig, c.TickPeriod)
	}
	if c.ShutdownGrace == tick.Infinite {
		return fmt.Errorf("%w: shutdown_grace_ticks must be finite", ErrInvalidConfig)
	}
	if c.MaxTasks < 0 {
		return fmt.Errorf("%w: max_tasks must be >= 0 (got %d)", ErrInvalidConfig, c.MaxTasks)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
		}
	}
	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log_format must be %q or %q (got %q)", ErrInvalidConfig, LogFormatText, LogFormatJSON, c.LogFormat)
	}
	for _, s := range c.OpsAllowIPs {
		s = strings.TrimSpace(s)
		if _, _, err := net.ParseCIDR(s); err == nil {
			continue
		}
		if net.ParseIP(s) == nil {
			return fmt.Errorf("%w: ops_allow_ips: %q is not an IP or CIDR", ErrInvalidConfig, s)
		}
	}
	return nil
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
//
// Unknown keys are rejected. Empty input yields DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("zrtos: read config: %w", err)
	}
	c, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
