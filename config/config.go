// Package config 加载服务配置：默认值 → YAML 文件 → ROVERNET_ 环境变量。
// 命令行参数由入口在 Load 之后覆盖。
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "ROVERNET_"

// Config 完整配置
type Config struct {
	Settings `yaml:",inline"`

	// 启动时生成的实体（环境变量不覆盖）
	Spawn []SpawnSpec `yaml:"spawn"`
}

// Settings 可被环境变量覆盖的部分
type Settings struct {
	Addr         string `yaml:"addr" env:"ADDR"`
	TickRateHz   int    `yaml:"tick_rate_hz" env:"TICK_RATE_HZ"`
	AcceptLegacy bool   `yaml:"accept_legacy" env:"ACCEPT_LEGACY"`
	DBPath       string `yaml:"db_path" env:"DB_PATH"`
	JournalDir   string `yaml:"journal_dir" env:"JOURNAL_DIR"`

	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Outbound OutboundConfig `yaml:"outbound" envPrefix:"OUTBOUND_"`
	Agent    AgentConfig    `yaml:"agent" envPrefix:"AGENT_"`
}

type LogConfig struct {
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
	Stderr     bool   `yaml:"stderr" env:"STDERR"`
}

// OutboundConfig 状态消息的编码约定（与指挥方约定的外部契约）
type OutboundConfig struct {
	Delimiter string `yaml:"delimiter" env:"DELIMITER"`
	SwapYZ    bool   `yaml:"swap_yz" env:"SWAP_YZ"`
}

type AgentConfig struct {
	Speed            float64 `yaml:"speed" env:"SPEED"`
	ArrivalTolerance float64 `yaml:"arrival_tolerance" env:"ARRIVAL_TOLERANCE"`
	Cameras          int     `yaml:"cameras" env:"CAMERAS"`
	FOV              float64 `yaml:"fov" env:"FOV"`
}

// SpawnSpec 一个待生成的实体
type SpawnSpec struct {
	Name     string     `yaml:"name" json:"name"`
	Owner    string     `yaml:"owner" json:"owner"`
	Position [3]float64 `yaml:"position" json:"position"`
}

// Default 默认配置
func Default() Config {
	return Config{Settings: Settings{
		Addr:         ":8080",
		TickRateHz:   20,
		AcceptLegacy: true,
		DBPath:       "data/rovernet.db",
		JournalDir:   "data/journal",
		Log: LogConfig{
			File:       "app.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Outbound: OutboundConfig{Delimiter: ",", SwapYZ: true},
		Agent: AgentConfig{
			Speed:            1,
			ArrivalTolerance: 0.05,
			Cameras:          2,
			FOV:              75,
		},
	}}
}

// Load path 为空时只使用默认值与环境变量
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg.Settings); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv 从 ROVERNET_ 前缀的环境变量覆盖字段
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate 检查取值范围
func (c Config) Validate() error {
	var errs []error
	if c.TickRateHz <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate_hz must be > 0, got %d", c.TickRateHz))
	}
	if c.Agent.Speed <= 0 {
		errs = append(errs, fmt.Errorf("agent.speed must be > 0, got %v", c.Agent.Speed))
	}
	if c.Agent.ArrivalTolerance <= 0 {
		errs = append(errs, fmt.Errorf("agent.arrival_tolerance must be > 0, got %v", c.Agent.ArrivalTolerance))
	}
	if c.Agent.Cameras < 0 {
		errs = append(errs, fmt.Errorf("agent.cameras must be >= 0, got %d", c.Agent.Cameras))
	}
	if c.Outbound.Delimiter == "" {
		errs = append(errs, errors.New("outbound.delimiter must not be empty"))
	}
	for i, s := range c.Spawn {
		if s.Name == "" || s.Owner == "" {
			errs = append(errs, fmt.Errorf("spawn[%d]: name and owner are required", i))
		}
	}
	return errors.Join(errs...)
}
