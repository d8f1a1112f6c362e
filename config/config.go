// Package config 从 YAML 文件加载引擎配置，并支持在文件变化时热更新周期。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	yaml "go.yaml.in/yaml/v3"

	"github.com/darkit/cadence"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrConflictingPeriod 同时配置了 period 和 rate
var ErrConflictingPeriod = errors.New("config: period and rate are mutually exclusive")

// Config 引擎配置
//
// 周期可以写成表达式（period: "250 ms"），也可以拆成 rate + unit。
// rate 为 0 表示禁用。
type Config struct {
	Period     string    `yaml:"period"`
	Rate       uint64    `yaml:"rate"`
	Unit       string    `yaml:"unit"`
	Statistics *bool     `yaml:"statistics"`
	ReportUnit string    `yaml:"report_unit"`
	Immediate  *bool     `yaml:"immediate"` // 热更新时是否立即重启，默认 true
	Log        LogConfig `yaml:"log"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`  // trace/debug/info/warn/error，默认 info
	Format string `yaml:"format"` // console 或 json，默认 console
}

// Load 读取并解析配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse 解析 YAML 配置，未知字段视为错误
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("config: empty document")
		}
		return nil, fmt.Errorf("config: yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if _, err := c.PeriodValue(); err != nil {
		return err
	}
	if c.ReportUnit != "" {
		if _, err := cadence.ParseUnit(c.ReportUnit); err != nil {
			return fmt.Errorf("config: report_unit: %w", err)
		}
	}
	if _, err := c.Log.Logger(io.Discard); err != nil {
		return err
	}
	return nil
}

// PeriodValue 返回配置的目标周期，unit 缺省为毫秒
func (c *Config) PeriodValue() (cadence.Period, error) {
	if c.Period != "" {
		if c.Rate != 0 || c.Unit != "" {
			return cadence.Period{}, ErrConflictingPeriod
		}
		p, err := cadence.ParsePeriod(c.Period)
		if err != nil {
			return cadence.Period{}, fmt.Errorf("config: period: %w", err)
		}
		return p, nil
	}

	unit := cadence.Millisecond
	if c.Unit != "" {
		u, err := cadence.ParseUnit(c.Unit)
		if err != nil {
			return cadence.Period{}, fmt.Errorf("config: unit: %w", err)
		}
		unit = u
	}
	return cadence.Period{Rate: c.Rate, Unit: unit}, nil
}

// ImmediateReload 热更新时是否立即重启
func (c *Config) ImmediateReload() bool {
	return c.Immediate == nil || *c.Immediate
}

// Options 将配置转换为引擎选项，日志写入 w
func (c *Config) Options(w io.Writer) ([]cadence.Option, error) {
	zl, err := c.Log.Logger(w)
	if err != nil {
		return nil, err
	}

	opts := []cadence.Option{cadence.WithLogger(cadence.NewZerologLogger(zl))}
	if c.Statistics != nil {
		opts = append(opts, cadence.WithStatistics(*c.Statistics))
	}
	if c.ReportUnit != "" {
		unit, err := cadence.ParseUnit(c.ReportUnit)
		if err != nil {
			return nil, fmt.Errorf("config: report_unit: %w", err)
		}
		opts = append(opts, cadence.WithReportUnit(unit))
	}
	return opts, nil
}

// New 按配置创建并启动引擎，额外的选项在配置之后应用
func (c *Config) New(action cadence.Action, w io.Writer, extra ...cadence.Option) (*cadence.Engine, error) {
	p, err := c.PeriodValue()
	if err != nil {
		return nil, err
	}
	opts, err := c.Options(w)
	if err != nil {
		return nil, err
	}
	return cadence.New(p.Rate, p.Unit, action, append(opts, extra...)...), nil
}

// Logger 根据日志配置创建 zerolog.Logger
func (l LogConfig) Logger(w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if l.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(l.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("config: log.level: %w", err)
		}
		level = parsed
	}

	var out io.Writer
	switch strings.ToLower(l.Format) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat, NoColor: true}
	case "json":
		out = w
	default:
		return zerolog.Nop(), fmt.Errorf("config: log.format %q: want console or json", l.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// Apply 把配置中的周期应用到引擎，周期未变化时不做任何事
func Apply(e *cadence.Engine, cfg *Config) error {
	p, err := cfg.PeriodValue()
	if err != nil {
		return err
	}
	if p == e.Period() {
		return nil
	}
	e.SetRate(p.Rate, p.Unit, cfg.ImmediateReload())
	return nil
}
