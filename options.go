package cadence

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// defaultOverrunLogInterval 超时告警日志的最小间隔
const defaultOverrunLogInterval = time.Second

// Option 定义创建选项
type Option func(*Engine)

// WithLogger 设置自定义日志接口
func WithLogger(logger Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = &NoOpLogger{}
		}
		e.logger = logger
	}
}

// WithContext 设置引擎的根上下文，用于生命周期管理
// 当上下文被取消时，引擎自动停止并输出统计报告，相当于离开作用域时的析构
func WithContext(ctx context.Context) Option {
	return func(e *Engine) {
		if ctx == nil {
			if e.logger != nil {
				e.logger.Warnf("WithContext received nil context, using Background")
			}
			ctx = context.Background()
		}
		e.rootContext = ctx
	}
}

// WithStatistics 设置是否收集统计并在停止时输出报告，默认开启
func WithStatistics(enabled bool) Option {
	return func(e *Engine) {
		e.statistics = enabled
	}
}

// WithReportUnit 设置报告中时长字段的换算单位，默认毫秒
func WithReportUnit(unit Unit) Option {
	return func(e *Engine) {
		if unit.Valid() {
			e.reportUnit = unit
		}
	}
}

// WithReporter 设置统计报告的输出端，默认输出到日志
func WithReporter(reporter Reporter) Option {
	return func(e *Engine) {
		e.reporter = reporter
	}
}

// WithPanicHandler 设置动作 panic 时的处理器
func WithPanicHandler(handler PanicHandler) Option {
	return func(e *Engine) {
		e.panicHandler = handler
	}
}

// WithID 设置引擎标识，默认随机生成 UUID
func WithID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.id = id
		}
	}
}

// WithOverrunLogRate 设置超时告警日志的最小间隔
// 参数：
//   - every: 0 表示每次超时都记录，负数表示关闭告警
func WithOverrunLogRate(every time.Duration) Option {
	return func(e *Engine) {
		e.overrunLimiter = newOverrunLimiter(every)
	}
}

func newOverrunLimiter(every time.Duration) *rate.Limiter {
	switch {
	case every < 0:
		return rate.NewLimiter(0, 0)
	case every == 0:
		return rate.NewLimiter(rate.Inf, 1)
	default:
		return rate.NewLimiter(rate.Every(every), 1)
	}
}
