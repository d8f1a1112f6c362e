package cadence

import (
	"errors"
	"time"
)

// Report 引擎停止时产出的最终统计报告
type Report struct {
	Stats
	EngineID  string    `json:"engine_id"`
	Period    Period    `json:"period"`
	StoppedAt time.Time `json:"stopped_at"`
}

// Reporter 接收最终统计报告的输出端
//
// 具体的展示格式由实现决定，引擎只保证报告中的数值字段。
type Reporter interface {
	Report(r Report) error
}

// ReporterFunc 函数形式的 Reporter
type ReporterFunc func(r Report) error

// Report 实现 Reporter
func (f ReporterFunc) Report(r Report) error {
	return f(r)
}

// LogReporter 将报告以一行日志的形式输出
type LogReporter struct {
	logger Logger
}

// NewLogReporter 创建日志输出端，logger 为 nil 时使用默认日志
func NewLogReporter(logger Logger) *LogReporter {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &LogReporter{logger: logger}
}

// Report 实现 Reporter
func (l *LogReporter) Report(r Report) error {
	l.logger.Infof("engine %s stats: period=%s samples=%d mean_error=%.6f mean_compensation=%.6f max_error=%.6f min_error=%.6f tolerance_exceeded=%d unit=%s",
		r.EngineID, r.Period, r.Samples, r.MeanError, r.MeanCompensation, r.MaxError, r.MinError, r.ToleranceExceeded, r.Unit)
	return nil
}

// MultiReporter 依次把报告交给多个输出端，汇总所有错误
type MultiReporter []Reporter

// Report 实现 Reporter
func (m MultiReporter) Report(r Report) error {
	var errs []error
	for _, rep := range m {
		if rep == nil {
			continue
		}
		if err := rep.Report(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
