package cadence

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"
)

// Logger 定义日志接口
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger 默认日志实现，使用log/slog
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger 创建默认日志实现
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		logger: slog.Default(),
	}
}

// NewSlogLogger 使用指定的 slog.Logger 创建日志实现
func NewSlogLogger(logger *slog.Logger) *DefaultLogger {
	return &DefaultLogger{logger: logger}
}

// Debugf 输出调试日志
func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(fmt.Sprintf(format, args...))
	}
}

// Infof 输出信息日志
func (l *DefaultLogger) Infof(format string, args ...any) {
	if l.logger != nil {
		l.logger.Info(fmt.Sprintf(format, args...))
	}
}

// Warnf 输出警告日志
func (l *DefaultLogger) Warnf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(fmt.Sprintf(format, args...))
	}
}

// Errorf 输出错误日志
func (l *DefaultLogger) Errorf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Error(fmt.Sprintf(format, args...))
	}
}

// ZerologLogger 基于 zerolog 的日志实现
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger 包装一个 zerolog.Logger
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// Zerolog 返回底层的 zerolog.Logger
func (l *ZerologLogger) Zerolog() zerolog.Logger {
	return l.logger
}

func (l *ZerologLogger) Debugf(format string, args ...any) { l.logger.Debug().Msgf(format, args...) }
func (l *ZerologLogger) Infof(format string, args ...any)  { l.logger.Info().Msgf(format, args...) }
func (l *ZerologLogger) Warnf(format string, args ...any)  { l.logger.Warn().Msgf(format, args...) }
func (l *ZerologLogger) Errorf(format string, args ...any) { l.logger.Error().Msgf(format, args...) }

// NoOpLogger 空日志实现，不输出任何内容
type NoOpLogger struct{}

// Debugf 空实现
func (l *NoOpLogger) Debugf(format string, args ...any) {}

// Infof 空实现
func (l *NoOpLogger) Infof(format string, args ...any) {}

// Warnf 空实现
func (l *NoOpLogger) Warnf(format string, args ...any) {}

// Errorf 空实现
func (l *NoOpLogger) Errorf(format string, args ...any) {}
