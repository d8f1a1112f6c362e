package cadence

import (
	"fmt"
	"runtime/debug"
)

// PanicHandler 定义panic处理器接口
type PanicHandler interface {
	HandlePanic(engineID string, panicValue any, stack []byte)
}

// PanicHandlerFunc 函数形式的 PanicHandler
type PanicHandlerFunc func(engineID string, panicValue any, stack []byte)

// HandlePanic 实现 PanicHandler
func (f PanicHandlerFunc) HandlePanic(engineID string, panicValue any, stack []byte) {
	f(engineID, panicValue, stack)
}

// DefaultPanicHandler 默认的panic处理器
type DefaultPanicHandler struct {
	logger Logger
}

// NewDefaultPanicHandler 创建默认panic处理器
func NewDefaultPanicHandler(logger Logger) *DefaultPanicHandler {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &DefaultPanicHandler{logger: logger}
}

// HandlePanic 默认的panic处理实现
func (h *DefaultPanicHandler) HandlePanic(engineID string, panicValue any, stack []byte) {
	if h.logger != nil {
		h.logger.Errorf("PANIC in action of engine %s: %v\nStack trace:\n%s", engineID, panicValue, stack)
	}
}

// ActionPanicError 动作 panic 导致执行协程终止时记录的错误
type ActionPanicError struct {
	EngineID string
	Value    any
	Stack    []byte
}

func (e *ActionPanicError) Error() string {
	return fmt.Sprintf("engine %s: action panicked: %v", e.EngineID, e.Value)
}

// safeDo 调用动作，panic 时转换为 ActionPanicError 返回，不做重试
func safeDo(engineID string, action Action) (perr *ActionPanicError) {
	defer func() {
		if r := recover(); r != nil {
			perr = &ActionPanicError{
				EngineID: engineID,
				Value:    r,
				Stack:    debug.Stack(),
			}
		}
	}()

	action.Do()
	return nil
}
