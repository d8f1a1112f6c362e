package parser

import "errors"

// 预定义的错误类型，便于用户通过 errors.Is 处理特定错误情况
var (
	// ErrInvalidPeriod 周期表达式无法解析
	ErrInvalidPeriod = errors.New("invalid period expression")

	// ErrUnknownUnit 时间单位无法识别
	ErrUnknownUnit = errors.New("unknown time unit")
)
