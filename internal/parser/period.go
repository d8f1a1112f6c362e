package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 各时间单位对应的纳秒倍数
const (
	Nanosecond  uint64 = 1
	Microsecond        = Nanosecond * 1000
	Millisecond        = Microsecond * 1000
	Second             = Millisecond * 1000
	Minute             = Second * 60
	Hour               = Minute * 60
)

// everyPrefix 兼容 "@every 5s" 这种描述符写法
const everyPrefix = "@every"

// unitNames 单位别名到倍数的映射，键统一为小写
var unitNames = map[string]uint64{
	"ns": Nanosecond, "nanosecond": Nanosecond, "nanoseconds": Nanosecond,
	"us": Microsecond, "µs": Microsecond, "μs": Microsecond, "microsecond": Microsecond, "microseconds": Microsecond,
	"ms": Millisecond, "millisecond": Millisecond, "milliseconds": Millisecond,
	"s": Second, "sec": Second, "second": Second, "seconds": Second,
	"m": Minute, "min": Minute, "minute": Minute, "minutes": Minute,
	"h": Hour, "hour": Hour, "hours": Hour,
}

// descending 按从大到小排列，用于把 time.Duration 规整为最大的整除单位
var descending = []uint64{Hour, Minute, Second, Millisecond, Microsecond, Nanosecond}

// ParseUnit 解析时间单位名称，返回对应的纳秒倍数
func ParseUnit(name string) (uint64, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if mult, ok := unitNames[key]; ok {
		return mult, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
}

// UnitName 返回倍数对应的完整单位名称，未知倍数返回空字符串
func UnitName(mult uint64) string {
	switch mult {
	case Nanosecond:
		return "nanoseconds"
	case Microsecond:
		return "microseconds"
	case Millisecond:
		return "milliseconds"
	case Second:
		return "seconds"
	case Minute:
		return "minutes"
	case Hour:
		return "hours"
	}
	return ""
}

// Parse 解析周期表达式，返回速率与单位倍数
//
// 支持的格式:
//
//	"250 ms" / "5 seconds"   速率 + 单位
//	"1m30s" / "250ms"        Go duration 字符串
//	"@every 10s"             描述符写法
//
// 速率为 0 是合法的，表示禁用的定时器。
func Parse(expr string) (rate, unit uint64, err error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty expression", ErrInvalidPeriod)
	}

	if strings.HasPrefix(s, everyPrefix) {
		rest := strings.TrimSpace(strings.TrimPrefix(s, everyPrefix))
		if rest == "" {
			return 0, 0, fmt.Errorf("%w: %q has no interval", ErrInvalidPeriod, expr)
		}
		s = rest
	}

	fields := strings.Fields(s)
	switch len(fields) {
	case 2:
		rate, err = strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: rate %q: %v", ErrInvalidPeriod, fields[0], err)
		}
		unit, err = ParseUnit(fields[1])
		if err != nil {
			return 0, 0, err
		}
		return rate, unit, nil
	case 1:
		d, perr := time.ParseDuration(fields[0])
		if perr != nil {
			return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidPeriod, expr, perr)
		}
		if d < 0 {
			return 0, 0, fmt.Errorf("%w: %q is negative", ErrInvalidPeriod, expr)
		}
		rate, unit = Normalize(d)
		return rate, unit, nil
	}

	return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, expr)
}

// Normalize 将 duration 拆分为 (速率, 单位)，单位取能整除的最大单位
func Normalize(d time.Duration) (rate, unit uint64) {
	if d <= 0 {
		return 0, Nanosecond
	}
	n := uint64(d)
	for _, u := range descending {
		if n%u == 0 {
			return n / u, u
		}
	}
	return n, Nanosecond
}
