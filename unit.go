package cadence

import (
	"fmt"
	"math"
	"math/bits"
	"time"

	"github.com/darkit/cadence/internal/parser"
)

// Unit 时间单位，数值即该单位对应的纳秒数
type Unit uint64

// 支持的时间单位
const (
	Nanosecond  = Unit(parser.Nanosecond)
	Microsecond = Unit(parser.Microsecond)
	Millisecond = Unit(parser.Millisecond)
	Second      = Unit(parser.Second)
	Minute      = Unit(parser.Minute)
	Hour        = Unit(parser.Hour)
)

// 周期解析相关的错误，可通过 errors.Is 判断
var (
	ErrInvalidPeriod = parser.ErrInvalidPeriod
	ErrUnknownUnit   = parser.ErrUnknownUnit
)

// String 返回单位的完整名称，例如 "milliseconds"
func (u Unit) String() string {
	if name := parser.UnitName(uint64(u)); name != "" {
		return name
	}
	return fmt.Sprintf("Unit(%d)", uint64(u))
}

// Valid 判断是否为受支持的单位
func (u Unit) Valid() bool {
	return parser.UnitName(uint64(u)) != ""
}

// Convert 将 duration 换算为以该单位计的浮点数
func (u Unit) Convert(d time.Duration) float64 {
	if u == 0 {
		return float64(d)
	}
	return float64(d) / float64(u)
}

// MarshalText 实现 encoding.TextMarshaler
func (u Unit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, uint64(u))
	}
	return []byte(u.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseUnit 解析单位名称，支持完整名称、单数形式与缩写（ns/us/ms/s/m/h）
func ParseUnit(name string) (Unit, error) {
	mult, err := parser.ParseUnit(name)
	if err != nil {
		return 0, err
	}
	return Unit(mult), nil
}

// Period 由速率和单位组成的目标周期
type Period struct {
	Rate uint64 `json:"rate" yaml:"rate"`
	Unit Unit   `json:"unit" yaml:"unit"`
}

// ParsePeriod 解析周期表达式，例如 "250 ms"、"1m30s"、"@every 5s"
func ParsePeriod(expr string) (Period, error) {
	rate, unit, err := parser.Parse(expr)
	if err != nil {
		return Period{}, err
	}
	return Period{Rate: rate, Unit: Unit(unit)}, nil
}

// PeriodOf 将 duration 转换为以最大整除单位表示的周期
func PeriodOf(d time.Duration) Period {
	rate, unit := parser.Normalize(d)
	return Period{Rate: rate, Unit: Unit(unit)}
}

// Duration 返回 Rate × Unit，溢出时饱和为 math.MaxInt64
func (p Period) Duration() time.Duration {
	hi, lo := bits.Mul64(p.Rate, uint64(p.Unit))
	if hi != 0 || lo > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(lo)
}

// IsZero 速率为 0 表示禁用
func (p Period) IsZero() bool {
	return p.Rate == 0 || p.Unit == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%d %s", p.Rate, p.Unit)
}
