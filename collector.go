package cadence

import (
	"math"
	"time"
)

// toleranceDivisor 周期的 1/20，即 5% 的容差带
const toleranceDivisor = 20

// Stats 统计快照，所有时长字段均以 Unit 计
type Stats struct {
	Samples           uint64  `json:"samples"`            // 采样次数
	MeanError         float64 `json:"mean_error"`         // 平均偏差
	MeanCompensation  float64 `json:"mean_compensation"`  // 平均补偿睡眠
	MaxError          float64 `json:"max_error"`          // 最大偏差
	MinError          float64 `json:"min_error"`          // 最小偏差
	ToleranceExceeded uint64  `json:"tolerance_exceeded"` // 超出容差的次数
	Unit              Unit    `json:"unit"`               // 换算单位
}

// Collector 周期统计收集器
//
// 只由引擎的执行协程写入，在协程 join 之后才被读取，因此内部不加锁。
type Collector struct {
	samples           uint64
	totalError        time.Duration
	totalCompensation time.Duration
	maxError          time.Duration
	minError          time.Duration
	toleranceExceeded uint64
}

// NewCollector 创建新的统计收集器
func NewCollector() *Collector {
	c := &Collector{}
	c.Reset()
	return c
}

// Reset 清空所有累计值
func (c *Collector) Reset() {
	*c = Collector{minError: time.Duration(math.MaxInt64)}
}

// RecordExecutionError 记录一次周期偏差
// 偏差取 |(end-start) - expected|，超前和滞后都算作误差
func (c *Collector) RecordExecutionError(start, end time.Time, expected time.Duration) {
	actual := end.Sub(start)
	errSample := actual - expected
	if errSample < 0 {
		errSample = -errSample
	}

	c.samples++
	c.totalError += errSample
	c.maxError = max(c.maxError, errSample)
	c.minError = min(c.minError, errSample)

	if actual > expected+expected/toleranceDivisor {
		c.toleranceExceeded++
	}
}

// RecordCompensation 累计一次补偿睡眠时长
func (c *Collector) RecordCompensation(slept time.Duration) {
	c.totalCompensation += slept
}

// Samples 返回已记录的采样次数
func (c *Collector) Samples() uint64 {
	return c.samples
}

// Snapshot 按指定单位生成统计快照，无采样时返回全零值
func (c *Collector) Snapshot(unit Unit) Stats {
	if !unit.Valid() {
		unit = Nanosecond
	}
	s := Stats{Unit: unit, ToleranceExceeded: c.toleranceExceeded}
	if c.samples == 0 {
		return s
	}

	n := float64(c.samples)
	s.Samples = c.samples
	s.MeanError = float64(c.totalError) / n / float64(unit)
	s.MeanCompensation = float64(c.totalCompensation) / n / float64(unit)
	s.MaxError = unit.Convert(c.maxError)
	s.MinError = unit.Convert(c.minError)
	return s
}
