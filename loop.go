package cadence

import (
	"context"
	"time"
)

// loop 执行协程的主循环：计时、执行动作、计算补偿睡眠、可中断地等待
func (e *Engine) loop(ctx context.Context, done chan<- struct{}, p Period, collector *Collector) {
	defer close(done)

	expected := p.Duration()
	for {
		// 延迟生效的周期只在周期边界切换
		if next, ok := e.takePending(); ok {
			e.logger.Debugf("engine %s: period %s -> %s", e.id, p, next)
			p, expected = next, next.Duration()
		}

		start := time.Now()
		if perr := safeDo(e.id, e.action); perr != nil {
			e.fault(perr)
			return
		}
		actual := time.Since(start)

		if actual > expected && e.overrunLimiter.Allow() {
			e.logger.Warnf("engine %s: action took %v, overran period %v by %d cycle(s)",
				e.id, actual, expected, int64(actual/expected))
		}

		sleep := sleepTime(expected, actual)
		if !wait(ctx, sleep) {
			// 等待期间收到停止信号，本周期不计入统计
			return
		}

		collector.RecordExecutionError(start, time.Now(), expected)
		collector.RecordCompensation(sleep)
	}
}

// compensate 计算补偿后的睡眠时长（未扣除调度开销）
//
// 动作耗时超过一个周期时，不补跑已经错过的周期，只补偿当前周期内的余数：
//
//	--->xxxx------>x----------->xxxx------->
//	|-------|-------|-------|-------|-------|
func compensate(expected, actual time.Duration) time.Duration {
	sleep := expected - actual
	if sleep < 0 {
		sleep = expected - (-sleep)%expected
	}
	return sleep
}

// sleepTime 在补偿结果上扣除固定调度开销，结果不小于 0
func sleepTime(expected, actual time.Duration) time.Duration {
	sleep := compensate(expected, actual) - SchedulingOverhead
	if sleep < 0 {
		return 0
	}
	return sleep
}

// wait 最多等待 d，自然超时返回 true，收到停止信号返回 false
func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		// 超时与取消同时就绪时以停止信号为准
		return ctx.Err() == nil
	}
}

// takePending 取走延迟生效的周期
func (e *Engine) takePending() (Period, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending == nil {
		return Period{}, false
	}
	p := *e.pending
	e.pending = nil
	return p, true
}

// fault 动作 panic 后终止执行协程，不重试也不计入统计
func (e *Engine) fault(perr *ActionPanicError) {
	e.mu.Lock()
	e.running = false
	e.err = perr
	e.mu.Unlock()

	e.panicHandler.HandlePanic(e.id, perr.Value, perr.Stack)
}
