package cadence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// SchedulingOverhead 从每次睡眠中扣除的固定开销，用于抵消等待与唤醒本身的延迟
const SchedulingOverhead = 50 * time.Microsecond

// Action 定义周期执行的动作
type Action interface {
	Do()
}

// ActionFunc 函数形式的 Action
type ActionFunc func()

// Do 实现 Action
func (f ActionFunc) Do() {
	f()
}

// Engine 以固定节奏重复执行一个动作，并补偿动作耗时与调度抖动
//
// 每个引擎只拥有一个执行协程，不同引擎之间没有共享状态。
type Engine struct {
	id     string
	action Action

	lifecycle sync.Mutex // 串行化 Stop/SetRate/Close

	mu        sync.Mutex
	period    Period
	pending   *Period // 延迟生效的新周期，由执行协程在下一个周期开始时取走
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	collector *Collector
	err       error
	last      *Report

	statistics     bool
	reportUnit     Unit
	reporter       Reporter
	logger         Logger
	panicHandler   PanicHandler
	rootContext    context.Context
	overrunLimiter *rate.Limiter
}

// New 创建并立即启动一个引擎
// 参数：
//   - rate: 速率，0 表示禁用，此时不会启动执行协程
//   - unit: 时间单位，目标周期为 rate × unit
//   - action: 每个周期执行一次的动作
func New(rate uint64, unit Unit, action Action, opts ...Option) *Engine {
	if action == nil {
		panic("cadence: nil action")
	}

	e := &Engine{
		id:             uuid.NewString(),
		action:         action,
		period:         Period{Rate: rate, Unit: unit},
		statistics:     true,
		reportUnit:     Millisecond,
		logger:         NewDefaultLogger(),
		rootContext:    context.Background(),
		overrunLimiter: newOverrunLimiter(defaultOverrunLogInterval),
	}

	// 应用选项
	for _, opt := range opts {
		opt(e)
	}

	if e.reporter == nil {
		e.reporter = NewLogReporter(e.logger)
	}
	if e.panicHandler == nil {
		e.panicHandler = NewDefaultPanicHandler(e.logger)
	}

	if e.period.IsZero() {
		e.logger.Debugf("engine %s created disabled", e.id)
		return e
	}

	e.start()
	return e
}

// NewFunc 使用函数作为动作创建引擎
func NewFunc(rate uint64, unit Unit, fn func(), opts ...Option) *Engine {
	if fn == nil {
		panic("cadence: nil action")
	}
	return New(rate, unit, ActionFunc(fn), opts...)
}

// ID 返回引擎标识
func (e *Engine) ID() string {
	return e.id
}

// Period 返回当前配置的周期
func (e *Engine) Period() Period {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.period
}

// IsRunning 检查执行协程是否在运行
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.running
}

// Err 返回导致执行协程终止的错误，正常运行或正常停止时为 nil
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.err
}

// LastReport 返回最近一次停止时生成的统计报告
func (e *Engine) LastReport() (Report, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.last == nil {
		return Report{}, false
	}
	return *e.last, true
}

// Stop 停止引擎，等待执行协程退出后输出统计报告
// 重复调用是安全的，第二次调用不会阻塞也不会重复输出报告。
// 不能在动作内部调用，否则会等待自身退出。
func (e *Engine) Stop() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	e.stopLocked()
}

// Close 等同于 Stop，便于 defer e.Close() 在离开作用域时释放
func (e *Engine) Close() error {
	e.Stop()
	return e.Err()
}

// SetRate 修改目标周期
// 参数：
//   - immediate: true 时立即停止（输出旧周期的统计）并以新周期重新启动；
//     false 时当前周期按旧周期执行完，新周期从下一个周期开始生效
//
// rate 为 0 时引擎停止并保持禁用；引擎未运行时两种方式都会直接以新周期启动。
func (e *Engine) SetRate(rate uint64, unit Unit, immediate bool) {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	p := Period{Rate: rate, Unit: unit}

	e.mu.Lock()
	active := e.running && e.done != nil
	e.mu.Unlock()

	if p.IsZero() || immediate || !active {
		e.stopLocked()

		e.mu.Lock()
		e.period = p
		e.mu.Unlock()

		if p.IsZero() {
			e.logger.Infof("engine %s disabled", e.id)
			return
		}
		e.start()
		return
	}

	e.mu.Lock()
	e.period = p
	e.pending = &p
	e.mu.Unlock()
	e.logger.Debugf("engine %s: period %s queued for next cycle", e.id, p)
}

// start 启动新的执行协程，调用方需持有 lifecycle 锁或处于构造阶段
func (e *Engine) start() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	collector := NewCollector()

	e.mu.Lock()
	e.running = true
	e.cancel = cancel
	e.done = done
	e.collector = collector
	e.pending = nil
	e.err = nil
	p := e.period
	e.mu.Unlock()

	e.logger.Debugf("engine %s started with period %s", e.id, p)
	go e.loop(ctx, done, p, collector)

	// context.Background()和 context.TODO()的 Done() 返回 nil
	if e.rootContext.Done() != nil {
		go e.contextWatcher(done)
	}
}

// stopLocked 通知执行协程退出并 join，随后输出统计，调用方需持有 lifecycle 锁
func (e *Engine) stopLocked() {
	e.mu.Lock()
	done, cancel, collector, p := e.done, e.cancel, e.collector, e.period
	e.done, e.cancel, e.collector = nil, nil, nil
	e.running = false
	e.pending = nil
	e.mu.Unlock()

	if done == nil {
		return
	}

	cancel()
	<-done
	e.logger.Infof("engine %s stopped", e.id)

	if e.statistics {
		e.flush(collector, p)
	}
}

// flush 生成最终报告并交给输出端
func (e *Engine) flush(collector *Collector, p Period) {
	r := Report{
		Stats:     collector.Snapshot(e.reportUnit),
		EngineID:  e.id,
		Period:    p,
		StoppedAt: time.Now(),
	}

	e.mu.Lock()
	e.last = &r
	e.mu.Unlock()

	if err := e.reporter.Report(r); err != nil {
		e.logger.Warnf("engine %s: report failed: %v", e.id, err)
	}
}

// contextWatcher 监听根上下文的取消信号
func (e *Engine) contextWatcher(done <-chan struct{}) {
	select {
	case <-e.rootContext.Done():
		e.logger.Infof("Root context cancelled, stopping engine %s", e.id)
		e.Stop()
	case <-done:
	}
}
