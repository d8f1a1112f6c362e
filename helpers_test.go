package cadence

import (
	"sync"
	"time"
)

// recordingReporter 记录收到的所有报告
type recordingReporter struct {
	mu      sync.Mutex
	reports []Report
}

func (r *recordingReporter) Report(rep Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports = append(r.reports, rep)
	return nil
}

func (r *recordingReporter) all() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.reports)
}

// quiet 测试中屏蔽日志输出
func quiet() Option {
	return WithLogger(&NoOpLogger{})
}

// sleepFor 睡眠指定毫秒数
func sleepFor(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
