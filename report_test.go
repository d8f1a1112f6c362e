package cadence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReport_JSON 报告的 JSON 结构
// 更新 golden 文件：go test -run TestReport_JSON -update
func TestReport_JSON(t *testing.T) {
	r := Report{
		Stats: Stats{
			Samples:           3,
			MeanError:         10,
			MeanCompensation:  89.95,
			MaxError:          15,
			MinError:          5,
			ToleranceExceeded: 1,
			Unit:              Millisecond,
		},
		EngineID:  "engine-1",
		Period:    Period{Rate: 100, Unit: Millisecond},
		StoppedAt: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.MarshalIndent(r, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report_json", data)

	var back Report
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, r.StoppedAt.Equal(back.StoppedAt))
	back.StoppedAt = r.StoppedAt
	assert.Equal(t, r, back)
}

// capturingLogger 记录日志内容
type capturingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *capturingLogger) add(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *capturingLogger) Debugf(format string, args ...any) { l.add("DEBUG", format, args...) }
func (l *capturingLogger) Infof(format string, args ...any)  { l.add("INFO", format, args...) }
func (l *capturingLogger) Warnf(format string, args ...any)  { l.add("WARN", format, args...) }
func (l *capturingLogger) Errorf(format string, args ...any) { l.add("ERROR", format, args...) }

func (l *capturingLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestLogReporter(t *testing.T) {
	logger := &capturingLogger{}
	rep := NewLogReporter(logger)

	err := rep.Report(Report{
		Stats:    Stats{Samples: 4, MeanError: 0.25, ToleranceExceeded: 2, Unit: Millisecond},
		EngineID: "e1",
		Period:   Period{Rate: 10, Unit: Millisecond},
	})
	require.NoError(t, err)

	assert.True(t, logger.contains("engine e1 stats"))
	assert.True(t, logger.contains("samples=4"))
	assert.True(t, logger.contains("mean_error=0.250000"))
	assert.True(t, logger.contains("tolerance_exceeded=2"))
	assert.True(t, logger.contains("period=10 milliseconds"))
}

func TestMultiReporter(t *testing.T) {
	first := &recordingReporter{}
	second := &recordingReporter{}
	errFailed := errors.New("sink unavailable")

	multi := MultiReporter{
		first,
		nil,
		ReporterFunc(func(Report) error { return errFailed }),
		second,
	}

	err := multi.Report(Report{EngineID: "e2"})
	assert.ErrorIs(t, err, errFailed)
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
}

// TestEngine_ReporterFailure 输出端失败只记录告警
func TestEngine_ReporterFailure(t *testing.T) {
	logger := &capturingLogger{}
	e := New(5, Millisecond, &counterAction{}, WithLogger(logger),
		WithReporter(ReporterFunc(func(Report) error { return errors.New("disk full") })))

	e.Stop()

	assert.True(t, logger.contains("report failed: disk full"))
	_, ok := e.LastReport()
	assert.True(t, ok)
}
