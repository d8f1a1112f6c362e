package cadence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWithContextBasic 根上下文取消时引擎自动停止并输出一次报告
func TestWithContextBasic(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rep := &recordingReporter{}
	action := &counterAction{}
	e := New(5, Millisecond, action, quiet(), WithReporter(rep), WithContext(ctx))

	<-ctx.Done()

	require.Eventually(t, func() bool {
		return !e.IsRunning() && rep.count() == 1
	}, time.Second, 5*time.Millisecond)

	// 引擎停止后动作不再执行
	before := action.load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, action.load())

	e.Stop() // 确保清理
	assert.Equal(t, 1, rep.count())
	assert.Positive(t, rep.all()[0].Samples)
}

// TestWithContextNil 测试传入 nil 上下文的情况
func TestWithContextNil(t *testing.T) {
	e := New(5, Millisecond, &counterAction{}, quiet(), WithContext(nil), WithStatistics(false))
	defer e.Stop()

	time.Sleep(20 * time.Millisecond)

	// 引擎应该仍在运行（因为使用了 Background context）
	assert.True(t, e.IsRunning())
}

// TestWithContextAlreadyCancelled 已取消的上下文会让引擎尽快停止
func TestWithContextAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := &recordingReporter{}
	e := New(1, Second, &counterAction{}, quiet(), WithReporter(rep), WithContext(ctx))

	require.Eventually(t, func() bool {
		return !e.IsRunning() && rep.count() == 1
	}, time.Second, time.Millisecond)
	assert.Zero(t, rep.all()[0].Samples)
}

// TestWithContextSurvivesRestart 重启后仍然受根上下文控制
func TestWithContextSurvivesRestart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rep := &recordingReporter{}
	e := New(5, Millisecond, &counterAction{}, quiet(), WithReporter(rep), WithContext(ctx))

	e.SetRate(3, Millisecond, true)
	require.True(t, e.IsRunning())
	require.Equal(t, 1, rep.count())

	cancel()
	require.Eventually(t, func() bool {
		return !e.IsRunning() && rep.count() == 2
	}, time.Second, time.Millisecond)
}
