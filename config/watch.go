package config

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/darkit/cadence"
)

// reloadDebounce 合并编辑器保存时产生的连续事件
const reloadDebounce = 100 * time.Millisecond

// Watch 监听配置文件，内容变化并解析成功后调用 onChange
//
// 监听的是文件所在目录，以兼容通过重命名替换文件的编辑器。解析失败时只记录
// 告警并保留旧配置。阻塞直到 ctx 取消。
func Watch(ctx context.Context, path string, logger cadence.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = &cadence.NoOpLogger{}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer w.Close()

	dir, file := filepath.Dir(path), filepath.Base(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}
	logger.Debugf("config watcher started: %s", path)

	var (
		mu    sync.Mutex
		last  *Config
		timer *time.Timer
	)

	reload := func() {
		if ctx.Err() != nil {
			return
		}
		cfg, err := Load(path)
		if err != nil {
			logger.Warnf("config reload failed: %v", err)
			return
		}

		mu.Lock()
		unchanged := last != nil && reflect.DeepEqual(last, cfg)
		if !unchanged {
			last = cfg
		}
		mu.Unlock()

		if unchanged {
			logger.Debugf("config unchanged; skipping: %s", path)
			return
		}
		onChange(cfg)
	}

	debounce := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(reloadDebounce, reload)
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("config watcher error: %v", err)
		}
	}
}

// Follow 监听配置文件并把周期变化应用到引擎，阻塞直到 ctx 取消
func Follow(ctx context.Context, path string, e *cadence.Engine, logger cadence.Logger) error {
	return Watch(ctx, path, logger, func(cfg *Config) {
		before := e.Period()
		if err := Apply(e, cfg); err != nil {
			if logger != nil {
				logger.Warnf("config apply failed: %v", err)
			}
			return
		}
		if after := e.Period(); after != before && logger != nil {
			logger.Infof("engine %s period changed: %s -> %s", e.ID(), before, after)
		}
	})
}
