// 配置文件变更监听器。
//
// 以轮询修改时间的方式检测 YAML 与 .env 文件变化，不依赖平台文件事件。
package config

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// --- 文件事件 ---

// FileOp 文件操作类型
type FileOp int

const (
	// FileOpCreate 文件被创建
	FileOpCreate FileOp = iota
	// FileOpWrite 文件被修改
	FileOpWrite
	// FileOpRemove 文件被删除
	FileOpRemove
)

func (op FileOp) String() string {
	switch op {
	case FileOpCreate:
		return "CREATE"
	case FileOpWrite:
		return "WRITE"
	case FileOpRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent 单个文件的变更
type FileEvent struct {
	Path      string
	Op        FileOp
	Timestamp time.Time
}

// --- 监听器 ---

// WatcherOption 配置 FileWatcher
type WatcherOption func(*FileWatcher)

// WithPollInterval 设置轮询间隔
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *FileWatcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatcherLogger 设置日志记录器
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *FileWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// FileWatcher 轮询一组文件，修改时间前进即触发回调
type FileWatcher struct {
	mu sync.Mutex

	paths    []string
	interval time.Duration
	logger   *zap.Logger

	callbacks []func(FileEvent)
	modTimes  map[string]time.Time

	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewFileWatcher 创建监听器。不存在的路径会被继续观察，出现时触发 CREATE。
func NewFileWatcher(paths []string, opts ...WatcherOption) (*FileWatcher, error) {
	w := &FileWatcher{
		paths:    append([]string(nil), paths...),
		interval: time.Second,
		logger:   zap.NewNop(),
		modTimes: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, path := range w.paths {
		info, err := os.Stat(path)
		switch {
		case err == nil:
			w.modTimes[path] = info.ModTime()
		case os.IsNotExist(err):
			w.logger.Debug("watched file does not exist yet", zap.String("path", path))
		default:
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}
	}
	return w, nil
}

// OnChange 注册变更回调
func (w *FileWatcher) OnChange(cb func(FileEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Paths 返回被监听的路径
func (w *FileWatcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// Start 启动后台轮询，直到 ctx 结束或调用 Stop
func (w *FileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop(ctx)

	w.logger.Info("config watcher started",
		zap.Strings("paths", w.paths),
		zap.Duration("interval", w.interval))
	return nil
}

// Stop 停止轮询并等待后台协程退出
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stop)
	done := w.done
	w.mu.Unlock()
	<-done
}

func (w *FileWatcher) loop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Poll 检查一次所有文件，并同步派发事件
func (w *FileWatcher) Poll() {
	w.mu.Lock()
	var events []FileEvent
	now := time.Now()
	for _, path := range w.paths {
		last, tracked := w.modTimes[path]
		info, err := os.Stat(path)
		if err != nil {
			if tracked && os.IsNotExist(err) {
				delete(w.modTimes, path)
				events = append(events, FileEvent{Path: path, Op: FileOpRemove, Timestamp: now})
			}
			continue
		}
		switch {
		case !tracked:
			events = append(events, FileEvent{Path: path, Op: FileOpCreate, Timestamp: now})
		case info.ModTime().After(last):
			events = append(events, FileEvent{Path: path, Op: FileOpWrite, Timestamp: now})
		default:
			continue
		}
		w.modTimes[path] = info.ModTime()
	}
	callbacks := slices.Clone(w.callbacks)
	w.mu.Unlock()

	for _, evt := range events {
		w.logger.Debug("config file changed",
			zap.String("path", evt.Path),
			zap.String("op", evt.Op.String()))
		for _, cb := range callbacks {
			cb(evt)
		}
	}
}
