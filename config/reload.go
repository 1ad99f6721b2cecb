package config

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ReloadCallback 在新配置生效后调用
type ReloadCallback func(oldConfig, newConfig *Config)

// Reloader 持有当前生效的配置，文件变化时重新执行 Loader。
//
// 新配置校验失败时保留旧配置。Reloader 实现 Lookup，可直接作为网关的凭据源，
// 轮换后的 API Key 无需重启即可生效。
type Reloader struct {
	loader  *Loader
	logger  *zap.Logger
	current atomic.Pointer[Config]

	mu        sync.Mutex
	callbacks []ReloadCallback
	watcher   *FileWatcher
}

// NewReloader 以已加载的配置为初值创建 Reloader
func NewReloader(loader *Loader, initial *Config, logger *zap.Logger) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reloader{loader: loader, logger: logger}
	r.current.Store(initial)
	return r
}

// Current 返回当前配置，调用方不得修改
func (r *Reloader) Current() *Config {
	return r.current.Load()
}

// Lookup 返回当前配置中的凭据
func (r *Reloader) Lookup(key string) string {
	cfg := r.current.Load()
	if cfg == nil {
		return ""
	}
	return cfg.Credentials[key]
}

// OnReload 注册回调
func (r *Reloader) OnReload(cb ReloadCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, cb)
}

// Reload 重新加载并校验配置，成功后替换当前配置
func (r *Reloader) Reload() error {
	next, err := r.loader.Load()
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}

	old := r.current.Swap(next)

	r.mu.Lock()
	callbacks := append([]ReloadCallback(nil), r.callbacks...)
	r.mu.Unlock()
	for _, cb := range callbacks {
		cb(old, next)
	}

	r.logger.Info("configuration reloaded",
		zap.Strings("changed_credentials", changedCredentials(old, next)))
	return nil
}

// Watch 监听配置文件与 .env 文件，变化时调用 Reload
func (r *Reloader) Watch(ctx context.Context, opts ...WatcherOption) error {
	paths := r.loader.WatchPaths()
	if len(paths) == 0 {
		return nil
	}
	w, err := NewFileWatcher(paths, append([]WatcherOption{WithWatcherLogger(r.logger)}, opts...)...)
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	w.OnChange(func(evt FileEvent) {
		if err := r.Reload(); err != nil {
			r.logger.Warn("configuration reload rejected, keeping previous",
				zap.String("path", evt.Path),
				zap.Error(err))
		}
	})

	r.mu.Lock()
	r.watcher = w
	r.mu.Unlock()
	return w.Start(ctx)
}

// Stop 停止文件监听
func (r *Reloader) Stop() {
	r.mu.Lock()
	w := r.watcher
	r.watcher = nil
	r.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}

// changedCredentials 只返回名字，不输出密钥
func changedCredentials(old, next *Config) []string {
	var names []string
	seen := make(map[string]bool)
	if old != nil {
		for k, v := range old.Credentials {
			seen[k] = true
			if next.Credentials[k] != v {
				names = append(names, k)
			}
		}
	}
	for k := range next.Credentials {
		if !seen[k] {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
