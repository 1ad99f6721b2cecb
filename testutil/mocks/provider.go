// MockProvider 图像供应商的测试模拟实现。
//
// 支持固定图像、错误注入、延迟与自定义 Generate。
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/imagegate/provider"
)

// MockProvider 实现 provider.Provider
type MockProvider struct {
	mu sync.RWMutex

	images []string
	err    error
	delay  time.Duration
	fn     func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error)

	calls []Call
}

// Call 记录单次调用
type Call struct {
	Request provider.GenerateRequest
	Error   error
}

// NewMockProvider 创建返回一张图像的 MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{images: []string{"UE5H"}}
}

// WithImages 设置返回的 base64 图像
func (m *MockProvider) WithImages(b64 ...string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = b64
	return m
}

// WithError 设置返回错误
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDelay 设置响应延迟，期间响应 ctx 取消
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithGenerateFunc 设置自定义 Generate 实现
func (m *MockProvider) WithGenerateFunc(fn func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return m
}

// Name 返回 Provider 名称
func (m *MockProvider) Name() string { return "mock" }

// Generate 实现 provider.Provider
func (m *MockProvider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	m.mu.Lock()
	delay, fn, err := m.delay, m.fn, m.err
	images := append([]string(nil), m.images...)
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	var resp *provider.GenerateResponse
	switch {
	case err != nil:
	case fn != nil:
		resp, err = fn(ctx, req)
	default:
		resp = &provider.GenerateResponse{Images: make([]provider.ImageData, 0, len(images))}
		for _, b64 := range images {
			resp.Images = append(resp.Images, provider.ImageData{B64JSON: b64})
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Request: *req, Error: err})
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Calls 返回调用记录副本
func (m *MockProvider) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Call(nil), m.calls...)
}

// CallCount 返回调用次数
func (m *MockProvider) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}

// LastRequest 返回最后一次请求，无调用时为 nil
func (m *MockProvider) LastRequest() *provider.GenerateRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.calls) == 0 {
		return nil
	}
	req := m.calls[len(m.calls)-1].Request
	return &req
}

// Factory 返回把给定变体（为空时为全部内置变体）替换为 m 的工厂
func (m *MockProvider) Factory(variants ...provider.Variant) *provider.Factory {
	f := provider.NewFactory(nil)
	if len(variants) == 0 {
		variants = f.Variants()
	}
	for _, v := range variants {
		f.Register(v, func(provider.Config, provider.Params) provider.Provider { return m })
	}
	return f
}
