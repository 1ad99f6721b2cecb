package handlers

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/BaSui01/imagegate/internal/ctxkeys"
	"github.com/BaSui01/imagegate/types"
	"go.uber.org/zap"
)

// =============================================================================
// 🎯 响应辅助函数
// =============================================================================

// WriteJSON 写入 JSON 响应
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	// 响应头已写出，编码失败无法再改状态码
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError 写入 {error, message, params?} 错误体，4xx 记 warn，5xx 记 error
func WriteError(w http.ResponseWriter, err *types.Error, logger *zap.Logger) {
	status := err.Status()

	if logger != nil {
		fields := []zap.Field{
			zap.String("code", string(err.Code)),
			zap.String("message", err.Message),
			zap.Int("status", status),
		}
		if err.Cause != nil {
			fields = append(fields, zap.Error(err.Cause))
		}
		if status >= http.StatusInternalServerError {
			logger.Error("API error", fields...)
		} else {
			logger.Warn("API error", fields...)
		}
	}

	WriteJSON(w, status, ErrorBody(err))
}

// ErrorBody 把 types.Error 转为线上的错误体
func ErrorBody(err *types.Error) types.ErrorResponse {
	return types.ErrorResponse{
		Error:   string(err.Code),
		Message: err.Message,
		Params:  err.Params,
	}
}

// TimeoutBody 是执行预算耗尽时 http.TimeoutHandler 写出的 JSON 错误体
func TimeoutBody() string {
	body, _ := json.Marshal(types.ErrorResponse{
		Error:   string(types.ErrGenerationFailed),
		Message: "Image generation timed out",
	})
	return string(body)
}

// =============================================================================
// 🌍 客户端地址
// =============================================================================

// ClientIP 返回请求的客户端 IP：优先使用中间件写入 context 的值，
// 否则只信任 RemoteAddr
func ClientIP(r *http.Request) string {
	if ip, ok := ctxkeys.ClientIP(r.Context()); ok {
		return ip
	}
	return ResolveClientIP(r, nil)
}

// TrustedProxies 可信反向代理的地址集合，nil 表示不信任任何转发头
type TrustedProxies struct {
	prefixes []netip.Prefix
}

// ParseTrustedProxies 解析 IP 或 CIDR 列表
func ParseTrustedProxies(entries []string) (*TrustedProxies, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	t := &TrustedProxies{prefixes: make([]netip.Prefix, 0, len(entries))}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			t.prefixes = append(t.prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		t.prefixes = append(t.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return t, nil
}

// Contains 判断地址是否属于可信代理
func (t *TrustedProxies) Contains(ip string) bool {
	if t == nil {
		return false
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range t.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ResolveClientIP 默认返回 RemoteAddr 的主机部分。
// 只有对端是可信代理时才读取 X-Forwarded-For（从右往左跳过可信代理）与 X-Real-IP。
func ResolveClientIP(r *http.Request, trusted *TrustedProxies) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !trusted.Contains(peer) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !trusted.Contains(hop) {
				return hop
			}
			peer = hop
		}
		return peer
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return peer
}

// =============================================================================
// 📊 响应包装器（用于捕获状态码）
// =============================================================================

// ResponseWriter 包装 http.ResponseWriter 以捕获状态码与响应大小
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode   int
	BytesWritten int64
	Written      bool
}

// NewResponseWriter 创建新的 ResponseWriter
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
	}
}

// WriteHeader 重写 WriteHeader 以捕获状态码
func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.Written {
		rw.StatusCode = code
		rw.Written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write 重写 Write 以标记已写入并累计字节数
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.Written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.BytesWritten += int64(n)
	return n, err
}

// Unwrap 供 http.ResponseController 访问底层 ResponseWriter
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
