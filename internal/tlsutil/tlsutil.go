package tlsutil

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// ClientConfig 返回访问上游供应商使用的 TLS 配置：TLS 1.2+，仅 AEAD 密码套件
func ClientConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		},
	}
}

// NewUpstreamTransport 创建一个新的加固 Transport
func NewUpstreamTransport() *http.Transport {
	return &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: ClientConfig(),
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

var (
	sharedOnce      sync.Once
	sharedTransport *http.Transport
)

// UpstreamTransport 返回进程内共享的 Transport。
// 供应商客户端按请求创建，共享 Transport 让连接池跨请求复用。
func UpstreamTransport() *http.Transport {
	sharedOnce.Do(func() {
		sharedTransport = NewUpstreamTransport()
	})
	return sharedTransport
}

// HTTPClient 返回使用共享 Transport、带整体超时的客户端
func HTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: UpstreamTransport(),
	}
}
