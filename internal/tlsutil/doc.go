// Package tlsutil 为访问上游图像供应商的 HTTP 客户端提供加固的 TLS 设置
// （TLS 1.2+，仅 AEAD 密码套件）以及进程内共享的连接池。
package tlsutil
