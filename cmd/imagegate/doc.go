// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
Package main 提供 ImageGate 网关的可执行入口。

# 概述

cmd/imagegate 把 gateway 核心挂到 net/http 上，并提供命令行子命令：
serve 启动 HTTP 服务，generate 在终端内直接生成一张图像，models 列出
注册表中的模型与尺寸，另有 version 与 health。

# 主要能力

  - 路由：/api/generate-image 与 /api/ai 共用同一处理器，外层套执行预算
    （http.TimeoutHandler），另有 /api/models、/health、/ready、/version
  - 中间件链：Recovery、RequestID、RealIP、OTelTracing、SecurityHeaders、
    RequestLogger、MetricsMiddleware、基于 IP 的 RateLimiter
  - 凭据热重载：config.Reloader 作为网关的凭据源，监听 YAML 与 .env 文件
  - 配额：启用时由 Redis 计数，readiness 探测 Redis
  - Metrics 服务器：独立端口暴露 /metrics（Prometheus）
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
