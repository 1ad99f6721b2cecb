// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
包 metrics 提供基于 Prometheus 的网关指标采集。

# 概述

Collector 使用 promauto 注册到默认 Registry，按 namespace 隔离。
它实现网关流水线的指标接口（RecordGeneration、RecordError），
并为 HTTP 中间件与配额钩子提供记录方法。

# 指标

  - http_requests_total / http_request_duration_seconds / http_response_size_bytes：
    按 method/path 分组，状态码归类为 2xx/3xx/4xx/5xx。
  - generations_total{provider,model,status} 与 generation_duration_seconds。
  - errors_total{code}：按错误码统计失败响应。
  - quota_checks_total{result}：allowed、denied、error。
*/
package metrics
