// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 ImageGate HTTP API 的请求处理器。

# 概述

handlers 是网关核心在 net/http 上的宿主适配层：读取请求体与客户端
地址，交给 gateway.Service.Handle，再把状态码、响应头和 JSON 体原样写回。
所有 Handler 遵循标准 net/http 接口。

# 核心类型

  - ImageHandler：/api/generate-image 与 /api/ai
  - HandleModels：/api/models，列出模型、尺寸与凭据状态
  - HealthHandler：/health, /healthz, /ready, /version
  - ResponseWriter：捕获状态码与响应大小，供日志与指标中间件使用

# 错误响应

错误体统一为 {error, message, params?}，由 WriteError 写出并按状态码
分级记录日志。
*/
package handlers
