// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
Package types 提供 ImageGate 的全局共享类型定义。

types 是最底层的公共包，不依赖任何内部包，为 gateway、provider、api
与命令行入口提供统一的请求、响应和错误契约。

# 核心类型

  - GenerationRequest：校验后的生成请求（prompt、model、可选 size）
  - GenerationResult：成功响应体（imageUrl + images）
  - ErrorResponse：错误响应体 {error, message, params?}
  - Error / ErrorCode：结构化错误，含分类、HTTP 状态码、参数与供应商标记

# 错误分类

  - 客户端输入：INVALID_BODY、PROMPT_REQUIRED、MODEL_REQUIRED、INVALID_SIZE、
    UNSUPPORTED_MODEL（400），RATE_LIMITED（429），METHOD_NOT_ALLOWED（405）
  - 服务端：API_KEY_NOT_CONFIGURED、GENERATION_FAILED、INTERNAL_ERROR（500）
*/
package types
