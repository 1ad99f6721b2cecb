// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
Package gateway 实现图像生成网关的核心流水线，与宿主环境无关。

# 概述

一次请求严格按线性阶段流转，不回退、不重试：

	Received → Validated → ModelResolved → CredentialChecked → Invoked → (Succeeded | Failed) → Responded

每个阶段要么进入下一阶段，要么以一个 *types.Error 立即结束。

# 核心组件

  - Registry：模型 id → 变体标签 + 凭据名 + 展示名，声明顺序固定，构建后不可变。
  - SizePolicy：每个模型支持的尺寸，首个尺寸为默认值，缺省回退到 1024x1024。
  - ParseRequest：纯函数的请求体校验（INVALID_BODY / PROMPT_REQUIRED /
    MODEL_REQUIRED / INVALID_SIZE）。
  - CredentialResolver：在任何网络调用之前检查凭据，缺失时返回
    API_KEY_NOT_CONFIGURED 并带上 params.provider。
  - Invoker：通过 provider.Factory 构建客户端并发起唯一一次上游调用。
  - NormalizeError / ToSignal：按固定优先级从任意错误结构中提取消息。
  - BuildResponse：构造 data URI 形式的成功响应。
  - CorsPolicy：基于 Referer 的本地开发跨域头。
  - Service：把以上组件串成流水线；Handle 供 HTTP、CLI 等宿主适配器复用。

# 可选钩子

  - Limiter：按客户端地址的配额检查，默认不启用，出错时放行。
  - MetricsRecorder：生成耗时与错误码统计。
*/
package gateway
