// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
Package provider 提供统一的图像生成提供者抽象，每个上游 API 对应一个变体。

# 概述

本包屏蔽不同服务商（OpenAI、xAI、Google Imagen、DeepInfra、Fireworks、
Luma、TogetherAI、FAL、Replicate）在协议、鉴权头、尺寸参数和响应结构上的
差异，对上层网关暴露一致的 Provider 接口。所有变体都返回 base64 编码的
图像数据；返回 URL 的上游会在变体内部完成下载。

# 核心接口

  - Provider：图像生成提供者接口，包含 Generate 与 Name。
  - Variant / Params：模型注册表使用的变体标签与变体参数。
  - Factory：变体标签到构造函数的映射，测试可通过 Register 注入假变体。
  - APIError：上游失败的统一错误，ErrorShape 暴露 data/message/response/cause
    结构供网关的错误归一化使用。

# 主要能力

  - 同步变体：openai、xai、google、deepinfra、fireworks、together、fal。
  - 异步轮询：luma 与 replicate 先提交再轮询，ctx 取消即停止。
  - 配置体系：Config 提供 BaseURL、Timeout、PollInterval，DefaultConfigs 给出默认端点。
*/
package provider
