// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
包 quota 提供按客户端计数的配额钩子。

# 概述

RedisLimiter 以 "前缀 + 客户端标识" 为键执行 INCR，首次计数时设置
EXPIRE，形成固定窗口。窗口内计数超过 Limit 即拒绝，网关据此返回
RATE_LIMITED。Redis 出错时由调用方决定放行策略。
*/
package quota
