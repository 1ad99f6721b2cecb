// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
Package testutil 提供 ImageGate 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 异步断言: AssertEventuallyTrue / WaitFor
  - 数据工具: MustJSON / MustParseJSON / DecodeError

# 子包

  - testutil/mocks: MockProvider（图像供应商），以及把它注册进 provider.Factory 的辅助函数
  - testutil/fixtures: 请求体、上游响应与上游错误体样例
*/
package testutil
