// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
包 telemetry 负责 OpenTelemetry SDK 的初始化与关闭。

# 概述

Init 在启用时创建 OTLP gRPC trace/metric 导出器并注册为全局 Provider，
网关流水线与上游调用的 span 由此导出；未启用时保持 noop。
Shutdown 在进程退出前刷新缓冲数据。
*/
package telemetry
