// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
包 server 提供 HTTP 服务器生命周期管理。

# 概述

Manager 封装 net/http.Server，负责非阻塞启动、优雅关闭与异步错误
传播。Group 将 API 服务器与 metrics 服务器编组，监听 SIGINT/SIGTERM
或任一服务器异常后统一关闭。

# 核心类型

  - Manager：单个服务器，Start/Shutdown/Errors/Addr/IsRunning。
  - Config：监听地址、读写超时、空闲超时与优雅关闭超时。
  - Group：多个 Manager 的联合生命周期，Start/Wait/Shutdown。
*/
package server
