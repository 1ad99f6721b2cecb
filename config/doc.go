// Copyright (c) ImageGate Authors.
// Licensed under the MIT License.

/*
# 概述

package config 提供 ImageGate 的配置加载与热重载。

配置按 默认值 → YAML 文件 → .env 文件 → 进程环境变量 的顺序合并，
环境变量统一使用 IMAGEGATE_ 前缀，凭据则沿用各上游约定的变量名
（OPENAI_API_KEY、FAL_API_KEY 等）。

# 核心类型

  - Config: 服务器、网关、配额、Redis、日志、遥测与上游覆盖项
  - Loader: Builder 风格的加载器
  - FileWatcher: 轮询修改时间的文件监听器
  - Reloader: 持有当前配置，文件变化时重新加载，并作为凭据源
*/
package config
