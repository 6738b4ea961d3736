// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 VideoFlow HTTP API 的请求处理器实现。

# 概述

handlers 包实现了所有 HTTP 端点的请求处理逻辑，包括视频生成、
模型列表、健康检查以及统一的响应/错误处理。
所有 Handler 均遵循标准 net/http 接口。

# 核心类型

  - GenerationHandler：模型列表与同步视频生成，按会话限制并发
  - SessionGate      ：每个会话同时最多一个进行中的生成
  - HealthHandler    ：服务健康检查（/health, /healthz, /ready）
  - Response         ：统一 JSON 响应结构（success + data + error + timestamp）
  - ErrorInfo        ：结构化错误信息，含 code、message、provider、stage
  - ResponseWriter   ：包装 http.ResponseWriter 以捕获状态码与字节数
  - HealthCheck      ：可插拔健康检查接口（数据库、Redis 等）

# 主要能力

  - 统一响应格式：WriteSuccess / WriteError / WriteJSON 辅助函数
  - 请求验证：DecodeJSONBody（1 MB 限制 + 严格模式）、ValidateContentType
  - ErrorCode → HTTP 状态码映射，上游失败统一为 502/504
  - 错误消息来自 types.DisplayMessage，上游响应体不会返回给客户端
  - 就绪检查并行执行，单个失败不影响其他检查
*/
package handlers
