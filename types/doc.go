// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 videoflow 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 video、credentials、
api 等上层模块提供统一的错误契约与 Context 传播工具。

# 核心类型

  - Error / ErrorCode：结构化错误体系，含 HTTP 状态码、Provider、Stage、
    上游状态码与响应体
  - StageImage / StageVideo：流水线阶段标识

# 主要能力

  - Context 传播：WithTraceID / WithRequestID / WithUserID / WithModel
  - 错误工具链：AsError / GetErrorCode / DisplayMessage
  - 失败分类构造：MissingCredential / SubmissionRejected / InvalidOutputShape /
    RemoteGenerationFailed / PipelineStageFailed / UnsupportedModel /
    TransportError / Timeout
*/
package types
