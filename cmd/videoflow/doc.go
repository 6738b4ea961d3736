// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 VideoFlow 服务端程序入口。

# 概述

cmd/videoflow 是 VideoFlow 的可执行入口，提供 HTTP API 服务、
命令行单次生成、模型列表、密钥写入、健康检查和版本查询等子命令。
程序支持 YAML 配置文件加载、结构化日志（zap）、Prometheus 指标采集
以及 OpenTelemetry 追踪。

# 核心类型

  - Server     ：主服务器，管理 HTTP、Metrics 双端口及优雅关闭
  - Middleware ：HTTP 中间件函数签名 func(http.Handler) http.Handler
  - runtime    ：Resolver、Poller、Registry、Dispatcher 的装配结果

# 主要能力

  - 子命令：serve、generate、models、secret set、migrate、version、health
  - 中间件链：Recovery、RequestID、SecurityHeaders、RequestLogger、
    Metrics、OTelTracing、CORS、RateLimiter、APIKeyAuth 或 JWTAuth
  - 密钥解析链：配置文件 → 环境变量 → Redis/数据库存储
  - Metrics 服务器：独立端口暴露 /metrics（Prometheus）
  - 优雅关闭：信号监听 → 关闭 HTTP → 关闭 Metrics → 释放存储与遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
