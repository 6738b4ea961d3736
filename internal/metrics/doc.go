// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖 HTTP、
视频生成、状态轮询、密钥解析与数据库连接五个维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto.With
注册到调用方传入的 Registerer（默认使用全局 Registry）。所有指标按
namespace 隔离，支持多维度 label 分组，便于 Grafana 等工具进行可视化与告警。

# 核心类型

  - Collector：指标收集器，持有 Counter、Histogram、Gauge 等
    Prometheus 向量指标，并实现 video.MetricsRecorder。

# 主要能力

  - HTTP 指标：请求总数、请求耗时、请求/响应体大小，
    按 method/path/status 分组，状态码归类为 2xx/3xx/4xx/5xx。
  - 生成指标：按 model/provider/outcome 统计请求数与端到端耗时，
    以及进行中的生成数量。
  - 轮询指标：按 provider/state 统计每次状态查询。
  - 密钥指标：按 service 统计密钥解析的命中与缺失。
  - 数据库指标：活跃/空闲连接数 Gauge，按 database 分组。
*/
package metrics
