// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package credentials 解析各视频生成后端所需的 API 密钥。

# 概述

每次生成请求都会按逻辑服务名（openai、runway、luma、vidu、replicate）
向 Resolver 查询一次密钥。缺失的密钥只会让对应后端在调用时以
MISSING_CREDENTIAL 失败，不影响其它后端。

# 实现

  - EnvResolver   ：从进程环境读取固定的环境变量名，只读
  - StaticResolver：由配置文件中的 providers.*.api_key 构建
  - RedisStore    ：基于 go-redis 的密钥存储，键为 <prefix><service>
  - DBStore       ：基于 GORM 的 provider_secrets 表
  - Chain         ：依次尝试多个 Resolver，返回第一个命中的密钥

Resolver 从不返回错误：存储后端故障会被记录日志并视为缺失。
日志中只出现服务名与 Mask 后的密钥。
*/
package credentials
