// Package config 提供 videoflow 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量 的顺序叠加，
// 环境变量名由前缀与各层 env 标签拼接而成，例如
// VIDEOFLOW_PROVIDERS_SORA_BASE_URL。
package config
