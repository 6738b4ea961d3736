package credentials

import (
	"context"
	"os"
	"strings"
)

// envKeys 服务名到环境变量名的固定映射
var envKeys = map[string]string{
	ServiceOpenAI:    "OPENAI_API_KEY",
	ServiceRunway:    "RUNWAY_API_KEY",
	ServiceLuma:      "LUMA_API_KEY",
	ServiceVidu:      "VIDU_API_KEY",
	ServiceReplicate: "REPLICATE_API_TOKEN",
}

// EnvKey 返回服务对应的环境变量名
func EnvKey(service string) (string, bool) {
	k, ok := envKeys[service]
	return k, ok
}

// EnvResolver 从环境变量读取密钥，从不写入进程环境
type EnvResolver struct {
	lookup func(string) (string, bool)
}

// NewEnvResolver 创建读取进程环境的 EnvResolver。
// lookup 为 nil 时使用 os.LookupEnv。
func NewEnvResolver(lookup func(string) (string, bool)) *EnvResolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &EnvResolver{lookup: lookup}
}

// Resolve 实现 Resolver
func (e *EnvResolver) Resolve(_ context.Context, service string) (string, bool) {
	key, ok := envKeys[service]
	if !ok {
		return "", false
	}
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
