package credentials

import (
	"context"
	"strings"
)

// 逻辑服务名
const (
	ServiceOpenAI    = "openai"
	ServiceRunway    = "runway"
	ServiceLuma      = "luma"
	ServiceVidu      = "vidu"
	ServiceReplicate = "replicate"
)

// Services 返回全部已知的逻辑服务名
func Services() []string {
	return []string{ServiceOpenAI, ServiceRunway, ServiceLuma, ServiceVidu, ServiceReplicate}
}

// IsKnownService 判断服务名是否在固定集合内
func IsKnownService(service string) bool {
	for _, s := range Services() {
		if s == service {
			return true
		}
	}
	return false
}

// Resolver 按逻辑服务名解析密钥。缺失时返回 ("", false)。
type Resolver interface {
	Resolve(ctx context.Context, service string) (string, bool)
}

// Store 是可写入的密钥存储
type Store interface {
	Resolver
	Put(ctx context.Context, service, secret string) error
}

// ResolverFunc 将普通函数适配为 Resolver
type ResolverFunc func(ctx context.Context, service string) (string, bool)

// Resolve 实现 Resolver
func (f ResolverFunc) Resolve(ctx context.Context, service string) (string, bool) {
	return f(ctx, service)
}

// StaticResolver 基于内存 map 的只读 Resolver
type StaticResolver map[string]string

// Resolve 实现 Resolver
func (s StaticResolver) Resolve(_ context.Context, service string) (string, bool) {
	v := strings.TrimSpace(s[service])
	return v, v != ""
}

// Chain 依次尝试多个 Resolver
type Chain []Resolver

// NewChain 创建 Chain，忽略 nil 项
func NewChain(resolvers ...Resolver) Chain {
	c := make(Chain, 0, len(resolvers))
	for _, r := range resolvers {
		if r != nil {
			c = append(c, r)
		}
	}
	return c
}

// Resolve 返回第一个命中的密钥
func (c Chain) Resolve(ctx context.Context, service string) (string, bool) {
	for _, r := range c {
		if v, ok := r.Resolve(ctx, service); ok {
			return v, true
		}
	}
	return "", false
}

// Mask 返回仅保留末 4 位的密钥，用于日志与展示
func Mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
