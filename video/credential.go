package video

import (
	"context"

	"github.com/BaSui01/videoflow/credentials"
	"github.com/BaSui01/videoflow/types"
)

// resolveSecret 在任何网络调用之前解析密钥
func resolveSecret(ctx context.Context, r credentials.Resolver, provider, service string) (string, error) {
	if r == nil {
		return "", types.MissingCredential(provider, service)
	}
	secret, ok := r.Resolve(ctx, service)
	if !ok || secret == "" {
		return "", types.MissingCredential(provider, service)
	}
	return secret, nil
}
