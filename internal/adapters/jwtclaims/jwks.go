package jwtclaims

import (
	"context"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
)

// NewRemoteJWKS returns a decoder backed by a go-oidc remote key set. Keys are
// fetched lazily and cached; ctx bounds background key refreshes.
func NewRemoteJWKS(ctx context.Context, jwksURL string) (*Decoder, error) {
	return NewJWKS(gooidc.NewRemoteKeySet(ctx, jwksURL))
}
