package claimsctx

import (
	"context"

	"github.com/avelinsk/authgate/internal/service/auth/tokensigner"
)

type ctxKey string

const claimsKey ctxKey = "claims"

func New(ctx context.Context, claims tokensigner.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func FromContext(ctx context.Context) (tokensigner.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(tokensigner.AccessClaims)
	return claims, ok
}
