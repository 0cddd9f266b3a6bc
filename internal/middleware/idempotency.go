package middleware

import (
	"context"

	"github.com/manalab/backend/pkg/router"
	"github.com/manalab/backend/pkg/xcontext"
)

const idempotencyKeyHeader = "Idempotency-Key"

func IdempotencyKey() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		key := xcontext.HTTPRequest(ctx).Header.Get(idempotencyKeyHeader)
		if key == "" {
			return nil, nil
		}

		return xcontext.WithIdempotencyKey(ctx, key), nil
	}
}
