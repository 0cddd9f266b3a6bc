package middleware

import (
	"context"

	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/router"
	"github.com/manalab/backend/pkg/xcontext"
)

// OnlyAdmin must run after the auth middleware.
func OnlyAdmin() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if xcontext.RequestAccessToken(ctx).Role != xcontext.Configs(ctx).Auth.AdminRole {
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		return nil, nil
	}
}
