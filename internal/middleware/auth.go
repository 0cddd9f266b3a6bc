package middleware

import (
	"context"
	"strings"

	"github.com/manalab/backend/pkg/authenticator"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/router"
	"github.com/manalab/backend/pkg/xcontext"
)

type AuthVerifier struct {
	engine authenticator.TokenEngine[xcontext.AccessToken]
}

func NewAuthVerifier(engine authenticator.TokenEngine[xcontext.AccessToken]) *AuthVerifier {
	return &AuthVerifier{engine: engine}
}

// Middleware binds the identity of a verified access token to the request. The token is read
// from the Authorization header first, then from the access token cookie.
func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		raw := accessToken(ctx)
		if raw == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		token, err := a.engine.Verify(raw)
		if err != nil || token.ID == "" {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithAccessToken(ctx, token), nil
	}
}

func accessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	auth, token, found := strings.Cut(req.Header.Get("Authorization"), " ")
	if found {
		if auth == "Bearer" {
			return token
		}
		return ""
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessTokenName)
	if err != nil {
		return ""
	}

	return cookie.Value
}
