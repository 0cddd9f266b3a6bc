package xcontext

import (
	"context"
)

// AccessToken is the identity carried by a verified access token. Tokens are issued by the
// identity service; this backend only verifies them.
type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestUserKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, _ := ctx.Value(requestUserKey{}).(string)
	return id
}

func WithAccessToken(ctx context.Context, token AccessToken) context.Context {
	ctx = context.WithValue(ctx, accessTokenKey{}, token)
	return WithRequestUserID(ctx, token.ID)
}

func RequestAccessToken(ctx context.Context) AccessToken {
	token, _ := ctx.Value(accessTokenKey{}).(AccessToken)
	return token
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}
