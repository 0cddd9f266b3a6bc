package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/router"
	"github.com/manalab/backend/pkg/testutil"
	"github.com/manalab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
}

type echoResponse struct {
	Name   string `json:"name"`
	Limit  int    `json:"limit"`
	UserID string `json:"user_id"`
}

type envelope struct {
	Code  int64         `json:"code"`
	Error string        `json:"error"`
	Data  *echoResponse `json:"data"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Name is required")
	}

	return &echoResponse{Name: req.Name, Limit: req.Limit, UserID: xcontext.RequestUserID(ctx)}, nil
}

func serve(t *testing.T, r *router.Router, req *http.Request) envelope {
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRouter(t *testing.T) {
	r := router.New(testutil.MockContext())

	closed := 0
	r.AddCloser(func(ctx context.Context) { closed++ })

	authRouter := r.Branch()
	authRouter.Before(func(ctx context.Context) (context.Context, error) {
		if xcontext.HTTPRequest(ctx).Header.Get("Authorization") == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return xcontext.WithRequestUserID(ctx, "user1"), nil
	})

	router.GET(r, "/echo", echo)
	router.POST(authRouter, "/authEcho", echo)

	resp := serve(t, r, httptest.NewRequest(http.MethodGet, "/echo?name=abc&limit=7", nil))
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, &echoResponse{Name: "abc", Limit: 7}, resp.Data)

	resp = serve(t, r, httptest.NewRequest(http.MethodGet, "/echo", nil))
	require.Equal(t, int64(errorx.BadRequest), resp.Code)
	require.Equal(t, "Name is required", resp.Error)

	resp = serve(t, r, httptest.NewRequest(http.MethodGet, "/echo?name=abc&limit=x", nil))
	require.Equal(t, int64(errorx.BadRequest), resp.Code)

	req := httptest.NewRequest(http.MethodPost, "/authEcho", strings.NewReader(`{"name":"abc"}`))
	resp = serve(t, r, req)
	require.Equal(t, int64(errorx.Unauthenticated), resp.Code)

	req = httptest.NewRequest(http.MethodPost, "/authEcho", strings.NewReader(`{"name":"abc"}`))
	req.Header.Set("Authorization", "Bearer token")
	resp = serve(t, r, req)
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, "user1", resp.Data.UserID)

	req = httptest.NewRequest(http.MethodPost, "/authEcho", strings.NewReader(`{"name":`))
	req.Header.Set("Authorization", "Bearer token")
	resp = serve(t, r, req)
	require.Equal(t, int64(errorx.BadRequest), resp.Code)

	// The branch does not leak its middlewares into the parent router.
	resp = serve(t, r, httptest.NewRequest(http.MethodGet, "/echo?name=abc", nil))
	require.Equal(t, "", resp.Data.UserID)

	require.Equal(t, 7, closed)
}
