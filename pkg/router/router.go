package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/manalab/backend/pkg/xcontext"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before or after the handler. A returned nil context keeps the current
// one.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response has been written, whatever the result.
type CloserFunc func(ctx context.Context)

type Router struct {
	inner gin.IRouter

	// ctx carries the configs, logger and database shared by every request.
	ctx context.Context

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(ctx context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{inner: engine, ctx: ctx}
}

// Branch returns a router sharing the routes of r whose middlewares can be extended without
// affecting r.
func (r *Router) Branch() *Router {
	return &Router{
		inner:   r.inner,
		ctx:     r.ctx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]MiddlewareFunc{}, r.afters...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// Static mounts a plain http.Handler, such as the metrics exporter, outside of the JSON
// envelope.
func (r *Router) Static(method, pattern string, handler http.Handler) {
	r.inner.Handle(method, pattern, gin.WrapH(handler))
}

func (r *Router) Handler() http.Handler {
	return r.inner.(*gin.Engine)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.inner.GET(pattern, wrapHandler(r, bindQuery[Request], handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.inner.POST(pattern, wrapHandler(r, bindJSON[Request], handler))
}

func wrapHandler[Request, Response any](
	r *Router,
	bind func(*http.Request) (*Request, error),
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	befores, afters, closers := r.befores, r.afters, r.closers

	return func(c *gin.Context) {
		ctx := xcontext.WithHTTPRequest(r.ctx, c.Request)
		ctx = xcontext.WithStartTime(ctx, time.Now())

		ctx, err := serve(ctx, befores, afters, func(ctx context.Context) (any, error) {
			req, err := bind(c.Request)
			if err != nil {
				return nil, err
			}

			resp, err := handler(ctx, req)
			if err != nil {
				return nil, err
			}

			return resp, nil
		})

		ctx = xcontext.WithError(ctx, err)
		writeResponse(ctx, c)

		for _, closer := range closers {
			closer(ctx)
		}
	}
}

func serve(
	ctx context.Context,
	befores, afters []MiddlewareFunc,
	handle func(context.Context) (any, error),
) (context.Context, error) {
	ctx, err := runMiddlewares(ctx, befores)
	if err != nil {
		return ctx, err
	}

	resp, err := handle(ctx)
	if err != nil {
		return ctx, err
	}

	ctx = xcontext.WithResponse(ctx, resp)
	return runMiddlewares(ctx, afters)
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, middleware := range middlewares {
		newCtx, err := middleware(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}
