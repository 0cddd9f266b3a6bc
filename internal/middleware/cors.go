package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

func AllowCors(allowOrigins []string, handler http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", idempotencyKeyHeader},
		AllowCredentials: true,
	}).Handler(handler)
}
