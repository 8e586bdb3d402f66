package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/USSTM/swagger-analyzer/internal/config"
	"github.com/go-chi/cors"
)

// headers browsers must see on every cross-origin call: the download name
// and the request id used for log correlation
var requiredExposed = []string{"Content-Disposition", RequestIDHeader}

// uploads are multipart, so Content-Type must always be allowed
var requiredAllowed = []string{"Content-Type", RequestIDHeader}

func NewCORSHandler(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   withRequired(cfg.AllowedHeaders, requiredAllowed),
		ExposedHeaders:   withRequired(cfg.ExposedHeaders, requiredExposed),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}

func withRequired(configured, required []string) []string {
	out := slices.Clone(configured)
	for _, h := range required {
		if !slices.ContainsFunc(out, func(c string) bool { return strings.EqualFold(c, h) }) {
			out = append(out, h)
		}
	}
	return out
}
