package api

import (
	"net/http"

	"github.com/USSTM/swagger-analyzer/internal/config"
	"github.com/USSTM/swagger-analyzer/internal/metrics"
	"github.com/USSTM/swagger-analyzer/internal/middleware"
	"github.com/USSTM/swagger-analyzer/internal/swagger"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
)

type RouterOptions struct {
	CORS           *config.CORSConfig
	Metrics        metrics.HTTPMetrics
	MetricsHandler http.Handler
}

// NewRouter mounts the HTML shell, the validated JSON API and the docs.
func NewRouter(s *Server, opts RouterOptions) (http.Handler, error) {
	spec, err := swagger.GetSwagger()
	if err != nil {
		return nil, err
	}
	// paths in the document are absolute
	spec.Servers = nil

	validator := oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			// multipart bodies are checked by the handler
			ExcludeRequestBody: true,
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			e := ValidationErr(message, nil)
			if statusCode == http.StatusNotFound {
				e = NotFound("Route")
			}
			writeJSON(w, statusCode, e.Create())
		},
	})

	r := chi.NewMux()
	r.Use(middleware.RequestContext)
	r.Use(middleware.Logging(opts.Metrics))
	if opts.CORS != nil {
		r.Use(middleware.NewCORSHandler(opts.CORS))
	}

	r.Get("/", s.Index)
	r.Post("/inputs", s.UploadForm)
	r.Post("/generate", s.GenerateForm)
	r.Get("/download", s.DownloadForm)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(validator)
		r.Get("/health", s.HealthCheck)
		r.Get("/credential", s.CredentialStatus)
		r.Get("/inputs", s.GetInputs)
		r.Post("/inputs", s.UploadInputs)
		r.Post("/generations", s.CreateGeneration)
		r.Get("/generations/latest", s.DownloadLatest)
	})

	r.Get(swagger.DocPath, swagger.ServeSwaggerJSON)
	r.Get("/swagger/*", swagger.UIHandler())

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	return r, nil
}
