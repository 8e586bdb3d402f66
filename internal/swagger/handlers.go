package swagger

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

const DocPath = "/swagger/doc.json"

//go:embed openapi.yaml
var specYAML []byte

// GetSwagger loads and validates the service's own API document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return spec, nil
}

// OpenAPI spec as JSON
func ServeSwaggerJSON(w http.ResponseWriter, r *http.Request) {
	spec, err := GetSwagger()
	if err != nil {
		http.Error(w, "Failed to load OpenAPI spec", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS off for docs
	_ = json.NewEncoder(w).Encode(spec)
}

// UIHandler serves Swagger UI pointed at DocPath.
func UIHandler() http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL(DocPath))
}
