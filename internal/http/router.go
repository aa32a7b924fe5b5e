package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", app.listProductsHandler)
	mux.HandleFunc("GET /api/product/{productNumber}", app.getProductHandler)
	mux.HandleFunc("POST /api/product", app.createProductHandler)
	mux.HandleFunc("PUT /api/product/{productNumber}", app.updateProductHandler)
	mux.HandleFunc("GET /healthz", app.healthHandler)
	mux.HandleFunc("GET /debug/metrics", app.metricsHandler)
	mux.Handle("GET /debug/vars", expvar.Handler())
	mux.HandleFunc("GET /openapi.yaml", app.openapiHandler)
	mux.HandleFunc("GET /docs", app.docsHandler)
	return WithRequestID(WithLogging(WithCORS(app.Cfg.CORSAllowedOrigin, mux)))
}
