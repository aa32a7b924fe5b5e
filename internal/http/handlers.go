package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/product-catalog-manager/internal/config"
	"github.com/fairyhunter13/product-catalog-manager/internal/filter"
	httpopenapi "github.com/fairyhunter13/product-catalog-manager/internal/http/openapi"
	"github.com/fairyhunter13/product-catalog-manager/internal/model"
	"github.com/fairyhunter13/product-catalog-manager/internal/obs"
	"github.com/fairyhunter13/product-catalog-manager/internal/store"
	"github.com/fairyhunter13/product-catalog-manager/internal/validate"
)

const maxBodyBytes = 1 << 20

type App struct {
	Cfg       config.Config
	Store     *store.Store
	Validator *validate.Validator
	closing   atomic.Bool
	started   time.Time

	created  atomic.Uint64
	updated  atomic.Uint64
	rejected atomic.Uint64
}

func NewApp(cfg config.Config, st *store.Store) *App {
	v := validate.New(validate.Options{RequireStartDate: !cfg.StampStartDate()})
	return &App{Cfg: cfg, Store: st, Validator: v, started: time.Now()}
}

// StartShutdown makes write endpoints answer 503 while in-flight requests
// finish.
func (a *App) StartShutdown() {
	a.closing.Store(true)
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	f := filter.FromQuery(r.URL.Query())
	out, err := filter.Apply(a.Store.All(), f)
	var nm *filter.NoMatchError
	if errors.As(err, &nm) {
		WriteJSONError(w, http.StatusNotFound, "not_found", nm.Error())
		return
	}
	if out == nil {
		out = []model.Product{}
	}
	writeJSON(w, out)
}

func pathNumber(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(r.PathValue("productNumber"))
	return n, err == nil
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	n, ok := pathNumber(r)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "product number must be an integer")
		return
	}
	p, ok := a.Store.Get(n)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", fmt.Sprintf("product %d not found", n))
		return
	}
	writeJSON(w, p)
}

// readPayload checks the request preamble and decodes the JSON object body.
// It writes the error response itself and reports whether to continue.
func (a *App) readPayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return nil, false
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return nil, false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return nil, false
	}
	if payload == nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", "expected a JSON object")
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", "unexpected data after the JSON object")
		return nil, false
	}
	return payload, true
}

func (a *App) validationFailed(w http.ResponseWriter, r *http.Request, err error) {
	a.rejected.Add(1)
	obs.Logger.Infow("product_rejected",
		"request_id", RequestIDFromContext(r.Context()),
		"reason", err.Error(),
	)
	WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
}

func (a *App) storeFailed(w http.ResponseWriter, r *http.Request, err error) {
	reqID := RequestIDFromContext(r.Context())
	switch {
	case errors.Is(err, store.ErrDuplicateName):
		a.rejected.Add(1)
		WriteJSONError(w, http.StatusBadRequest, "duplicate_product_name", "Product name already exists.")
	case errors.Is(err, store.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		obs.Logger.Errorw("store_write_failed", "request_id", reqID, "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "persistence_error", "")
	}
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	payload, ok := a.readPayload(w, r)
	if !ok {
		return
	}
	draft, err := a.Validator.Validate(payload)
	if err != nil {
		a.validationFailed(w, r, err)
		return
	}
	p, err := a.Store.Create(r.Context(), draft)
	if err != nil {
		a.storeFailed(w, r, err)
		return
	}
	a.created.Add(1)
	obs.Logger.Infow("product_created",
		"request_id", RequestIDFromContext(r.Context()),
		"product_number", p.ProductNumber,
		"product_name", p.ProductName,
	)
	writeJSON(w, p)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	n, ok := pathNumber(r)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "product number must be an integer")
		return
	}
	payload, ok := a.readPayload(w, r)
	if !ok {
		return
	}
	draft, err := a.Validator.Validate(payload)
	if err != nil {
		a.validationFailed(w, r, err)
		return
	}
	if raw, present := payload[validate.FieldProductNumber]; present && raw != nil {
		if body, _ := validate.Number(raw); body != n {
			a.validationFailed(w, r, validate.Violations{{
				Field:   validate.FieldProductNumber,
				Message: fmt.Sprintf("%q must match the path product number %d", validate.FieldProductNumber, n),
			}})
			return
		}
	}
	p, err := a.Store.Update(r.Context(), n, draft)
	if err != nil {
		a.storeFailed(w, r, err)
		return
	}
	a.updated.Add(1)
	obs.Logger.Infow("product_updated",
		"request_id", RequestIDFromContext(r.Context()),
		"product_number", p.ProductNumber,
	)
	writeJSON(w, p)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	m := map[string]any{
		"product_count":     a.Store.Len(),
		"products_created":  a.created.Load(),
		"products_updated":  a.updated.Load(),
		"writes_rejected":   a.rejected.Load(),
		"start_date_source": a.Cfg.StartDateSource,
		"storage_driver":    a.Cfg.Storage.Driver,
		"uptime_sec":        time.Since(a.started).Seconds(),
	}
	writeJSON(w, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Product Catalog API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
