package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/fairyhunter13/product-catalog-manager/internal/config"
	httpapi "github.com/fairyhunter13/product-catalog-manager/internal/http"
	"github.com/fairyhunter13/product-catalog-manager/internal/model"
	"github.com/fairyhunter13/product-catalog-manager/internal/persist"
	"github.com/fairyhunter13/product-catalog-manager/internal/seed"
	"github.com/fairyhunter13/product-catalog-manager/internal/store"
)

func TestIntegration_WriteThenReload(t *testing.T) {
	for _, driver := range []string{config.DriverFile, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			cfg := config.Default()
			cfg.Storage = config.StorageConfig{Driver: driver, Path: filepath.Join(t.TempDir(), "catalog")}

			backend, err := persist.Open(cfg.Storage, true)
			if err != nil {
				t.Fatalf("open backend: %v", err)
			}
			if err := backend.Persist(ctx, seed.Generate(5, 1, time.Now())); err != nil {
				t.Fatalf("seed: %v", err)
			}
			st, err := store.Open(ctx, backend, store.Options{})
			if err != nil {
				t.Fatalf("open store: %v", err)
			}
			h := httpapi.NewRouter(httpapi.NewApp(cfg, st))

			for i := 0; i < 10; i++ {
				body := fmt.Sprintf(`{"productName":"New %d","productOwner":"Grace","developers":["Ivy","Jake"],"scrumMaster":"Ian","startDate":"2024-0%d-15","methodology":"Agile"}`, i, i%9+1)
				r := httptest.NewRequest(http.MethodPost, "/api/product", bytes.NewBufferString(body))
				r.Header.Set("Content-Type", "application/json")
				w := httptest.NewRecorder()
				h.ServeHTTP(w, r)
				if w.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
				}
				var p model.Product
				if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if p.ProductNumber != 6+i {
					t.Fatalf("expected product number %d, got %d", 6+i, p.ProductNumber)
				}
			}

			r := httptest.NewRequest(http.MethodPut, "/api/product/3", bytes.NewBufferString(
				`{"productName":"Renamed","productOwner":"Henry","developers":["Luke"],"scrumMaster":"Jenna","startDate":"2022-12-31","methodology":"Waterfall"}`))
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}

			wg := httptest.NewRecorder()
			h.ServeHTTP(wg, httptest.NewRequest(http.MethodGet, "/api/products?developerName=Ivy", nil))
			var ivy []model.Product
			if err := json.Unmarshal(wg.Body.Bytes(), &ivy); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(ivy) < 10 {
				t.Fatalf("expected at least 10 products with Ivy, got %d", len(ivy))
			}

			before := st.All()
			if err := backend.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			reopened, err := persist.Open(cfg.Storage, false)
			if err != nil {
				t.Fatalf("reopen backend: %v", err)
			}
			defer reopened.Close()
			again, err := store.Open(ctx, reopened, store.Options{})
			if err != nil {
				t.Fatalf("reload store: %v", err)
			}
			if diff := cmp.Diff(before, again.All()); diff != "" {
				t.Fatalf("reloaded collection differs (-before +after):\n%s", diff)
			}
		})
	}
}
