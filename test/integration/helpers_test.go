package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// These tests drive a running server. Start one with
//
//	product-catalog seed && product-catalog serve
//
// and run them with BASE_URL=http://localhost:8080 go test ./test/integration.
func baseURL() string {
	return os.Getenv("BASE_URL")
}

func waitReady(t *testing.T) string {
	t.Helper()
	u := baseURL()
	if u == "" {
		t.Skip("BASE_URL not set")
	}
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(u + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			return u
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("service not ready")
	return ""
}

type product struct {
	ProductNumber int      `json:"productNumber"`
	ProductName   string   `json:"productName"`
	ProductOwner  string   `json:"productOwner"`
	Developers    []string `json:"developers"`
	ScrumMaster   string   `json:"scrumMaster"`
	StartDate     string   `json:"startDate"`
	Methodology   string   `json:"methodology"`
}

func newPayload(methodology string, devs ...string) map[string]any {
	return map[string]any{
		"productName":  "it-" + uuid.NewString(),
		"productOwner": "Integration Owner",
		"developers":   devs,
		"scrumMaster":  "Integration SM",
		"startDate":    "2024-01-15",
		"methodology":  methodology,
	}
}

func send(t *testing.T, method, url string, payload any) *http.Response {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := http.NewRequest(method, url, bytes.NewBuffer(b))
	r.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode %s: %v", resp.Request.URL, err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d", resp.Request.Method, resp.Request.URL, want, resp.StatusCode)
	}
}

func productURL(u string, n int) string { return fmt.Sprintf("%s/api/product/%d", u, n) }
