package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/uxlens/journeyflow/pkg/journey"
	"github.com/uxlens/journeyflow/pkg/pipeline"
	"github.com/uxlens/journeyflow/pkg/store"
)

func sampleJourneys() []journey.Journey {
	return []journey.Journey{
		{Name: "U1", Steps: []journey.Step{
			{ScreenName: "Home"},
			{ScreenName: "Cart"},
			{ScreenName: "Home"},
			{ScreenName: "Checkout"},
		}},
		{Name: "U2", Steps: []journey.Step{
			{ScreenName: "Home"},
			{ScreenName: "Search"},
		}},
	}
}

type fakeFetcher struct {
	journeys []journey.Journey
	calls    int
	err      error
}

func (f *fakeFetcher) FetchJourneys(ctx context.Context, project string, refresh bool) ([]journey.Journey, error) {
	f.calls++
	return f.journeys, f.err
}

func newTestServer(t *testing.T, st store.Store, fetcher pipeline.Fetcher) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(Options{
		Runner:  pipeline.NewRunner(nil, nil, logger),
		Store:   st,
		Fetcher: fetcher,
		Logger:  logger,
	})
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := doRequest(t, srv.Router(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestComputeFlow(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st, nil)

	rec := doRequest(t, srv.Router(), http.MethodPost, "/v1/flow", computeRequest{
		Project:  "shop-app",
		Journeys: sampleJourneys(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp flowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Journeys != 2 {
		t.Errorf("Journeys = %d, want 2", resp.Journeys)
	}
	if len(resp.Flow.ScreenOrder) != 4 {
		t.Errorf("ScreenOrder = %v, want 4 screens", resp.Flow.ScreenOrder)
	}
	if resp.ReportID == "" {
		t.Error("report not persisted")
	}
	if resp.JourneysHash == "" {
		t.Error("JourneysHash not set")
	}

	report, err := st.Get(context.Background(), resp.ReportID)
	if err != nil {
		t.Fatalf("stored report: %v", err)
	}
	if report.Project != "shop-app" {
		t.Errorf("report.Project = %q", report.Project)
	}
}

func TestComputeFlow_NoProjectSkipsStore(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st, nil)

	rec := doRequest(t, srv.Router(), http.MethodPost, "/v1/flow", computeRequest{
		Journeys: sampleJourneys(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp flowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ReportID != "" {
		t.Errorf("ReportID = %q, want empty", resp.ReportID)
	}
}

func TestComputeFlow_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	router := srv.Router()

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing journeys", computeRequest{Project: "shop-app"}, http.StatusBadRequest},
		{"bad project name", computeRequest{Project: "../etc", Journeys: sampleJourneys()}, http.StatusBadRequest},
		{"journey name with null byte", computeRequest{Journeys: []journey.Journey{{Name: "U\x001", Steps: []journey.Step{{ScreenName: "Home"}}}}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/v1/flow", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body: %v", err)
			}
			if resp.Code == "" {
				t.Error("error code not set")
			}
		})
	}
}

func TestProjectFlow_ServesStoredReport(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st, nil)
	router := srv.Router()

	rec := doRequest(t, router, http.MethodPost, "/v1/flow", computeRequest{
		Project:  "shop-app",
		Journeys: sampleJourneys(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("seed: status = %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/projects/shop-app/flow", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp flowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Cached {
		t.Error("stored report should be marked cached")
	}
	if len(resp.Flow.ScreenOrder) != 4 {
		t.Errorf("ScreenOrder = %v", resp.Flow.ScreenOrder)
	}
}

func TestProjectFlow_FetchesWhenEmpty(t *testing.T) {
	st := store.NewMemoryStore()
	fetcher := &fakeFetcher{journeys: sampleJourneys()}
	srv := newTestServer(t, st, fetcher)

	rec := doRequest(t, srv.Router(), http.MethodGet, "/v1/projects/shop-app/flow", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls)
	}
	var resp flowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ReportID == "" {
		t.Error("fetched layout not persisted")
	}
}

func TestProjectFlow_RefreshBypassesStore(t *testing.T) {
	st := store.NewMemoryStore()
	fetcher := &fakeFetcher{journeys: sampleJourneys()}
	srv := newTestServer(t, st, fetcher)
	router := srv.Router()

	if rec := doRequest(t, router, http.MethodGet, "/v1/projects/shop-app/flow", nil); rec.Code != http.StatusOK {
		t.Fatalf("seed: status = %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/v1/projects/shop-app/flow?refresh=true", nil); rec.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d", rec.Code)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want 2", fetcher.calls)
	}
}

func TestProjectFlow_NoBackendNoReport(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), nil)
	rec := doRequest(t, srv.Router(), http.MethodGet, "/v1/projects/shop-app/flow", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (body %s)", rec.Code, rec.Body)
	}
}

func TestReportEndpoints(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st, nil)
	router := srv.Router()

	rec := doRequest(t, router, http.MethodPost, "/v1/flow", computeRequest{
		Project:  "shop-app",
		Journeys: sampleJourneys(),
	})
	var created flowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/reports/"+created.ReportID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	var report store.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.ID != created.ReportID {
		t.Errorf("report.ID = %q, want %q", report.ID, created.ReportID)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/projects/shop-app/reports", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var reports []store.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &reports); err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Errorf("got %d reports, want 1", len(reports))
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/reports/"+created.ReportID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodDelete, "/v1/reports/"+created.ReportID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestReportEndpoints_BadID(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), nil)
	rec := doRequest(t, srv.Router(), http.MethodGet, "/v1/reports/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListReports_Limit(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st, nil)
	router := srv.Router()

	for i := 0; i < 3; i++ {
		body := computeRequest{Project: "shop-app", Journeys: sampleJourneys()}
		if rec := doRequest(t, router, http.MethodPost, "/v1/flow", body); rec.Code != http.StatusOK {
			t.Fatalf("seed %d: status = %d", i, rec.Code)
		}
	}

	rec := doRequest(t, router, http.MethodGet, "/v1/projects/shop-app/reports?limit=2", nil)
	var reports []store.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &reports); err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Errorf("got %d reports, want 2", len(reports))
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/projects/shop-app/reports?limit=nope", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d, want 400", rec.Code)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "gateway-id-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "gateway-id-1" {
		t.Errorf("X-Request-ID = %q, want gateway-id-1", got)
	}
}

func ExampleServer() {
	srv := New(Options{
		Runner: pipeline.NewRunner(nil, nil, log.NewWithOptions(io.Discard, log.Options{})),
		Store:  store.NewMemoryStore(),
	})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	fmt.Println(rec.Code)
	// Output: 200
}
