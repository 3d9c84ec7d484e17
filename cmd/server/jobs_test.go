package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/catalog"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/db"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/migrations"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/pricing"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/store"
)

func newTestServer(t *testing.T) (*server, *store.SQLiteStore) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database, migrations.SQLiteDialect); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	jobs := store.NewSQLiteStore(database)
	return &server{
		store:   jobs,
		catalog: cat,
		writer:  store.NewSnapshotWriter(jobs, time.Hour),
	}, jobs
}

func medCarInputs() pricing.JobInputs {
	in := store.FallbackDefaults.NewInputs()
	in.VehiclePreset = "med_car"
	in.TotalSqft = 210
	return in
}

func withJobID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleJobsListOrdersNewestFirstAndFilters(t *testing.T) {
	srv, jobs := newTestServer(t)
	ctx := context.Background()

	for _, title := range []string{"Primera", "Segunda bakery", "Tercera"} {
		if _, err := jobs.CreateJob(ctx, title, "", medCarInputs(), store.Snapshot{}); err != nil {
			t.Fatalf("seed job: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var all []store.JobSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	if len(all) != 3 || all[0].Title != "Tercera" || all[2].Title != "Primera" {
		t.Fatalf("jobs are not sorted newest first: %+v", all)
	}

	rr = httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs?q=BAKERY", nil))

	var filtered []store.JobSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Title != "Segunda bakery" {
		t.Fatalf("expected 1 filtered job, got %+v", filtered)
	}
}

func TestHandleJobCreateStoresSnapshot(t *testing.T) {
	srv, jobs := newTestServer(t)

	in := medCarInputs()
	body, err := json.Marshal(createJobRequest{Title: " Delivery car ", Inputs: &in})
	if err != nil {
		t.Fatalf("encode request: %v", err)
	}

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created store.Job
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if created.Title != "Delivery car" || created.Snapshot.Sale != 4564 {
		t.Fatalf("unexpected created job: %+v", created)
	}

	stored, err := jobs.GetJob(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if stored.Snapshot.Sale != 4564 || stored.Snapshot.Cogs != 1141 || stored.Snapshot.GPM != 75 {
		t.Fatalf("unexpected stored snapshot: %+v", stored.Snapshot)
	}
	if stored.Inputs.EstHours != pricing.AutoHours(16) {
		t.Fatalf("expected est hours synced to 16, got %+v", stored.Inputs.EstHours)
	}
}

func TestHandleJobCreateFillsSqftFromPreset(t *testing.T) {
	srv, jobs := newTestServer(t)

	rr := httptest.NewRecorder()
	body := `{"title":"Sedan","inputs":{"jobType":"commercial","commercialSubtype":"vehicle","vehiclePreset":"med_car","leadType":"inbound","designFee":150,"ratePerHour":35,"marginTarget":75,"passes":1}}`
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created store.Job
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode job: %v", err)
	}

	stored, err := jobs.GetJob(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if stored.Inputs.TotalSqft != 210 {
		t.Fatalf("expected preset sqft 210, got %v", stored.Inputs.TotalSqft)
	}
	if stored.Snapshot.Material != 441 || stored.Snapshot.Sale != 4564 {
		t.Fatalf("unexpected stored snapshot: %+v", stored.Snapshot)
	}
}

func TestHandleJobCreateRejectsUnknownFields(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"titel":"typo"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleJobDetailReadsSnapshotWithoutRecalculation(t *testing.T) {
	srv, jobs := newTestServer(t)
	ctx := context.Background()

	job, err := jobs.CreateJob(ctx, "Stored", "", medCarInputs(), store.Snapshot{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	snap := store.Snapshot{Sale: 999.99, Cogs: 123.45}
	if err := jobs.UpdateSnapshot(ctx, job.ID, snap); err != nil {
		t.Fatalf("UpdateSnapshot: %v", err)
	}

	rr := httptest.NewRecorder()
	srv.handleJobDetail(rr, withJobID(httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID, nil), job.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var got store.Job
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if got.Snapshot != snap {
		t.Fatalf("expected stored snapshot %+v, got %+v", snap, got.Snapshot)
	}
}

func TestHandleJobDetailNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleJobDetail(rr, withJobID(httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil), "missing"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleJobInputsUpdateDebouncesSnapshot(t *testing.T) {
	srv, jobs := newTestServer(t)
	ctx := context.Background()

	job, err := jobs.CreateJob(ctx, "Trailer", "", store.FallbackDefaults.NewInputs(), store.Snapshot{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	in := store.FallbackDefaults.NewInputs()
	in.CommercialSubtype = pricing.SubtypeTrailer
	in.TrailerWidth = 8
	in.TrailerHeight = 8
	in.MarginTarget = 95
	for _, sqft := range []float64{100, 128} {
		in.TotalSqft = sqft
		body, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("encode inputs: %v", err)
		}

		rr := httptest.NewRecorder()
		srv.handleJobInputsUpdate(rr, withJobID(httptest.NewRequest(http.MethodPut, "/api/jobs/"+job.ID+"/inputs", bytes.NewReader(body)), job.ID))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
	}

	if got := srv.writer.Pending(); got != 1 {
		t.Fatalf("expected one pending snapshot, got %d", got)
	}

	before, err := jobs.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if before.Snapshot.Sale != 0 {
		t.Fatalf("snapshot written before debounce elapsed: %+v", before.Snapshot)
	}
	if before.Inputs.MarginTarget != 90 || before.Inputs.TotalSqft != 128 {
		t.Fatalf("inputs not saved or not clamped: %+v", before.Inputs)
	}

	if err := srv.writer.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	after, err := jobs.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	want := store.SnapshotOf(pricing.Calculate(before.Inputs, srv.catalog))
	if after.Snapshot != want {
		t.Fatalf("snapshot = %+v, want %+v", after.Snapshot, want)
	}
}

func TestHandleJobInputsUpdateFillsSqftOnPresetChange(t *testing.T) {
	srv, jobs := newTestServer(t)
	ctx := context.Background()

	job, err := jobs.CreateJob(ctx, "Sedan", "", store.FallbackDefaults.NewInputs(), store.Snapshot{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	put := func(in pricing.JobInputs) quoteResponse {
		t.Helper()
		body, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("encode inputs: %v", err)
		}
		rr := httptest.NewRecorder()
		srv.handleJobInputsUpdate(rr, withJobID(httptest.NewRequest(http.MethodPut, "/api/jobs/"+job.ID+"/inputs", bytes.NewReader(body)), job.ID))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var got quoteResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return got
	}

	in := store.FallbackDefaults.NewInputs()
	in.VehiclePreset = "med_car"
	selected := put(in)
	if selected.Inputs.TotalSqft != 210 || selected.Financials.Material != 441 || selected.Financials.Sale != 4564 {
		t.Fatalf("preset selection did not fill sqft: %+v", selected)
	}

	// Clearing sqft while the preset stays selected is kept.
	cleared := put(in)
	if cleared.Inputs.TotalSqft != 0 || cleared.Financials.Material != 0 {
		t.Fatalf("expected cleared sqft to stay empty: %+v", cleared)
	}
}

func TestHandleJobInputsUpdateNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	body, err := json.Marshal(store.FallbackDefaults.NewInputs())
	if err != nil {
		t.Fatalf("encode inputs: %v", err)
	}

	rr := httptest.NewRecorder()
	srv.handleJobInputsUpdate(rr, withJobID(httptest.NewRequest(http.MethodPut, "/api/jobs/missing/inputs", bytes.NewReader(body)), "missing"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if got := srv.writer.Pending(); got != 0 {
		t.Fatalf("expected nothing scheduled, got %d", got)
	}
}

func TestHandleQuoteCalcReturnsFinancials(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{}
	form.Set("vehicle_preset", "med_car")
	form.Set("lead_type", "outbound")
	form.Set("torq_completed", "1")

	req := httptest.NewRequest(http.MethodPost, "/quote/calc", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected json content type, got %q", rr.Header().Get("Content-Type"))
	}

	var got quoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Financials.Sale != 4564 || got.Financials.CommissionRate != 10 {
		t.Fatalf("unexpected financials: %+v", got.Financials)
	}
	if got.Inputs.EstHours != pricing.AutoHours(16) {
		t.Fatalf("expected synced est hours, got %+v", got.Inputs.EstHours)
	}
}

func TestHandleQuoteCalcRejectsUnknownRoofAddon(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/quote/calc", strings.NewReader("roof_addon=99"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleDefaults(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.routes()

	updated := store.FallbackDefaults
	updated.RatePerHour = 40
	updated.MarginTarget = 99
	body, err := json.Marshal(updated)
	if err != nil {
		t.Fatalf("encode defaults: %v", err)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/defaults", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/defaults", nil))

	var got store.Defaults
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode defaults: %v", err)
	}
	if got.RatePerHour != 40 || got.MarginTarget != 90 {
		t.Fatalf("unexpected defaults: %+v", got)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/defaults", strings.NewReader(`{"ratePerHour":-1}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for negative rate, got %d", rr.Code)
	}
}

func TestHandleCatalog(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))

	var got catalogResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(got.Vehicles) != 9 || len(got.PPFPackages) != 8 || len(got.RoofAddons) != 3 || len(got.GPTiers) != 3 {
		t.Fatalf("unexpected catalog: %+v", got)
	}
}

func TestHandleJobExports(t *testing.T) {
	srv, jobs := newTestServer(t)

	job, err := jobs.CreateJob(context.Background(), "Export me", "", medCarInputs(), store.Snapshot{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	rr := httptest.NewRecorder()
	srv.handleJobExcel(rr, withJobID(httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID+"/quote.xlsx", nil), job.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "quote-"+job.ID+".xlsx") {
		t.Fatalf("unexpected disposition: %q", rr.Header().Get("Content-Disposition"))
	}
	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not valid Excel: %v", err)
	}
	defer f.Close()
	if title, _ := f.GetCellValue("Quote", "A1"); title != "Export me" {
		t.Fatalf("unexpected title cell %q", title)
	}

	rr = httptest.NewRecorder()
	srv.handleJobPDF(rr, withJobID(httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID+"/quote.pdf", nil), job.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/pdf" || !strings.HasPrefix(rr.Body.String(), "%PDF-") {
		t.Fatalf("expected a pdf response")
	}

	rr = httptest.NewRecorder()
	srv.handleJobPDF(rr, withJobID(httptest.NewRequest(http.MethodGet, "/api/jobs/missing/quote.pdf", nil), "missing"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}
