package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/catalog"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/export"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/pricing"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/store"
)

const maxBodyBytes = 1 << 20

type catalogResponse struct {
	Vehicles    []catalog.VehiclePreset `json:"vehicles"`
	PPFPackages []catalog.PPFPackage    `json:"ppfPackages"`
	RoofAddons  []float64               `json:"roofAddons"`
	GPTiers     []catalog.GPTier        `json:"gpTiers"`
}

type quoteResponse struct {
	Inputs     pricing.JobInputs          `json:"inputs"`
	Financials pricing.ComputedFinancials `json:"financials"`
}

type createJobRequest struct {
	Title  string             `json:"title"`
	Notes  string             `json:"notes"`
	Inputs *pricing.JobInputs `json:"inputs"`
}

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Vehicles:    s.catalog.Vehicles(),
		PPFPackages: s.catalog.PPFPackages(),
		RoofAddons:  s.catalog.RoofAddons(),
		GPTiers:     s.catalog.GPTiers(),
	})
}

func (s *server) handleQuoteCalc(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.store.GetDefaults(r.Context())
	if err != nil {
		http.Error(w, "failed to load quote defaults", http.StatusInternalServerError)
		return
	}

	in, err := parseJobInputsForm(r, defaults.NewInputs(), s.catalog)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.evaluate(in))
}

func (s *server) handleDefaultsGet(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.store.GetDefaults(r.Context())
	if err != nil {
		http.Error(w, "failed to load quote defaults", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, defaults)
}

func (s *server) handleDefaultsUpdate(w http.ResponseWriter, r *http.Request) {
	var d store.Defaults
	if err := decodeJSON(w, r, &d); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validateDefaults(d); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d.MarginTarget = pricing.ClampMarginTarget(d.MarginTarget)

	if err := s.store.UpdateDefaults(r.Context(), d); err != nil {
		http.Error(w, "failed to save quote defaults", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleJobsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	jobs, err := s.store.ListJobs(r.Context(), query)
	if err != nil {
		http.Error(w, "failed to load jobs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *server) handleJobCreate(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var in pricing.JobInputs
	if req.Inputs != nil {
		in = *req.Inputs
	} else {
		defaults, err := s.store.GetDefaults(r.Context())
		if err != nil {
			http.Error(w, "failed to load quote defaults", http.StatusInternalServerError)
			return
		}
		in = defaults.NewInputs()
	}

	if err := s.validateInputs(in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	quote := s.evaluate(s.selectVehiclePreset(in, ""))
	job, err := s.store.CreateJob(r.Context(), strings.TrimSpace(req.Title), strings.TrimSpace(req.Notes), quote.Inputs, store.SnapshotOf(quote.Financials))
	if err != nil {
		http.Error(w, "failed to create job", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

// handleJobDetail serves the stored job as last written, without repricing.
func (s *server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *server) handleJobInputsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in pricing.JobInputs
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.validateInputs(in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}

	quote := s.evaluate(s.selectVehiclePreset(in, job.Inputs.VehiclePreset))
	err := s.store.SaveInputs(r.Context(), id, quote.Inputs)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to save job inputs", http.StatusInternalServerError)
		return
	}

	s.writer.Schedule(id, store.SnapshotOf(quote.Financials))
	writeJSON(w, http.StatusOK, quote)
}

func (s *server) handleJobExcel(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}

	data, err := export.GenerateExcel(s.quoteSheet(job))
	if err != nil {
		log.Printf("generate excel for job %s: %v", job.ID, err)
		http.Error(w, "failed to generate excel", http.StatusInternalServerError)
		return
	}

	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "quote-"+job.ID+".xlsx", data)
}

func (s *server) handleJobPDF(w http.ResponseWriter, r *http.Request) {
	job, ok := s.loadJob(w, r)
	if !ok {
		return
	}

	data, err := export.GeneratePDF(s.quoteSheet(job))
	if err != nil {
		log.Printf("generate pdf for job %s: %v", job.ID, err)
		http.Error(w, "failed to generate pdf", http.StatusInternalServerError)
		return
	}

	writeAttachment(w, "application/pdf", "quote-"+job.ID+".pdf", data)
}

// evaluate clamps the margin target, prices in and syncs its estimated hours
// with the result.
func (s *server) evaluate(in pricing.JobInputs) quoteResponse {
	in.MarginTarget = pricing.ClampMarginTarget(in.MarginTarget)
	financials := pricing.Calculate(in, s.catalog)
	in.EstHours = in.EstHours.Sync(financials.Hours)
	return quoteResponse{Inputs: in, Financials: financials}
}

// selectVehiclePreset fills an empty square footage from the vehicle preset
// when in selects a preset other than previous.
func (s *server) selectVehiclePreset(in pricing.JobInputs, previous string) pricing.JobInputs {
	if in.VehiclePreset == "" || in.VehiclePreset == previous {
		return in
	}
	return pricing.ApplyVehiclePreset(in, s.catalog, in.VehiclePreset)
}

func (s *server) quoteSheet(job store.Job) export.QuoteSheet {
	return export.NewQuoteSheet(job, pricing.Calculate(job.Inputs, s.catalog))
}

func (s *server) loadJob(w http.ResponseWriter, r *http.Request) (store.Job, bool) {
	job, err := s.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return store.Job{}, false
	}
	if err != nil {
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return store.Job{}, false
	}
	return job, true
}

func (s *server) validateInputs(in pricing.JobInputs) error {
	if !s.catalog.IsRoofAddon(in.RoofAddon) {
		return fmt.Errorf("roofAddon must be one of %v", s.catalog.RoofAddons())
	}
	return nil
}

func validateDefaults(d store.Defaults) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"designFee", d.DesignFee},
		{"miscCosts", d.MiscCosts},
		{"ratePerHour", d.RatePerHour},
		{"laborPctTrailer", d.LaborPctTrailer},
		{"laborPctBoxTruck", d.LaborPctBoxTruck},
		{"laborPctMarine", d.LaborPctMarine},
		{"passes", d.Passes},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%s must be >= 0", f.name)
		}
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json response: %v", err)
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("write %s: %v", filename, err)
	}
}
