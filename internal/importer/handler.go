package importer

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"Pumpwise/internal/auth"
	"Pumpwise/internal/calc/pump"
	"Pumpwise/internal/calc/pumpdata"
	"Pumpwise/internal/report"
	repo "Pumpwise/internal/repo"
)

// Handler serves the workbook-driven analysis endpoints. Repo may be
// nil, in which case results are not persisted.
type Handler struct {
	Repo repo.Repository
}

type analysisSummary struct {
	Site                    string  `json:"site"`
	Tag                     string  `json:"tag"`
	VSDAnnualSaving         float64 `json:"vsd_annual_saving"`
	ImpellerAnnualSaving    float64 `json:"impeller_annual_saving"`
	VSDNetPresentValue      float64 `json:"vsd_npv"`
	ImpellerNetPresentValue float64 `json:"impeller_npv"`
}

// Analyze runs the full pipeline on an uploaded equipment workbook and
// returns the processed result as JSON.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	res, ok := h.process(w, r)
	if !ok {
		return
	}
	h.persist(r, res)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// ReportXlsx runs the analysis and streams the result workbook.
func (h *Handler) ReportXlsx(w http.ResponseWriter, r *http.Request) {
	res, ok := h.process(w, r)
	if !ok {
		return
	}
	h.persist(r, res)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Design.Tag+".xlsx"))
	if err := report.WriteWorkbook(w, res); err != nil {
		log.Printf("Workbook error: %v", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
	}
}

// ReportPDF runs the analysis and streams the summary PDF.
func (h *Handler) ReportPDF(w http.ResponseWriter, r *http.Request) {
	res, ok := h.process(w, r)
	if !ok {
		return
	}
	h.persist(r, res)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Design.Tag+".pdf"))
	if err := report.PDF(w, res); err != nil {
		log.Printf("PDF error: %v", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
	}
}

// ListAnalyses returns the caller's persisted analysis runs.
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok || h.Repo == nil {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	analyses, err := h.Repo.ListAnalyses(r.Context(), userID, q.Get("site"), q.Get("tag"))
	if err != nil {
		log.Printf("ListAnalyses Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analyses)
}

// process parses the multipart upload and runs the pipeline, writing
// the HTTP error itself when anything fails.
func (h *Handler) process(w http.ResponseWriter, r *http.Request) (*pump.Result, bool) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	site := r.FormValue("site")
	if site == "" {
		http.Error(w, "Site required", http.StatusBadRequest)
		return nil, false
	}

	eq, err := LoadEquipment(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	cfg := pumpdata.DefaultConfig()
	factors := map[string]float64{}
	if cfgFile, _, err := r.FormFile("config"); err == nil {
		defer cfgFile.Close()
		cfg, factors, err = LoadConfig(cfgFile)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
	} else if v, err := strconv.ParseFloat(r.FormValue("emission_factor"), 64); err == nil {
		factors[site] = v
	}

	res, err := pump.Process(pump.Input{
		Site:            site,
		Design:          eq.Design,
		Operation:       eq.Operation,
		Units:           eq.Units,
		Config:          cfg,
		EmissionFactors: factors,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return res, true
}

// persist best-effort saves a summary for the authenticated caller.
func (h *Handler) persist(r *http.Request, res *pump.Result) {
	if h.Repo == nil {
		return
	}
	userID, ok := auth.UserID(r.Context())
	if !ok {
		return
	}

	summary, err := json.Marshal(analysisSummary{
		Site:                    res.Site,
		Tag:                     res.Design.Tag,
		VSDAnnualSaving:         res.VSD.Summary.AnnualEnergySaving,
		ImpellerAnnualSaving:    res.Impeller.Summary.AnnualEnergySaving,
		VSDNetPresentValue:      res.EconomicsVSD.NPV,
		ImpellerNetPresentValue: res.EconomicsImpeller.NPV,
	})
	if err != nil {
		return
	}
	if _, err := h.Repo.SaveAnalysis(r.Context(), userID, res.Site, res.Design.Tag, summary); err != nil {
		log.Printf("SaveAnalysis Error: %v", err)
	}
}
