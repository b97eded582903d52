// Package main provides a thin HTTP adapter over the projection engine:
// one handler, POST /project, that decodes a request, runs the engine, and
// serializes its result.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"projector/internal/config"
	"projector/internal/engine/orchestrator"
	"projector/internal/engine/variables"
	"projector/internal/models"
	"projector/internal/ratetables"
	"projector/internal/version"
)

// projectRequest is the JSON body POST /project accepts: accounts plus the
// same options the CLI exposes as flags, and an inline variables/
// distributions payload in place of a file path.
type projectRequest struct {
	Accounts   []models.Account `json:"accounts"`
	RatesDir   string           `json:"ratesDir,omitempty"`
	Start      *string          `json:"start,omitempty"`
	End        string           `json:"end"`
	Simulation string           `json:"simulation,omitempty"`

	MonteCarlo  bool `json:"monteCarlo,omitempty"`
	Simulations int  `json:"simulations,omitempty"`

	Amounts       map[string]map[string]float64    `json:"amounts,omitempty"`
	Dates         map[string]map[string]string      `json:"dates,omitempty"`
	Distributions map[string]variables.NormalParams `json:"distributions,omitempty"`
}

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.ListenAddr, "Listen address")
	ratesDir := flag.String("rates", cfg.RatesDirectory, "Default directory of historical rate-table CSVs")
	flag.Parse()

	defaultRates := models.RateTables{}
	if _, err := os.Stat(*ratesDir); err == nil {
		loaded, err := ratetables.New(*ratesDir).Load()
		if err != nil {
			log.Fatalf("server: loading default rate tables: %v", err)
		}
		defaultRates = loaded
	}

	cachePolicy := models.CachePolicy{
		DiskCacheDir:  cfg.CacheDirectory,
		MaxMemoryMB:   cfg.CacheMaxMB,
		EncryptionKey: cfg.CachePassword,
	}
	r := newRouter(defaultRates, cachePolicy)

	log.Printf("server: listening on %s", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// newRouter assembles the chi router: request logging, panic recovery, and
// response compression ahead of the two routes the adapter exposes.
func newRouter(defaultRates models.RateTables, cachePolicy models.CachePolicy) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Post("/project", handleProject(defaultRates, cachePolicy))
	r.Get("/api/health", handleHealth)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Status  string       `json:"status"`
		Version version.Info `json:"version"`
	}{Status: "ok", Version: version.Get()})
}

func handleProject(defaultRates models.RateTables, cachePolicy models.CachePolicy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "decoding request: "+err.Error())
			return
		}

		endDate, err := time.Parse("2006-01-02", req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "parsing end date: "+err.Error())
			return
		}

		options := models.ProjectOptions{
			EndDate:          endDate,
			Simulation:       req.Simulation,
			MonteCarlo:       req.MonteCarlo,
			TotalSimulations: req.Simulations,
			CachePolicy:      cachePolicy,
		}
		if req.Start != nil {
			start, err := time.Parse("2006-01-02", *req.Start)
			if err != nil {
				writeError(w, http.StatusBadRequest, "parsing start date: "+err.Error())
				return
			}
			options.StartDate = &start
		}

		resolver := requestResolver(req)
		sampleProvider := variables.NewNormalSampleProvider(req.Distributions)

		rateTables := defaultRates
		if req.RatesDir != "" {
			loaded, err := ratetables.New(req.RatesDir).Load()
			if err != nil {
				writeError(w, http.StatusBadRequest, "loading rate tables: "+err.Error())
				return
			}
			rateTables = loaded
		}

		result, err := orchestrator.Project(r.Context(), models.ProjectInput{Accounts: req.Accounts, RateTables: rateTables}, options, resolver, sampleProvider)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// requestResolver builds a StaticResolver from the request's inline
// amounts/dates maps, the same "default" bucket convention LoadYAML uses
// for the file-backed CLI path.
func requestResolver(req projectRequest) *variables.StaticResolver {
	r := variables.NewStaticResolver()
	for sim, vars := range req.Amounts {
		simKey := sim
		if sim == "default" {
			simKey = ""
		}
		for name, v := range vars {
			r.SetAmount(simKey, name, v)
		}
	}
	for sim, vars := range req.Dates {
		simKey := sim
		if sim == "default" {
			simKey = ""
		}
		for name, v := range vars {
			if d, err := time.Parse("2006-01-02", v); err == nil {
				r.SetDate(simKey, name, d)
			}
		}
	}
	return r
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
