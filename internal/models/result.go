package models

import "time"

// ProjectInput is the fully hydrated snapshot the engine consumes:
// accounts plus the historical rate tables the Retirement Calculator needs.
// The variable resolver and Monte Carlo sample provider are passed
// separately as collaborator interfaces (internal/engine/variables).
type ProjectInput struct {
	Accounts   []Account  `json:"accounts"`
	RateTables RateTables `json:"rateTables"`
}

// ProjectOptions configures one projection invocation.
type ProjectOptions struct {
	StartDate  *time.Time
	EndDate    time.Time
	Simulation string

	MonteCarlo       bool
	SimulationNumber int
	TotalSimulations int

	ForceRecalculation bool
	CachePolicy        CachePolicy
}

// CachePolicy controls the segment cache.
type CachePolicy struct {
	DiskCacheDir   string
	MaxMemoryMB    int
	EncryptionKey  string // empty = disk cache stored in plaintext
}

// AccountResult is one account's output stream.
type AccountResult struct {
	ID                   string                 `json:"id"`
	Name                 string                 `json:"name"`
	ConsolidatedActivity []ConsolidatedActivity `json:"consolidatedActivity"`
	TodayBalance         float64                `json:"todayBalance"`
}

// ProjectMetadata carries run-level facts back to the caller.
type ProjectMetadata struct {
	ActualStartDate    time.Time     `json:"actualStartDate"`
	EndDate            time.Time     `json:"endDate"`
	Iterations         int           `json:"iterations"`
	IterationsSucceeded int          `json:"iterationsSucceeded"`
	DurationMs         int64         `json:"durationMs"`
	Incomplete         bool          `json:"incomplete"`
	MonteCarlo         *MonteCarloStats `json:"monteCarlo,omitempty"`
}

// ProjectResult is the engine's single return value.
type ProjectResult struct {
	Accounts []AccountResult `json:"accounts"`
	Metadata ProjectMetadata `json:"metadata"`
}

// MonteCarloStats aggregates final-balance outcomes across Monte Carlo
// iterations. Field shape grounded on the teacher's
// internal/models/whatif.go MonteCarloStats, now populated with
// gonum.org/v1/gonum/stat instead of hand-rolled sorting.
type MonteCarloStats struct {
	Runs          int     `json:"runs"`
	SuccessRate   float64 `json:"successRate"`
	MeanBalance   float64 `json:"meanBalance"`
	MedianBalance float64 `json:"medianBalance"`
	StdDev        float64 `json:"stdDev"`
	Percentile10  float64 `json:"percentile10"`
	Percentile25  float64 `json:"percentile25"`
	Percentile75  float64 `json:"percentile75"`
	Percentile90  float64 `json:"percentile90"`
	WorstCase     float64 `json:"worstCase"`
	BestCase      float64 `json:"bestCase"`
}
