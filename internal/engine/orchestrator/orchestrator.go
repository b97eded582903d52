// Package orchestrator implements the Engine Orchestrator: the
// single `Project` entry point that builds the Account Manager and Event
// Generator, drives Monte Carlo iterations — each owning its own Balance
// Tracker, Spending Tracker Manager, and segment cache — runs the segment
// loop with Push/Pull retry, and finalizes per-account consolidated
// activity streams plus run metadata.
package orchestrator

import (
	"context"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"projector/internal/engine/accounts"
	"projector/internal/engine/balance"
	"projector/internal/engine/cache"
	"projector/internal/engine/errs"
	"projector/internal/engine/pushpull"
	"projector/internal/engine/segment"
	"projector/internal/engine/spending"
	"projector/internal/engine/timeline"
	"projector/internal/engine/variables"
	"projector/internal/models"
)

// Project is the engine's single entry point.
func Project(ctx context.Context, input models.ProjectInput, options models.ProjectOptions, resolver variables.Resolver, mc variables.SampleProvider) (*models.ProjectResult, error) {
	runStart := time.Now()

	for i := range input.Accounts {
		if err := input.Accounts[i].Validate(); err != nil {
			return nil, err
		}
	}

	mgr := accounts.New(input.Accounts)

	today := dayOnly(time.Now())
	startDate := today
	if options.StartDate != nil {
		startDate = dayOnly(*options.StartDate)
	}
	endDate := dayOnly(options.EndDate)

	baseTimeline, err := timeline.Generate(ctx, mgr, resolver, mc, options.Simulation, startDate, endDate, today)
	if err != nil {
		return nil, err
	}

	iterations := 1
	if options.MonteCarlo && options.TotalSimulations > 0 {
		iterations = options.TotalSimulations
	}

	representative := options.SimulationNumber
	if representative < 0 || representative >= iterations {
		representative = 0
	}

	iterResults := make([]*iterationResult, iterations)
	incomplete := false
	var partial *iterationResult

	runOne := func(idx int) (*iterationResult, error) {
		iterTimeline := baseTimeline
		if iterations > 1 {
			cloned, err := baseTimeline.Clone(ctx, mc)
			if err != nil {
				return nil, err
			}
			iterTimeline = cloned
		}
		return runIteration(ctx, mgr, iterTimeline, resolver, input.RateTables, options, startDate, endDate, today)
	}

	if iterations == 1 {
		res, err := runOne(0)
		if err != nil {
			if isCancellation(err) {
				incomplete = true
				partial = res
			} else {
				return nil, err
			}
		} else {
			iterResults[0] = res
		}
	} else {
		workers := runtime.GOMAXPROCS(0)
		if workers > iterations {
			workers = iterations
		}
		if workers < 1 {
			workers = 1
		}

		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		var mu sync.Mutex

		for i := 0; i < iterations; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()

				res, err := runOne(i)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if isCancellation(err) {
						incomplete = true
						if partial == nil {
							partial = res
						}
					}
					return
				}
				iterResults[i] = res
			}(i)
		}
		wg.Wait()
	}

	succeeded := 0
	for _, r := range iterResults {
		if r != nil {
			succeeded++
		}
	}

	if succeeded == 0 && !incomplete {
		return nil, &errs.ConfigurationError{Msg: "no Monte Carlo iteration succeeded"}
	}

	rep := iterResults[representative]
	if rep == nil {
		for _, r := range iterResults {
			if r != nil {
				rep = r
				break
			}
		}
	}
	if rep == nil {
		rep = partial
	}

	result := &models.ProjectResult{
		Metadata: models.ProjectMetadata{
			ActualStartDate:     startDate,
			EndDate:             endDate,
			Iterations:          iterations,
			IterationsSucceeded: succeeded,
			DurationMs:          time.Since(runStart).Milliseconds(),
			Incomplete:          incomplete,
		},
	}
	if rep != nil {
		result.Accounts = rep.accounts
	}

	if iterations > 1 {
		result.Metadata.MonteCarlo = aggregate(iterResults)
	}

	return result, nil
}

func isCancellation(err error) bool {
	_, ok := err.(*errs.CancellationSignaled)
	return ok
}

// iterationResult is one Monte Carlo iteration's finalized output.
type iterationResult struct {
	accounts    []models.AccountResult
	finalTotal  float64
}

// runIteration processes one timeline (the deterministic base, or one
// Monte Carlo clone) segment by segment, applying the Segment Processor
// then the Push/Pull Handler with checkpoint rewind, and finalizes
// per-account streams.
func runIteration(ctx context.Context, mgr *accounts.Manager, tl *timeline.Timeline, resolver variables.Resolver, rateTables models.RateTables, options models.ProjectOptions, startDate, endDate, today time.Time) (*iterationResult, error) {
	startingBalances := make(map[string]float64, len(mgr.All()))
	for _, a := range mgr.All() {
		startingBalances[a.ID] = a.Balance
	}

	tracker := balance.New(startingBalances)

	var spendingConfigs []*models.SpendingCategoryConfig
	for _, a := range mgr.All() {
		for i := range a.SpendingCategories {
			spendingConfigs = append(spendingConfigs, &a.SpendingCategories[i])
		}
	}
	spendingMgr := spending.New(spendingConfigs, startDate)

	var segCache *cache.Cache
	if options.CachePolicy.DiskCacheDir != "" || options.CachePolicy.MaxMemoryMB > 0 {
		var err error
		segCache, err = cache.New(options.CachePolicy)
		if err != nil {
			return nil, err
		}
	}

	proc := segment.New(mgr, tracker, spendingMgr, resolver, rateTables, options.Simulation)

	seq := len(tl.Events)
	nextSeq := func() int {
		seq++
		return seq
	}

	for i := range tl.Segments {
		select {
		case <-ctx.Done():
			return finalize(mgr, proc, startDate, endDate, today), &errs.CancellationSignaled{}
		default:
		}

		seg := &tl.Segments[i]

		if segCache != nil && !options.ForceRecalculation && segmentCacheable(seg, mgr) {
			if cached, ok := segCache.Get(seg.CacheKey); ok {
				for id, acts := range cached {
					proc.Ingest(id, acts)
				}
				continue
			}
		}

		cp := cache.Capture(tracker, spendingMgr)

		if err := proc.ProcessSegment(ctx, seg); err != nil {
			return nil, err
		}

		injected := pushpull.Evaluate(mgr, tracker, seg.StartDate, today, nextSeq)
		if len(injected) > 0 {
			cp.Restore(tracker, spendingMgr)

			reseg := *seg
			reseg.Events = append(append([]models.TimelineEvent{}, seg.Events...), injected...)
			sortSegmentEvents(reseg.Events)

			if err := proc.ProcessSegment(ctx, &reseg); err != nil {
				return nil, err
			}

			again := pushpull.Evaluate(mgr, tracker, seg.StartDate, today, nextSeq)
			if len(again) > 0 {
				// One retry only; log and proceed with the
				// last attempt's state per ConvergenceWarning semantics.
				log.Printf("orchestrator: %s", &errs.ConvergenceWarning{SegmentID: seg.ID})
			}
		}

		if segCache != nil {
			segCache.Put(seg.CacheKey, snapshotActivities(proc, mgr))
		}
	}

	return finalize(mgr, proc, startDate, endDate, today), nil
}

// snapshotActivities captures every account's current activity stream for
// the cache.
func snapshotActivities(proc *segment.Processor, mgr *accounts.Manager) map[string][]models.ConsolidatedActivity {
	out := make(map[string][]models.ConsolidatedActivity, len(mgr.All()))
	for _, a := range mgr.All() {
		out[a.ID] = proc.Activities(a.ID)
	}
	return out
}

// segmentCacheable reports whether seg's cached activities can be spliced
// back in via Processor.Ingest instead of reprocessing. Interest, RMD, and
// tax events accumulate side ledgers (taxableInterestByYear,
// withdrawalsByYear) outside the cached ConsolidatedActivity stream, and
// spending-tracked accounts accumulate carry/threshold state outside it too
// — a cache hit is only safe when the segment touches neither.
func segmentCacheable(seg *models.Segment, mgr *accounts.Manager) bool {
	for i := range seg.Events {
		switch seg.Events[i].Type {
		case models.InterestEvent, models.RMDEvent, models.TaxEvent:
			return false
		}
	}
	for id := range seg.AffectedAccountIDs {
		if a, ok := mgr.ByID(id); ok && len(a.SpendingCategories) > 0 {
			return false
		}
	}
	return true
}

// sortSegmentEvents re-sorts a segment's events after injecting Push/Pull
// transfers, by (priority, insertion sequence) — the events are already on
// the segment's single processing date.
func sortSegmentEvents(events []models.TimelineEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority != events[j].Priority {
			return events[i].Priority < events[j].Priority
		}
		return events[i].InsertionSeq < events[j].InsertionSeq
	})
}

// finalize trims each account's consolidated activity stream to
// [startDate, endDate] and computes todayBalance: the balance immediately
// after the last activity with date <= today, or the starting balance if
// none.
func finalize(mgr *accounts.Manager, proc *segment.Processor, startDate, endDate, today time.Time) *iterationResult {
	result := &iterationResult{}
	var total float64

	for _, a := range mgr.All() {
		stream := proc.Activities(a.ID)

		var trimmed []models.ConsolidatedActivity
		todayBalance := a.Balance
		for _, act := range stream {
			if act.Date.Before(startDate) || act.Date.After(endDate) {
				continue
			}
			trimmed = append(trimmed, act)
			if !act.Date.After(today) {
				todayBalance = act.Balance
			}
		}

		result.accounts = append(result.accounts, models.AccountResult{
			ID:                   a.ID,
			Name:                 a.Name,
			ConsolidatedActivity: trimmed,
			TodayBalance:         todayBalance,
		})

		if len(stream) > 0 {
			total += stream[len(stream)-1].Balance
		} else {
			total += a.Balance
		}
	}

	result.finalTotal = total
	return result
}

// aggregate computes Monte Carlo statistics over each iteration's final
// total portfolio balance via gonum.org/v1/gonum/stat, populating the
// percentile fields already present in models.MonteCarloStats.
func aggregate(results []*iterationResult) *models.MonteCarloStats {
	var totals []float64
	for _, r := range results {
		if r != nil {
			totals = append(totals, r.finalTotal)
		}
	}
	if len(totals) == 0 {
		return nil
	}

	sort.Float64s(totals)

	mean := stat.Mean(totals, nil)
	stddev := stat.StdDev(totals, nil)

	return &models.MonteCarloStats{
		Runs:          len(results),
		SuccessRate:   float64(len(totals)) / float64(len(results)),
		MeanBalance:   mean,
		MedianBalance: stat.Quantile(0.5, stat.Empirical, totals, nil),
		StdDev:        stddev,
		Percentile10:  stat.Quantile(0.10, stat.Empirical, totals, nil),
		Percentile25:  stat.Quantile(0.25, stat.Empirical, totals, nil),
		Percentile75:  stat.Quantile(0.75, stat.Empirical, totals, nil),
		Percentile90:  stat.Quantile(0.90, stat.Empirical, totals, nil),
		WorstCase:     totals[0],
		BestCase:      totals[len(totals)-1],
	}
}

func dayOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
