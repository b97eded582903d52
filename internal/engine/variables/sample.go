package variables

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// NormalParams is one stochastic tag's distribution: a mean and standard
// deviation applied as mean + stdDev*rng.NormFloat64(), the same shape the
// teacher's generateYearlyReturns draws portfolio-return samples from.
type NormalParams struct {
	Mean   float64
	StdDev float64
}

// NormalSampleProvider draws Monte Carlo samples from independent
// normal distributions, one per sampleType tag. Safe for concurrent use by
// multiple Monte Carlo iterations, each contending on the same rng the way
// the teacher's single seeded *rand.Rand backs one simulation run; distinct
// iterations still see independent draws because NormFloat64 calls
// interleave under the mutex rather than being replayed.
type NormalSampleProvider struct {
	mu     sync.Mutex
	rng    *rand.Rand
	params map[string]NormalParams
}

// NewNormalSampleProvider seeds its generator from the current time, the
// teacher's own seeding idiom (internal/services/retirement/calculator.go).
func NewNormalSampleProvider(params map[string]NormalParams) *NormalSampleProvider {
	return NewSeededNormalSampleProvider(time.Now().UnixNano(), params)
}

// NewSeededNormalSampleProvider seeds its generator explicitly, for
// reproducible test runs.
func NewSeededNormalSampleProvider(seed int64, params map[string]NormalParams) *NormalSampleProvider {
	return &NormalSampleProvider{
		rng:    rand.New(rand.NewSource(seed)),
		params: params,
	}
}

// Sample draws one value for sampleType. date is accepted to satisfy
// SampleProvider but unused: distributions here are time-invariant, unlike
// the teacher's crash-timing-aware year-by-year returns.
func (p *NormalSampleProvider) Sample(_ context.Context, sampleType string, _ time.Time) (float64, error) {
	params, ok := p.params[sampleType]
	if !ok {
		return 0, fmt.Errorf("no Monte Carlo distribution registered for sample type %q", sampleType)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return params.Mean + params.StdDev*p.rng.NormFloat64(), nil
}
