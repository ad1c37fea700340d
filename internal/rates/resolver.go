package rates

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dvloznov/statement-ledger/internal/logger"
)

const (
	DefaultProbeDays   = 3
	DefaultConcurrency = 4
)

// Resolver answers EUR->USD rates for calendar dates, backed by a persistent
// cache, an external source and, when configured, manual entry.
type Resolver struct {
	source      Source
	cache       Cache
	manual      ManualEntry
	probeDays   int
	concurrency int

	mu     sync.RWMutex
	rates  map[civil.Date]decimal.Decimal
	flight singleflight.Group
}

type Option func(*Resolver)

// WithManualEntry enables the interactive last-resort prompt in RateFor.
func WithManualEntry(m ManualEntry) Option {
	return func(r *Resolver) { r.manual = m }
}

func WithProbeDays(n int) Option {
	return func(r *Resolver) { r.probeDays = n }
}

func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewResolver loads every cached rate up front.
func NewResolver(ctx context.Context, source Source, cache Cache, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		source:      source,
		cache:       cache,
		probeDays:   DefaultProbeDays,
		concurrency: DefaultConcurrency,
		rates:       make(map[civil.Date]decimal.Decimal),
	}
	for _, opt := range opts {
		opt(r)
	}

	if cache != nil {
		cached, err := cache.LoadExchangeRates(ctx)
		if err != nil {
			return nil, fmt.Errorf("NewResolver: load cached rates: %w", err)
		}
		for d, rate := range cached {
			r.rates[d] = rate
		}
	}

	log := logger.FromContext(ctx)
	log.Debug().Int("cached_rates", len(r.rates)).Msg("rate resolver ready")
	return r, nil
}

// RateFor returns the rate for day, trying the cache, the exact date, then
// nearby dates nearest-first. A nearby hit is cached under day itself.
// If everything fails and manual entry is configured, the user is asked.
func (r *Resolver) RateFor(ctx context.Context, day civil.Date) (decimal.Decimal, bool) {
	return r.lookup(ctx, day, r.manual != nil)
}

// FetchBulk resolves a set of dates without prompting. Dates the source
// cannot answer take the rate of their chronological predecessor in the same
// batch; leading dates with no predecessor stay absent from the result.
func (r *Resolver) FetchBulk(ctx context.Context, days []civil.Date) map[civil.Date]decimal.Decimal {
	log := logger.FromContext(ctx)
	unique := uniqueSorted(days)

	var mu sync.Mutex
	found := make(map[civil.Date]decimal.Decimal, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, d := range unique {
		g.Go(func() error {
			if rate, ok := r.lookup(gctx, d, false); ok {
				mu.Lock()
				found[d] = rate
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	var (
		prev     decimal.Decimal
		havePrev bool
	)
	for _, d := range unique {
		if rate, ok := found[d]; ok {
			prev, havePrev = rate, true
			continue
		}
		if !havePrev {
			log.Warn().Str("date", d.String()).Msg("no exchange rate and no earlier date to fall back to")
			continue
		}
		log.Warn().
			Str("date", d.String()).
			Str("rate", prev.String()).
			Msg("using previous date's exchange rate")
		found[d] = prev
		r.remember(ctx, d, prev)
	}

	log.Info().
		Int("dates", len(unique)).
		Int("resolved", len(found)).
		Msg("bulk exchange rate resolution complete")
	return found
}

// Cached returns the rate for day without any network or prompt.
func (r *Resolver) Cached(day civil.Date) (decimal.Decimal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rate, ok := r.rates[day]
	return rate, ok
}

func (r *Resolver) lookup(ctx context.Context, day civil.Date, interactive bool) (decimal.Decimal, bool) {
	if rate, ok := r.Cached(day); ok {
		return rate, true
	}

	v, _, _ := r.flight.Do(day.String(), func() (interface{}, error) {
		if rate, ok := r.Cached(day); ok {
			return rate, nil
		}
		if rate, ok := r.probe(ctx, day); ok {
			r.remember(ctx, day, rate)
			return rate, nil
		}
		return nil, nil
	})
	if rate, ok := v.(decimal.Decimal); ok {
		return rate, true
	}

	if !interactive || r.manual == nil {
		return decimal.Decimal{}, false
	}
	rate, ok, err := r.manual.PromptRate(ctx, day)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("date", day.String()).Msg("manual rate entry failed")
		return decimal.Decimal{}, false
	}
	if !ok {
		return decimal.Decimal{}, false
	}
	r.remember(ctx, day, rate)
	return rate, true
}

// probe tries day, then day+1, day-1, day+2, ... up to probeDays away.
func (r *Resolver) probe(ctx context.Context, day civil.Date) (decimal.Decimal, bool) {
	log := logger.FromContext(ctx)
	if r.source == nil {
		return decimal.Decimal{}, false
	}

	for _, offset := range ProbeOffsets(r.probeDays) {
		if ctx.Err() != nil {
			return decimal.Decimal{}, false
		}
		target := day.AddDays(offset)
		rate, err := r.source.FetchRate(ctx, target)
		if err != nil {
			log.Debug().Err(err).Str("date", target.String()).Msg("rate fetch failed")
			continue
		}
		if !rate.IsPositive() {
			continue
		}
		if offset != 0 {
			log.Info().
				Str("date", day.String()).
				Str("used_date", target.String()).
				Msg("using nearby date's exchange rate")
		}
		return rate, true
	}
	return decimal.Decimal{}, false
}

func (r *Resolver) remember(ctx context.Context, day civil.Date, rate decimal.Decimal) {
	r.mu.Lock()
	r.rates[day] = rate
	r.mu.Unlock()

	if r.cache == nil {
		return
	}
	if err := r.cache.SaveExchangeRate(ctx, day, rate); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("date", day.String()).Msg("failed to persist exchange rate")
	}
}

// ProbeOffsets lists day offsets in probe order: 0, +1, -1, +2, -2, ...
func ProbeOffsets(window int) []int {
	out := []int{0}
	for d := 1; d <= window; d++ {
		out = append(out, d, -d)
	}
	return out
}

func uniqueSorted(days []civil.Date) []civil.Date {
	seen := make(map[civil.Date]bool, len(days))
	out := make([]civil.Date, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
