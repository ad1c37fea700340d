package rates_test

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-ledger/internal/rates"
	mock_rates "github.com/dvloznov/statement-ledger/internal/rates/mocks"
)

var (
	day      = civil.Date{Year: 2024, Month: 5, Day: 3}
	rate108  = decimal.RequireFromString("1.08")
	errNoHit = errors.New("404")
)

func newResolver(t *testing.T, ctrl *gomock.Controller, cached map[civil.Date]decimal.Decimal, opts ...rates.Option) (*rates.Resolver, *mock_rates.MockSource, *mock_rates.MockCache) {
	t.Helper()
	source := mock_rates.NewMockSource(ctrl)
	cache := mock_rates.NewMockCache(ctrl)
	if cached == nil {
		cached = map[civil.Date]decimal.Decimal{}
	}
	cache.EXPECT().LoadExchangeRates(gomock.Any()).Return(cached, nil)

	r, err := rates.NewResolver(context.Background(), source, cache, opts...)
	require.NoError(t, err)
	return r, source, cache
}

func TestResolver_CachedRateSkipsFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, _, _ := newResolver(t, ctrl, map[civil.Date]decimal.Decimal{day: rate108})

	got, ok := r.RateFor(context.Background(), day)
	require.True(t, ok)
	assert.True(t, got.Equal(rate108))
}

func TestResolver_FetchesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, source, cache := newResolver(t, ctrl, nil)
	source.EXPECT().FetchRate(gomock.Any(), day).Return(rate108, nil).Times(1)
	cache.EXPECT().SaveExchangeRate(gomock.Any(), day, rate108).Return(nil).Times(1)

	for i := 0; i < 2; i++ {
		got, ok := r.RateFor(context.Background(), day)
		require.True(t, ok)
		assert.True(t, got.Equal(rate108))
	}
}

func TestResolver_ProbesNearestFirstAndCachesUnderRequestedDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	saturday := civil.Date{Year: 2024, Month: 5, Day: 4}
	r, source, cache := newResolver(t, ctrl, nil)

	gomock.InOrder(
		source.EXPECT().FetchRate(gomock.Any(), saturday).Return(decimal.Decimal{}, errNoHit),
		source.EXPECT().FetchRate(gomock.Any(), saturday.AddDays(1)).Return(decimal.Decimal{}, errNoHit),
		source.EXPECT().FetchRate(gomock.Any(), saturday.AddDays(-1)).Return(rate108, nil),
	)
	cache.EXPECT().SaveExchangeRate(gomock.Any(), saturday, rate108).Return(nil)

	got, ok := r.RateFor(context.Background(), saturday)
	require.True(t, ok)
	assert.True(t, got.Equal(rate108))

	cached, ok := r.Cached(saturday)
	require.True(t, ok)
	assert.True(t, cached.Equal(rate108))
	_, ok = r.Cached(saturday.AddDays(-1))
	assert.False(t, ok)
}

func TestResolver_ManualEntryAfterProbesFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manual := mock_rates.NewMockManualEntry(ctrl)
	r, source, cache := newResolver(t, ctrl, nil, rates.WithManualEntry(manual), rates.WithProbeDays(1))

	source.EXPECT().FetchRate(gomock.Any(), gomock.Any()).Return(decimal.Decimal{}, errNoHit).Times(3)
	typed := decimal.RequireFromString("1.1")
	manual.EXPECT().PromptRate(gomock.Any(), day).Return(typed, true, nil)
	cache.EXPECT().SaveExchangeRate(gomock.Any(), day, typed).Return(nil)

	got, ok := r.RateFor(context.Background(), day)
	require.True(t, ok)
	assert.True(t, got.Equal(typed))
}

func TestResolver_UnresolvedWithoutManualEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, source, _ := newResolver(t, ctrl, nil)
	source.EXPECT().FetchRate(gomock.Any(), gomock.Any()).Return(decimal.Decimal{}, errNoHit).Times(7)

	_, ok := r.RateFor(context.Background(), day)
	assert.False(t, ok)
}

func TestResolver_CacheWriteFailureStillReturnsRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, source, cache := newResolver(t, ctrl, nil)
	source.EXPECT().FetchRate(gomock.Any(), day).Return(rate108, nil)
	cache.EXPECT().SaveExchangeRate(gomock.Any(), day, rate108).Return(errors.New("disk full"))

	got, ok := r.RateFor(context.Background(), day)
	require.True(t, ok)
	assert.True(t, got.Equal(rate108))
}

func TestResolver_LoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cache := mock_rates.NewMockCache(ctrl)
	cache.EXPECT().LoadExchangeRates(gomock.Any()).Return(nil, errors.New("db down"))

	_, err := rates.NewResolver(context.Background(), mock_rates.NewMockSource(ctrl), cache)
	assert.Error(t, err)
}

func TestResolver_FetchBulk(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d1 := civil.Date{Year: 2024, Month: 5, Day: 1}
	d2 := civil.Date{Year: 2024, Month: 5, Day: 2}
	d3 := civil.Date{Year: 2024, Month: 5, Day: 3}
	d4 := civil.Date{Year: 2024, Month: 5, Day: 4}
	published := map[civil.Date]decimal.Decimal{
		d2: rate108,
		d4: decimal.RequireFromString("1.09"),
	}

	r, source, cache := newResolver(t, ctrl, nil, rates.WithProbeDays(0))
	source.EXPECT().FetchRate(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, d civil.Date) (decimal.Decimal, error) {
			if rate, ok := published[d]; ok {
				return rate, nil
			}
			return decimal.Decimal{}, errNoHit
		}).Times(4)
	cache.EXPECT().SaveExchangeRate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(3)

	got := r.FetchBulk(context.Background(), []civil.Date{d4, d3, d2, d1, d3, d2})

	require.Len(t, got, 3)
	_, ok := got[d1]
	assert.False(t, ok, "leading date without predecessor stays unresolved")
	assert.True(t, got[d2].Equal(rate108))
	assert.True(t, got[d3].Equal(rate108), "falls back to predecessor")
	assert.True(t, got[d4].Equal(published[d4]))

	// fallback is cached under its own date
	cached, ok := r.Cached(d3)
	require.True(t, ok)
	assert.True(t, cached.Equal(rate108))
}

func TestProbeOffsets(t *testing.T) {
	assert.Equal(t, []int{0, 1, -1, 2, -2, 3, -3}, rates.ProbeOffsets(3))
	assert.Equal(t, []int{0}, rates.ProbeOffsets(0))
}
