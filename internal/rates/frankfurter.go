package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.frankfurter.app"

var ErrNoRate = errors.New("no rate published")

// FrankfurterSource queries the Frankfurter ECB reference-rate API.
type FrankfurterSource struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewFrankfurterSource(baseURL string, timeout time.Duration) *FrankfurterSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FrankfurterSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

// usdRatePath selects the quote in {"base":"EUR","date":...,"rates":{"USD":1.0765}}.
const usdRatePath = "$.rates.USD"

// FetchRate returns the EUR->USD rate for day. Each call is bounded by the
// source timeout regardless of the caller's deadline.
func (s *FrankfurterSource) FetchRate(ctx context.Context, day civil.Date) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s?from=EUR&to=USD", s.baseURL, day.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("FetchRate: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("FetchRate: %s: %w", day, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("FetchRate: %s: status %d: %w", day, resp.StatusCode, ErrNoRate)
	}

	var body any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("FetchRate: decode %s: %w", day, err)
	}

	raw, err := jsonpath.Get(usdRatePath, body)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("FetchRate: %s: %v: %w", day, err, ErrNoRate)
	}
	// a path may yield a one-element list instead of the value
	if list, ok := raw.([]any); ok && len(list) > 0 {
		raw = list[0]
	}
	num, ok := raw.(json.Number)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("FetchRate: %s: USD is %T: %w", day, raw, ErrNoRate)
	}
	rate, err := decimal.NewFromString(num.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("FetchRate: parse %q: %w", num, err)
	}
	return rate, nil
}
