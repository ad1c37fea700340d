// Package categorizer assigns (subcategory, category, budget type) to
// transaction descriptions and learns merchant patterns from confirmed rows.
package categorizer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/logger"
)

const (
	QuorumConfidence = 100
	FuzzyConfidence  = 50
	maxPatternScore  = 90
)

// FuzzyRule maps a lowercase keyword to a subcategory.
type FuzzyRule struct {
	Keyword     string
	Subcategory string
}

// Result is the outcome of Categorize. Confidence 0 means no match.
type Result struct {
	Subcategory string
	Category    string
	BudgetType  string
	Confidence  int
	Method      domain.Method
}

// Categorizer holds an in-memory mirror of the pattern and category tables.
// Build one per process with New and share it.
type Categorizer struct {
	store    Store
	fuzzy    []FuzzyRule
	minCount int
	now      func() time.Time

	mu         sync.RWMutex
	patterns   []domain.MerchantPattern
	byPattern  map[string]int
	categories map[string]domain.CategoryMapping
}

type Option func(*Categorizer)

func WithFuzzyRules(rules []FuzzyRule) Option {
	return func(c *Categorizer) {
		c.fuzzy = make([]FuzzyRule, 0, len(rules))
		for _, r := range rules {
			if kw := strings.ToLower(strings.TrimSpace(r.Keyword)); kw != "" {
				c.fuzzy = append(c.fuzzy, FuzzyRule{Keyword: kw, Subcategory: r.Subcategory})
			}
		}
	}
}

func WithBootstrapMinCount(n int) Option {
	return func(c *Categorizer) {
		if n > 0 {
			c.minCount = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Categorizer) { c.now = now }
}

// New loads the category map and patterns. When the pattern table is empty
// it is seeded from ledger history first.
func New(ctx context.Context, store Store, opts ...Option) (*Categorizer, error) {
	c := &Categorizer{
		store:      store,
		minCount:   2,
		now:        time.Now,
		byPattern:  make(map[string]int),
		categories: make(map[string]domain.CategoryMapping),
	}
	for _, opt := range opts {
		opt(c)
	}

	mappings, err := store.ListCategoryMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("categorizer.New: list categories: %w", err)
	}
	for _, m := range mappings {
		c.categories[m.Subcategory] = m
	}

	n, err := store.CountMerchantPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("categorizer.New: count patterns: %w", err)
	}
	if n == 0 {
		if _, err := c.Bootstrap(ctx); err != nil {
			return nil, err
		}
	} else if err := c.reload(ctx); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Int("patterns", len(c.patterns)).
		Int("categories", len(c.categories)).
		Msg("categorizer loaded")
	return c, nil
}

// Bootstrap seeds patterns from (description, subcategory) pairs that recur
// in the ledger. The most frequent description wins a shared token.
func (c *Categorizer) Bootstrap(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	mined, err := c.store.MineDescriptionPatterns(ctx, c.minCount)
	if err != nil {
		return 0, fmt.Errorf("Bootstrap: mine history: %w", err)
	}
	ledger.SortHistoricalPatterns(mined)

	c.mu.Lock()
	defer c.mu.Unlock()

	seeded := 0
	for _, hp := range mined {
		token := ExtractPattern(hp.Description)
		if token == "" {
			continue
		}
		if _, ok := c.byPattern[token]; ok {
			continue
		}
		p := domain.MerchantPattern{
			Pattern:     token,
			Subcategory: hp.Subcategory,
			Confidence:  hp.Count,
			LastUsed:    c.now(),
		}
		if err := c.store.SaveMerchantPattern(ctx, p); err != nil {
			return seeded, fmt.Errorf("Bootstrap: save %s: %w", token, err)
		}
		c.put(p)
		seeded++
	}
	c.resort()

	log.Info().Int("mined", len(mined)).Int("seeded", seeded).Msg("bootstrapped merchant patterns from history")
	return seeded, nil
}

// Categorize matches a description. Quorum rows never consult patterns.
func (c *Categorizer) Categorize(description string, isQuorum bool) Result {
	if isQuorum {
		return Result{
			Subcategory: domain.QuorumSubcategory,
			Category:    domain.QuorumCategory,
			BudgetType:  domain.QuorumBudgetType,
			Confidence:  QuorumConfidence,
			Method:      domain.MethodQuorum,
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	upper := strings.ToUpper(description)
	for _, p := range c.patterns {
		if !strings.Contains(upper, p.Pattern) {
			continue
		}
		m, ok := c.categories[p.Subcategory]
		if !ok {
			continue
		}
		return c.result(m, min(p.Confidence*10, maxPatternScore), domain.MethodPattern)
	}

	lower := strings.ToLower(description)
	for _, rule := range c.fuzzy {
		if !strings.Contains(lower, rule.Keyword) {
			continue
		}
		m, ok := c.categories[rule.Subcategory]
		if !ok {
			continue
		}
		return c.result(m, FuzzyConfidence, domain.MethodFuzzy)
	}

	return Result{Method: domain.MethodNone}
}

func (c *Categorizer) result(m domain.CategoryMapping, confidence int, method domain.Method) Result {
	return Result{
		Subcategory: m.Subcategory,
		Category:    m.Category,
		BudgetType:  m.BudgetType,
		Confidence:  confidence,
		Method:      method,
	}
}

// Learn records that description belongs to subcategory. An existing pattern
// gains one point of confidence and takes the new subcategory.
func (c *Categorizer) Learn(ctx context.Context, description, subcategory string) error {
	token := ExtractPattern(description)
	subcategory = strings.TrimSpace(subcategory)
	if token == "" || subcategory == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := domain.MerchantPattern{Pattern: token, Subcategory: subcategory, Confidence: 1, LastUsed: c.now()}
	if i, ok := c.byPattern[token]; ok {
		p.Confidence = c.patterns[i].Confidence + 1
	}

	if err := c.store.SaveMerchantPattern(ctx, p); err != nil {
		return fmt.Errorf("Learn: save %s: %w", token, err)
	}
	c.put(p)
	c.resort()

	log := logger.FromContext(ctx)
	log.Debug().
		Str("pattern", token).
		Str("subcategory", subcategory).
		Int("confidence", p.Confidence).
		Msg("learned merchant pattern")
	return nil
}

// Lookup resolves a subcategory through the category map.
func (c *Categorizer) Lookup(subcategory string) (domain.CategoryMapping, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.categories[subcategory]
	return m, ok
}

// Subcategories lists every mapped subcategory.
func (c *Categorizer) Subcategories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.categories))
	for s := range c.categories {
		out = append(out, s)
	}
	return out
}

// Patterns returns a snapshot, most-confident first.
func (c *Categorizer) Patterns() []domain.MerchantPattern {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.MerchantPattern(nil), c.patterns...)
}

func (c *Categorizer) reload(ctx context.Context) error {
	ps, err := c.store.ListMerchantPatterns(ctx)
	if err != nil {
		return fmt.Errorf("categorizer: list patterns: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = c.patterns[:0]
	c.byPattern = make(map[string]int, len(ps))
	for _, p := range ps {
		p.Pattern = strings.ToUpper(p.Pattern)
		c.put(p)
	}
	c.resort()
	return nil
}

// put inserts or replaces p; callers hold mu and call resort afterwards.
func (c *Categorizer) put(p domain.MerchantPattern) {
	if i, ok := c.byPattern[p.Pattern]; ok {
		c.patterns[i] = p
		return
	}
	c.byPattern[p.Pattern] = len(c.patterns)
	c.patterns = append(c.patterns, p)
}

func (c *Categorizer) resort() {
	ledger.SortPatterns(c.patterns)
	for i, p := range c.patterns {
		c.byPattern[p.Pattern] = i
	}
}

var tokenSplit = regexp.MustCompile(`[\s\d]+`)

// ExtractPattern returns the merchant token of a description: the first run
// of at least three characters between whitespace and digits, uppercased.
func ExtractPattern(description string) string {
	for _, part := range tokenSplit.Split(description, -1) {
		if utf8.RuneCountInString(part) >= 3 {
			return strings.ToUpper(part)
		}
	}
	if fields := strings.Fields(description); len(fields) > 0 {
		return strings.ToUpper(fields[0])
	}
	return ""
}
