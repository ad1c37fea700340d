package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrUnknownKind   = errors.New("unknown source kind")
)

// Kind names an input adapter.
type Kind string

const (
	KindStatement  Kind = "statement"
	KindHistorical Kind = "historical"
)

// Adapter reads one export format into raw rows.
type Adapter interface {
	Kind() Kind
	// Currency of regular-row amounts in this format.
	Currency() domain.Currency
	Read(r io.Reader) ([]RawRow, error)
}

// AdapterFor returns the adapter for a kind name.
func AdapterFor(kind Kind, comma rune) (Adapter, error) {
	switch kind {
	case KindStatement, "":
		return StatementAdapter{Comma: comma}, nil
	case KindHistorical:
		return HistoricalAdapter{Comma: comma}, nil
	default:
		return nil, fmt.Errorf("AdapterFor: %q: %w", kind, ErrUnknownKind)
	}
}

// StatementAdapter reads credit-card statement exports. Amounts are USD.
type StatementAdapter struct {
	Comma rune
}

func (StatementAdapter) Kind() Kind                { return KindStatement }
func (StatementAdapter) Currency() domain.Currency { return domain.USD }

func (a StatementAdapter) Read(r io.Reader) ([]RawRow, error) {
	records, cols, err := readTable(r, a.Comma,
		[]string{"Transaction Date", "Description", "Debit", "Credit", "Card No."})
	if err != nil {
		return nil, fmt.Errorf("StatementAdapter.Read: %w", err)
	}

	rows := make([]RawRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, RawRow{
			Line:        rec.line,
			Date:        cols.get(rec.fields, "Transaction Date"),
			Description: cols.get(rec.fields, "Description"),
			Debit:       cols.get(rec.fields, "Debit"),
			Credit:      cols.get(rec.fields, "Credit"),
			CardNo:      cols.get(rec.fields, "Card No."),
		})
	}
	return rows, nil
}

// HistoricalAdapter reads the hand-kept ledger: DATE (dd.mm.yyyy), DESCRIPTION,
// AMOUNT in European format, and optional SUBCATEGORY/CATEGORY. Amounts are
// EUR except Quorum rows, which are USD.
type HistoricalAdapter struct {
	Comma rune
}

func (HistoricalAdapter) Kind() Kind                { return KindHistorical }
func (HistoricalAdapter) Currency() domain.Currency { return domain.EUR }

func (a HistoricalAdapter) Read(r io.Reader) ([]RawRow, error) {
	records, cols, err := readTable(r, a.Comma, []string{"DATE", "DESCRIPTION", "AMOUNT"})
	if err != nil {
		return nil, fmt.Errorf("HistoricalAdapter.Read: %w", err)
	}

	rows := make([]RawRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, RawRow{
			Line:        rec.line,
			Date:        cols.get(rec.fields, "DATE"),
			Description: cols.get(rec.fields, "DESCRIPTION"),
			Debit:       cols.get(rec.fields, "AMOUNT"),
			Subcategory: cols.get(rec.fields, "SUBCATEGORY"),
			Category:    cols.get(rec.fields, "CATEGORY"),
		})
	}
	return rows, nil
}

type columns map[string]int

func (c columns) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

type record struct {
	line   int
	fields []string
}

func readTable(r io.Reader, comma rune, required []string) ([]record, columns, error) {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(columns, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cols[h] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	var records []record
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read record: %w", err)
		}
		if isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		records = append(records, record{line: line, fields: rec})
	}
	return records, cols, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
