package ledger

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

func TestFilter_Match(t *testing.T) {
	yes, no := true, false
	tx := &domain.Transaction{
		Date:        civil.Date{Year: 2024, Month: 5, Day: 3},
		Category:    "Groceries & Living",
		Subcategory: "Supermarket",
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "empty", filter: Filter{}, want: true},
		{name: "in range", filter: Filter{From: civil.Date{Year: 2024, Month: 5, Day: 1}, To: civil.Date{Year: 2024, Month: 5, Day: 3}}, want: true},
		{name: "before range", filter: Filter{From: civil.Date{Year: 2024, Month: 5, Day: 4}}, want: false},
		{name: "after range", filter: Filter{To: civil.Date{Year: 2024, Month: 5, Day: 2}}, want: false},
		{name: "category", filter: Filter{Category: "Groceries & Living"}, want: true},
		{name: "other category", filter: Filter{Category: "Rent"}, want: false},
		{name: "subcategory", filter: Filter{Subcategory: "Pharmacy"}, want: false},
		{name: "not quorum", filter: Filter{IsQuorum: &no}, want: true},
		{name: "quorum only", filter: Filter{IsQuorum: &yes}, want: false},
		{name: "manual only", filter: Filter{IsManual: &yes}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tx))
		})
	}
}
