// Package report renders import previews, commit results and ledger
// aggregates as markdown.
package report

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"eur": func(d decimal.Decimal) string { return FormatMoney(d, "EUR") },
	"usd": func(d decimal.Decimal) string { return FormatMoney(d, "USD") },
	// EUR when known, else USD.
	"amount": func(s Suggestion) string {
		if s.AmountEUR.Valid {
			return FormatMoney(s.AmountEUR.Decimal, "EUR")
		}
		if s.AmountUSD.Valid {
			return FormatMoney(s.AmountUSD.Decimal, "USD")
		}
		return "-"
	},
	"month": func(year, month int) string {
		return fmt.Sprintf("%04d-%02d", year, month)
	},
	// Table cells cannot carry pipes or newlines.
	"cell": func(s string) string {
		return strings.NewReplacer("|", `\|`, "\n", " ", "\r", "").Replace(s)
	},
}

// RenderSummary renders the preview of a prepared batch.
func RenderSummary(s pipeline.Summary) string {
	return renderTemplate("summary", "summary.md", nil, s)
}

// RenderReport renders a commit report, including refreshed Quorum totals.
func RenderReport(r *pipeline.CommitReport) string {
	if r == nil {
		return "# Import result\n\nImport was not committed.\n"
	}
	return renderTemplate("commit", "commit.md", map[string]string{"quorum_totals": "quorum_totals.md"}, r)
}

func RenderQuorumTotals(totals []domain.QuorumTotal) string {
	return renderTemplate("reimbursements", "reimbursements.md", map[string]string{"quorum_totals": "quorum_totals.md"}, totals)
}

func RenderPatterns(patterns []domain.MerchantPattern) string {
	return renderTemplate("patterns", "patterns.md", nil, patterns)
}

// Suggestion pairs a row awaiting review with a proposed category. Empty
// Subcategory means no usable proposal.
type Suggestion struct {
	Date        civil.Date
	Description string
	AmountEUR   decimal.NullDecimal
	AmountUSD   decimal.NullDecimal
	Subcategory string
	Category    string
}

func RenderSuggestions(suggestions []Suggestion) string {
	return renderTemplate("suggestions", "suggestions.md", nil, suggestions)
}

// renderTemplate renders a main template with its named partials. Errors are
// rendered into the output.
func renderTemplate(name, mainFile string, partials map[string]string, data any) string {
	content, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", mainFile, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", mainFile, err)
	}
	for alias, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial %q: %v", file, err)
		}
		if _, err := tmpl.New(alias).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial %q: %v", file, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}
