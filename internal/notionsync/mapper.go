package notionsync

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// Property names of the Notion ledger database.
const (
	PropDescription = "Description"
	PropDate        = "Date"
	PropAmountEUR   = "Amount EUR"
	PropAmountUSD   = "Amount USD"
	PropRate        = "Exchange Rate"
	PropCurrency    = "Original Currency"
	PropSubcategory = "Subcategory"
	PropCategory    = "Category"
	PropBudgetType  = "Budget Type"
	PropQuorum      = "Quorum"
	PropEUBill      = "EU Bill"
	PropMethod      = "Method"
	PropFingerprint = "Fingerprint"
)

// TransactionToNotionProperties maps a ledger row to page properties. Null
// amounts are left out so the Notion cell stays empty.
func TransactionToNotionProperties(tx *domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		PropDescription: notionapi.TitleProperty{
			Title: []notionapi.RichText{plainText(tx.Description)},
		},
		PropDate: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: notionDate(tx.Date)},
		},
		PropCurrency: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.OriginalCurrency)},
		},
		PropQuorum: notionapi.CheckboxProperty{Checkbox: tx.IsQuorum},
		PropEUBill: notionapi.CheckboxProperty{Checkbox: tx.IsEUBill},
		PropFingerprint: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{plainText(tx.Fingerprint)},
		},
	}

	setNumber(props, PropAmountEUR, tx.AmountEUR)
	setNumber(props, PropAmountUSD, tx.AmountUSD)
	setNumber(props, PropRate, tx.ExchangeRate)

	// Notion rejects empty select options.
	setSelect(props, PropSubcategory, tx.Subcategory)
	setSelect(props, PropCategory, tx.Category)
	setSelect(props, PropBudgetType, tx.BudgetType)
	setSelect(props, PropMethod, string(tx.Method))

	return props
}

func plainText(s string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}
}

func notionDate(d civil.Date) *notionapi.Date {
	nd := notionapi.Date(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC))
	return &nd
}

func setNumber(props notionapi.Properties, name string, v decimal.NullDecimal) {
	if !v.Valid {
		return
	}
	props[name] = notionapi.NumberProperty{Number: v.Decimal.InexactFloat64()}
}

func setSelect(props notionapi.Properties, name, value string) {
	if value == "" {
		return
	}
	props[name] = notionapi.SelectProperty{Select: notionapi.Option{Name: value}}
}

// fingerprintOf reads the Fingerprint property of an existing page.
func fingerprintOf(page notionapi.Page) string {
	prop, ok := page.Properties[PropFingerprint]
	if !ok {
		return ""
	}
	rt, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(rt.RichText) == 0 {
		return ""
	}
	if rt.RichText[0].PlainText != "" {
		return rt.RichText[0].PlainText
	}
	if rt.RichText[0].Text != nil {
		return rt.RichText[0].Text.Content
	}
	return ""
}
