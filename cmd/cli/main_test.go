package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
)

func TestIsYes(t *testing.T) {
	for answer, want := range map[string]bool{
		"y\n":   true,
		" YES ": true,
		"n":     false,
		"":      false,
		"yep":   false,
	} {
		if got := isYes(answer); got != want {
			t.Errorf("isYes(%q) = %v, want %v", answer, got, want)
		}
	}
}

func TestPromptConfirm(t *testing.T) {
	*plain = true
	defer func() { *plain = false }()

	out := &strings.Builder{}
	confirm := promptConfirm(strings.NewReader("y\n"), out)
	if !confirm(pipeline.Summary{Ready: 3}) {
		t.Fatal("expected confirmation")
	}
	if !strings.Contains(out.String(), "Commit 3 transactions?") {
		t.Errorf("prompt missing from output: %q", out.String())
	}

	if promptConfirm(strings.NewReader(""), &strings.Builder{})(pipeline.Summary{Ready: 1}) {
		t.Error("end of input should decline")
	}
}

func TestLoadCategories(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	good := write("good.yaml", `
- subcategory: Groceries
  category: Food
  budget_type: Needs
- subcategory: Taxi
  category: Transport
  budget_type: Wants
`)
	mappings, err := loadCategories(good)
	if err != nil {
		t.Fatalf("loadCategories: %v", err)
	}
	if len(mappings) != 2 || mappings[1].BudgetType != "Wants" {
		t.Errorf("unexpected mappings: %+v", mappings)
	}

	tests := map[string]string{
		"incomplete.yaml": "- subcategory: Groceries\n  category: Food\n",
		"duplicate.yaml": `
- {subcategory: Taxi, category: Transport, budget_type: Wants}
- {subcategory: Taxi, category: Travel, budget_type: Wants}
`,
		"broken.yaml": "subcategory: [",
	}
	for name, body := range tests {
		if _, err := loadCategories(write(name, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := loadCategories(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestReviewQueue(t *testing.T) {
	rows := []*domain.Transaction{
		{Description: "A", Method: domain.MethodNone},
		{Description: "B", Method: domain.MethodPattern, Confidence: 80},
		{Description: "C", IsQuorum: true, Method: domain.MethodNone},
		{Description: "D", Method: domain.MethodNone},
		{Description: "E", Method: domain.MethodNone},
	}

	got := reviewQueue(rows, 2)
	if len(got) != 2 || got[0].Description != "A" || got[1].Description != "D" {
		t.Errorf("reviewQueue(limit 2) = %v", descriptions(got))
	}
	if got := reviewQueue(rows, 0); len(got) != 3 {
		t.Errorf("reviewQueue(no limit) = %v", descriptions(got))
	}
}

func descriptions(rows []*domain.Transaction) []string {
	out := make([]string, len(rows))
	for i, tx := range rows {
		out[i] = tx.Description
	}
	return out
}

func TestCompletionTree(t *testing.T) {
	root := completion(commands)
	for _, name := range []string{"init", "import", "migrate-history", "upload", "learn", "suggest", "patterns", "rate", "reimbursements", "help"} {
		if _, ok := root.Sub[name]; !ok {
			t.Errorf("completion tree missing %q", name)
		}
	}
	if _, ok := root.Sub["import"].Flags["file"]; !ok {
		t.Error("import should complete -file")
	}
	if _, ok := root.Flags["config"]; !ok {
		t.Error("global -config should complete")
	}
}
