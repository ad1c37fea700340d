package main

import (
	"testing"

	"cloud.google.com/go/civil"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantErr    bool
	}{
		{name: "valid", start: "2024-05-01", end: "2024-05-31"},
		{name: "single day", start: "2024-05-01", end: "2024-05-01"},
		{name: "missing end", start: "2024-05-01", wantErr: true},
		{name: "bad format", start: "01.05.2024", end: "2024-05-31", wantErr: true},
		{name: "reversed", start: "2024-05-31", end: "2024-05-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, _, err := parseRange(tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && from != (civil.Date{Year: 2024, Month: 5, Day: 1}) {
				t.Errorf("from = %v", from)
			}
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "cfg"); got != "cfg" {
		t.Errorf("got %q", got)
	}
	if got := firstNonEmpty("flag", "cfg"); got != "flag" {
		t.Errorf("got %q", got)
	}
}
