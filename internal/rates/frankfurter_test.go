package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrankfurterSource_FetchRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2024-05-03", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("from"))
		assert.Equal(t, "USD", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"EUR","date":"2024-05-03","rates":{"USD":1.0765}}`))
	}))
	defer srv.Close()

	s := NewFrankfurterSource(srv.URL+"/", time.Second)
	rate, err := s.FetchRate(context.Background(), civil.Date{Year: 2024, Month: 5, Day: 3})
	require.NoError(t, err)
	assert.Equal(t, "1.0765", rate.String())
}

func TestFrankfurterSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"not found"}`},
		{name: "missing usd", status: http.StatusOK, body: `{"rates":{"GBP":0.85}}`},
		{name: "missing rates", status: http.StatusOK, body: `{"message":"bad date"}`},
		{name: "usd not a number", status: http.StatusOK, body: `{"rates":{"USD":"n/a"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewFrankfurterSource(srv.URL, time.Second).FetchRate(context.Background(), civil.Date{Year: 2024, Month: 5, Day: 4})
			assert.ErrorIs(t, err, ErrNoRate)
		})
	}
}

func TestFrankfurterSource_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewFrankfurterSource(srv.URL, 50*time.Millisecond).FetchRate(context.Background(), civil.Date{Year: 2024, Month: 5, Day: 3})
	assert.Error(t, err)
}

func TestPromptEntry(t *testing.T) {
	day := civil.Date{Year: 2024, Month: 5, Day: 3}

	t.Run("retries invalid input", func(t *testing.T) {
		out := &strings.Builder{}
		rate, ok, err := NewPromptEntry(strings.NewReader("abc\n-1\n1,09\n"), out).PromptRate(context.Background(), day)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "1.09", rate.String())
		assert.Contains(t, out.String(), "2024-05-03")
	})

	t.Run("empty line skips", func(t *testing.T) {
		_, ok, err := NewPromptEntry(strings.NewReader("\n"), &strings.Builder{}).PromptRate(context.Background(), day)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("end of input skips", func(t *testing.T) {
		_, ok, err := NewPromptEntry(strings.NewReader(""), &strings.Builder{}).PromptRate(context.Background(), day)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("value without newline", func(t *testing.T) {
		rate, ok, err := NewPromptEntry(strings.NewReader("1.1"), &strings.Builder{}).PromptRate(context.Background(), day)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "1.1", rate.String())
	})
}
