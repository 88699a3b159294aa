package hints_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/dataval/internal/adapters/outbound/hints"
	"github.com/abdidvp/dataval/internal/domain"
)

func sampleIssue() domain.Issue {
	return domain.NewIssue(domain.IssueSchema, "/a/b", "value is odd")
}

func TestTemplate_Hint(t *testing.T) {
	s, err := hints.NewTemplate().Hint(context.Background(), sampleIssue())
	require.NoError(t, err)
	assert.Equal(t, "AI hint for schema-violation: check /a/b — value is odd…", s.Message)
}

func TestTemplate_TruncatesLongMessages(t *testing.T) {
	issue := domain.NewIssue(domain.IssueParse, "$", strings.Repeat("é", 100))
	s, err := hints.NewTemplate().Hint(context.Background(), issue)
	require.NoError(t, err)
	assert.Equal(t, "AI hint for parse-error: check $ — "+strings.Repeat("é", 80)+"…", s.Message)
}

func TestHTTP_Hint(t *testing.T) {
	var got domain.Issue
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":"Use an even number.","example":"2"}`))
	}))
	defer srv.Close()

	issue := sampleIssue()
	s, err := hints.NewHTTP(srv.URL, time.Second).Hint(context.Background(), issue)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "Use an even number.", s.Message)
	assert.Equal(t, "2", s.Example)
	assert.Equal(t, issue.ID, got.ID)
	assert.Equal(t, issue.Path, got.Path)
}

func TestHTTP_EmptyMessageIsNoHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s, err := hints.NewHTTP(srv.URL, 0).Hint(context.Background(), sampleIssue())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestHTTP_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }, "status 502"},
		{"body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("not json")) }, "decoding hint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := hints.NewHTTP(srv.URL, time.Second).Hint(context.Background(), sampleIssue())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTP_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := hints.NewHTTP(srv.URL, 20*time.Millisecond).Hint(context.Background(), sampleIssue())
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	assert.IsType(t, &hints.Template{}, hints.FromConfig(domain.HintsConfig{Enabled: true}))
	assert.IsType(t, &hints.HTTP{}, hints.FromConfig(domain.HintsConfig{Enabled: true, Endpoint: "http://localhost:1"}))
}
