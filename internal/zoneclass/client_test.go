package zoneclass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonegram/internal/domain"
)

func classifyServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClassifyZone(t *testing.T) {
	t.Run("accepts built-in zones", func(t *testing.T) {
		srv := classifyServer(t, `{"classification":"productivity"}`)
		zone, err := NewWithBaseURL(srv.URL).ClassifyZone(context.Background(), "work stuff")
		require.NoError(t, err)
		assert.Equal(t, domain.ZoneProductivity, zone)
	})

	t.Run("normalizes case", func(t *testing.T) {
		srv := classifyServer(t, `{"classification":"Entertainment"}`)
		zone, err := NewWithBaseURL(srv.URL).ClassifyZone(context.Background(), "party")
		require.NoError(t, err)
		assert.Equal(t, domain.ZoneEntertainment, zone)
	})

	t.Run("rejects unknown taxonomy", func(t *testing.T) {
		srv := classifyServer(t, `{"classification":"reading"}`)
		_, err := NewWithBaseURL(srv.URL).ClassifyZone(context.Background(), "books")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRemoteClassification)
	})

	t.Run("service error payload", func(t *testing.T) {
		srv := classifyServer(t, `{"error":"no quota"}`)
		_, err := NewWithBaseURL(srv.URL).ClassifyZone(context.Background(), "text")
		assert.ErrorIs(t, err, domain.ErrRemoteClassification)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewWithBaseURL(srv.URL).ClassifyZone(context.Background(), "text")
		assert.ErrorIs(t, err, domain.ErrRemoteClassification)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		_, err := NewWithBaseURL(srv.URL).ClassifyZone(context.Background(), "text")
		assert.ErrorIs(t, err, domain.ErrRemoteClassification)
	})
}
