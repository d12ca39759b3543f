package tagging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonegram/internal/domain"
)

func TestExtractTags(t *testing.T) {
	t.Run("parses comma-joined tags", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			w.Write([]byte(`{"tags":"coding, typescript ,  web development,"}`))
		}))
		defer srv.Close()

		tags, err := NewWithBaseURL(srv.URL).ExtractTags(context.Background(), "some caption")
		require.NoError(t, err)
		assert.Equal(t, []string{"coding", "typescript", "web development"}, tags)
	})

	t.Run("service error payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"error":"model overloaded"}`))
		}))
		defer srv.Close()

		_, err := NewWithBaseURL(srv.URL).ExtractTags(context.Background(), "text")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRemoteClassification)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewWithBaseURL(srv.URL).ExtractTags(context.Background(), "text")
		assert.ErrorIs(t, err, domain.ErrRemoteClassification)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // refuse connections

		_, err := NewWithBaseURL(srv.URL).ExtractTags(context.Background(), "text")
		assert.ErrorIs(t, err, domain.ErrRemoteClassification)
	})

	t.Run("malformed payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := NewWithBaseURL(srv.URL).ExtractTags(context.Background(), "text")
		assert.ErrorIs(t, err, domain.ErrRemoteClassification)
	})
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitTags(" a , b "))
	assert.Nil(t, SplitTags(""))
	assert.Nil(t, SplitTags(" , ,, "))
}
