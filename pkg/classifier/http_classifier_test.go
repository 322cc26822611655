package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClassifier_Success(t *testing.T) {
	var gotReq Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"keywords": ["happy", "animals"], "is_for_kids": true}`))
	}))
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL, srv.Client())
	res, err := c.Classify(context.Background(), []string{"happy", "animals", "forest"})

	require.NoError(t, err)
	assert.Equal(t, []string{"happy", "animals", "forest"}, gotReq.Keywords)
	assert.True(t, res.IsForKids)
	assert.Equal(t, []string{"happy", "animals"}, res.Keywords)
}

func TestHTTPClassifier_NonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			// A well-formed body must still be ignored on failure.
			_, _ = w.Write([]byte(`{"keywords": ["x"], "is_for_kids": true}`))
		}))

		c := NewHTTPClassifier(srv.URL, srv.Client())
		res, err := c.Classify(context.Background(), []string{"anything"})
		srv.Close()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRequestFailed)
		assert.Equal(t, Result{}, res)
	}
}

func TestHTTPClassifier_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"keywords": "nope"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClassifier(srv.URL, srv.Client()).Classify(context.Background(), []string{"story"})
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestHTTPClassifier_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listens any more

	_, err := NewHTTPClassifier(url, nil).Classify(context.Background(), []string{"story"})
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestHTTPClassifier_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPClassifier(srv.URL, srv.Client()).Classify(ctx, []string{"slow"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPClassifier_NoKeywords(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	_, err := NewHTTPClassifier(srv.URL, srv.Client()).Classify(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoKeywords)
	assert.False(t, called, "no request should be sent for an empty keyword set")
}
