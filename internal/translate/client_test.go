package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_a/single", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "gtx", q.Get("client"))
		assert.Equal(t, "ja", q.Get("sl"))
		assert.Equal(t, "en", q.Get("tl"))
		assert.Equal(t, "t", q.Get("dt"))
		assert.Equal(t, "ホロウナイト", q.Get("q"))

		w.Write([]byte(`[[["Hollow ","ホロウ",null,null,10],["Knight","ナイト",null,null,10]],null,"ja"]`))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}
	got, err := c.Translate(context.Background(), "ホロウナイト", "ja", "en")
	require.NoError(t, err)
	assert.Equal(t, "Hollow Knight", got)
}

func TestTranslateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}
	_, err := c.Translate(context.Background(), "ホロウナイト", "ja", "en")
	assert.Error(t, err)
}

func TestTranslateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}
	_, err := c.Translate(context.Background(), "テスト", "ja", "en")
	assert.Error(t, err)
}
