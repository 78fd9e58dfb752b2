package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storesearch", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Sekiro", q.Get("term"))
		assert.Equal(t, "japanese", q.Get("l"))
		assert.Equal(t, "JP", q.Get("cc"))

		w.Write([]byte(`{"items":[
			{"type":"bundle","name":"Sekiro Bundle","price":{"initial":999900,"final":999900}},
			{"type":"app","name":"Sekiro no price"},
			{"type":"app","name":"Sekiro","price":{"initial":836000,"final":418000}}
		]}`))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}
	price, err := c.Lookup(context.Background(), "Sekiro")
	require.NoError(t, err)
	require.NotNil(t, price)

	// storefront reports yen * 100
	assert.Equal(t, 8360, price.Initial)
	assert.Equal(t, 4180, price.Final)
	assert.Equal(t, 50, price.DiscountPercent)
}

func TestLookupNoMatchIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}
	price, err := c.Lookup(context.Background(), "Nothing Matches This")
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestLookupFullPriceHasZeroDiscount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"type":"app","name":"Celeste","price":{"initial":198000,"final":198000}}]}`))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}
	price, err := c.Lookup(context.Background(), "Celeste")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 1980, price.Final)
	assert.Equal(t, 0, price.DiscountPercent)
}

func TestLookupUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), BaseURL: srv.URL}
	_, err := c.Lookup(context.Background(), "Sekiro")
	assert.Error(t, err)
}
