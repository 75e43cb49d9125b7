package shipping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	// rdb=nilのCacheは素通し
	return NewClient(srv.URL, "test-key", 2*time.Second, NewCache(nil, zap.NewNop()), zap.NewNop())
}

func TestClient_Provinces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/destination/province", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("key"))
		w.Write([]byte(`{"data":[{"id":11,"name":"Aceh"},{"id":31,"name":"DKI Jakarta"}]}`))
	})

	locs, err := c.Provinces(context.Background())
	assert.NoError(t, err)
	assert.Len(t, locs, 2)
	assert.Equal(t, "DKI Jakarta", locs[1].Name)
}

func TestClient_Villages_UsesSubDistrictPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/destination/sub-district/5510", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":1,"name":"Caturtunggal","zip_code":"55281"}]}`))
	})

	locs, err := c.Villages(context.Background(), 5510)
	assert.NoError(t, err)
	assert.Len(t, locs, 1)
	assert.Equal(t, "55281", locs[0].ZipCode)
}

func TestClient_Quote_SortedByCost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calculate/district/domestic-cost", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "100", r.PostForm.Get("origin"))
		assert.Equal(t, "200", r.PostForm.Get("destination"))
		assert.Equal(t, "1500", r.PostForm.Get("weight"))
		assert.Equal(t, "jne:sicepat", r.PostForm.Get("courier"))
		w.Write([]byte(`{"data":[
			{"code":"jne","service":"REG","cost":12000,"etd":"2-3 day"},
			{"code":"sicepat","service":"BEST","cost":9000,"etd":"1-2 day"}
		]}`))
	})

	rates, err := c.Quote(context.Background(), 100, 200, 1500, []string{"jne", "sicepat"})
	assert.NoError(t, err)
	assert.Len(t, rates, 2)
	// 安い順
	assert.Equal(t, int64(9000), rates[0].Cost)
	assert.Equal(t, "sicepat", rates[0].Courier)
}

func TestClient_Quote_NoRoutes_IsNotError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	rates, err := c.Quote(context.Background(), 100, 200, 1000, []string{"jne"})
	assert.NoError(t, err)
	assert.Empty(t, rates)
}

func TestClient_ProviderError_IsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Provinces(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = c.Quote(context.Background(), 100, 200, 1000, []string{"jne"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_MalformedBody_IsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := c.Provinces(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
