package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lserrors "github.com/fr4nk3nst1ner/langsalary/internal/errors"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"items":[]}`))
		case "/gzip":
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			zw.Write([]byte(`{"objects":[]}`))
			zw.Close()
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(buf.Bytes())
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	httpClient := CreateHTTPClient(time.Second)
	headers := GetJSONHeaders("")

	body, err := Get(context.Background(), httpClient, srv.URL+"/ok", headers)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(body))

	body, err = Get(context.Background(), httpClient, srv.URL+"/gzip", headers)
	require.NoError(t, err)
	assert.JSONEq(t, `{"objects":[]}`, string(body))

	_, err = Get(context.Background(), httpClient, srv.URL+"/forbidden", headers)
	require.Error(t, err)
	assert.True(t, lserrors.IsType(err, lserrors.ErrTypeNetwork))
}

func TestGetTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := Get(context.Background(), CreateHTTPClient(time.Second), url, GetJSONHeaders("test"))
	require.Error(t, err)
	assert.True(t, lserrors.IsType(err, lserrors.ErrTypeNetwork))
}

func TestCreateProxyHTTPClient(t *testing.T) {
	c := CreateProxyHTTPClient("", 0)
	assert.Equal(t, DefaultTimeout, c.Timeout)

	c = CreateProxyHTTPClient("http://localhost:8080", 5*time.Second)
	assert.Equal(t, 5*time.Second, c.Timeout)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, tr.Proxy)
}

func TestPacerKeepsInterval(t *testing.T) {
	const interval = 30 * time.Millisecond
	p := NewPacer(interval)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, p.Wait(ctx))
	assert.Less(t, time.Since(start), 20*time.Millisecond, "first call must not block")

	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 2*interval-time.Millisecond)
}

func TestPacerHonoursContext(t *testing.T) {
	p := NewPacer(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestRateLimiter(t *testing.T) {
	unlimited := NewRateLimiter(0)
	for i := 0; i < 5; i++ {
		require.NoError(t, unlimited.Wait(context.Background()))
	}

	l := NewRateLimiter(1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx), "second token is a second away")
}
