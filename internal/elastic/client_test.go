package elastic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Host = u.Hostname()
	cfg.Port = port
	cfg.RetryInterval = time.Millisecond
	return NewClient(cfg), srv
}

func TestGetMapping(t *testing.T) {
	var gotPath string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"idx":{"mappings":{}}}`))
	})

	raw, err := client.GetMapping(context.Background(), "idx")
	require.NoError(t, err)
	assert.Equal(t, "/idx/_mapping", gotPath)
	assert.JSONEq(t, `{"idx":{"mappings":{}}}`, string(raw))
}

func TestDoRetriesTransientStatus(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	})

	_, err := client.GetMapping(context.Background(), "idx")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
	})

	_, err := client.GetMapping(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "index_not_found_exception")
}

func TestDoExhaustsRetries(t *testing.T) {
	attempts := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetMapping(context.Background(), "idx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
	assert.Equal(t, DefaultConfig().MaxRetries+1, attempts)
}

func TestDoSendsAuthAndRequestID(t *testing.T) {
	var user, pass string
	opaqueIDs := map[string]struct{}{}
	attempts := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		user, pass, _ = r.BasicAuth()
		opaqueIDs[r.Header.Get("X-Opaque-Id")] = struct{}{}
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	})
	client.cfg.Username = "elastic"
	client.cfg.Password = "changeme"

	_, err := client.GetMapping(context.Background(), "idx")
	require.NoError(t, err)
	assert.Equal(t, "elastic", user)
	assert.Equal(t, "changeme", pass)
	assert.Len(t, opaqueIDs, 2, "each attempt carries a fresh request id")
}

func TestScrollRoundTrip(t *testing.T) {
	var paths []string
	var methods []string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		methods = append(methods, r.Method)
		switch {
		case strings.HasPrefix(r.URL.Path, "/logs/_search"):
			w.Write([]byte(`{"_scroll_id":"s1","hits":{"hits":[
				{"_id":"1","_source":{"a":1}},
				{"_id":"2","_source":{"a":2}}
			]}}`))
		case r.Method == http.MethodPost:
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "s1", req["scroll_id"])
			w.Write([]byte(`{"_scroll_id":"s1","hits":{"hits":[]}}`))
		default:
			w.Write([]byte(`{"succeeded":true}`))
		}
	})

	ctx := context.Background()
	page, err := client.ScrollSearch(ctx, "logs", []byte(`{"query":{"match_all":{}}}`), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "s1", page.ScrollID)
	require.Len(t, page.Hits, 2)
	assert.Equal(t, "1", page.Hits[0].ID)
	assert.JSONEq(t, `{"a":1}`, string(page.Hits[0].Source))

	next, err := client.ScrollNext(ctx, page.ScrollID, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, next.Hits)

	require.NoError(t, client.ClearScroll(ctx, page.ScrollID))

	assert.Equal(t, "/logs/_search?scroll=1m", paths[0])
	assert.Equal(t, []string{http.MethodPost, http.MethodPost, http.MethodDelete}, methods)
}

func TestScrollTime(t *testing.T) {
	assert.Equal(t, "1m", scrollTime(0))
	assert.Equal(t, "2m", scrollTime(2*time.Minute))
	assert.Equal(t, "90s", scrollTime(90*time.Second))
}
