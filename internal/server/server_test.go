package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/altin/brunoview/internal/api"
	"github.com/altin/brunoview/internal/model"
)

const seedDoc = `[
	{"path": "users/get.bru", "request": {"method": "GET", "url": "http://api/users"}, "response": {"status": 200}},
	{"path": "users/create.bru", "request": {"method": "POST", "url": "http://api/users"}, "response": {"status": 201}},
	{"path": "users/delete.bru", "request": {"method": "DELETE", "url": "http://api/users/1"}, "response": {"status": 500}}
]`

type fixture struct {
	file   string
	public string
	srv    *httptest.Server
	store  *Store
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(file, []byte(seedDoc), 0o644))
	public := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(public, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte("<h1>brunoview</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("secret"), 0o644))

	store := NewStore(api.FileSource{Path: file}, 0, zap.NewNop())
	require.NoError(t, store.Reload(context.Background()))

	h := &Handler{store: store, file: file, publicDir: public, log: zap.NewNop()}
	srv := httptest.NewServer(NewMux(h, token, zap.NewNop()))
	t.Cleanup(srv.Close)
	return &fixture{file: file, public: public, srv: srv, store: store}
}

func get(t *testing.T, url string, header ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestResultsStreamsFile(t *testing.T) {
	fx := newFixture(t, "")

	resp, body := get(t, fx.srv.URL+"/api/results")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "results.json", resp.Header.Get("X-Results-File"))
	assert.Equal(t, seedDoc, body)
}

func TestResultsWithoutFile(t *testing.T) {
	store := NewStore(nil, 0, nil)
	h := &Handler{store: store, log: zap.NewNop()}
	srv := httptest.NewServer(NewMux(h, "", zap.NewNop()))
	defer srv.Close()

	resp, body := get(t, srv.URL+"/api/results")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "No results file configured")

	resp, _ = get(t, srv.URL+"/api/normalized")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuery(t *testing.T) {
	fx := newFixture(t, "")

	resp, body := get(t, fx.srv.URL+"/api/query?search=create&status=pass&method=POST&http=2xx&run=0&path=users/create.bru")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var got queryResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Matched)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "POST", got.Results[0].Method)
	assert.Equal(t, 1, got.Summary.Pass)
}

func TestQueryPaging(t *testing.T) {
	fx := newFixture(t, "")

	_, body := get(t, fx.srv.URL+"/api/query?sort=name&offset=1&limit=1")
	var got queryResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, 3, got.Matched)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "users/delete.bru", got.Results[0].Name)
}

func TestQueryRejectsBadParams(t *testing.T) {
	fx := newFixture(t, "")

	for _, q := range []string{"status=maybe", "http=1xx", "sort=size", "limit=-1", "run=first"} {
		resp, _ := get(t, fx.srv.URL+"/api/query?"+q)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestResultByID(t *testing.T) {
	fx := newFixture(t, "")

	resp, body := get(t, fx.srv.URL+"/api/results/0-2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"method":"DELETE"`)

	resp, _ = get(t, fx.srv.URL+"/api/results/9-9")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSummary(t *testing.T) {
	fx := newFixture(t, "")

	_, body := get(t, fx.srv.URL+"/api/summary")
	var got summaryResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "results.json", got.File)
	assert.Equal(t, 3, got.Summary.Total)
	assert.Equal(t, 1, got.Summary.HTTPBad)
	assert.Equal(t, []string{"DELETE", "GET", "POST"}, got.Facets.Methods)
	assert.Equal(t, "-", got.Duration)
}

func TestToken(t *testing.T) {
	fx := newFixture(t, "s3cret")

	resp, _ := get(t, fx.srv.URL+"/api/normalized")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = get(t, fx.srv.URL+"/api/normalized", "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = get(t, fx.srv.URL+"/api/normalized", "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, fx.srv.URL+"/api/normalized", "Authorization", "token s3cret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Static assets stay public.
	resp, _ = get(t, fx.srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReload(t *testing.T) {
	fx := newFixture(t, "")
	post := func() (*http.Response, string) {
		resp, err := http.Post(fx.srv.URL+"/api/reload", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp, string(b)
	}

	require.NoError(t, os.WriteFile(fx.file, []byte(`{"results": [{"name": "only"}]}`), 0o644))
	resp, body := post()
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	ds, _ := fx.store.Dataset()
	assert.Len(t, ds.Results, 1)

	require.NoError(t, os.WriteFile(fx.file, []byte(`[]`), 0o644))
	resp, _ = post()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	require.NoError(t, os.WriteFile(fx.file, []byte(`{`), 0o644))
	resp, _ = post()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	ds, _ = fx.store.Dataset()
	assert.Len(t, ds.Results, 1, "failed reloads keep the previous dataset")
}

func TestReloadDuringQueryKeepsDataSearchFresh(t *testing.T) {
	fx := newFixture(t, "")
	old, ok := fx.store.Snapshot()
	require.True(t, ok)

	fresh := `[{"path": "fresh.bru", "request": {"method": "POST", "url": "http://api/fresh", "body": {"token": "fresh-token"}}, "response": {"status": 200}}]`
	require.NoError(t, os.WriteFile(fx.file, []byte(fresh), 0o644))
	require.NoError(t, fx.store.Reload(context.Background()))

	// A query that took its snapshot before the reload finishes afterwards.
	stale := old.Engine.Filter(old.Dataset.Results, model.DefaultFilters().WithSearch("zzz").WithScopes(model.ScopeData))
	assert.Empty(t, stale)

	cur, ok := fx.store.Snapshot()
	require.True(t, ok)
	assert.NotSame(t, old.Engine, cur.Engine, "each dataset gets its own engine")
	assert.Zero(t, cur.Engine.CacheStats().Entries)

	resp, body := get(t, fx.srv.URL+"/api/query?search=fresh-token&scope=data")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var got queryResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got.Results, 1)
	assert.Equal(t, "fresh.bru", got.Results[0].Path)
}

func TestReloadSizesCacheToDataset(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(file, []byte(seedDoc), 0o644))

	store := NewStore(api.FileSource{Path: file}, 2, nil)
	require.NoError(t, store.Reload(context.Background()))
	snap, _ := store.Snapshot()

	f := model.DefaultFilters().WithSearch("users").WithScopes(model.ScopeData)
	snap.Engine.Filter(snap.Dataset.Results, f)
	snap.Engine.Filter(snap.Dataset.Results, f)
	assert.EqualValues(t, 3, snap.Engine.CacheStats().Hits)
}

func TestStatic(t *testing.T) {
	fx := newFixture(t, "")

	resp, body := get(t, fx.srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "brunoview")

	resp, _ = get(t, fx.srv.URL+"/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = get(t, fx.srv.URL+"/%2e%2e/secret.txt")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotContains(t, body, "secret")
}

func TestServerListensOnFreePort(t *testing.T) {
	store := NewStore(nil, 0, nil)
	s := New(Options{Addr: "127.0.0.1:0"}, store, nil)
	require.NoError(t, s.Listen())
	assert.Regexp(t, `^http://127\.0\.0\.1:\d+/$`, s.URL())

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()
	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, <-done)
}

func TestRequestID(t *testing.T) {
	fx := newFixture(t, "")

	resp, _ := get(t, fx.srv.URL+"/api/summary")
	assert.Regexp(t, `^[0-9a-f-]{36}$`, resp.Header.Get(RequestIDHeader))

	resp, _ = get(t, fx.srv.URL+"/api/summary", RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}
