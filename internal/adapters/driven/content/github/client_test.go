package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{Owner: "rulebook-data", Repo: "content", Ref: "main", Root: "content", Token: token}
	return NewClient(context.Background(), cfg,
		WithBaseURL(server.URL),
		WithRateLimiter(NewRateLimiter(AuthenticatedLimit, 1000)),
	)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_List(t *testing.T) {
	var gotPath, gotRef, gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRef = r.URL.Query().Get("ref")
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, []map[string]any{
			{"type": "file", "name": "wardens.json", "path": "content/en/units/wardens.json"},
			{"type": "dir", "name": "drafts", "path": "content/en/units/drafts"},
		})
	}), "secret")

	entries, err := client.List(context.Background(), "en/units")
	require.NoError(t, err)

	assert.Equal(t, "/repos/rulebook-data/content/contents/content/en/units", gotPath)
	assert.Equal(t, "main", gotRef)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, []domain.ListingEntry{
		{Name: "wardens.json", Kind: "file"},
		{Name: "drafts", Kind: "dir"},
	}, entries)
}

func TestClient_Get_DecodesContent(t *testing.T) {
	payload := `{"id":"wardens","name":"Wardens"}`
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"type":     "file",
			"name":     "wardens.json",
			"path":     "content/en/units/wardens.json",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(payload)),
		})
	}), "")

	data, err := client.Get(context.Background(), "en/units/wardens.json")
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(data))
}

func TestClient_List_NotADirectory(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"type": "file", "name": "x.json", "encoding": "base64", "content": ""})
	}), "")

	_, err := client.List(context.Background(), "en/x.json")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(t, w, map[string]string{"message": "Not Found"})
	}), "")

	_, err := client.List(context.Background(), "fr/units")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.False(t, domain.IsRateLimited(err))
}

func TestClient_RateLimitedFailsFast(t *testing.T) {
	var hits atomic.Int32
	reset := time.Now().Add(time.Hour).Unix()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set(HeaderRateLimit, "60")
		w.Header().Set(HeaderRateRemaining, "0")
		w.Header().Set(HeaderRateReset, strconv.FormatInt(reset, 10))
		w.WriteHeader(http.StatusForbidden)
		writeJSON(t, w, map[string]string{"message": "API rate limit exceeded"})
	}), "")

	_, err := client.List(context.Background(), "en/units")
	require.Error(t, err)
	assert.True(t, domain.IsRateLimited(err))

	var limited *RateLimitError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, reset, limited.ResetAt.Unix())

	_, err = client.List(context.Background(), "en/units")
	assert.True(t, domain.IsRateLimited(err))
	assert.Equal(t, int32(1), hits.Load(), "second call must not reach the server")
	assert.Equal(t, 0, client.RateLimiter().Remaining())
}

func TestClient_ServerErrorIsNotRateLimited(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		writeJSON(t, w, map[string]string{"message": "upstream"})
	}), "")

	_, err := client.Get(context.Background(), "en/sequence.json")
	require.Error(t, err)
	assert.False(t, domain.IsRateLimited(err))
	assert.False(t, domain.IsNotFound(err))

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	r := NewRateLimiter(AnonymousLimit, 1000)
	assert.Equal(t, AnonymousLimit, r.Remaining())

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateLimit, "5000")
	resp.Header.Set(HeaderRateRemaining, "4999")
	resp.Header.Set(HeaderRateReset, "1700000000")
	r.UpdateFromResponse(resp)

	assert.Equal(t, 5000, r.Limit())
	assert.Equal(t, 4999, r.Remaining())
	assert.Equal(t, int64(1700000000), r.ResetTime().Unix())
	assert.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_ExhaustedAfterReset(t *testing.T) {
	r := NewRateLimiter(AnonymousLimit, 1000)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "0")
	resp.Header.Set(HeaderRateReset, strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10))
	r.UpdateFromResponse(resp)

	assert.NoError(t, r.Wait(context.Background()), "quota has reset")
}
