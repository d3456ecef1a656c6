package httpapi

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/adapters/driven/events"
	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func TestEvents_StreamsContentUpdates(t *testing.T) {
	bus := events.NewBroadcaster(events.DefaultBuffer)
	router, err := NewRouter(&Ports{Search: &mockSearchService{}, Events: bus})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	bus.Publish(ctx, domain.ContentUpdated{Version: "v5", Locale: "en", Changed: []string{"items"}})

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" && len(lines) > 0 {
			break
		}
		if line != "" {
			lines = append(lines, line)
		}
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "event: content-updated", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "data: "))
	assert.Contains(t, lines[1], `"version":"v5"`)

	cancel()
	require.Eventually(t, func() bool { return bus.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestEvents_NotConfigured(t *testing.T) {
	rec := serve(t, &Ports{Search: &mockSearchService{}}, http.MethodGet, "/events")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	router, err := NewRouter(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", router) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
