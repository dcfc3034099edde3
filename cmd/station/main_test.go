package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/config"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
	"github.com/Konyali-Saat/konyali-optik-sayim/internal/workflow"
)

func fakeCountingService(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/stats":
			_, _ = io.WriteString(w, `{"success":true,"stats":{"total":4,"direkt":3,"direkt_oran":75}}`)
		case "/api/brands":
			_, _ = io.WriteString(w, `{"success":true,"brands":[{"id":"recRB","ad":"Ray-Ban","kod":"RB"}]}`)
		case "/api/search-barcode":
			_, _ = io.WriteString(w, `{"found":false}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(upstreamURL string) config.Config {
	return config.Config{
		Port:                  "0",
		Environment:           "test",
		SayimAPIURL:           upstreamURL,
		Category:              models.CategoryFrame,
		UpstreamTimeout:       time.Second,
		StatsRefreshInterval:  time.Hour,
		BrandsRefreshInterval: time.Hour,
		NotFoundAfterSave:     "reset",
		AllowedOrigins:        []string{"*"},
		SessionIdleTimeout:    time.Hour,
	}
}

func TestNewStationServesSessionsAndWarmsCache(t *testing.T) {
	upstream := fakeCountingService(t)
	st, err := newStation(context.Background(), testConfig(upstream.URL), zap.NewNop())
	require.NoError(t, err)
	defer st.close()
	require.NotNil(t, st.sweeper)
	assert.Equal(t, time.Hour, st.sweeper.IdleTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	st.startWorkers(ctx, &wg)
	defer func() {
		cancel()
		wg.Wait()
	}()

	require.Eventually(t, func() bool {
		_, ok := st.refresher.Stats(models.CategoryFrame)
		return ok && len(st.refresher.Brands(models.CategoryFrame)) > 0
	}, 2*time.Second, 10*time.Millisecond)

	server := httptest.NewServer(st.handler)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var snap workflow.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))

	lookup, err := http.Post(server.URL+"/api/sessions/"+snap.SessionID+"/barcode", "application/json", strings.NewReader(`{"barcode":"8680000000000"}`))
	require.NoError(t, err)
	defer lookup.Body.Close()
	require.Equal(t, http.StatusOK, lookup.StatusCode)
	require.NoError(t, json.NewDecoder(lookup.Body).Decode(&snap))
	assert.Equal(t, workflow.StageShowingNotFound, snap.Stage)

	brands, err := http.Get(server.URL + "/api/brands")
	require.NoError(t, err)
	defer brands.Body.Close()
	body, err := io.ReadAll(brands.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"kod":"RB"`)
}

func TestNewStationRejectsUnknownPolicy(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.NotFoundAfterSave = "forget"
	_, err := newStation(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}
