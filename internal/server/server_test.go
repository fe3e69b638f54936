package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/pipeline"
	"github.com/theirongolddev/demandcast/internal/store"
)

const halfYear = "Month,Sales\nJan,100\nFeb,120\nMar,140\nApr,160\nMay,180\nJun,200\n"

func newTestService(t *testing.T, withStore bool) *Service {
	t.Helper()
	seed := uint64(42)
	cfg := Config{
		EventsBuffer: 50,
		Options:      pipeline.Options{Model: forecast.ARIMA, Seed: &seed},
	}
	if withStore {
		st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		cfg.Store = st
	}
	return New(cfg)
}

func do(t *testing.T, s *Service, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func postJSON(path string, v any) *http.Request {
	data, _ := json.Marshal(v)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2})

	s.publishEvent(Event{Type: EventForecast})
	s.publishEvent(Event{Type: EventForecast})
	s.publishEvent(Event{Type: EventDeleted})

	events := s.eventsSince(0)
	require.Len(t, events, 2)
	assert.Equal(t, int64(2), events[0].ID)
	assert.Equal(t, int64(3), events[1].ID)
	assert.False(t, events[1].Timestamp.IsZero())

	assert.Len(t, s.eventsSince(2), 1)
	assert.Empty(t, s.eventsSince(3))
}

func TestPublishEventDoesNotBlock(t *testing.T) {
	s := New(Config{})
	ch := make(chan Event) // unbuffered, never read
	s.addSubscriber(ch)

	done := make(chan struct{})
	go func() {
		s.publishEvent(Event{Type: EventForecast})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishEvent blocked on a slow subscriber")
	}
}

func TestHealthz(t *testing.T) {
	s := newTestService(t, false)
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
}

func TestForecast_JSON(t *testing.T) {
	s := newTestService(t, true)
	resp, body := do(t, s, postJSON("/v1/forecast", map[string]any{"csv": halfYear, "source": "store"}))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var rec model.ForecastRecord
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "store", rec.Source)
	assert.Equal(t, "ARIMA", rec.Model)
	assert.Equal(t, 6, rec.Rows)
	assert.Len(t, rec.Result.Forecast, forecast.Horizon)
	assert.Equal(t, model.TrendIncreasing, rec.Result.SalesTrend)

	events := s.eventsSince(0)
	require.Len(t, events, 1)
	assert.Equal(t, EventForecast, events[0].Type)
	assert.Equal(t, rec.ID, events[0].ForecastID)
	assert.Equal(t, int64(1), s.snapshotStatus().Served)
}

func TestForecast_CSVBodyWithQuery(t *testing.T) {
	s := newTestService(t, false)
	req := httptest.NewRequest(http.MethodPost, "/v1/forecast?model=xgb&seed=7", strings.NewReader(halfYear))
	req.Header.Set("Content-Type", "text/csv")
	resp, body := do(t, s, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var rec model.ForecastRecord
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Empty(t, rec.ID, "no history store, nothing saved")
	assert.Equal(t, "XGBoost", rec.Model)
	require.NotNil(t, rec.Seed)
	assert.Equal(t, uint64(7), *rec.Seed)
	assert.Equal(t, "api", rec.Source)
}

func TestForecast_MultipartUpload(t *testing.T) {
	s := newTestService(t, true)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "q2_sales.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(halfYear))
	require.NoError(t, mw.WriteField("model", "prophet"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/forecast", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, body := do(t, s, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var rec model.ForecastRecord
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, "q2_sales.csv", rec.Source)
	assert.Equal(t, "Prophet", rec.Model)
}

func TestForecast_Rejects(t *testing.T) {
	s := newTestService(t, false)

	resp, body := do(t, s, postJSON("/v1/forecast", map[string]any{"csv": "Month,Sales\nJan,10\nFeb,20\n"}))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.EqualValues(t, 2, payload["valid_rows"])
	assert.EqualValues(t, forecast.MinRows, payload["required_rows"])

	resp, _ = do(t, s, postJSON("/v1/forecast", map[string]any{"csv": halfYear, "model": "transformer"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/v1/forecast", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	events := s.eventsSince(0)
	require.Len(t, events, 1)
	assert.Equal(t, EventFailed, events[0].Type)
}

func TestInspect(t *testing.T) {
	s := newTestService(t, false)
	resp, body := do(t, s, postJSON("/v1/inspect", map[string]any{"csv": halfYear + "Jul,n/a\n"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p model.DataProfile
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Len(t, p.Valid, 6)
	require.Len(t, p.Dropped, 1)
	assert.Equal(t, model.DropUnparsable, p.Dropped[0].Reason)
	assert.True(t, p.Ready)
}

func TestCompare(t *testing.T) {
	s := newTestService(t, false)
	resp, body := do(t, s, postJSON("/v1/compare", map[string]any{"csv": halfYear}))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []comparisonEntry
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out, len(forecast.All()))
	for i, e := range out {
		assert.Equal(t, i+1, e.Rank)
		assert.NotNil(t, e.Result)
		assert.NotZero(t, e.Benchmark.Accuracy)
	}
}

func TestModels(t *testing.T) {
	s := newTestService(t, false)
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []modelInfo
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out, len(forecast.All()))
	defaults := 0
	for _, m := range out {
		if m.Default {
			defaults++
			assert.Equal(t, "ARIMA", m.Model)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestService(t, true)
	_, body := do(t, s, postJSON("/v1/forecast", map[string]any{"csv": halfYear}))
	var rec model.ForecastRecord
	require.NoError(t, json.Unmarshal(body, &rec))

	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/forecasts?limit=10", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []forecastSummary
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)

	for _, ref := range []string{rec.ID, rec.ID[:8], "latest"} {
		resp, body = do(t, s, httptest.NewRequest(http.MethodGet, "/v1/forecasts/"+ref, nil))
		require.Equal(t, http.StatusOK, resp.StatusCode, ref)
		var got model.ForecastRecord
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, rec.ID, got.ID)
	}

	resp, _ = do(t, s, httptest.NewRequest(http.MethodDelete, "/v1/forecasts/"+rec.ID, nil))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/v1/forecasts/"+rec.ID, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	events := s.eventsSince(0)
	require.Len(t, events, 2)
	assert.Equal(t, EventDeleted, events[1].Type)

	resp, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/v1/forecasts?since=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistoryDisabled(t *testing.T) {
	s := newTestService(t, false)
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/forecasts", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "history is disabled")
}

func TestEventsEndpoint(t *testing.T) {
	s := newTestService(t, false)
	s.publishEvent(Event{Type: EventForecast, Source: "a"})
	s.publishEvent(Event{Type: EventForecast, Source: "b"})

	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/events?after=1", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []Event
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "b", events[0].Source)

	resp, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/v1/events?after=x", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeSSE(w, Event{ID: 9, Type: EventForecast, Source: "x.csv"}))
	require.NoError(t, writeSSE(w, Event{Type: EventHello}))
	require.NoError(t, w.Flush())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "id: 9\nevent: forecast\ndata: {"))
	assert.Contains(t, out, `"source":"x.csv"`)
	assert.Contains(t, out, "\n\nevent: hello\ndata: ")
	assert.Equal(t, 1, strings.Count(out, "id: "))
}

func TestPollOnce(t *testing.T) {
	s := newTestService(t, true)
	inbox := t.TempDir()
	s.cfg.InboxDir = inbox
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "north.csv"), []byte(halfYear), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "tiny.csv"), []byte("Month,Sales\nJan,1\n"), 0o600))

	s.pollOnce()
	events := s.eventsSince(0)
	require.Len(t, events, 2)
	types := []string{events[0].Type, events[1].Type}
	assert.ElementsMatch(t, []string{EventForecast, EventFailed}, types)

	st := s.snapshotStatus()
	assert.Equal(t, int64(1), st.PollCount)
	assert.Equal(t, 1, st.StoredForecasts)
	assert.Empty(t, st.LastError)

	// Unchanged files, including the rejected one, produce no new events.
	s.pollOnce()
	assert.Empty(t, s.eventsSince(2))
	failed := 0
	for _, ev := range s.eventsSince(0) {
		if ev.Type == EventFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, int64(2), s.snapshotStatus().PollCount)

	s.cfg.InboxDir = filepath.Join(inbox, "missing")
	s.pollOnce()
	assert.NotEmpty(t, s.snapshotStatus().LastError)
}
