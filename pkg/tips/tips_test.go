package tips

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/carebell/pkg/clock"
	"github.com/borgmon/carebell/pkg/models"
)

func geminiServer(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *Client {
	return NewClient(Config{APIKey: "secret", Model: "test-model", BaseURL: url, Timeout: 2 * time.Second}, nil)
}

func TestGenerate(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  Walk for ten minutes. "}]}}]}`)

	text, err := newTestClient(srv.URL).Generate(context.Background(), "tip please", "be kind")
	require.NoError(t, err)
	assert.Equal(t, "Walk for ten minutes.", text)
}

func TestGenerateErrors(t *testing.T) {
	_, err := NewClient(Config{}, nil).Generate(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrNoKey)

	empty := geminiServer(t, http.StatusOK, `{"candidates":[]}`)
	_, err = newTestClient(empty.URL).Generate(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	failing := geminiServer(t, http.StatusTooManyRequests, `{"error":{"message":"quota"}}`)
	_, err = newTestClient(failing.URL).Generate(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestDailyTipFallsBack(t *testing.T) {
	failing := geminiServer(t, http.StatusInternalServerError, `oops`)
	assert.Equal(t, DefaultTip, newTestClient(failing.URL).DailyTip(context.Background()))

	ok := geminiServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"Stretch gently."}]}}]}`)
	assert.Equal(t, "Stretch gently.", newTestClient(ok.URL).DailyTip(context.Background()))
}

func TestMotivateFallsBackToBank(t *testing.T) {
	msg := NewClient(Config{}, nil).Motivate(context.Background())
	assert.True(t, msg.Offline)
	assert.Contains(t, fallbackMessages, msg.Text)

	ok := geminiServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"You've got this."}]}}]}`)
	msg = newTestClient(ok.URL).Motivate(context.Background())
	assert.False(t, msg.Offline)
	assert.Equal(t, "You've got this.", msg.Text)
}

type memCache struct {
	mu   sync.Mutex
	date string
	text string
}

func (m *memCache) LastTip() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.date, m.text
}

func (m *memCache) SaveTip(day time.Time, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.date = models.DateKey(day)
	m.text = text
}

type countingSource struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSource) DailyTip(context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return "Drink water."
}

func TestDailyFiresOncePerDayOnFirstDose(t *testing.T) {
	source := &countingSource{}
	cache := &memCache{}
	var got []string
	var mu sync.Mutex
	d := NewDaily(source, cache, func() bool { return true }, func(tip string) {
		mu.Lock()
		got = append(got, tip)
		mu.Unlock()
	}, time.Second, nil)

	sched := models.Schedule{Medications: []models.Medication{
		{ID: "m2", Name: "Evening", Time: models.MustTimeOfDay("20:00"), Enabled: true},
		{ID: "m1", Name: "Morning", Time: models.MustTimeOfDay("08:00"), Enabled: true},
		{ID: "m0", Name: "Paused", Time: models.MustTimeOfDay("06:00"), Enabled: false},
	}}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)

	d.Observe(clock.SampleAt(day.Add(6*time.Hour)), sched)
	d.Observe(clock.SampleAt(day.Add(20*time.Hour)), sched)
	d.Wait()
	assert.Zero(t, source.calls)

	d.Observe(clock.SampleAt(day.Add(8*time.Hour)), sched)
	d.Wait()
	d.Observe(clock.SampleAt(day.Add(8*time.Hour+30*time.Second)), sched)
	d.Wait()
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, []string{"Drink water."}, got)

	date, text := cache.LastTip()
	assert.Equal(t, "2026-03-01", date)
	assert.Equal(t, "Drink water.", text)

	d.Observe(clock.SampleAt(day.AddDate(0, 0, 1).Add(8*time.Hour)), sched)
	d.Wait()
	assert.Equal(t, 2, source.calls)
}

func TestDailyDisabled(t *testing.T) {
	source := &countingSource{}
	d := NewDaily(source, &memCache{}, func() bool { return false }, nil, time.Second, nil)
	sched := models.Schedule{Medications: []models.Medication{{ID: "m1", Time: models.MustTimeOfDay("08:00"), Enabled: true}}}

	d.Observe(clock.SampleAt(time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)), sched)
	d.Wait()
	assert.Zero(t, source.calls)
}
