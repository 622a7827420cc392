package scheduler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AfiqSafri/livesales-sub002/internal/config"
	"github.com/AfiqSafri/livesales-sub002/internal/dto"
)

func newTestReminder(checkURL string) *Reminder {
	return NewReminder(&config.Scheduler{
		CheckURL:     checkURL,
		Floor:        15 * time.Second,
		Idle:         5 * time.Minute,
		Backoff:      5 * time.Second,
		CheckTimeout: time.Second,
	}, zap.NewNop())
}

func settings(freqs ...string) []dto.SellerReminderSetting {
	out := make([]dto.SellerReminderSetting, 0, len(freqs))
	for i, f := range freqs {
		out = append(out, dto.SellerReminderSetting{
			SellerID:          uint(i + 1),
			ReminderFrequency: f,
		})
	}
	return out
}

func TestNextInterval(t *testing.T) {
	r := newTestReminder("http://unused")

	tests := []struct {
		name     string
		settings []dto.SellerReminderSetting
		want     time.Duration
	}{
		{"no sellers idles", nil, 5 * time.Minute},
		{"all off idles", settings("off", "off"), 5 * time.Minute},
		{"half the shortest frequency", settings("1h", "30m"), 15 * time.Minute},
		{"floor clamps fast frequencies", settings("30s"), 15 * time.Second},
		{"off entries are ignored", settings("off", "1h"), 30 * time.Minute},
		{"unknown values are ignored", settings("daily", "1h"), 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.nextInterval(tt.settings))
		})
	}
}

func TestIterateAdaptsInterval(t *testing.T) {
	resp := dto.ReminderCheckResponse{
		Success:        true,
		SellerSettings: settings("30m"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	r := newTestReminder(srv.URL)
	require.Equal(t, 5*time.Minute, r.interval)

	sleep := r.iterate(context.Background())
	assert.Equal(t, 15*time.Minute, sleep)
	assert.Equal(t, 15*time.Minute, r.interval)
	assert.Zero(t, r.failures)

	// Everyone turned reminders off, so the cadence relaxes back to idle.
	resp.SellerSettings = settings("off")
	sleep = r.iterate(context.Background())
	assert.Equal(t, 5*time.Minute, sleep)
}

func TestIterateBacksOffOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := newTestReminder(srv.URL)

	sleep := r.iterate(context.Background())
	assert.Equal(t, 5*time.Second, sleep)
	assert.Equal(t, 1, r.failures)

	r.iterate(context.Background())
	assert.Equal(t, 2, r.failures)

	// The third consecutive failure resets the streak.
	r.iterate(context.Background())
	assert.Zero(t, r.failures)

	// A failure never overwrites the adapted interval.
	assert.Equal(t, 5*time.Minute, r.interval)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		require.NoError(t, json.NewEncoder(w).Encode(dto.ReminderCheckResponse{Success: true}))
	}))
	defer srv.Close()

	r := newTestReminder(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}
