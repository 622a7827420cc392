package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AfiqSafri/livesales-sub002/internal/config"
	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/model"
)

// maxConsecutiveFailures bounds the retry streak before the counter resets
// and the loop goes back to its normal cadence.
const maxConsecutiveFailures = 3

// Reminder polls the reminder-check endpoint and adapts its own cadence to
// the shortest reminder frequency any seller has configured. All loop state
// lives on the struct; there are no package-level globals.
type Reminder struct {
	httpClient *http.Client
	checkURL   string
	floor      time.Duration
	idle       time.Duration
	backoff    time.Duration

	interval time.Duration
	failures int

	logger *zap.Logger
}

func NewReminder(cfg *config.Scheduler, logger *zap.Logger) *Reminder {
	return &Reminder{
		httpClient: &http.Client{
			Timeout: cfg.CheckTimeout,
		},
		checkURL: cfg.CheckURL,
		floor:    cfg.Floor,
		idle:     cfg.Idle,
		backoff:  cfg.Backoff,
		interval: cfg.Idle,
		logger:   logger,
	}
}

// Run loops until the context is cancelled. A failed check never terminates
// the loop; it only shortens the next sleep to the retry backoff.
func (r *Reminder) Run(ctx context.Context) error {
	r.logger.Info("reminder scheduler started",
		zap.String("check_url", r.checkURL),
		zap.Duration("floor", r.floor),
	)

	for {
		sleep := r.iterate(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info("reminder scheduler stopping")
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// iterate performs one reminder check and returns how long to sleep before
// the next one.
func (r *Reminder) iterate(ctx context.Context) time.Duration {
	resp, err := r.check(ctx)
	if err != nil {
		r.failures++
		r.logger.Warn("reminder check failed",
			zap.Int("consecutive_failures", r.failures),
			zap.Error(err),
		)
		if r.failures >= maxConsecutiveFailures {
			r.failures = 0
		}
		return r.backoff
	}

	r.failures = 0
	r.interval = r.nextInterval(resp.SellerSettings)

	r.logger.Info("reminder check ok",
		zap.Int("emails_sent", resp.TotalEmailsSent),
		zap.Int("sellers_checked", resp.TotalSellersChecked),
		zap.Duration("next_interval", r.interval),
	)
	return r.interval
}

func (r *Reminder) check(ctx context.Context) (*dto.ReminderCheckResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.checkURL, bytes.NewBufferString("{}"))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reminder check returned %d", resp.StatusCode)
	}

	var result dto.ReminderCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode reminder response: %w", err)
	}

	return &result, nil
}

// nextInterval polls at half the shortest active seller frequency, clamped
// to the floor. With no active frequencies the loop falls back to the idle
// cadence.
func (r *Reminder) nextInterval(settings []dto.SellerReminderSetting) time.Duration {
	shortest := time.Duration(0)
	for _, setting := range settings {
		freq := model.ReminderFrequency(setting.ReminderFrequency)
		interval, active := freq.Interval()
		if !active {
			continue
		}
		if shortest == 0 || interval < shortest {
			shortest = interval
		}
	}

	if shortest == 0 {
		return r.idle
	}

	next := shortest / 2
	if next < r.floor {
		next = r.floor
	}
	return next
}
