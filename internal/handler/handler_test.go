package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/service"
)

type stubWebhookService struct {
	err       error
	gotBody   []byte
	gotSig    string
	callCount int
}

func (s *stubWebhookService) HandleCallback(ctx context.Context, body []byte, signature string) error {
	s.callCount++
	s.gotBody = body
	s.gotSig = signature
	return s.err
}

type stubSweeperService struct {
	resp *dto.SweepResponse
	err  error
}

func (s *stubSweeperService) CancelUnpaid(ctx context.Context) (*dto.SweepResponse, error) {
	return s.resp, s.err
}

func postWebhook(h *WebhookHandler, body, signature string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}
	rec := httptest.NewRecorder()
	_ = h.HandleCallback(e.NewContext(req, rec))
	return rec
}

func TestWebhookHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"settled", nil, http.StatusOK},
		{"bad signature", service.ErrBadSignature, http.StatusBadRequest},
		{"bad payload", service.ErrBadPayload, http.StatusBadRequest},
		{"unknown payment", service.ErrPaymentNotFound, http.StatusNotFound},
		{"unknown order", service.ErrOrderNotFound, http.StatusNotFound},
		{"storage failure retries", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubWebhookService{err: tt.err}
			rec := postWebhook(NewWebhookHandler(svc), `{"id":"b1"}`, "deadbeef")

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, 1, svc.callCount)
			assert.Equal(t, `{"id":"b1"}`, string(svc.gotBody))
			assert.Equal(t, "deadbeef", svc.gotSig)
		})
	}
}

func TestWebhookHandlerRequiresSignature(t *testing.T) {
	svc := &stubWebhookService{}
	rec := postWebhook(NewWebhookHandler(svc), `{}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.callCount, "service must not see unsigned requests")
}

func TestCancelUnpaidSecret(t *testing.T) {
	sweeper := &stubSweeperService{resp: &dto.SweepResponse{
		Success:         true,
		CancelledOrders: 2,
		Timestamp:       time.Now(),
	}}
	h := NewJobsHandler(sweeper, nil, "job-secret")

	call := func(secret string) *httptest.ResponseRecorder {
		e := echo.New()
		target := "/api/jobs/cancel-unpaid"
		if secret != "" {
			target += "?secret=" + secret
		}
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		_ = h.CancelUnpaid(e.NewContext(req, rec))
		return rec
	}

	rec := call("wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call("job-secret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cancelledOrders":2`)
}
