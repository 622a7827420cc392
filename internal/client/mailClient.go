package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/AfiqSafri/livesales-sub002/internal/config"
)

// Mailer is the outbound email collaborator. Callers treat a send failure as
// a logged, non-fatal event; it must never roll back a state transition.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

type mailClientImpl struct {
	httpClient *http.Client
	apiURL     string
	sender     string
}

type sendMailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

func NewMailClient(mailCfg *config.Mail) Mailer {
	return &mailClientImpl{
		httpClient: &http.Client{
			Timeout: mailCfg.Timeout,
		},
		apiURL: mailCfg.APIURL,
		sender: mailCfg.Sender,
	}
}

func (c *mailClientImpl) Send(ctx context.Context, to, subject, html, text string) error {
	payload := sendMailRequest{
		From:    c.sender,
		To:      to,
		Subject: subject,
		HTML:    html,
		Text:    text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail api error %d: %s", resp.StatusCode, string(b))
	}

	return nil
}
