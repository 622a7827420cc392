package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AfiqSafri/livesales-sub002/internal/config"
)

// BillingClient creates bills with the payment gateway. The gateway settles
// them asynchronously via the webhook callback.
type BillingClient interface {
	CreateBill(ctx context.Context, req *CreateBillRequest) (*CreateBillResponse, error)
}

type CreateBillRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	PayerEmail  string  `json:"payer_email"`
	Reference   string  `json:"reference"`
	Reference1  string  `json:"reference_1"`
	Reference2  string  `json:"reference_2"`
	Reference3  string  `json:"reference_3"`
	CallbackURL string  `json:"callback_url"`
}

type CreateBillResponse struct {
	BillID string `json:"id"`
	PayURL string `json:"url"`
}

type billingClientImpl struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

func NewBillingClient(billingCfg *config.Billing) BillingClient {
	return &billingClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiURL: billingCfg.APIURL,
		apiKey: billingCfg.APIKey,
	}
}

func (c *billingClientImpl) CreateBill(ctx context.Context, billReq *CreateBillRequest) (*CreateBillResponse, error) {
	body, err := json.Marshal(billReq)
	if err != nil {
		return nil, fmt.Errorf("marshal bill payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/bills", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("billing api error %d: %s", resp.StatusCode, string(b))
	}

	var result CreateBillResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode billing response: %w", err)
	}

	return &result, nil
}
