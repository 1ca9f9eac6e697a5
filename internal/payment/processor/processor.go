// Package processor talks to the external payment processor: creating
// checkout preferences and fetching the authoritative state of a payment.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	derrors "coursegate/pkg/domain-errors"
)

// StatusApproved is the only payment status that results in a checkout
// record.
const StatusApproved = "approved"

// Payer identifies who paid.
type Payer struct {
	Email string `json:"email"`
}

// Item is a purchased line item as reported by the processor.
type Item struct {
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Payment is the processor's authoritative view of a payment. Payer is a
// pointer because the processor omits it on some payment types.
type Payment struct {
	ID                string
	Status            string  `json:"status"`
	TransactionAmount float64 `json:"transaction_amount"`
	Payer             *Payer  `json:"payer"`
	AdditionalInfo    struct {
		Items []Item `json:"items"`
	} `json:"additional_info"`
}

// UnmarshalJSON tolerates the processor sending the payment ID as either a
// JSON number or a string.
func (p *Payment) UnmarshalJSON(data []byte) error {
	type alias Payment
	aux := struct {
		ID json.Number `json:"id"`
		*alias
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ID = aux.ID.String()
	return nil
}

// PreferenceRequest describes the checkout preference to create.
type PreferenceRequest struct {
	Items []Item `json:"items"`
}

// Preference is the processor's handle for a created checkout preference.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// Client is the processor operations the payment service depends on.
type Client interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// HTTPClient calls the processor's REST API with a bearer access token.
type HTTPClient struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// NewHTTPClient creates an HTTPClient. The timeout bounds every processor
// call, including the fetch done inside webhook handling.
func NewHTTPClient(baseURL, accessToken string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

// CreatePreference creates a checkout preference.
func (c *HTTPClient) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling preference request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building preference request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeUpstream, "payment processor unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamError("creating preference", resp)
	}

	var pref Preference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeUpstream, "decoding preference response")
	}
	return &pref, nil
}

// GetPayment fetches the authoritative payment record.
func (c *HTTPClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("building payment request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeUpstream, "payment processor unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, derrors.New(derrors.CodeNotFound, "payment not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamError("fetching payment", resp)
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeUpstream, "decoding payment response")
	}
	return &payment, nil
}

func upstreamError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return derrors.New(derrors.CodeUpstream,
		fmt.Sprintf("%s: processor returned %d: %s", op, resp.StatusCode, snippet))
}
