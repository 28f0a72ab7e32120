package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/remedyroot/remedyroot-golang/internal/cart"
	"github.com/shopspring/decimal"
)

// The payment processor is an external collaborator: we request an intent for
// a frozen cart snapshot and later confirm it with a payment method. The
// client secret it returns is the only handle on the pending charge.

// Method is the payment-method token produced by the processor's card widget.
type Method struct {
	Token string `json:"token"`
}

// Valid reports whether the widget actually produced a method.
func (m Method) Valid() bool { return m.Token != "" }

// Intent identifies a pending charge.
type Intent struct {
	ClientSecret string `json:"client_secret"`
}

// Outcome is the settled result of a confirmation attempt. A decline is not
// an error at the transport level; Message carries the processor's wording
// verbatim so the user sees exactly what the processor said.
type Outcome struct {
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message,omitempty"`
}

// Client is the consumed payment capability.
type Client interface {
	CreateIntent(ctx context.Context, snapshot cart.Snapshot, total decimal.Decimal, bearerToken string) (*Intent, error)
	ConfirmPayment(ctx context.Context, clientSecret string, method Method) (*Outcome, error)
}

// HTTPClient talks to the processor's REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type createIntentRequest struct {
	Items       []cart.SnapshotItem `json:"items"`
	TotalAmount string              `json:"total_amount"`
	Currency    string              `json:"currency"`
}

// CreateIntent asks the processor for a client secret covering the snapshot.
// The bearer token is a hard requirement; the processor rejects anonymous
// intents and so do we, before any network traffic.
func (c *HTTPClient) CreateIntent(ctx context.Context, snapshot cart.Snapshot, total decimal.Decimal, bearerToken string) (*Intent, error) {
	if bearerToken == "" {
		return nil, errors.New("payments: missing bearer token")
	}

	body, err := json.Marshal(createIntentRequest{
		Items:       snapshot.Items,
		TotalAmount: total.StringFixed(2),
		Currency:    "usd",
	})
	if err != nil {
		return nil, errors.Wrap(err, "payments: encode intent request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "payments: build intent request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "payments: intent request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.Errorf("payments: intent request returned %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, errors.Wrap(err, "payments: decode intent response")
	}
	if intent.ClientSecret == "" {
		return nil, errors.New("payments: processor returned empty client secret")
	}
	return &intent, nil
}

type confirmRequest struct {
	ClientSecret string `json:"client_secret"`
	Method       Method `json:"payment_method"`
}

type confirmResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ConfirmPayment submits the payment method for a pending charge. Transport
// failures return an error; a processor decline returns a settled Outcome
// with Succeeded=false and the processor's message.
func (c *HTTPClient) ConfirmPayment(ctx context.Context, clientSecret string, method Method) (*Outcome, error) {
	body, err := json.Marshal(confirmRequest{ClientSecret: clientSecret, Method: method})
	if err != nil {
		return nil, errors.Wrap(err, "payments: encode confirm request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents/confirm", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "payments: build confirm request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "payments: confirm request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, errors.Errorf("payments: confirm request returned %d", resp.StatusCode)
	}

	var settled confirmResponse
	if err := json.NewDecoder(resp.Body).Decode(&settled); err != nil {
		return nil, errors.Wrap(err, "payments: decode confirm response")
	}

	switch settled.Status {
	case "succeeded":
		return &Outcome{Succeeded: true}, nil
	case "failed":
		msg := settled.ErrorMessage
		if msg == "" {
			msg = "Your payment was declined."
		}
		return &Outcome{Succeeded: false, Message: msg}, nil
	default:
		return nil, fmt.Errorf("payments: unexpected status %q", settled.Status)
	}
}
