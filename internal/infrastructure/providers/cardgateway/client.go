package cardgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"store-bot.backend/internal/config"
	"store-bot.backend/internal/domain/entities"
	domainerrors "store-bot.backend/internal/domain/errors"
	"store-bot.backend/internal/domain/providers"
	"store-bot.backend/pkg/utils"
)

// Client talks to the card payment gateway's REST API. Payments are created
// with a redirect confirmation flow and later polled for status.
type Client struct {
	baseURL    string
	shopID     string
	secretKey  string
	currency   string
	returnURL  string
	httpClient *http.Client
}

// NewClient creates a card gateway client
func NewClient(cfg config.CardGatewayConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		shopID:     cfg.ShopID,
		secretKey:  cfg.SecretKey,
		currency:   cfg.Currency,
		returnURL:  cfg.ReturnURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Provider() entities.PaymentProvider {
	return entities.ProviderCard
}

type amountPayload struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmationPayload struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createPaymentRequest struct {
	Amount       amountPayload          `json:"amount"`
	Confirmation confirmationPayload    `json:"confirmation"`
	Capture      bool                   `json:"capture"`
	Description  string                 `json:"description"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

type paymentResponse struct {
	ID           string              `json:"id"`
	Status       string              `json:"status"`
	Confirmation confirmationPayload `json:"confirmation"`
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domainerrors.ErrProviderUnavailable, err)
}

// CreateIntent creates a payment with the gateway. The product price is
// converted from minor units into decimal major units.
func (c *Client) CreateIntent(ctx context.Context, product *entities.Product, buyerID int64) (*providers.Handle, error) {
	amount := decimal.NewFromInt(product.Price).Div(decimal.NewFromInt(100)).StringFixed(2)

	body := createPaymentRequest{
		Amount:       amountPayload{Value: amount, Currency: c.currency},
		Confirmation: confirmationPayload{Type: "redirect", ReturnURL: c.returnURL},
		Capture:      true,
		Description:  product.Name,
		Metadata: map[string]interface{}{
			"buyer_id":   buyerID,
			"product_id": product.ID,
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", utils.GenerateUUIDv7().String())
	req.SetBasicAuth(c.shopID, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, unavailable(fmt.Errorf("create payment: status %d", resp.StatusCode))
	}

	var payment paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, unavailable(err)
	}

	return &providers.Handle{
		ID:     payment.ID,
		Amount: amount,
		Status: entities.IntentStatusPending,
		PayURL: payment.Confirmation.ConfirmationURL,
	}, nil
}

// QueryStatus fetches the gateway's current view of one payment.
func (c *Client) QueryStatus(ctx context.Context, id string) (providers.RemoteStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+id, nil)
	if err != nil {
		return providers.RemoteUnknown, err
	}
	req.SetBasicAuth(c.shopID, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return providers.RemoteUnknown, unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return providers.RemoteNotFound, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return providers.RemoteUnknown, unavailable(fmt.Errorf("query payment: status %d", resp.StatusCode))
	}

	var payment paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return providers.RemoteUnknown, unavailable(err)
	}

	switch payment.Status {
	case "pending", "waiting_for_capture":
		return providers.RemotePending, nil
	case "succeeded":
		return providers.RemoteSucceeded, nil
	case "canceled":
		return providers.RemoteCanceled, nil
	}
	return providers.RemoteUnknown, nil
}
