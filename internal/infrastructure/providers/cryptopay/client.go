package cryptopay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"store-bot.backend/internal/config"
	"store-bot.backend/internal/domain/entities"
	domainerrors "store-bot.backend/internal/domain/errors"
	"store-bot.backend/internal/domain/providers"
	"store-bot.backend/pkg/utils"
)

// Client talks to the crypto invoice gateway. Invoices are created in a fixed
// asset; the fiat price is converted with a fixed rate and a short expiry.
type Client struct {
	baseURL      string
	apiToken     string
	asset        string
	fiatPerAsset int64
	invoiceTTL   int // seconds
	httpClient   *http.Client
}

const authHeader = "Crypto-Pay-API-Token"

// NewClient creates a crypto gateway client
func NewClient(cfg config.CryptoPayConfig) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		apiToken:     cfg.APIToken,
		asset:        cfg.Asset,
		fiatPerAsset: cfg.FiatPerAsset,
		invoiceTTL:   int(cfg.InvoiceTTL.Seconds()),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Provider() entities.PaymentProvider {
	return entities.ProviderCrypto
}

type invoice struct {
	InvoiceID     int64  `json:"invoice_id"`
	Status        string `json:"status"`
	BotInvoiceURL string `json:"bot_invoice_url"`
}

type createInvoiceRequest struct {
	Asset       string `json:"asset"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	Payload     string `json:"payload,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

type apiResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domainerrors.ErrProviderUnavailable, err)
}

// ConvertPrice converts a minor-unit fiat price into the asset quantity at
// the fixed rate, rounded to 2 decimal places.
func ConvertPrice(price, fiatPerAsset int64) string {
	return decimal.NewFromInt(price).
		Div(decimal.NewFromInt(fiatPerAsset)).
		Round(2).
		StringFixed(2)
}

func (c *Client) call(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(authHeader, c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, unavailable(fmt.Errorf("%s: status %d", path, resp.StatusCode))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, unavailable(err)
	}
	if !parsed.OK {
		return nil, unavailable(fmt.Errorf("%s: gateway reported failure", path))
	}
	return parsed.Result, nil
}

// CreateIntent creates an invoice with the gateway.
func (c *Client) CreateIntent(ctx context.Context, product *entities.Product, buyerID int64) (*providers.Handle, error) {
	amount := ConvertPrice(product.Price, c.fiatPerAsset)

	result, err := c.call(ctx, http.MethodPost, "/createInvoice", createInvoiceRequest{
		Asset:       c.asset,
		Amount:      amount,
		Description: product.Name,
		Payload:     utils.GenerateUUIDv7().String(),
		ExpiresIn:   c.invoiceTTL,
	})
	if err != nil {
		return nil, err
	}

	var inv invoice
	if err := json.Unmarshal(result, &inv); err != nil {
		return nil, unavailable(err)
	}

	return &providers.Handle{
		ID:     strconv.FormatInt(inv.InvoiceID, 10),
		Amount: amount,
		Status: entities.IntentStatusActive,
		PayURL: inv.BotInvoiceURL,
	}, nil
}

// QueryStatus fetches the gateway's current view of one invoice. An empty
// result set means the gateway does not know the id.
func (c *Client) QueryStatus(ctx context.Context, id string) (providers.RemoteStatus, error) {
	result, err := c.call(ctx, http.MethodGet, "/getInvoices?invoice_ids="+id, nil)
	if err != nil {
		return providers.RemoteUnknown, err
	}

	var listing struct {
		Items []invoice `json:"items"`
	}
	if err := json.Unmarshal(result, &listing); err != nil {
		return providers.RemoteUnknown, unavailable(err)
	}
	if len(listing.Items) == 0 {
		return providers.RemoteNotFound, nil
	}

	switch listing.Items[0].Status {
	case "active":
		return providers.RemoteActive, nil
	case "paid":
		return providers.RemoteSucceeded, nil
	case "expired":
		return providers.RemoteExpired, nil
	}
	return providers.RemoteUnknown, nil
}
