package tokenpay

import (
	"context"
	"fmt"
	"strconv"

	"store-bot.backend/internal/config"
	"store-bot.backend/internal/domain/entities"
	domainerrors "store-bot.backend/internal/domain/errors"
	"store-bot.backend/internal/domain/messenger"
	"store-bot.backend/internal/domain/providers"
	"store-bot.backend/pkg/utils"
)

// TokenCurrency is the platform currency code for token invoices.
const TokenCurrency = "XTR"

// Adapter implements the in-platform token currency provider. There is no
// external gateway: the intent id is generated locally and sent as the
// invoice payload; the platform pushes the payment outcome back through
// pre-checkout and successful-payment events.
type Adapter struct {
	messenger          messenger.Messenger
	minorUnitsPerToken int64
}

// NewAdapter creates a token currency adapter
func NewAdapter(m messenger.Messenger, cfg config.TokenPayConfig) *Adapter {
	return &Adapter{messenger: m, minorUnitsPerToken: cfg.MinorUnitsPerToken}
}

func (a *Adapter) Provider() entities.PaymentProvider {
	return entities.ProviderToken
}

// Tokens converts a minor-unit price into whole tokens.
func (a *Adapter) Tokens(price int64) int64 {
	return price / a.minorUnitsPerToken
}

// CreateIntent sends a platform invoice to the buyer. The locally generated
// payload doubles as the intent id.
func (a *Adapter) CreateIntent(ctx context.Context, product *entities.Product, buyerID int64) (*providers.Handle, error) {
	payload := utils.GenerateUUIDv7().String()
	tokens := a.Tokens(product.Price)

	inv := messenger.Invoice{
		Title:       product.Name,
		Description: fmt.Sprintf("Order %s\n\nAfter payment the operator will contact you with the details.", payload),
		Payload:     payload,
		Currency:    TokenCurrency,
		Amount:      tokens,
		Keyboard: []messenger.Row{
			{{Text: fmt.Sprintf("Pay %d", tokens), Pay: true}},
		},
	}
	if err := a.messenger.SendInvoice(ctx, buyerID, inv); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrProviderUnavailable, err)
	}

	return &providers.Handle{
		ID:     payload,
		Amount: strconv.FormatInt(tokens, 10),
		Status: entities.IntentStatusPending,
	}, nil
}

// QueryStatus always reports pending: the platform has no poll API for token
// invoices, it pushes completion events instead. Open token intents stay
// open until a successful-payment event finalizes them.
func (a *Adapter) QueryStatus(ctx context.Context, id string) (providers.RemoteStatus, error) {
	return providers.RemotePending, nil
}
