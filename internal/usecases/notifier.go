package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"store-bot.backend/internal/domain/entities"
	"store-bot.backend/internal/domain/messenger"
	"store-bot.backend/pkg/logger"
)

// Notifier delivers the post-payment messages. Sends are best effort and
// independent of each other: a delivery failure is logged, never propagated,
// and never reverses the ledger transition that triggered it.
type Notifier struct {
	messenger  messenger.Messenger
	operatorID int64
}

func NewNotifier(m messenger.Messenger, operatorID int64) *Notifier {
	return &Notifier{messenger: m, operatorID: operatorID}
}

// NotifySuccess tells the buyer their payment went through and tells the
// operator a new order arrived.
func (n *Notifier) NotifySuccess(ctx context.Context, intent *entities.PaymentIntent, product *entities.Product) {
	buyerText := fmt.Sprintf(
		"✅ Payment received!\n\nOrder: %s\nThe operator will contact you shortly with the details.",
		product.Name,
	)
	backRow := messenger.Row{{Text: "⬅️ Back to catalog", Callback: "view_products"}}
	if err := n.messenger.SendMessage(ctx, intent.BuyerID, buyerText, backRow); err != nil {
		logger.Error(ctx, "buyer success notification failed",
			zap.Int64("buyer_id", intent.BuyerID),
			zap.String("intent_id", intent.ID),
			zap.Error(err))
	}

	operatorText := fmt.Sprintf(
		"💰 New order\n\nProduct: %s\nBuyer: %d\nProvider: %s\nAmount: %s\nIntent: %s",
		product.Name, intent.BuyerID, intent.Provider, intent.Amount, intent.ID,
	)
	if err := n.messenger.SendMessage(ctx, n.operatorID, operatorText); err != nil {
		logger.Error(ctx, "operator order notification failed",
			zap.Int64("operator_id", n.operatorID),
			zap.String("intent_id", intent.ID),
			zap.Error(err))
	}
}
