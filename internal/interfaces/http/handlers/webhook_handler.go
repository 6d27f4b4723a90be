package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"store-bot.backend/internal/domain/entities"
	domainerrors "store-bot.backend/internal/domain/errors"
	"store-bot.backend/internal/domain/messenger"
	"store-bot.backend/internal/usecases"
	"store-bot.backend/pkg/logger"
	"store-bot.backend/pkg/redis"
)

// How long a processed update id is remembered. The platform redelivers
// updates it thinks were lost; replays inside this window are dropped.
const updateDedupTTL = 24 * time.Hour

var dedupSetNX = redis.SetNX

// Incoming update shapes, trimmed to the fields the bot reads.

type webhookUpdate struct {
	UpdateID         int64             `json:"update_id"`
	Message          *incomingMessage  `json:"message"`
	CallbackQuery    *callbackQuery    `json:"callback_query"`
	PreCheckoutQuery *preCheckoutQuery `json:"pre_checkout_query"`
}

type platformUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type platformChat struct {
	ID int64 `json:"id"`
}

type photoSize struct {
	FileID string `json:"file_id"`
}

type successfulPayment struct {
	InvoicePayload string `json:"invoice_payload"`
	Currency       string `json:"currency"`
	TotalAmount    int64  `json:"total_amount"`
}

type incomingMessage struct {
	MessageID         int                `json:"message_id"`
	From              *platformUser      `json:"from"`
	Chat              platformChat       `json:"chat"`
	Text              string             `json:"text"`
	Photo             []photoSize        `json:"photo"`
	SuccessfulPayment *successfulPayment `json:"successful_payment"`
}

type callbackQuery struct {
	ID      string           `json:"id"`
	From    platformUser     `json:"from"`
	Message *incomingMessage `json:"message"`
	Data    string           `json:"data"`
}

type preCheckoutQuery struct {
	ID             string       `json:"id"`
	From           platformUser `json:"from"`
	InvoicePayload string       `json:"invoice_payload"`
}

// WebhookHandler receives platform updates and dispatches them to the
// usecases. All outcomes answer 200: a non-2xx makes the platform retry the
// same update, and failed sends are already logged where they happen.
type WebhookHandler struct {
	catalog   *usecases.CatalogUsecase
	checkout  *usecases.CheckoutUsecase
	admin     *usecases.AdminUsecase
	messenger messenger.Messenger
}

func NewWebhookHandler(
	catalog *usecases.CatalogUsecase,
	checkout *usecases.CheckoutUsecase,
	admin *usecases.AdminUsecase,
	m messenger.Messenger,
) *WebhookHandler {
	return &WebhookHandler{
		catalog:   catalog,
		checkout:  checkout,
		admin:     admin,
		messenger: m,
	}
}

// Handle processes one webhook update.
func (h *WebhookHandler) Handle(c *gin.Context) {
	var update webhookUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed update"})
		return
	}

	ctx := c.Request.Context()
	if !h.firstDelivery(ctx, update.UpdateID) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	switch {
	case update.PreCheckoutQuery != nil:
		h.handlePreCheckout(ctx, update.PreCheckoutQuery)
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		h.handleSuccessfulPayment(ctx, update.Message)
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// firstDelivery reports whether this update id has not been processed yet.
// Redis trouble fails open: processing twice beats dropping an update, and
// the finalize path is idempotent anyway.
func (h *WebhookHandler) firstDelivery(ctx context.Context, updateID int64) bool {
	key := "update:" + strconv.FormatInt(updateID, 10)
	fresh, err := dedupSetNX(ctx, key, "1", updateDedupTTL)
	if err != nil {
		logger.Warn(ctx, "update dedup unavailable",
			zap.Int64("update_id", updateID), zap.Error(err))
		return true
	}
	if !fresh {
		logger.Debug(ctx, "duplicate update dropped", zap.Int64("update_id", updateID))
	}
	return fresh
}

func (h *WebhookHandler) handleMessage(ctx context.Context, msg *incomingMessage) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	switch {
	case strings.HasPrefix(msg.Text, "/start"):
		h.handleStart(ctx, msg)
	case strings.HasPrefix(msg.Text, "/add"):
		h.handleAddCommand(ctx, msg)
	case strings.HasPrefix(msg.Text, "/cancel"):
		if err := h.admin.Cancel(ctx, chatID); err == nil {
			h.send(ctx, chatID, "Cancelled.")
		}
	case len(msg.Photo) > 0:
		h.handleFormPhoto(ctx, msg)
	case msg.Text != "":
		h.handleFormText(ctx, msg)
	}
}

func (h *WebhookHandler) handleStart(ctx context.Context, msg *incomingMessage) {
	buyer := &entities.User{
		ID:        msg.From.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		IsActive:  true,
	}
	if err := h.catalog.RegisterBuyer(ctx, buyer); err != nil {
		logger.Error(ctx, "buyer registration failed",
			zap.Int64("buyer_id", buyer.ID), zap.Error(err))
	}
	h.send(ctx, msg.Chat.ID, "👋 Welcome to the store!",
		messenger.Row{{Text: "🛍 View products", Callback: "view_products"}})
}

func (h *WebhookHandler) handleAddCommand(ctx context.Context, msg *incomingMessage) {
	err := h.admin.Begin(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrForbidden) {
			h.send(ctx, msg.Chat.ID, "This command is for store admins.")
		}
		return
	}
	h.send(ctx, msg.Chat.ID, "Enter the product name:")
}

func (h *WebhookHandler) handleFormText(ctx context.Context, msg *incomingMessage) {
	if !h.admin.IsAdmin(msg.From.ID) {
		return
	}
	step, err := h.admin.HandleText(ctx, msg.Chat.ID, msg.Text)
	if err != nil {
		if step == usecases.AdminStepPrice {
			h.send(ctx, msg.Chat.ID, "Enter the price in major units, e.g. 49.90:")
		}
		return
	}
	switch step {
	case usecases.AdminStepDescription:
		h.send(ctx, msg.Chat.ID, "Enter the product description:")
	case usecases.AdminStepPrice:
		h.send(ctx, msg.Chat.ID, "Enter the price in major units, e.g. 49.90:")
	case usecases.AdminStepPhoto:
		h.send(ctx, msg.Chat.ID, "Send the product photo:")
	}
}

func (h *WebhookHandler) handleFormPhoto(ctx context.Context, msg *incomingMessage) {
	if !h.admin.IsAdmin(msg.From.ID) {
		return
	}
	// The last photo size is the largest one.
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	product, err := h.admin.HandlePhoto(ctx, msg.Chat.ID, fileID)
	if err != nil {
		return
	}
	h.send(ctx, msg.Chat.ID,
		fmt.Sprintf("✅ Product %q added at %s.", product.Name, formatMajor(product.Price)))
}

func (h *WebhookHandler) handleCallback(ctx context.Context, cb *callbackQuery) {
	if cb.Message == nil {
		h.answer(ctx, cb.ID, "", false)
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case cb.Data == "view_products":
		h.showCatalogPage(ctx, chatID, cb.From.ID, func() (*usecases.CatalogPage, error) {
			return h.catalog.CurrentPage(ctx, chatID)
		})
		h.answer(ctx, cb.ID, "", false)
	case cb.Data == "next":
		h.showCatalogPage(ctx, chatID, cb.From.ID, func() (*usecases.CatalogPage, error) {
			return h.catalog.NextPage(ctx, chatID)
		})
		h.answer(ctx, cb.ID, "", false)
	case cb.Data == "prev":
		h.showCatalogPage(ctx, chatID, cb.From.ID, func() (*usecases.CatalogPage, error) {
			return h.catalog.PrevPage(ctx, chatID)
		})
		h.answer(ctx, cb.ID, "", false)
	case strings.HasPrefix(cb.Data, "buy_"):
		h.showProviderChoice(ctx, cb)
	case strings.HasPrefix(cb.Data, "del_"):
		h.removeProduct(ctx, cb)
	case strings.HasPrefix(cb.Data, "pay_"):
		h.startCheckout(ctx, cb)
	case strings.HasPrefix(cb.Data, "check_"):
		h.checkPayment(ctx, cb)
	default:
		h.answer(ctx, cb.ID, "", false)
	}
}

func (h *WebhookHandler) showCatalogPage(ctx context.Context, chatID, userID int64, load func() (*usecases.CatalogPage, error)) {
	page, err := load()
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrProductNotFound) {
			h.send(ctx, chatID, "The catalog is empty for now, check back later.")
		}
		return
	}

	p := page.Product
	caption := fmt.Sprintf("%s\n\n%s\n\nPrice: %s", p.Name, p.Description, formatMajor(p.Price))
	keyboard := []messenger.Row{
		{
			{Text: "⬅️", Callback: "prev"},
			{Text: fmt.Sprintf("%d/%d", page.Index+1, page.Total), Callback: "noop"},
			{Text: "➡️", Callback: "next"},
		},
		{{Text: "🛒 Buy", Callback: fmt.Sprintf("buy_%d", p.ID)}},
	}
	if h.admin.IsAdmin(userID) {
		keyboard = append(keyboard,
			messenger.Row{{Text: "🗑 Remove", Callback: fmt.Sprintf("del_%d", p.ID)}})
	}

	if err := h.messenger.SendPhoto(ctx, chatID, p.PhotoFileID, caption, keyboard...); err != nil {
		logger.Error(ctx, "catalog page send failed",
			zap.Int64("chat_id", chatID), zap.Uint("product_id", p.ID), zap.Error(err))
	}
}

func (h *WebhookHandler) showProviderChoice(ctx context.Context, cb *callbackQuery) {
	productID, ok := parseUint(strings.TrimPrefix(cb.Data, "buy_"))
	if !ok {
		h.answer(ctx, cb.ID, "", false)
		return
	}
	h.send(ctx, cb.Message.Chat.ID, "Choose a payment method:",
		messenger.Row{{Text: "💳 Card", Callback: fmt.Sprintf("pay_%s_%d", entities.ProviderCard, productID)}},
		messenger.Row{{Text: "⭐ Stars", Callback: fmt.Sprintf("pay_%s_%d", entities.ProviderToken, productID)}},
		messenger.Row{{Text: "🪙 Crypto", Callback: fmt.Sprintf("pay_%s_%d", entities.ProviderCrypto, productID)}},
	)
	h.answer(ctx, cb.ID, "", false)
}

func (h *WebhookHandler) removeProduct(ctx context.Context, cb *callbackQuery) {
	productID, ok := parseUint(strings.TrimPrefix(cb.Data, "del_"))
	if !ok {
		h.answer(ctx, cb.ID, "", false)
		return
	}
	if err := h.admin.Remove(ctx, cb.From.ID, productID); err != nil {
		if domainerrors.Is(err, domainerrors.ErrForbidden) {
			h.answer(ctx, cb.ID, "This action is for store admins.", true)
			return
		}
		logger.Error(ctx, "product removal failed",
			zap.Uint("product_id", productID), zap.Error(err))
		h.answer(ctx, cb.ID, "Could not remove the product, try again.", true)
		return
	}
	h.answer(ctx, cb.ID, "Product removed.", false)
}

func (h *WebhookHandler) startCheckout(ctx context.Context, cb *callbackQuery) {
	parts := strings.SplitN(cb.Data, "_", 3)
	if len(parts) != 3 {
		h.answer(ctx, cb.ID, "", false)
		return
	}
	provider := entities.PaymentProvider(parts[1])
	productID, ok := parseUint(parts[2])
	if !ok {
		h.answer(ctx, cb.ID, "", false)
		return
	}

	result, err := h.checkout.Initiate(ctx, productID, cb.From.ID, provider)
	if err != nil {
		switch {
		case domainerrors.Is(err, domainerrors.ErrProductNotFound):
			h.answer(ctx, cb.ID, "This product is no longer available.", true)
		case domainerrors.Is(err, domainerrors.ErrProviderUnavailable):
			h.answer(ctx, cb.ID, "Payment service is unavailable, try again later.", true)
		default:
			h.answer(ctx, cb.ID, "Something went wrong, try again.", true)
		}
		return
	}
	h.answer(ctx, cb.ID, "", false)

	// Token invoices are delivered by the adapter itself; the other
	// providers hand back a URL the buyer has to open.
	if result.PayURL == "" {
		return
	}
	h.send(ctx, cb.Message.Chat.ID,
		fmt.Sprintf("Your payment link:\n%s\n\nPress the button below after paying.", result.PayURL),
		messenger.Row{{
			Text:     "✅ I've paid",
			Callback: fmt.Sprintf("check_%s_%s", provider, result.Intent.ID),
		}})
}

func (h *WebhookHandler) checkPayment(ctx context.Context, cb *callbackQuery) {
	parts := strings.SplitN(cb.Data, "_", 3)
	if len(parts) != 3 {
		h.answer(ctx, cb.ID, "", false)
		return
	}
	provider := entities.PaymentProvider(parts[1])

	result, err := h.checkout.Verify(ctx, provider, parts[2])
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrProviderUnavailable) {
			h.answer(ctx, cb.ID, "Payment service is unavailable, try again later.", true)
			return
		}
		h.answer(ctx, cb.ID, "Could not check the payment, try again.", true)
		return
	}

	switch result.Outcome {
	case usecases.OutcomeSucceeded:
		// The success messages come from the notification cycle.
		h.answer(ctx, cb.ID, "", false)
	case usecases.OutcomeStillPending:
		h.answer(ctx, cb.ID, "Payment not received yet.", true)
	case usecases.OutcomeTerminated:
		h.answer(ctx, cb.ID, "This payment was not completed. Start a new one.", true)
	case usecases.OutcomeNotFound:
		h.answer(ctx, cb.ID, "Unknown payment.", true)
	}
}

func (h *WebhookHandler) handlePreCheckout(ctx context.Context, q *preCheckoutQuery) {
	err := h.checkout.ValidatePreCheckout(ctx, q.InvoicePayload)
	if err != nil {
		if answerErr := h.messenger.AnswerPreCheckout(ctx, q.ID, false, "This order is no longer payable."); answerErr != nil {
			logger.Error(ctx, "pre-checkout answer failed",
				zap.String("query_id", q.ID), zap.Error(answerErr))
		}
		return
	}
	if answerErr := h.messenger.AnswerPreCheckout(ctx, q.ID, true, ""); answerErr != nil {
		logger.Error(ctx, "pre-checkout answer failed",
			zap.String("query_id", q.ID), zap.Error(answerErr))
	}
}

func (h *WebhookHandler) handleSuccessfulPayment(ctx context.Context, msg *incomingMessage) {
	payload := msg.SuccessfulPayment.InvoicePayload
	if _, err := h.checkout.ConfirmPlatformPayment(ctx, payload); err != nil {
		logger.Error(ctx, "platform payment confirmation failed",
			zap.String("payload", payload), zap.Error(err))
	}
}

func (h *WebhookHandler) send(ctx context.Context, chatID int64, text string, keyboard ...messenger.Row) {
	if err := h.messenger.SendMessage(ctx, chatID, text, keyboard...); err != nil {
		logger.Error(ctx, "message send failed",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *WebhookHandler) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := h.messenger.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		logger.Error(ctx, "callback answer failed",
			zap.String("callback_id", callbackID), zap.Error(err))
	}
}

func parseUint(s string) (uint, bool) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

func formatMajor(minor int64) string {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)).StringFixed(2)
}
