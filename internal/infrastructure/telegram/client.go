package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"store-bot.backend/internal/config"
	"store-bot.backend/internal/domain/messenger"
)

// Client is an HTTP client over the platform Bot API. It implements
// messenger.Messenger for everything the bot sends out.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(cfg config.TelegramConfig) *Client {
	return &Client{
		baseURL:    cfg.APIBaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	Pay          bool   `json:"pay,omitempty"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type labeledPrice struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func markupFor(keyboard []messenger.Row) *replyMarkup {
	if len(keyboard) == 0 {
		return nil
	}
	rows := make([][]inlineButton, len(keyboard))
	for i, row := range keyboard {
		buttons := make([]inlineButton, len(row))
		for j, b := range row {
			buttons[j] = inlineButton{Text: b.Text, CallbackData: b.Callback, Pay: b.Pay}
		}
		rows[i] = buttons
	}
	return &replyMarkup{InlineKeyboard: rows}
}

func (c *Client) call(ctx context.Context, method string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("%s: %s", method, parsed.Description)
	}
	return nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard ...messenger.Row) error {
	return c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":      chatID,
		"text":         text,
		"reply_markup": markupFor(keyboard),
	})
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, keyboard ...messenger.Row) error {
	return c.call(ctx, "sendPhoto", map[string]interface{}{
		"chat_id":      chatID,
		"photo":        fileID,
		"caption":      caption,
		"reply_markup": markupFor(keyboard),
	})
}

func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, keyboard ...messenger.Row) error {
	return c.call(ctx, "editMessageText", map[string]interface{}{
		"chat_id":      chatID,
		"message_id":   messageID,
		"text":         text,
		"reply_markup": markupFor(keyboard),
	})
}

func (c *Client) SendInvoice(ctx context.Context, chatID int64, inv messenger.Invoice) error {
	return c.call(ctx, "sendInvoice", map[string]interface{}{
		"chat_id":     chatID,
		"title":       inv.Title,
		"description": inv.Description,
		"payload":     inv.Payload,
		"currency":    inv.Currency,
		// Token-currency invoices carry no provider token.
		"provider_token": "",
		"prices":         []labeledPrice{{Label: inv.Title, Amount: inv.Amount}},
		"reply_markup":   markupFor(inv.Keyboard),
	})
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	return c.call(ctx, "answerCallbackQuery", map[string]interface{}{
		"callback_query_id": callbackID,
		"text":              text,
		"show_alert":        alert,
	})
}

func (c *Client) AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errMessage string) error {
	payload := map[string]interface{}{
		"pre_checkout_query_id": queryID,
		"ok":                    ok,
	}
	if errMessage != "" {
		payload["error_message"] = errMessage
	}
	return c.call(ctx, "answerPreCheckoutQuery", payload)
}
