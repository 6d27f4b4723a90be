package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"store-bot.backend/internal/config"
	"store-bot.backend/internal/domain/messenger"
)

type recordedCall struct {
	path    string
	payload map[string]interface{}
}

func newTestClient(t *testing.T, ok bool) (*Client, *recordedCall) {
	t.Helper()
	rec := &recordedCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec.payload))
		json.NewEncoder(w).Encode(apiResponse{OK: ok, Description: "test"})
	}))
	t.Cleanup(srv.Close)
	return NewClient(config.TelegramConfig{APIBaseURL: srv.URL, Token: "bot-token"}), rec
}

func TestClient_SendMessage(t *testing.T) {
	client, rec := newTestClient(t, true)
	err := client.SendMessage(context.Background(), 42, "hello",
		messenger.Row{{Text: "Catalog", Callback: "view_products"}})
	require.NoError(t, err)

	assert.Equal(t, "/botbot-token/sendMessage", rec.path)
	assert.Equal(t, float64(42), rec.payload["chat_id"])
	assert.Equal(t, "hello", rec.payload["text"])

	markup := rec.payload["reply_markup"].(map[string]interface{})
	rows := markup["inline_keyboard"].([]interface{})
	require.Len(t, rows, 1)
	button := rows[0].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Catalog", button["text"])
	assert.Equal(t, "view_products", button["callback_data"])
}

func TestClient_SendInvoice(t *testing.T) {
	client, rec := newTestClient(t, true)
	err := client.SendInvoice(context.Background(), 42, messenger.Invoice{
		Title:    "Channel bot",
		Payload:  "payload-1",
		Currency: "XTR",
		Amount:   50,
		Keyboard: []messenger.Row{{{Text: "Pay 50", Pay: true}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/botbot-token/sendInvoice", rec.path)
	assert.Equal(t, "payload-1", rec.payload["payload"])
	assert.Equal(t, "XTR", rec.payload["currency"])

	prices := rec.payload["prices"].([]interface{})
	require.Len(t, prices, 1)
	assert.Equal(t, float64(50), prices[0].(map[string]interface{})["amount"])

	markup := rec.payload["reply_markup"].(map[string]interface{})
	button := markup["inline_keyboard"].([]interface{})[0].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, button["pay"])
}

func TestClient_AnswerPreCheckout(t *testing.T) {
	client, rec := newTestClient(t, true)
	err := client.AnswerPreCheckout(context.Background(), "q-1", false, "order expired")
	require.NoError(t, err)

	assert.Equal(t, "/botbot-token/answerPreCheckoutQuery", rec.path)
	assert.Equal(t, "q-1", rec.payload["pre_checkout_query_id"])
	assert.Equal(t, false, rec.payload["ok"])
	assert.Equal(t, "order expired", rec.payload["error_message"])
}

func TestClient_APIFailure(t *testing.T) {
	client, _ := newTestClient(t, false)
	err := client.SendMessage(context.Background(), 42, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sendMessage")
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient(config.TelegramConfig{APIBaseURL: "http://127.0.0.1:1", Token: "x"})
	err := client.AnswerCallback(context.Background(), "c-1", "", false)
	assert.Error(t, err)
}
