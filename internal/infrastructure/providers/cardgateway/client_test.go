package cardgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"store-bot.backend/internal/config"
	"store-bot.backend/internal/domain/entities"
	domainerrors "store-bot.backend/internal/domain/errors"
	"store-bot.backend/internal/domain/providers"
)

func testConfig(baseURL string) config.CardGatewayConfig {
	return config.CardGatewayConfig{
		BaseURL:   baseURL,
		ShopID:    "shop-1",
		SecretKey: "secret",
		Currency:  "RUB",
		ReturnURL: "https://t.me/storebot",
		Timeout:   2 * time.Second,
	}
}

func TestClient_CreateIntent(t *testing.T) {
	var captured createPaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Idempotence-Key"))
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "shop-1", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(paymentResponse{
			ID:     "pay-1",
			Status: "pending",
			Confirmation: confirmationPayload{
				Type:            "redirect",
				ConfirmationURL: "https://gateway.example/confirm/pay-1",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	product := &entities.Product{ID: 3, Name: "Channel bot", Price: 10000}

	handle, err := client.CreateIntent(context.Background(), product, 42)
	require.NoError(t, err)
	assert.Equal(t, "pay-1", handle.ID)
	assert.Equal(t, "100.00", handle.Amount)
	assert.Equal(t, entities.IntentStatusPending, handle.Status)
	assert.Equal(t, "https://gateway.example/confirm/pay-1", handle.PayURL)

	assert.Equal(t, "100.00", captured.Amount.Value)
	assert.Equal(t, "RUB", captured.Amount.Currency)
	assert.True(t, captured.Capture)
	assert.Equal(t, "redirect", captured.Confirmation.Type)
}

func TestClient_CreateIntent_GatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.CreateIntent(context.Background(), &entities.Product{Price: 100}, 1)
	assert.ErrorIs(t, err, domainerrors.ErrProviderUnavailable)
}

func TestClient_CreateIntent_Unreachable(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"))
	_, err := client.CreateIntent(context.Background(), &entities.Product{Price: 100}, 1)
	assert.ErrorIs(t, err, domainerrors.ErrProviderUnavailable)
}

func TestClient_QueryStatus_Mapping(t *testing.T) {
	cases := []struct {
		remote string
		want   providers.RemoteStatus
	}{
		{"pending", providers.RemotePending},
		{"waiting_for_capture", providers.RemotePending},
		{"succeeded", providers.RemoteSucceeded},
		{"canceled", providers.RemoteCanceled},
		{"on_hold", providers.RemoteUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.remote, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/payments/pay-1", r.URL.Path)
				json.NewEncoder(w).Encode(paymentResponse{ID: "pay-1", Status: tc.remote})
			}))
			defer srv.Close()

			client := NewClient(testConfig(srv.URL))
			status, err := client.QueryStatus(context.Background(), "pay-1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestClient_QueryStatus_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	status, err := client.QueryStatus(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, providers.RemoteNotFound, status)
}

func TestClient_QueryStatus_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 20 * time.Millisecond
	client := NewClient(cfg)

	_, err := client.QueryStatus(context.Background(), "pay-1")
	assert.ErrorIs(t, err, domainerrors.ErrProviderUnavailable)
}
