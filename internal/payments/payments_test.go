package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/remedyroot/remedyroot-golang/internal/cart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotFixture() (cart.Snapshot, decimal.Decimal) {
	c := cart.New()
	c.AddItem(cart.Product{ID: 1, Name: "Ginger Capsules", Price: decimal.RequireFromString("10.00")}, 2)
	snap := c.Snapshot()
	return snap, snap.TotalAmount
}

func TestCreateIntent_SendsSnapshotAndBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var req createIntentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "20.00", req.TotalAmount)
		assert.Len(t, req.Items, 1)

		_ = json.NewEncoder(w).Encode(Intent{ClientSecret: "cs_test"})
	}))
	defer srv.Close()

	snap, total := snapshotFixture()
	intent, err := NewHTTPClient(srv.URL).CreateIntent(context.Background(), snap, total, "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "cs_test", intent.ClientSecret)
}

func TestCreateIntent_RequiresBearerToken(t *testing.T) {
	snap, total := snapshotFixture()
	_, err := NewHTTPClient("http://unused").CreateIntent(context.Background(), snap, total, "")
	require.Error(t, err)
}

func TestConfirmPayment_DeclineIsSettledNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(confirmResponse{
			Status:       "failed",
			ErrorMessage: "Your card has insufficient funds.",
		})
	}))
	defer srv.Close()

	outcome, err := NewHTTPClient(srv.URL).ConfirmPayment(context.Background(), "cs_test", Method{Token: "pm_1"})
	require.NoError(t, err)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, "Your card has insufficient funds.", outcome.Message,
		"processor wording must pass through verbatim")
}

func TestConfirmPayment_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req confirmRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cs_test", req.ClientSecret)
		_ = json.NewEncoder(w).Encode(confirmResponse{Status: "succeeded"})
	}))
	defer srv.Close()

	outcome, err := NewHTTPClient(srv.URL).ConfirmPayment(context.Background(), "cs_test", Method{Token: "pm_1"})
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded)
}

func TestConfirmPayment_ServerErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).ConfirmPayment(context.Background(), "cs_test", Method{Token: "pm_1"})
	require.Error(t, err)
}
