package processor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "coursegate/pkg/domain-errors"
)

func TestCreatePreference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req PreferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 1)
		assert.Equal(t, "Go Course", req.Items[0].Title)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"pref-1","init_point":"https://pay.example/pref-1"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-token", time.Second)
	pref, err := client.CreatePreference(context.Background(), PreferenceRequest{
		Items: []Item{{Title: "Go Course", UnitPrice: 99.9, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pref-1", pref.ID)
	assert.Equal(t, "https://pay.example/pref-1", pref.InitPoint)
}

func TestCreatePreference_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "wrong", time.Second)
	_, err := client.CreatePreference(context.Background(), PreferenceRequest{})
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeUpstream))
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/12345", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		// The processor reports the payment ID as a JSON number.
		_, _ = w.Write([]byte(`{
			"id": 12345,
			"status": "approved",
			"transaction_amount": 150.5,
			"payer": {"email": "buyer@example.com"},
			"additional_info": {"items": [{"title": "Go Course", "unit_price": 150.5, "quantity": 1}]}
		}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-token", time.Second)
	payment, err := client.GetPayment(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", payment.ID)
	assert.Equal(t, StatusApproved, payment.Status)
	assert.Equal(t, 150.5, payment.TransactionAmount)
	require.NotNil(t, payment.Payer)
	assert.Equal(t, "buyer@example.com", payment.Payer.Email)
	require.Len(t, payment.AdditionalInfo.Items, 1)
}

func TestGetPayment_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-token", time.Second)
	_, err := client.GetPayment(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

func TestGetPayment_MissingPayer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"77","status":"approved","transaction_amount":10}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-token", time.Second)
	payment, err := client.GetPayment(context.Background(), "77")
	require.NoError(t, err)
	assert.Nil(t, payment.Payer)
}
