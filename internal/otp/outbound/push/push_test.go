package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shandysiswandi/orvio/internal/otp/usecase"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendCode(t *testing.T) {
	msg := usecase.DeliveryPush{
		Token:       "device-push-token",
		Code:        "123456",
		PhoneNumber: "+14155550123",
		TID:         "tid-1",
		Timestamp:   time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		OrgName:     "Acme",
	}

	t.Run("PostsDataOnlyPush", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotPayload gatewayPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "api-key", instrument.NewNoop())
		err := client.SendCode(context.Background(), msg)
		require.NoError(t, err)

		assert.Equal(t, "/v1/messages:send", gotPath)
		assert.Equal(t, "Bearer api-key", gotAuth)
		assert.Equal(t, "device-push-token", gotPayload.Token)
		assert.Equal(t, "OTP", gotPayload.Data.Type)
		assert.Equal(t, "123456", gotPayload.Data.OTP)
		assert.Equal(t, "tid-1", gotPayload.Data.TID)
		assert.Equal(t, "2026-08-28T12:00:00Z", gotPayload.Data.Timestamp)
		assert.Equal(t, "Acme", gotPayload.Data.OrgName)
	})

	t.Run("GatewayRejectionIsAnError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "", instrument.NewNoop())
		err := client.SendCode(context.Background(), msg)
		require.Error(t, err)
	})
}
