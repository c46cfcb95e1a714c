package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify(t *testing.T) {
	t.Run("SignsBodyWhenSecretSet", func(t *testing.T) {
		const secret = "super-secret-signing-key"

		var gotBody []byte
		var gotSignature string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			gotSignature = r.Header.Get("X-Signature")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := NewClient(instrument.NewNoop())
		err := client.Notify(context.Background(), srv.URL, "tid-1", entity.DeliveryStatusVerified, secret)
		require.NoError(t, err)

		var p payload
		require.NoError(t, json.Unmarshal(gotBody, &p))
		assert.Equal(t, "tid-1", p.TID)
		assert.Equal(t, "verified", p.Status)

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(gotBody)
		assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)
	})

	t.Run("NoSignatureWithoutSecret", func(t *testing.T) {
		var gotSignature string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSignature = r.Header.Get("X-Signature")
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client := NewClient(instrument.NewNoop())
		err := client.Notify(context.Background(), srv.URL, "tid-1", entity.DeliveryStatusAcknowledged, "")
		require.NoError(t, err)
		assert.Empty(t, gotSignature)
	})

	t.Run("ErrorStatusIsAnError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(instrument.NewNoop())
		err := client.Notify(context.Background(), srv.URL, "tid-1", entity.DeliveryStatusFailed, "")
		require.Error(t, err)
	})
}
