package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shandysiswandi/orvio/internal/otp/entity"
	"github.com/shandysiswandi/orvio/internal/pkg/hash"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type payload struct {
	TID    string `json:"tid"`
	Status string `json:"status"`
}

// Client delivers best-effort status callbacks to customer endpoints.
// Failures never influence billing or transaction state.
type Client struct {
	httpClient *http.Client
	ins        instrument.Instrumentation
}

func NewClient(ins instrument.Instrumentation) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ins:        ins,
	}
}

// Notify posts {"tid","status"} to url. When secret is non-empty the body
// is signed and the hex HMAC-SHA256 digest sent as X-Signature.
func (c *Client) Notify(ctx context.Context, url string, tid string, status entity.DeliveryStatus, secret string) error {
	ctx, span := c.startSpan(ctx, "Notify")
	var err error
	defer func() { c.endSpan(span, err) }()

	body, err := json.Marshal(payload{TID: tid, Status: status.String()})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if secret != "" {
		signature, errSign := hash.NewHMACSHA256(secret).Hash(string(body))
		if errSign != nil {
			err = errSign
			return err
		}
		req.Header.Set("X-Signature", string(signature))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		err = fmt.Errorf("webhook responded with status %d", resp.StatusCode)
		return err
	}

	return nil
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("otp.outbound.webhook").Start(ctx, name)
}

func (c *Client) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
