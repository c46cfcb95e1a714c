package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shandysiswandi/orvio/internal/otp/usecase"
	"github.com/shandysiswandi/orvio/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type gatewayPayload struct {
	Token string      `json:"token"`
	Data  gatewayData `json:"data"`
}

type gatewayData struct {
	Type        string `json:"type"`
	OTP         string `json:"otp"`
	PhoneNumber string `json:"phone_number"`
	TID         string `json:"tid"`
	Timestamp   string `json:"timestamp"`
	OrgName     string `json:"org_name,omitempty"`
}

// Client talks to the external push gateway over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	ins        instrument.Instrumentation
}

func NewClient(baseURL, apiKey string, ins instrument.Instrumentation) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		ins:        ins,
	}
}

// SendCode delivers one OTP to one device token as a data-only push the
// relay app can render. A non-2xx gateway response is an error; the
// caller decides whether to retry.
func (c *Client) SendCode(ctx context.Context, msg usecase.DeliveryPush) error {
	ctx, span := c.startSpan(ctx, "SendCode")
	var err error
	defer func() { c.endSpan(span, err) }()

	body, err := json.Marshal(gatewayPayload{
		Token: msg.Token,
		Data: gatewayData{
			Type:        "OTP",
			OTP:         msg.Code,
			PhoneNumber: msg.PhoneNumber,
			TID:         msg.TID,
			Timestamp:   msg.Timestamp.UTC().Format(time.RFC3339),
			OrgName:     msg.OrgName,
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages:send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err = fmt.Errorf("push gateway responded with status %d", resp.StatusCode)
		return err
	}

	return nil
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("otp.outbound.push").Start(ctx, name)
}

func (c *Client) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
