// Package dispatcher delivers outbound negotiation messages to the
// counter party's protocol endpoint over HTTP.
package dispatcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

// TokenSource issues the bearer token attached to outbound messages.
type TokenSource interface {
	IssueToken(ctx context.Context, audience string) (string, error)
}

// HTTPDispatcher posts the message payload to the counter party's
// protocol endpoint for the message type. Any non-2xx response is an
// error so the manager's retry policy applies.
type HTTPDispatcher struct {
	client *http.Client
	tokens TokenSource
	logger zerolog.Logger
}

func NewHTTPDispatcher(client *http.Client, tokens TokenSource, logger zerolog.Logger) *HTTPDispatcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPDispatcher{
		client: client,
		tokens: tokens,
		logger: logger.With().Str("service", "negotiation-dispatcher").Logger(),
	}
}

// routes maps a message type to the counter party's protocol endpoint.
var routes = map[domainNegotiation.MessageType]string{
	domainNegotiation.MessageContractRequest:       "/api/v1/protocol/negotiations/request",
	domainNegotiation.MessageContractOffer:         "/api/v1/protocol/negotiations/request",
	domainNegotiation.MessageContractAgreement:     "/api/v1/protocol/negotiations/agreement",
	domainNegotiation.MessageAgreementVerification: "/api/v1/protocol/negotiations/verification",
	domainNegotiation.MessageNegotiationEvent:      "/api/v1/protocol/negotiations/event",
	domainNegotiation.MessageTermination:           "/api/v1/protocol/negotiations/termination",
}

func (d *HTTPDispatcher) Send(ctx context.Context, msg *domainNegotiation.OutboundMessage) error {
	route, ok := routes[msg.Type]
	if !ok {
		return fmt.Errorf("no route for message type %s", msg.Type)
	}
	url := strings.TrimSuffix(msg.To, "/") + route

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(msg.Payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.tokens != nil {
		token, err := d.tokens.IssueToken(ctx, msg.To)
		if err != nil {
			return fmt.Errorf("failed to issue outbound token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver %s to %s: %w", msg.Type, msg.To, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("counter party rejected %s: status %d", msg.Type, resp.StatusCode)
	}

	d.logger.Debug().
		Str("type", string(msg.Type)).
		Str("to", msg.To).
		Str("process_id", msg.ProcessID).
		Msg("message delivered")
	return nil
}
