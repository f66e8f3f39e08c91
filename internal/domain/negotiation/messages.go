package negotiation

import (
	"context"
	"encoding/json"
)

// ClaimToken carries the verified claims of an inbound protocol message.
// Verification itself happens in the identity layer before the service is
// invoked; the engine treats the token as already trusted.
type ClaimToken struct {
	Claims map[string]any `json:"claims"`
}

// ContractOfferRequest initiates a negotiation (consumer side) or carries
// the initial inbound request (provider side).
type ContractOfferRequest struct {
	ConnectorID      string         `json:"connectorId"`
	ConnectorAddress string         `json:"connectorAddress"`
	Protocol         string         `json:"protocol"`
	CorrelationID    string         `json:"correlationId,omitempty"`
	ContractOffer    *ContractOffer `json:"contractOffer"`
}

// ContractAgreementRequest is the provider's agreement notification.
type ContractAgreementRequest struct {
	ConnectorID       string             `json:"connectorId"`
	ConnectorAddress  string             `json:"connectorAddress"`
	Protocol          string             `json:"protocol"`
	CorrelationID     string             `json:"correlationId"`
	ContractAgreement *ContractAgreement `json:"contractAgreement"`
	Policy            *Policy            `json:"policy"`
}

// ContractAgreementVerification is the consumer's verification of a
// received agreement.
type ContractAgreementVerification struct {
	ConnectorAddress string `json:"connectorAddress"`
	Protocol         string `json:"protocol"`
	CorrelationID    string `json:"correlationId"`
}

// EventType enumerates negotiation event notifications.
type EventType string

const (
	EventFinalized EventType = "FINALIZED"
	EventAccepted  EventType = "ACCEPTED"
)

// ContractNegotiationEvent signals a finalization (or acceptance) by the
// counter party.
type ContractNegotiationEvent struct {
	Type             EventType `json:"type"`
	ConnectorAddress string    `json:"connectorAddress"`
	Protocol         string    `json:"protocol"`
	CorrelationID    string    `json:"correlationId"`
}

// TerminationMessage signals that the counter party declined or
// terminated the negotiation. ProcessID is the sender's reference, i.e.
// our correlation id.
type TerminationMessage struct {
	ConnectorAddress string `json:"connectorAddress"`
	Protocol         string `json:"protocol"`
	ProcessID        string `json:"processId"`
	Reason           string `json:"reason,omitempty"`
}

// MessageType identifies an outbound protocol message.
type MessageType string

const (
	MessageContractRequest       MessageType = "CONTRACT_REQUEST"
	MessageContractOffer         MessageType = "CONTRACT_OFFER"
	MessageContractAgreement     MessageType = "CONTRACT_AGREEMENT"
	MessageAgreementVerification MessageType = "AGREEMENT_VERIFICATION"
	MessageNegotiationEvent      MessageType = "NEGOTIATION_EVENT"
	MessageTermination           MessageType = "TERMINATION"
)

// OutboundMessage pairs an encoded protocol payload with the routing
// information the dispatcher needs to deliver it.
type OutboundMessage struct {
	Type      MessageType     `json:"type"`
	To        string          `json:"to"`
	Protocol  string          `json:"protocol"`
	ProcessID string          `json:"processId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_dispatcher.go -package=mocks . Dispatcher

// Dispatcher delivers outbound protocol messages to the counter party.
// Synchronous from the manager's point of view: the manager awaits the
// result before deciding the next persisted state.
type Dispatcher interface {
	Send(ctx context.Context, msg *OutboundMessage) error
}
