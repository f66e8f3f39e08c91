package negotiation

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type distinguishes which side of the negotiation this connector plays.
type Type string

const (
	TypeConsumer Type = "CONSUMER"
	TypeProvider Type = "PROVIDER"
)

var (
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrAgreementAlreadySet = errors.New("contract agreement already set")
)

// Policy is treated as an opaque value by the engine; its evaluation
// semantics live elsewhere. The named fields exist so query filter paths
// can resolve into it.
type Policy struct {
	Assignee    string          `json:"assignee,omitempty"`
	Assigner    string          `json:"assigner,omitempty"`
	AssetID     string          `json:"assetId,omitempty"`
	Permissions json.RawMessage `json:"permissions,omitempty"`
}

// ContractOffer is one offer exchanged during a negotiation. Immutable
// once appended to a negotiation.
type ContractOffer struct {
	ID            string    `json:"id"`
	Policy        Policy    `json:"policy"`
	AssetID       string    `json:"assetId"`
	ContractStart time.Time `json:"contractStart"`
	ContractEnd   time.Time `json:"contractEnd"`
}

// ContractAgreement is the final agreement recorded when the provider
// side confirms. Immutable once created.
type ContractAgreement struct {
	ID                  string `json:"id"`
	ProviderAgentID     string `json:"providerAgentId"`
	ConsumerAgentID     string `json:"consumerAgentId"`
	AssetID             string `json:"assetId"`
	Policy              Policy `json:"policy"`
	ContractSigningDate int64  `json:"contractSigningDate"`
	ContractStartDate   int64  `json:"contractStartDate"`
	ContractEndDate     int64  `json:"contractEndDate"`
}

// ContractNegotiation is the aggregate root tracking one negotiation
// between this connector and a counter party. All mutation goes through
// the state machine under a store lease; the store persists deep copies.
type ContractNegotiation struct {
	ID                  string             `json:"id"`
	CorrelationID       string             `json:"correlationId,omitempty"`
	Type                Type               `json:"type"`
	CounterPartyID      string             `json:"counterPartyId"`
	CounterPartyAddress string             `json:"counterPartyAddress"`
	Protocol            string             `json:"protocol"`
	State               State              `json:"state"`
	StateCount          int                `json:"stateCount"`
	StateTimestamp      time.Time          `json:"stateTimestamp"`
	ContractOffers      []*ContractOffer   `json:"contractOffers,omitempty"`
	ContractAgreement   *ContractAgreement `json:"contractAgreement,omitempty"`
	ErrorDetail         string             `json:"errorDetail,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`

	// PendingCommand is transient; commands are not persisted and are
	// lost on restart by design trade-off.
	PendingCommand Command `json:"-"`
}

// NewContractNegotiation creates a negotiation in INITIAL with a fresh id.
func NewContractNegotiation(typ Type, counterPartyID, counterPartyAddress, protocol string) *ContractNegotiation {
	return &ContractNegotiation{
		ID:                  uuid.New().String(),
		Type:                typ,
		CounterPartyID:      counterPartyID,
		CounterPartyAddress: counterPartyAddress,
		Protocol:            protocol,
		State:               StateInitial,
		CreatedAt:           time.Now().UTC(),
	}
}

// TransitionTo moves the negotiation to the target state if the state
// machine allows it for this negotiation's role. The state timestamp is
// refreshed; StateCount is bumped by the store on save, not here.
func (n *ContractNegotiation) TransitionTo(target State) error {
	if !ValidTransition(n.Type, n.State, target) {
		return ErrInvalidTransition
	}
	n.State = target
	n.StateTimestamp = time.Now().UTC()
	return nil
}

// AddContractOffer appends an offer; order is negotiation order.
func (n *ContractNegotiation) AddContractOffer(offer *ContractOffer) {
	n.ContractOffers = append(n.ContractOffers, offer)
}

// LastContractOffer returns the most recent offer, or nil.
func (n *ContractNegotiation) LastContractOffer() *ContractOffer {
	if len(n.ContractOffers) == 0 {
		return nil
	}
	return n.ContractOffers[len(n.ContractOffers)-1]
}

// SetContractAgreement records the agreement. It may be set exactly once.
func (n *ContractNegotiation) SetContractAgreement(agreement *ContractAgreement) error {
	if n.ContractAgreement != nil {
		return ErrAgreementAlreadySet
	}
	n.ContractAgreement = agreement
	return nil
}

// SetErrorDetail records a human readable failure cause.
func (n *ContractNegotiation) SetErrorDetail(detail string) {
	n.ErrorDetail = detail
}

// Copy returns a deep copy. Stores hand out and accept copies so callers
// never share mutable state with the persisted record.
func (n *ContractNegotiation) Copy() *ContractNegotiation {
	c := *n
	if n.ContractOffers != nil {
		c.ContractOffers = make([]*ContractOffer, len(n.ContractOffers))
		for i, o := range n.ContractOffers {
			oc := *o
			c.ContractOffers[i] = &oc
		}
	}
	if n.ContractAgreement != nil {
		ac := *n.ContractAgreement
		c.ContractAgreement = &ac
	}
	return &c
}
