package negotiation

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_store.go -package=mocks . Store

import (
	"context"
	"errors"
)

var (
	// ErrStaleVersion signals a lost compare-and-swap race: the stored
	// StateCount advanced since the record was read.
	ErrStaleVersion = errors.New("stale state count")
	// ErrDuplicateID signals an insert with an id that already exists.
	ErrDuplicateID = errors.New("negotiation id already exists")
)

// Store is the durable keyed storage contract for negotiations. Lookups
// return (nil, nil) when nothing matches. Save performs a compare-and-
// swap on StateCount and releases any lease held on the record; a leased
// record is exclusively claimed until saved or the lease expires.
type Store interface {
	FindByID(ctx context.Context, id string) (*ContractNegotiation, error)
	FindForCorrelationID(ctx context.Context, correlationID string) (*ContractNegotiation, error)
	FindContractAgreement(ctx context.Context, agreementID string) (*ContractAgreement, error)
	QueryNegotiations(ctx context.Context, spec QuerySpec) ([]*ContractNegotiation, error)
	Save(ctx context.Context, n *ContractNegotiation) error
	LeaseNextByState(ctx context.Context, state State, limit int) ([]*ContractNegotiation, error)
}
