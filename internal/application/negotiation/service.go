package negotiation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

// Service is the stateless facade in front of the store and the two
// role managers. Every operation runs inside the transaction context;
// reads belonging to one logical request share a single scope.
type Service struct {
	store    domainNegotiation.Store
	consumer ConsumerManager
	provider ProviderManager
	tx       TransactionContext
	logger   zerolog.Logger
}

// NewService creates the negotiation service facade.
func NewService(store domainNegotiation.Store, consumer ConsumerManager, provider ProviderManager, tx TransactionContext, logger zerolog.Logger) *Service {
	if tx == nil {
		tx = NoopTransactionContext{}
	}
	return &Service{
		store:    store,
		consumer: consumer,
		provider: provider,
		tx:       tx,
		logger:   logger.With().Str("service", "negotiation").Logger(),
	}
}

// FindByID returns the negotiation, or (nil, nil) when absent.
func (s *Service) FindByID(ctx context.Context, id string) (*domainNegotiation.ContractNegotiation, error) {
	var n *domainNegotiation.ContractNegotiation
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.store.FindByID(ctx, id)
		return err
	})
	return n, err
}

// Query returns negotiations matching the spec. Filter paths are
// validated before the store is consulted; violations are BAD_REQUEST.
func (s *Service) Query(ctx context.Context, spec domainNegotiation.QuerySpec) ([]*domainNegotiation.ContractNegotiation, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	var result []*domainNegotiation.ContractNegotiation
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.store.QueryNegotiations(ctx, spec)
		return err
	})
	return result, err
}

// GetState returns the symbolic state name, or "" when the negotiation
// does not exist.
func (s *Service) GetState(ctx context.Context, id string) (string, error) {
	n, err := s.FindByID(ctx, id)
	if err != nil || n == nil {
		return "", err
	}
	return n.State.Name(), nil
}

// GetForNegotiation returns the agreement associated with a negotiation,
// or nil when the negotiation is absent or has no agreement yet.
func (s *Service) GetForNegotiation(ctx context.Context, negotiationID string) (*domainNegotiation.ContractAgreement, error) {
	n, err := s.FindByID(ctx, negotiationID)
	if err != nil || n == nil {
		return nil, err
	}
	return n.ContractAgreement, nil
}

// GetAgreementByID looks an agreement up by its own id.
func (s *Service) GetAgreementByID(ctx context.Context, agreementID string) (*domainNegotiation.ContractAgreement, error) {
	var a *domainNegotiation.ContractAgreement
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.store.FindContractAgreement(ctx, agreementID)
		return err
	})
	return a, err
}

// InitiateNegotiation starts a new consumer-side negotiation.
func (s *Service) InitiateNegotiation(ctx context.Context, req *domainNegotiation.ContractOfferRequest) (*domainNegotiation.ContractNegotiation, error) {
	var n *domainNegotiation.ContractNegotiation
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.consumer.Initiate(ctx, req)
		return err
	})
	return n, err
}

// Cancel verifies the negotiation exists and is still cancellable, then
// enqueues a cancel command. The returned record is the pre-command
// snapshot: the transition itself is asynchronous.
func (s *Service) Cancel(ctx context.Context, id string) (*domainNegotiation.ContractNegotiation, error) {
	var n *domainNegotiation.ContractNegotiation
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if n == nil {
			return domainNegotiation.NotFound("negotiation %s not found", id)
		}
		if n.Type != domainNegotiation.TypeConsumer {
			return domainNegotiation.Conflict("only consumer negotiations can be cancelled")
		}
		if !n.State.Cancellable() {
			return domainNegotiation.Conflict("negotiation %s in state %s can no longer be cancelled", id, n.State.Name())
		}
		s.consumer.EnqueueCommand(domainNegotiation.CancelCommand{ID: id})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Decline verifies the negotiation exists and is not terminal, then
// enqueues a decline command with the given reason on the manager owning
// the record. Returns the pre-command snapshot.
func (s *Service) Decline(ctx context.Context, id, reason string) (*domainNegotiation.ContractNegotiation, error) {
	var n *domainNegotiation.ContractNegotiation
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if n == nil {
			return domainNegotiation.NotFound("negotiation %s not found", id)
		}
		if n.State.IsTerminal() {
			return domainNegotiation.Conflict("negotiation %s already reached terminal state %s", id, n.State.Name())
		}
		s.managerFor(n.Type).EnqueueCommand(domainNegotiation.DeclineCommand{ID: id, Reason: reason})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// NotifyConsumerRequested handles an inbound contract request on the
// provider side.
func (s *Service) NotifyConsumerRequested(ctx context.Context, msg *domainNegotiation.ContractOfferRequest, token *domainNegotiation.ClaimToken) (*domainNegotiation.ContractNegotiation, error) {
	var n *domainNegotiation.ContractNegotiation
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.provider.ConsumerRequested(ctx, token, msg)
		return err
	})
	return n, err
}

// NotifyProviderAgreed handles an inbound agreement on the consumer side.
func (s *Service) NotifyProviderAgreed(ctx context.Context, msg *domainNegotiation.ContractAgreementRequest, token *domainNegotiation.ClaimToken) (*domainNegotiation.ContractNegotiation, error) {
	var n *domainNegotiation.ContractNegotiation
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.consumer.ProviderAgreed(ctx, token, msg.CorrelationID, msg.ContractAgreement, msg.Policy)
		return err
	})
	return n, err
}

// NotifyConsumerVerified handles an inbound agreement verification on
// the provider side.
func (s *Service) NotifyConsumerVerified(ctx context.Context, msg *domainNegotiation.ContractAgreementVerification, token *domainNegotiation.ClaimToken) (*domainNegotiation.ContractNegotiation, error) {
	var n *domainNegotiation.ContractNegotiation
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.provider.Verified(ctx, token, msg.CorrelationID)
		return err
	})
	return n, err
}

// NotifyProviderFinalized handles an inbound finalization event on the
// consumer side.
func (s *Service) NotifyProviderFinalized(ctx context.Context, msg *domainNegotiation.ContractNegotiationEvent, token *domainNegotiation.ClaimToken) (*domainNegotiation.ContractNegotiation, error) {
	if msg.Type != domainNegotiation.EventFinalized {
		return nil, domainNegotiation.BadRequest("unexpected negotiation event %s", msg.Type)
	}
	var n *domainNegotiation.ContractNegotiation
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.consumer.Finalized(ctx, token, msg.CorrelationID)
		return err
	})
	return n, err
}

// NotifyTerminated handles an inbound termination. The target is
// resolved by correlation id; which manager applies the termination is
// dictated by the stored record's type, never by the sender.
func (s *Service) NotifyTerminated(ctx context.Context, msg *domainNegotiation.TerminationMessage, token *domainNegotiation.ClaimToken) (*domainNegotiation.ContractNegotiation, error) {
	var n *domainNegotiation.ContractNegotiation
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		target, err := s.store.FindForCorrelationID(ctx, msg.ProcessID)
		if err != nil {
			return fmt.Errorf("failed to resolve correlation id: %w", err)
		}
		if target == nil {
			return domainNegotiation.NotFound("no negotiation for correlation id %s", msg.ProcessID)
		}
		if target.Type == domainNegotiation.TypeConsumer {
			n, err = s.consumer.Declined(ctx, token, msg.ProcessID, msg.Reason)
		} else {
			n, err = s.provider.Declined(ctx, token, msg.ProcessID, msg.Reason)
		}
		return err
	})
	return n, err
}

// commandEnqueuer is the slice of manager behavior Decline needs.
type commandEnqueuer interface {
	EnqueueCommand(cmd domainNegotiation.Command)
}

func (s *Service) managerFor(typ domainNegotiation.Type) commandEnqueuer {
	if typ == domainNegotiation.TypeProvider {
		return s.provider
	}
	return s.consumer
}
