package negotiation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_managers.go -package=mocks . ConsumerManager,ProviderManager

// ConsumerManager is the surface of the consumer-role manager consumed
// by the service facade.
type ConsumerManager interface {
	Initiate(ctx context.Context, req *domainNegotiation.ContractOfferRequest) (*domainNegotiation.ContractNegotiation, error)
	ProviderAgreed(ctx context.Context, token *domainNegotiation.ClaimToken, correlationID string, agreement *domainNegotiation.ContractAgreement, policy *domainNegotiation.Policy) (*domainNegotiation.ContractNegotiation, error)
	Finalized(ctx context.Context, token *domainNegotiation.ClaimToken, correlationID string) (*domainNegotiation.ContractNegotiation, error)
	Declined(ctx context.Context, token *domainNegotiation.ClaimToken, correlationID, reason string) (*domainNegotiation.ContractNegotiation, error)
	EnqueueCommand(cmd domainNegotiation.Command)
}

// ProviderManager is the surface of the provider-role manager consumed
// by the service facade.
type ProviderManager interface {
	ConsumerRequested(ctx context.Context, token *domainNegotiation.ClaimToken, req *domainNegotiation.ContractOfferRequest) (*domainNegotiation.ContractNegotiation, error)
	Verified(ctx context.Context, token *domainNegotiation.ClaimToken, correlationID string) (*domainNegotiation.ContractNegotiation, error)
	Declined(ctx context.Context, token *domainNegotiation.ClaimToken, correlationID, reason string) (*domainNegotiation.ContractNegotiation, error)
	EnqueueCommand(cmd domainNegotiation.Command)
}

// Config tunes the manager's polling loop and retry policy, and names
// this connector on outbound messages.
type Config struct {
	// ConnectorID identifies this connector to counter parties.
	ConnectorID string
	// CallbackAddress is the base URL counter parties reach us on.
	CallbackAddress string
	// BatchSize is the number of negotiations leased per state per pass.
	BatchSize int
	// IterationWait is the pause between polling passes.
	IterationWait time.Duration
	// SendRetryLimit is the number of failed deliveries tolerated per
	// state before the negotiation is moved to ERROR.
	SendRetryLimit int
	// Workers bounds parallel processing of a leased batch.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.IterationWait <= 0 {
		c.IterationWait = time.Second
	}
	if c.SendRetryLimit <= 0 {
		c.SendRetryLimit = 7
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}

// Manager drives negotiations of one role through the state machine. It
// is the only component that writes negotiation state: synchronous
// operations below apply inbound notifications, and the polling loop in
// loop.go advances time-driven states and drains the command queue.
type Manager struct {
	role       domainNegotiation.Type
	store      domainNegotiation.Store
	dispatcher domainNegotiation.Dispatcher
	queue      *CommandQueue
	cfg        Config
	logger     zerolog.Logger

	// attempts tracks failed deliveries per negotiation id. In-memory on
	// purpose: a send failure must not bump the persisted StateCount.
	attemptsMu sync.Mutex
	attempts   map[string]int
}

// NewConsumerManager creates the manager owning CONSUMER negotiations.
func NewConsumerManager(store domainNegotiation.Store, dispatcher domainNegotiation.Dispatcher, cfg Config, logger zerolog.Logger) *Manager {
	return newManager(domainNegotiation.TypeConsumer, store, dispatcher, cfg, logger)
}

// NewProviderManager creates the manager owning PROVIDER negotiations.
func NewProviderManager(store domainNegotiation.Store, dispatcher domainNegotiation.Dispatcher, cfg Config, logger zerolog.Logger) *Manager {
	return newManager(domainNegotiation.TypeProvider, store, dispatcher, cfg, logger)
}

func newManager(role domainNegotiation.Type, store domainNegotiation.Store, dispatcher domainNegotiation.Dispatcher, cfg Config, logger zerolog.Logger) *Manager {
	return &Manager{
		role:       role,
		store:      store,
		dispatcher: dispatcher,
		queue:      NewCommandQueue(),
		cfg:        cfg.withDefaults(),
		logger:     logger.With().Str("service", "negotiation-manager").Str("role", string(role)).Logger(),
		attempts:   map[string]int{},
	}
}

// Initiate creates a new CONSUMER negotiation in REQUESTING; the polling
// loop dispatches the contract request on its next pass.
func (m *Manager) Initiate(ctx context.Context, req *domainNegotiation.ContractOfferRequest) (*domainNegotiation.ContractNegotiation, error) {
	if m.role != domainNegotiation.TypeConsumer {
		return nil, domainNegotiation.Conflict("initiate is a consumer operation")
	}
	if req == nil || req.ContractOffer == nil {
		return nil, domainNegotiation.BadRequest("offer request without contract offer")
	}

	n := domainNegotiation.NewContractNegotiation(domainNegotiation.TypeConsumer, req.ConnectorID, req.ConnectorAddress, req.Protocol)
	// the consumer hands out its own id as the correlation id, so the
	// counter party's replies resolve back to this record
	n.CorrelationID = n.ID
	n.AddContractOffer(req.ContractOffer)
	if err := n.TransitionTo(domainNegotiation.StateRequesting); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to save new negotiation: %w", err)
	}

	m.logger.Info().
		Str("negotiation_id", n.ID).
		Str("counter_party", n.CounterPartyAddress).
		Msg("negotiation initiated")

	return n.Copy(), nil
}

// ConsumerRequested creates or advances a PROVIDER negotiation on
// receipt of a contract request. The message's correlation id is the
// consumer's id for the negotiation.
func (m *Manager) ConsumerRequested(ctx context.Context, token *domainNegotiation.ClaimToken, req *domainNegotiation.ContractOfferRequest) (*domainNegotiation.ContractNegotiation, error) {
	if m.role != domainNegotiation.TypeProvider {
		return nil, domainNegotiation.Conflict("consumerRequested is a provider operation")
	}
	if req == nil || req.ContractOffer == nil {
		return nil, domainNegotiation.BadRequest("offer request without contract offer")
	}

	n, err := m.store.FindForCorrelationID(ctx, req.CorrelationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve correlation id: %w", err)
	}
	if n == nil {
		n = domainNegotiation.NewContractNegotiation(domainNegotiation.TypeProvider, req.ConnectorID, req.ConnectorAddress, req.Protocol)
		n.CorrelationID = req.CorrelationID
	}

	return m.apply(ctx, n, domainNegotiation.EvConsumerRequested{Offer: req.ContractOffer}, func(n *domainNegotiation.ContractNegotiation) error {
		n.AddContractOffer(req.ContractOffer)
		return nil
	})
}

// ProviderAgreed records the provider's agreement on the consumer side
// and advances the negotiation to AGREED.
func (m *Manager) ProviderAgreed(ctx context.Context, token *domainNegotiation.ClaimToken, correlationID string, agreement *domainNegotiation.ContractAgreement, policy *domainNegotiation.Policy) (*domainNegotiation.ContractNegotiation, error) {
	if m.role != domainNegotiation.TypeConsumer {
		return nil, domainNegotiation.Conflict("providerAgreed is a consumer operation")
	}
	if agreement == nil {
		return nil, domainNegotiation.BadRequest("agreement notification without agreement")
	}

	n, err := m.resolve(ctx, correlationID)
	if err != nil {
		return nil, err
	}

	return m.apply(ctx, n, domainNegotiation.EvAgreementReceived{Agreement: agreement}, func(n *domainNegotiation.ContractNegotiation) error {
		if policy != nil {
			agreement.Policy = *policy
		}
		return n.SetContractAgreement(agreement)
	})
}

// Verified advances a provider negotiation AGREED -> VERIFIED on receipt
// of the consumer's agreement verification.
func (m *Manager) Verified(ctx context.Context, token *domainNegotiation.ClaimToken, correlationID string) (*domainNegotiation.ContractNegotiation, error) {
	if m.role != domainNegotiation.TypeProvider {
		return nil, domainNegotiation.Conflict("verified is a provider operation")
	}
	n, err := m.resolve(ctx, correlationID)
	if err != nil {
		return nil, err
	}
	return m.apply(ctx, n, domainNegotiation.EvVerificationReceived{}, nil)
}

// Finalized advances a consumer negotiation VERIFIED -> FINALIZED on
// receipt of the provider's finalization event.
func (m *Manager) Finalized(ctx context.Context, token *domainNegotiation.ClaimToken, correlationID string) (*domainNegotiation.ContractNegotiation, error) {
	if m.role != domainNegotiation.TypeConsumer {
		return nil, domainNegotiation.Conflict("finalized is a consumer operation")
	}
	n, err := m.resolve(ctx, correlationID)
	if err != nil {
		return nil, err
	}
	return m.apply(ctx, n, domainNegotiation.EvFinalizationReceived{}, nil)
}

// Declined applies a counter-party termination to the negotiation
// resolved by correlation id. Re-applying to an already TERMINATED
// record is a no-op returning the unchanged record.
func (m *Manager) Declined(ctx context.Context, token *domainNegotiation.ClaimToken, correlationID, reason string) (*domainNegotiation.ContractNegotiation, error) {
	n, err := m.resolve(ctx, correlationID)
	if err != nil {
		return nil, err
	}
	return m.apply(ctx, n, domainNegotiation.EvTerminationReceived{Reason: reason}, func(n *domainNegotiation.ContractNegotiation) error {
		if reason != "" {
			n.SetErrorDetail(reason)
		}
		return nil
	})
}

// EnqueueCommand hands a command to the manager's queue; the loop
// applies it against fresh state on its next pass.
func (m *Manager) EnqueueCommand(cmd domainNegotiation.Command) {
	m.queue.Enqueue(cmd)
}

func (m *Manager) resolve(ctx context.Context, correlationID string) (*domainNegotiation.ContractNegotiation, error) {
	n, err := m.store.FindForCorrelationID(ctx, correlationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve correlation id: %w", err)
	}
	if n == nil {
		return nil, domainNegotiation.NotFound("no negotiation for correlation id %s", correlationID)
	}
	if n.Type != m.role {
		return nil, domainNegotiation.Conflict("negotiation %s belongs to the %s manager", n.ID, n.Type)
	}
	return n, nil
}

// apply runs one event through the state machine core, executes the
// declared effects, and persists the result. Side effects are dispatched
// before the save so a delivery failure leaves the stored record (and
// its StateCount) untouched.
func (m *Manager) apply(ctx context.Context, n *domainNegotiation.ContractNegotiation, ev domainNegotiation.Event, mutate func(*domainNegotiation.ContractNegotiation) error) (*domainNegotiation.ContractNegotiation, error) {
	tr, err := domainNegotiation.Next(n.Type, n.State, ev)
	if err != nil {
		return nil, err
	}
	if tr.NoOp {
		return n.Copy(), nil
	}
	if mutate != nil {
		if err := mutate(n); err != nil {
			return nil, err
		}
	}
	for _, msgType := range tr.Effects {
		if err := m.send(ctx, n, msgType); err != nil {
			return nil, domainNegotiation.Transient("failed to dispatch %s: %v", msgType, err)
		}
	}
	prior := n.State
	if err := n.TransitionTo(tr.Next); err != nil {
		return nil, domainNegotiation.Conflict("cannot move %s negotiation from %s to %s", n.Type, prior.Name(), tr.Next.Name())
	}
	if err := m.store.Save(ctx, n); err != nil {
		if errors.Is(err, domainNegotiation.ErrStaleVersion) {
			return nil, domainNegotiation.Conflict("negotiation %s was modified concurrently", n.ID)
		}
		return nil, fmt.Errorf("failed to save negotiation %s: %w", n.ID, err)
	}

	m.logger.Info().
		Str("negotiation_id", n.ID).
		Str("from", prior.Name()).
		Str("to", n.State.Name()).
		Msg("negotiation state changed")

	return n.Copy(), nil
}

// send builds and delivers the outbound message for one declared effect.
func (m *Manager) send(ctx context.Context, n *domainNegotiation.ContractNegotiation, msgType domainNegotiation.MessageType) error {
	msg, err := m.buildOutbound(n, msgType)
	if err != nil {
		return err
	}
	return m.dispatcher.Send(ctx, msg)
}
