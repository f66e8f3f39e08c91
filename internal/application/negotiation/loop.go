package negotiation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

// trackedState pairs a state the loop polls with the timer event it
// applies to negotiations leased in that state.
type trackedState struct {
	state domainNegotiation.State
	event domainNegotiation.Event
}

func (m *Manager) trackedStates() []trackedState {
	if m.role == domainNegotiation.TypeConsumer {
		return []trackedState{
			{domainNegotiation.StateRequesting, domainNegotiation.EvRequestDue{}},
			{domainNegotiation.StateAgreed, domainNegotiation.EvVerificationDue{}},
			{domainNegotiation.StateVerifying, domainNegotiation.EvDispatched{}},
			{domainNegotiation.StateTerminating, domainNegotiation.EvTerminationDue{}},
		}
	}
	return []trackedState{
		{domainNegotiation.StateConsumerRequested, domainNegotiation.EvAgreementDue{}},
		{domainNegotiation.StateAgreeing, domainNegotiation.EvDispatched{}},
		{domainNegotiation.StateVerified, domainNegotiation.EvFinalizationDue{}},
		{domainNegotiation.StateFinalizing, domainNegotiation.EvDispatched{}},
		{domainNegotiation.StateTerminating, domainNegotiation.EvTerminationDue{}},
	}
}

// Run is the manager's polling loop. Each pass drains the command queue,
// then leases and processes a batch per tracked state. Blocks until the
// context is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info().Msg("negotiation manager started")
	ticker := time.NewTicker(m.cfg.IterationWait)
	defer ticker.Stop()
	for {
		m.drainCommands(ctx)
		m.pollOnce(ctx)
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("negotiation manager stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// pollOnce runs a single polling pass and reports how many negotiations
// were leased. Exposed for tests and for single-shot processing.
func (m *Manager) pollOnce(ctx context.Context) int {
	leased := 0
	for _, tracked := range m.trackedStates() {
		batch, err := m.store.LeaseNextByState(ctx, tracked.state, m.cfg.BatchSize)
		if err != nil {
			m.logger.Warn().Err(err).Str("state", tracked.state.Name()).Msg("failed to lease negotiations")
			continue
		}
		leased += len(batch)

		// The lease is the mutual exclusion primitive: each leased id is
		// held by exactly one worker here, so workers never contend on
		// the same negotiation.
		var g errgroup.Group
		g.SetLimit(m.cfg.Workers)
		for _, n := range batch {
			n := n
			g.Go(func() error {
				m.processDue(ctx, n, tracked.event)
				return nil
			})
		}
		_ = g.Wait()
	}
	return leased
}

func (m *Manager) processDue(ctx context.Context, n *domainNegotiation.ContractNegotiation, ev domainNegotiation.Event) {
	saved, err := m.apply(ctx, n, ev, m.dueMutation(n, ev))
	if err != nil {
		if domainNegotiation.ReasonOf(err) == domainNegotiation.ReasonTransient {
			m.recordSendFailure(ctx, n, err)
			return
		}
		// lost CAS race or stale lease: the next pass re-leases
		m.logger.Warn().Err(err).Str("negotiation_id", n.ID).Msg("skipping negotiation")
		return
	}
	m.clearAttempts(n.ID)

	// confirm delivery in the same pass when the new state awaits it
	if _, awaiting := domainNegotiation.Next(saved.Type, saved.State, domainNegotiation.EvDispatched{}); awaiting == nil {
		if _, err := m.apply(ctx, saved, domainNegotiation.EvDispatched{}, nil); err != nil {
			m.logger.Warn().Err(err).Str("negotiation_id", saved.ID).Msg("failed to confirm dispatch")
		}
	}
}

// dueMutation supplies the record mutation belonging to a timer event.
// The provider builds its agreement from the negotiated offer when it
// decides to agree.
func (m *Manager) dueMutation(n *domainNegotiation.ContractNegotiation, ev domainNegotiation.Event) func(*domainNegotiation.ContractNegotiation) error {
	if _, ok := ev.(domainNegotiation.EvAgreementDue); !ok {
		return nil
	}
	return func(n *domainNegotiation.ContractNegotiation) error {
		if n.ContractAgreement != nil {
			return nil
		}
		offer := n.LastContractOffer()
		if offer == nil {
			return domainNegotiation.Fatal("negotiation %s has no offer to agree on", n.ID)
		}
		now := time.Now().UTC()
		// this connector is the provider; the counter party is the consumer
		return n.SetContractAgreement(&domainNegotiation.ContractAgreement{
			ID:                  uuid.New().String(),
			ProviderAgentID:     m.cfg.ConnectorID,
			ConsumerAgentID:     n.CounterPartyID,
			AssetID:             offer.AssetID,
			Policy:              offer.Policy,
			ContractSigningDate: now.Unix(),
			ContractStartDate:   offer.ContractStart.Unix(),
			ContractEndDate:     offer.ContractEnd.Unix(),
		})
	}
}

func (m *Manager) recordSendFailure(ctx context.Context, n *domainNegotiation.ContractNegotiation, cause error) {
	m.attemptsMu.Lock()
	m.attempts[n.ID]++
	count := m.attempts[n.ID]
	m.attemptsMu.Unlock()

	if count <= m.cfg.SendRetryLimit {
		m.logger.Warn().Err(cause).
			Str("negotiation_id", n.ID).
			Int("attempt", count).
			Msg("message delivery failed, will retry")
		return
	}

	detail := "send retry limit exceeded: " + cause.Error()
	if _, err := m.apply(ctx, n, domainNegotiation.EvRetryExhausted{Detail: detail}, func(n *domainNegotiation.ContractNegotiation) error {
		n.SetErrorDetail(detail)
		return nil
	}); err != nil {
		m.logger.Warn().Err(err).Str("negotiation_id", n.ID).Msg("failed to mark negotiation as errored")
		return
	}
	m.clearAttempts(n.ID)
	m.logger.Error().
		Str("negotiation_id", n.ID).
		Int("attempts", count).
		Msg("negotiation moved to ERROR after retry exhaustion")
}

func (m *Manager) clearAttempts(id string) {
	m.attemptsMu.Lock()
	delete(m.attempts, id)
	m.attemptsMu.Unlock()
}

// drainCommands applies all pending commands in submission order against
// freshly read state. Guard failures at this point are logged, not
// surfaced: synchronous guards already ran in the service facade.
func (m *Manager) drainCommands(ctx context.Context) {
	for {
		cmd, ok := m.queue.Dequeue()
		if !ok {
			return
		}
		if err := m.applyCommand(ctx, cmd); err != nil {
			m.logger.Warn().Err(err).
				Str("negotiation_id", cmd.NegotiationID()).
				Msg("dropping negotiation command")
		}
	}
}

func (m *Manager) applyCommand(ctx context.Context, cmd domainNegotiation.Command) error {
	n, err := m.store.FindByID(ctx, cmd.NegotiationID())
	if err != nil {
		return err
	}
	if n == nil {
		return domainNegotiation.NotFound("negotiation %s not found", cmd.NegotiationID())
	}
	if n.Type != m.role {
		return domainNegotiation.Conflict("negotiation %s belongs to the %s manager", n.ID, n.Type)
	}

	switch c := cmd.(type) {
	case domainNegotiation.CancelCommand:
		_, err = m.apply(ctx, n, domainNegotiation.EvCancel{}, nil)
	case domainNegotiation.DeclineCommand:
		_, err = m.apply(ctx, n, domainNegotiation.EvDecline{Reason: c.Reason}, func(n *domainNegotiation.ContractNegotiation) error {
			if c.Reason != "" {
				n.SetErrorDetail(c.Reason)
			}
			return nil
		})
	default:
		err = domainNegotiation.BadRequest("unknown command %T", cmd)
	}
	return err
}

// buildOutbound turns a declared effect into the message descriptor the
// dispatcher delivers. The payload is the full protocol message the
// counter party's endpoint expects. The process id is the counter
// party's reference: its own id for this negotiation when known,
// otherwise ours (the first request introduces our id as the counter
// party's correlation id).
func (m *Manager) buildOutbound(n *domainNegotiation.ContractNegotiation, msgType domainNegotiation.MessageType) (*domainNegotiation.OutboundMessage, error) {
	processID := n.CorrelationID
	if processID == "" {
		processID = n.ID
	}

	var payload any
	switch msgType {
	case domainNegotiation.MessageContractRequest, domainNegotiation.MessageContractOffer:
		payload = &domainNegotiation.ContractOfferRequest{
			ConnectorID:      m.cfg.ConnectorID,
			ConnectorAddress: m.cfg.CallbackAddress,
			Protocol:         n.Protocol,
			CorrelationID:    n.ID,
			ContractOffer:    n.LastContractOffer(),
		}
	case domainNegotiation.MessageContractAgreement:
		if n.ContractAgreement == nil {
			return nil, domainNegotiation.Fatal("negotiation %s has no agreement to send", n.ID)
		}
		policy := n.ContractAgreement.Policy
		payload = &domainNegotiation.ContractAgreementRequest{
			ConnectorID:       m.cfg.ConnectorID,
			ConnectorAddress:  m.cfg.CallbackAddress,
			Protocol:          n.Protocol,
			CorrelationID:     processID,
			ContractAgreement: n.ContractAgreement,
			Policy:            &policy,
		}
	case domainNegotiation.MessageAgreementVerification:
		payload = &domainNegotiation.ContractAgreementVerification{
			ConnectorAddress: m.cfg.CallbackAddress,
			Protocol:         n.Protocol,
			CorrelationID:    processID,
		}
	case domainNegotiation.MessageNegotiationEvent:
		payload = &domainNegotiation.ContractNegotiationEvent{
			Type:             domainNegotiation.EventFinalized,
			ConnectorAddress: m.cfg.CallbackAddress,
			Protocol:         n.Protocol,
			CorrelationID:    processID,
		}
	case domainNegotiation.MessageTermination:
		payload = &domainNegotiation.TerminationMessage{
			ConnectorAddress: m.cfg.CallbackAddress,
			Protocol:         n.Protocol,
			ProcessID:        processID,
			Reason:           n.ErrorDetail,
		}
	}

	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}

	return &domainNegotiation.OutboundMessage{
		Type:      msgType,
		To:        n.CounterPartyAddress,
		Protocol:  n.Protocol,
		ProcessID: processID,
		Payload:   raw,
	}, nil
}
