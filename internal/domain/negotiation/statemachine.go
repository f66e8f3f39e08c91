package negotiation

// Event is something that can drive a negotiation forward: an inbound
// protocol notification, a local command, or a manager timer firing. The
// variant set is closed.
type Event interface {
	eventName() string
}

type (
	// EvRequestDue fires when the consumer loop picks up a REQUESTING
	// negotiation and the contract request must go out.
	EvRequestDue struct{}
	// EvConsumerRequested is the provider receiving the initial (or a
	// renewed) contract request.
	EvConsumerRequested struct{ Offer *ContractOffer }
	// EvOfferReceived is the consumer receiving a counter offer.
	EvOfferReceived struct{ Offer *ContractOffer }
	// EvAgreementReceived is the consumer receiving the provider's
	// agreement.
	EvAgreementReceived struct{ Agreement *ContractAgreement }
	// EvAgreementDue fires when the provider loop decides to agree to a
	// consumer request.
	EvAgreementDue struct{}
	// EvVerificationDue fires when the consumer loop must send the
	// agreement verification.
	EvVerificationDue struct{}
	// EvVerificationReceived is the provider receiving the consumer's
	// verification.
	EvVerificationReceived struct{}
	// EvFinalizationDue fires when the provider loop must send the
	// finalization event.
	EvFinalizationDue struct{}
	// EvFinalizationReceived is the consumer receiving the finalization
	// event.
	EvFinalizationReceived struct{}
	// EvTerminationDue fires when the loop must deliver the termination
	// message for a TERMINATING negotiation.
	EvTerminationDue struct{}
	// EvTerminationReceived is either side learning the counter party
	// declined or terminated.
	EvTerminationReceived struct{ Reason string }
	// EvDispatched confirms the outbound message of the previous
	// transition was delivered.
	EvDispatched struct{}
	// EvCancel is the local cancel command.
	EvCancel struct{}
	// EvDecline is the local decline command.
	EvDecline struct{ Reason string }
	// EvRetryExhausted moves a negotiation to ERROR after the send retry
	// budget is spent.
	EvRetryExhausted struct{ Detail string }
)

func (EvRequestDue) eventName() string           { return "request-due" }
func (EvConsumerRequested) eventName() string    { return "consumer-requested" }
func (EvOfferReceived) eventName() string        { return "offer-received" }
func (EvAgreementReceived) eventName() string    { return "agreement-received" }
func (EvAgreementDue) eventName() string         { return "agreement-due" }
func (EvVerificationDue) eventName() string      { return "verification-due" }
func (EvVerificationReceived) eventName() string { return "verification-received" }
func (EvFinalizationDue) eventName() string      { return "finalization-due" }
func (EvFinalizationReceived) eventName() string { return "finalization-received" }
func (EvTerminationDue) eventName() string       { return "termination-due" }
func (EvTerminationReceived) eventName() string  { return "termination-received" }
func (EvDispatched) eventName() string           { return "dispatched" }
func (EvCancel) eventName() string               { return "cancel" }
func (EvDecline) eventName() string              { return "decline" }
func (EvRetryExhausted) eventName() string       { return "retry-exhausted" }

// Transition is the declarative outcome of applying an event: the next
// state and the messages the manager must dispatch before persisting it.
// The core performs no I/O.
type Transition struct {
	Next    State
	Effects []MessageType
	// NoOp marks an idempotent re-application: the record is unchanged
	// and must not be re-persisted.
	NoOp bool
}

// forward progress per role; terminal/error branches are handled
// separately in ValidTransition.
var consumerProgress = map[State][]State{
	StateInitial:    {StateRequesting},
	StateRequesting: {StateRequested},
	StateRequested:  {StateOffered, StateAccepted, StateAgreed},
	StateOffered:    {StateRequesting, StateAccepted, StateAgreed},
	StateAccepted:   {StateAgreed},
	StateAgreed:     {StateVerifying},
	StateVerifying:  {StateVerified},
	StateVerified:   {StateFinalized},
}

var providerProgress = map[State][]State{
	StateInitial:           {StateConsumerRequested},
	StateConsumerRequested: {StateOffering, StateAgreeing},
	StateOffering:          {StateConsumerRequested, StateAgreeing},
	StateAgreeing:          {StateAgreed},
	StateAgreed:            {StateVerified},
	StateVerified:          {StateFinalizing},
	StateFinalizing:        {StateFinalized},
}

// ValidTransition reports whether the state machine permits moving a
// negotiation of the given role from one state to another.
func ValidTransition(typ Type, from, to State) bool {
	if from.IsTerminal() {
		return false
	}
	switch to {
	case StateError, StateTerminating, StateTerminated:
		return true
	case StateCancelled:
		return typ == TypeConsumer && from.Cancellable()
	}
	if from == StateTerminating {
		return false
	}
	progress := consumerProgress
	if typ == TypeProvider {
		progress = providerProgress
	}
	for _, s := range progress[from] {
		if s == to {
			return true
		}
	}
	return false
}

// dispatch confirmations: states a negotiation sits in while its outbound
// message is in flight, and where it lands once delivery is confirmed.
var dispatchedNext = map[State]State{
	StateAgreeing:   StateAgreed,
	StateVerifying:  StateVerified,
	StateFinalizing: StateFinalized,
}

// Next computes the transition for an event against the current state of
// a negotiation with the given role. Guard violations come back as
// CONFLICT errors; events that do not belong to the role at all are also
// CONFLICT. The caller owns executing the effects and persisting.
func Next(typ Type, state State, ev Event) (Transition, error) {
	switch ev.(type) {
	case EvRequestDue:
		if typ == TypeConsumer && state == StateRequesting {
			return Transition{Next: StateRequested, Effects: []MessageType{MessageContractRequest}}, nil
		}
	case EvConsumerRequested:
		if typ == TypeProvider && (state == StateInitial || state == StateOffering) {
			return Transition{Next: StateConsumerRequested}, nil
		}
	case EvOfferReceived:
		if typ == TypeConsumer && (state == StateRequested || state == StateOffered) {
			return Transition{Next: StateOffered}, nil
		}
	case EvAgreementReceived:
		if typ == TypeConsumer && (state == StateRequested || state == StateOffered || state == StateAccepted) {
			return Transition{Next: StateAgreed}, nil
		}
	case EvAgreementDue:
		if typ == TypeProvider && state == StateConsumerRequested {
			return Transition{Next: StateAgreeing, Effects: []MessageType{MessageContractAgreement}}, nil
		}
	case EvVerificationDue:
		if typ == TypeConsumer && state == StateAgreed {
			return Transition{Next: StateVerifying, Effects: []MessageType{MessageAgreementVerification}}, nil
		}
	case EvVerificationReceived:
		if typ == TypeProvider && state == StateAgreed {
			return Transition{Next: StateVerified}, nil
		}
	case EvFinalizationDue:
		if typ == TypeProvider && state == StateVerified {
			return Transition{Next: StateFinalizing, Effects: []MessageType{MessageNegotiationEvent}}, nil
		}
	case EvFinalizationReceived:
		if typ == TypeConsumer && state == StateVerified {
			return Transition{Next: StateFinalized}, nil
		}
	case EvTerminationDue:
		if state == StateTerminating {
			return Transition{Next: StateTerminated, Effects: []MessageType{MessageTermination}}, nil
		}
	case EvTerminationReceived:
		if state == StateTerminated {
			return Transition{Next: state, NoOp: true}, nil
		}
		if !state.IsTerminal() {
			return Transition{Next: StateTerminated}, nil
		}
	case EvDispatched:
		if next, ok := dispatchedNext[state]; ok {
			return Transition{Next: next}, nil
		}
	case EvCancel:
		if typ != TypeConsumer {
			return Transition{}, Conflict("only consumer negotiations can be cancelled")
		}
		if !state.Cancellable() {
			return Transition{}, Conflict("negotiation in state %s can no longer be cancelled", state.Name())
		}
		return Transition{Next: StateCancelled}, nil
	case EvDecline:
		if state == StateTerminating || state == StateTerminated {
			return Transition{Next: state, NoOp: true}, nil
		}
		if !state.IsTerminal() {
			return Transition{Next: StateTerminating}, nil
		}
	case EvRetryExhausted:
		if !state.IsTerminal() {
			return Transition{Next: StateError}, nil
		}
	}
	return Transition{}, Conflict("event %s not applicable in state %s for %s negotiation", ev.eventName(), state.Name(), typ)
}
