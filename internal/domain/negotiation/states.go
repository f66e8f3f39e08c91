package negotiation

// State is the numeric state code of a contract negotiation. Codes are
// ordered so that comparing two codes reflects negotiation progress.
type State int

const (
	StateInitial           State = 50
	StateRequesting        State = 100
	StateRequested         State = 200
	StateConsumerRequested State = 250
	StateOffering          State = 300
	StateOffered           State = 400
	StateAccepted          State = 500
	StateAgreeing          State = 600
	StateAgreed            State = 700
	StateVerifying         State = 750
	StateVerified          State = 800
	StateFinalizing        State = 850
	StateFinalized         State = 900
	StateTerminating       State = 1000
	StateTerminated        State = 1100
	StateCancelled         State = 1150
	StateError             State = 1200
)

var stateNames = map[State]string{
	StateInitial:           "INITIAL",
	StateRequesting:        "REQUESTING",
	StateRequested:         "REQUESTED",
	StateConsumerRequested: "CONSUMER_REQUESTED",
	StateOffering:          "OFFERING",
	StateOffered:           "OFFERED",
	StateAccepted:          "ACCEPTED",
	StateAgreeing:          "AGREEING",
	StateAgreed:            "AGREED",
	StateVerifying:         "VERIFYING",
	StateVerified:          "VERIFIED",
	StateFinalizing:        "FINALIZING",
	StateFinalized:         "FINALIZED",
	StateTerminating:       "TERMINATING",
	StateTerminated:        "TERMINATED",
	StateCancelled:         "CANCELLED",
	StateError:             "ERROR",
}

// Name returns the symbolic name of the state, or "" for unknown codes.
func (s State) Name() string {
	return stateNames[s]
}

// StateFromName resolves a symbolic state name to its code.
func StateFromName(name string) (State, bool) {
	for code, n := range stateNames {
		if n == name {
			return code, true
		}
	}
	return 0, false
}

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	switch s {
	case StateFinalized, StateTerminated, StateCancelled, StateError:
		return true
	}
	return false
}

// Cancellable reports whether a negotiation in this state may still be
// cancelled by the consumer. Once an agreement has been reached the
// negotiation must be terminated instead.
func (s State) Cancellable() bool {
	return s < StateAgreed
}
