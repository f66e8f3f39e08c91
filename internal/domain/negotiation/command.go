package negotiation

// Command is an imperative action awaiting application to a negotiation.
// Commands are transient: they live in the in-process queue only and are
// lost on restart. The variant set is closed; the manager dispatches via
// type switch.
type Command interface {
	NegotiationID() string
}

// CancelCommand cancels a consumer negotiation that has not yet reached
// AGREED. The counter party is not informed.
type CancelCommand struct {
	ID string
}

func (c CancelCommand) NegotiationID() string { return c.ID }

// DeclineCommand gracefully terminates a negotiation in any non-terminal
// state, informing the counter party with the given reason.
type DeclineCommand struct {
	ID     string
	Reason string
}

func (c DeclineCommand) NegotiationID() string { return c.ID }
