package negotiation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContractNegotiation(t *testing.T) {
	n := NewContractNegotiation(TypeConsumer, "provider-1", "http://provider", "dataspace-protocol")

	require.NotNil(t, n)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, TypeConsumer, n.Type)
	assert.Equal(t, "provider-1", n.CounterPartyID)
	assert.Equal(t, "http://provider", n.CounterPartyAddress)
	assert.Equal(t, "dataspace-protocol", n.Protocol)
	assert.Equal(t, StateInitial, n.State)
	assert.Equal(t, 0, n.StateCount)
	assert.Nil(t, n.ContractAgreement)
	assert.Empty(t, n.ContractOffers)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestContractNegotiation_TransitionTo(t *testing.T) {
	t.Run("valid transition refreshes timestamp", func(t *testing.T) {
		n := NewContractNegotiation(TypeConsumer, "p", "addr", "proto")
		before := n.StateTimestamp

		err := n.TransitionTo(StateRequesting)

		require.NoError(t, err)
		assert.Equal(t, StateRequesting, n.State)
		assert.True(t, n.StateTimestamp.After(before) || before.IsZero())
	})

	t.Run("invalid transition is rejected", func(t *testing.T) {
		n := NewContractNegotiation(TypeConsumer, "p", "addr", "proto")

		err := n.TransitionTo(StateFinalized)

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StateInitial, n.State)
	})

	t.Run("consumer cannot enter provider branch states", func(t *testing.T) {
		n := NewContractNegotiation(TypeConsumer, "p", "addr", "proto")

		assert.ErrorIs(t, n.TransitionTo(StateConsumerRequested), ErrInvalidTransition)
	})

	t.Run("provider cannot enter consumer branch states", func(t *testing.T) {
		n := NewContractNegotiation(TypeProvider, "c", "addr", "proto")

		assert.ErrorIs(t, n.TransitionTo(StateRequesting), ErrInvalidTransition)
	})

	t.Run("terminal states admit nothing", func(t *testing.T) {
		n := NewContractNegotiation(TypeConsumer, "p", "addr", "proto")
		n.State = StateTerminated

		assert.ErrorIs(t, n.TransitionTo(StateTerminating), ErrInvalidTransition)
	})
}

func TestContractNegotiation_Offers(t *testing.T) {
	n := NewContractNegotiation(TypeConsumer, "p", "addr", "proto")
	require.Nil(t, n.LastContractOffer())

	first := &ContractOffer{ID: "offer-1", AssetID: "asset-1"}
	second := &ContractOffer{ID: "offer-2", AssetID: "asset-1"}
	n.AddContractOffer(first)
	n.AddContractOffer(second)

	require.Len(t, n.ContractOffers, 2)
	assert.Equal(t, "offer-1", n.ContractOffers[0].ID)
	assert.Equal(t, second, n.LastContractOffer())
}

func TestContractNegotiation_SetContractAgreement(t *testing.T) {
	n := NewContractNegotiation(TypeConsumer, "p", "addr", "proto")

	require.NoError(t, n.SetContractAgreement(&ContractAgreement{ID: "agreement-1"}))
	err := n.SetContractAgreement(&ContractAgreement{ID: "agreement-2"})

	assert.ErrorIs(t, err, ErrAgreementAlreadySet)
	assert.Equal(t, "agreement-1", n.ContractAgreement.ID)
}

func TestContractNegotiation_Copy(t *testing.T) {
	n := NewContractNegotiation(TypeProvider, "c", "addr", "proto")
	n.AddContractOffer(&ContractOffer{ID: "offer-1", ContractStart: time.Now().UTC()})
	require.NoError(t, n.SetContractAgreement(&ContractAgreement{ID: "agreement-1", AssetID: "asset-1"}))

	c := n.Copy()
	c.ContractOffers[0].ID = "mutated"
	c.ContractAgreement.AssetID = "mutated"
	c.State = StateTerminated

	assert.Equal(t, "offer-1", n.ContractOffers[0].ID)
	assert.Equal(t, "asset-1", n.ContractAgreement.AssetID)
	assert.Equal(t, StateInitial, n.State)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "CONSUMER_REQUESTED", StateConsumerRequested.Name())
	assert.Equal(t, "FINALIZED", StateFinalized.Name())

	s, ok := StateFromName("AGREED")
	require.True(t, ok)
	assert.Equal(t, StateAgreed, s)

	_, ok = StateFromName("NOPE")
	assert.False(t, ok)
}

func TestStateOrdering(t *testing.T) {
	assert.True(t, StateRequested.Cancellable())
	assert.True(t, StateAccepted.Cancellable())
	assert.False(t, StateAgreed.Cancellable())
	assert.False(t, StateFinalized.Cancellable())

	assert.True(t, StateTerminated.IsTerminal())
	assert.True(t, StateCancelled.IsTerminal())
	assert.True(t, StateError.IsTerminal())
	assert.True(t, StateFinalized.IsTerminal())
	assert.False(t, StateTerminating.IsTerminal())
}
