package negotiation

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	appmocks "github.com/dataspace-hub/dataspace-hub/internal/application/negotiation/mocks"
	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
	domainmocks "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation/mocks"
)

type serviceFixture struct {
	store    *domainmocks.MockStore
	consumer *appmocks.MockConsumerManager
	provider *appmocks.MockProviderManager
	service  *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	ctrl := gomock.NewController(t)
	f := &serviceFixture{
		store:    domainmocks.NewMockStore(ctrl),
		consumer: appmocks.NewMockConsumerManager(ctrl),
		provider: appmocks.NewMockProviderManager(ctrl),
	}
	f.service = NewService(f.store, f.consumer, f.provider, nil, zerolog.Nop())
	return f
}

func TestServiceFindByID(t *testing.T) {
	t.Run("returns the stored negotiation", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequested)
		f.store.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)

		n, err := f.service.FindByID(context.Background(), existing.ID)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, n.ID)
	})

	t.Run("returns nil for an unknown id", func(t *testing.T) {
		f := newServiceFixture(t)
		f.store.EXPECT().FindByID(gomock.Any(), "ghost").Return(nil, nil)

		n, err := f.service.FindByID(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Nil(t, n)
	})
}

func TestServiceQuery(t *testing.T) {
	t.Run("passes a valid filter to the store", func(t *testing.T) {
		f := newServiceFixture(t)
		spec := domainNegotiation.QuerySpec{
			Filter: []domainNegotiation.Criterion{{OperandLeft: "state", Operator: "=", OperandRight: "800"}},
		}
		f.store.EXPECT().QueryNegotiations(gomock.Any(), spec).Return(nil, nil)

		_, err := f.service.Query(context.Background(), spec)
		assert.NoError(t, err)
	})

	t.Run("rejects an invalid filter path without touching the store", func(t *testing.T) {
		f := newServiceFixture(t)
		spec := domainNegotiation.QuerySpec{
			Filter: []domainNegotiation.Criterion{{OperandLeft: "contractOffers.policy.assetid", Operator: "=", OperandRight: "x"}},
		}

		_, err := f.service.Query(context.Background(), spec)
		assert.True(t, domainNegotiation.IsBadRequest(err))
	})

	t.Run("rejects an invalid sort field", func(t *testing.T) {
		f := newServiceFixture(t)
		spec := domainNegotiation.QuerySpec{SortField: "contractAgreement.contractStartDate.begin"}

		_, err := f.service.Query(context.Background(), spec)
		assert.True(t, domainNegotiation.IsBadRequest(err))
	})
}

func TestServiceGetState(t *testing.T) {
	t.Run("returns the symbolic name", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateVerified)
		f.store.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)

		state, err := f.service.GetState(context.Background(), existing.ID)
		require.NoError(t, err)
		assert.Equal(t, "VERIFIED", state)
	})

	t.Run("returns empty for an unknown id", func(t *testing.T) {
		f := newServiceFixture(t)
		f.store.EXPECT().FindByID(gomock.Any(), "ghost").Return(nil, nil)

		state, err := f.service.GetState(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Empty(t, state)
	})
}

func TestServiceGetForNegotiation(t *testing.T) {
	t.Run("returns the negotiation's agreement", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateAgreed)
		require.NoError(t, existing.SetContractAgreement(&domainNegotiation.ContractAgreement{ID: "agreement-1"}))
		f.store.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)

		a, err := f.service.GetForNegotiation(context.Background(), existing.ID)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "agreement-1", a.ID)
	})

	t.Run("returns nil when the negotiation is absent", func(t *testing.T) {
		f := newServiceFixture(t)
		f.store.EXPECT().FindByID(gomock.Any(), "ghost").Return(nil, nil)

		a, err := f.service.GetForNegotiation(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Nil(t, a)
	})

	t.Run("returns nil before an agreement exists", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequested)
		f.store.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)

		a, err := f.service.GetForNegotiation(context.Background(), existing.ID)
		require.NoError(t, err)
		assert.Nil(t, a)
	})
}

func TestServiceGetAgreementByID(t *testing.T) {
	f := newServiceFixture(t)
	f.store.EXPECT().FindContractAgreement(gomock.Any(), "agreement-1").
		Return(&domainNegotiation.ContractAgreement{ID: "agreement-1"}, nil)

	a, err := f.service.GetAgreementByID(context.Background(), "agreement-1")
	require.NoError(t, err)
	assert.Equal(t, "agreement-1", a.ID)
}

func TestServiceInitiateNegotiation(t *testing.T) {
	f := newServiceFixture(t)
	req := &domainNegotiation.ContractOfferRequest{ContractOffer: testOffer()}
	created := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequesting)
	f.consumer.EXPECT().Initiate(gomock.Any(), req).Return(created, nil)

	n, err := f.service.InitiateNegotiation(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, created.ID, n.ID)
}

func TestServiceCancel(t *testing.T) {
	t.Run("enqueues a cancel command for a cancellable negotiation", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequested)
		f.store.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)
		f.consumer.EXPECT().EnqueueCommand(domainNegotiation.CancelCommand{ID: existing.ID})

		n, err := f.service.Cancel(context.Background(), existing.ID)
		require.NoError(t, err)
		assert.Equal(t, domainNegotiation.StateRequested, n.State, "snapshot precedes the async transition")
	})

	t.Run("unknown id is NOT_FOUND", func(t *testing.T) {
		f := newServiceFixture(t)
		f.store.EXPECT().FindByID(gomock.Any(), "ghost").Return(nil, nil)

		_, err := f.service.Cancel(context.Background(), "ghost")
		assert.True(t, domainNegotiation.IsNotFound(err))
	})

	t.Run("provider negotiation is CONFLICT", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := testNegotiation(domainNegotiation.TypeProvider, domainNegotiation.StateConsumerRequested)
		f.store.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)

		_, err := f.service.Cancel(context.Background(), existing.ID)
		assert.True(t, domainNegotiation.IsConflict(err))
	})

	t.Run("negotiation at or past AGREED is CONFLICT", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateAgreed)
		f.store.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)

		_, err := f.service.Cancel(context.Background(), existing.ID)
		assert.True(t, domainNegotiation.IsConflict(err))
	})
}

func TestServiceDecline(t *testing.T) {
	t.Run("routes the command to the manager owning the record", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := testNegotiation(domainNegotiation.TypeProvider, domainNegotiation.StateConsumerRequested)
		f.store.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)
		f.provider.EXPECT().EnqueueCommand(domainNegotiation.DeclineCommand{ID: existing.ID, Reason: "asset withdrawn"})

		n, err := f.service.Decline(context.Background(), existing.ID, "asset withdrawn")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, n.ID)
	})

	t.Run("consumer record goes to the consumer manager", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequested)
		f.store.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)
		f.consumer.EXPECT().EnqueueCommand(domainNegotiation.DeclineCommand{ID: existing.ID, Reason: "no deal"})

		_, err := f.service.Decline(context.Background(), existing.ID, "no deal")
		assert.NoError(t, err)
	})

	t.Run("unknown id is NOT_FOUND", func(t *testing.T) {
		f := newServiceFixture(t)
		f.store.EXPECT().FindByID(gomock.Any(), "ghost").Return(nil, nil)

		_, err := f.service.Decline(context.Background(), "ghost", "no deal")
		assert.True(t, domainNegotiation.IsNotFound(err))
	})

	t.Run("terminal negotiation is CONFLICT", func(t *testing.T) {
		f := newServiceFixture(t)
		existing := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateFinalized)
		f.store.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)

		_, err := f.service.Decline(context.Background(), existing.ID, "no deal")
		assert.True(t, domainNegotiation.IsConflict(err))
	})
}

func TestServiceNotifyConsumerRequested(t *testing.T) {
	f := newServiceFixture(t)
	msg := &domainNegotiation.ContractOfferRequest{CorrelationID: "consumer-process-1", ContractOffer: testOffer()}
	token := &domainNegotiation.ClaimToken{}
	created := testNegotiation(domainNegotiation.TypeProvider, domainNegotiation.StateConsumerRequested)
	f.provider.EXPECT().ConsumerRequested(gomock.Any(), token, msg).Return(created, nil)

	n, err := f.service.NotifyConsumerRequested(context.Background(), msg, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, n.ID)
}

func TestServiceNotifyProviderAgreed(t *testing.T) {
	f := newServiceFixture(t)
	agreement := &domainNegotiation.ContractAgreement{ID: "agreement-1"}
	policy := &domainNegotiation.Policy{AssetID: "asset-1"}
	msg := &domainNegotiation.ContractAgreementRequest{
		CorrelationID:     "corr-1",
		ContractAgreement: agreement,
		Policy:            policy,
	}
	token := &domainNegotiation.ClaimToken{}
	updated := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateAgreed)
	f.consumer.EXPECT().ProviderAgreed(gomock.Any(), token, "corr-1", agreement, policy).Return(updated, nil)

	n, err := f.service.NotifyProviderAgreed(context.Background(), msg, token)
	require.NoError(t, err)
	assert.Equal(t, domainNegotiation.StateAgreed, n.State)
}

func TestServiceNotifyConsumerVerified(t *testing.T) {
	f := newServiceFixture(t)
	msg := &domainNegotiation.ContractAgreementVerification{CorrelationID: "corr-1"}
	updated := testNegotiation(domainNegotiation.TypeProvider, domainNegotiation.StateVerified)
	f.provider.EXPECT().Verified(gomock.Any(), gomock.Any(), "corr-1").Return(updated, nil)

	n, err := f.service.NotifyConsumerVerified(context.Background(), msg, nil)
	require.NoError(t, err)
	assert.Equal(t, domainNegotiation.StateVerified, n.State)
}

func TestServiceNotifyProviderFinalized(t *testing.T) {
	t.Run("finalized event reaches the consumer manager", func(t *testing.T) {
		f := newServiceFixture(t)
		msg := &domainNegotiation.ContractNegotiationEvent{Type: domainNegotiation.EventFinalized, CorrelationID: "corr-1"}
		updated := testNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateFinalized)
		f.consumer.EXPECT().Finalized(gomock.Any(), gomock.Any(), "corr-1").Return(updated, nil)

		n, err := f.service.NotifyProviderFinalized(context.Background(), msg, nil)
		require.NoError(t, err)
		assert.Equal(t, domainNegotiation.StateFinalized, n.State)
	})

	t.Run("other event types are BAD_REQUEST", func(t *testing.T) {
		f := newServiceFixture(t)
		msg := &domainNegotiation.ContractNegotiationEvent{Type: domainNegotiation.EventAccepted, CorrelationID: "corr-1"}

		_, err := f.service.NotifyProviderFinalized(context.Background(), msg, nil)
		assert.True(t, domainNegotiation.IsBadRequest(err))
	})
}

func TestServiceNotifyTerminated(t *testing.T) {
	t.Run("dispatches by the stored record's type, not the sender", func(t *testing.T) {
		for _, typ := range []domainNegotiation.Type{domainNegotiation.TypeConsumer, domainNegotiation.TypeProvider} {
			t.Run(string(typ), func(t *testing.T) {
				f := newServiceFixture(t)
				existing := testNegotiation(typ, domainNegotiation.StateRequested)
				if typ == domainNegotiation.TypeProvider {
					existing.State = domainNegotiation.StateConsumerRequested
				}
				msg := &domainNegotiation.TerminationMessage{ProcessID: existing.CorrelationID, Reason: "revoked"}
				f.store.EXPECT().FindForCorrelationID(gomock.Any(), existing.CorrelationID).Return(existing, nil)

				terminated := existing.Copy()
				terminated.State = domainNegotiation.StateTerminated
				if typ == domainNegotiation.TypeConsumer {
					f.consumer.EXPECT().Declined(gomock.Any(), gomock.Any(), existing.CorrelationID, "revoked").Return(terminated, nil)
				} else {
					f.provider.EXPECT().Declined(gomock.Any(), gomock.Any(), existing.CorrelationID, "revoked").Return(terminated, nil)
				}

				n, err := f.service.NotifyTerminated(context.Background(), msg, nil)
				require.NoError(t, err)
				assert.Equal(t, domainNegotiation.StateTerminated, n.State)
			})
		}
	})

	t.Run("unknown correlation id is NOT_FOUND", func(t *testing.T) {
		f := newServiceFixture(t)
		msg := &domainNegotiation.TerminationMessage{ProcessID: "ghost"}
		f.store.EXPECT().FindForCorrelationID(gomock.Any(), "ghost").Return(nil, nil)

		_, err := f.service.NotifyTerminated(context.Background(), msg, nil)
		assert.True(t, domainNegotiation.IsNotFound(err))
	})
}
