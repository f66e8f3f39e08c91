package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
)

func newNegotiation(typ domainNegotiation.Type, state domainNegotiation.State) *domainNegotiation.ContractNegotiation {
	n := domainNegotiation.NewContractNegotiation(typ, "urn:connector:peer", "http://peer.example/api", "ids-multipart")
	n.State = state
	return n
}

func TestSaveAndFindByID(t *testing.T) {
	ctx := context.Background()
	store := NewNegotiationStore(0)

	n := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequesting)
	require.NoError(t, store.Save(ctx, n))
	assert.Equal(t, 1, n.StateCount, "first save establishes version 1")

	found, err := store.FindByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, n.ID, found.ID)
	assert.Equal(t, domainNegotiation.StateRequesting, found.State)

	// returned records are detached copies
	found.State = domainNegotiation.StateError
	again, err := store.FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, domainNegotiation.StateRequesting, again.State)

	missing, err := store.FindByID(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveVersioning(t *testing.T) {
	ctx := context.Background()
	store := NewNegotiationStore(0)

	n := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequesting)
	require.NoError(t, store.Save(ctx, n))

	t.Run("concurrent save on a stale read is rejected", func(t *testing.T) {
		first, err := store.FindByID(ctx, n.ID)
		require.NoError(t, err)
		second, err := store.FindByID(ctx, n.ID)
		require.NoError(t, err)

		first.State = domainNegotiation.StateRequested
		require.NoError(t, store.Save(ctx, first))

		second.State = domainNegotiation.StateTerminating
		err = store.Save(ctx, second)
		assert.ErrorIs(t, err, domainNegotiation.ErrStaleVersion)

		current, err := store.FindByID(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, domainNegotiation.StateRequested, current.State)
	})

	t.Run("new record with a taken id is rejected", func(t *testing.T) {
		dup := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateInitial)
		dup.ID = n.ID
		err := store.Save(ctx, dup)
		assert.ErrorIs(t, err, domainNegotiation.ErrDuplicateID)
	})
}

func TestFindForCorrelationID(t *testing.T) {
	ctx := context.Background()
	store := NewNegotiationStore(0)

	n := newNegotiation(domainNegotiation.TypeProvider, domainNegotiation.StateConsumerRequested)
	n.CorrelationID = "consumer-process-1"
	require.NoError(t, store.Save(ctx, n))

	found, err := store.FindForCorrelationID(ctx, "consumer-process-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, n.ID, found.ID)

	missing, err := store.FindForCorrelationID(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)

	none, err := store.FindForCorrelationID(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFindContractAgreement(t *testing.T) {
	ctx := context.Background()
	store := NewNegotiationStore(0)

	n := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateAgreeing)
	require.NoError(t, n.SetContractAgreement(&domainNegotiation.ContractAgreement{ID: "agreement-1", AssetID: "asset-1"}))
	n.State = domainNegotiation.StateAgreed
	require.NoError(t, store.Save(ctx, n))

	a, err := store.FindContractAgreement(ctx, "agreement-1")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "asset-1", a.AssetID)

	missing, err := store.FindContractAgreement(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLeaseNextByState(t *testing.T) {
	ctx := context.Background()

	t.Run("a leased negotiation is not handed out twice", func(t *testing.T) {
		store := NewNegotiationStore(time.Minute)
		n := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequesting)
		require.NoError(t, store.Save(ctx, n))

		first, err := store.LeaseNextByState(ctx, domainNegotiation.StateRequesting, 10)
		require.NoError(t, err)
		require.Len(t, first, 1)

		second, err := store.LeaseNextByState(ctx, domainNegotiation.StateRequesting, 10)
		require.NoError(t, err)
		assert.Empty(t, second)
	})

	t.Run("save releases the lease", func(t *testing.T) {
		store := NewNegotiationStore(time.Minute)
		n := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequesting)
		require.NoError(t, store.Save(ctx, n))

		leased, err := store.LeaseNextByState(ctx, domainNegotiation.StateRequesting, 10)
		require.NoError(t, err)
		require.Len(t, leased, 1)
		require.NoError(t, store.Save(ctx, leased[0]))

		again, err := store.LeaseNextByState(ctx, domainNegotiation.StateRequesting, 10)
		require.NoError(t, err)
		assert.Len(t, again, 1)
	})

	t.Run("expired leases are reclaimed", func(t *testing.T) {
		store := NewNegotiationStore(time.Minute)
		n := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequesting)
		require.NoError(t, store.Save(ctx, n))

		_, err := store.LeaseNextByState(ctx, domainNegotiation.StateRequesting, 10)
		require.NoError(t, err)

		store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		reclaimed, err := store.LeaseNextByState(ctx, domainNegotiation.StateRequesting, 10)
		require.NoError(t, err)
		assert.Len(t, reclaimed, 1)
	})

	t.Run("limit bounds the batch, oldest state change first", func(t *testing.T) {
		store := NewNegotiationStore(time.Minute)
		old := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequesting)
		old.StateTimestamp = time.Now().Add(-time.Hour)
		recent := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequesting)
		require.NoError(t, store.Save(ctx, old))
		require.NoError(t, store.Save(ctx, recent))

		batch, err := store.LeaseNextByState(ctx, domainNegotiation.StateRequesting, 1)
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.Equal(t, old.ID, batch[0].ID)
	})
}

func TestQueryNegotiations(t *testing.T) {
	ctx := context.Background()
	store := NewNegotiationStore(0)

	requested := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateRequested)
	verified := newNegotiation(domainNegotiation.TypeProvider, domainNegotiation.StateVerified)
	agreed := newNegotiation(domainNegotiation.TypeConsumer, domainNegotiation.StateAgreeing)
	require.NoError(t, agreed.SetContractAgreement(&domainNegotiation.ContractAgreement{ID: "agreement-1", AssetID: "asset-42"}))
	agreed.State = domainNegotiation.StateAgreed
	for _, n := range []*domainNegotiation.ContractNegotiation{requested, verified, agreed} {
		require.NoError(t, store.Save(ctx, n))
	}

	t.Run("filter on a numeric field", func(t *testing.T) {
		result, err := store.QueryNegotiations(ctx, domainNegotiation.QuerySpec{
			Filter: []domainNegotiation.Criterion{{OperandLeft: "state", Operator: "=", OperandRight: "800"}},
		})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, verified.ID, result[0].ID)
	})

	t.Run("filter on a nested field", func(t *testing.T) {
		result, err := store.QueryNegotiations(ctx, domainNegotiation.QuerySpec{
			Filter: []domainNegotiation.Criterion{{OperandLeft: "contractAgreement.assetId", Operator: "=", OperandRight: "asset-42"}},
		})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, agreed.ID, result[0].ID)
	})

	t.Run("records without the filtered field do not match", func(t *testing.T) {
		result, err := store.QueryNegotiations(ctx, domainNegotiation.QuerySpec{
			Filter: []domainNegotiation.Criterion{{OperandLeft: "contractAgreement.assetId", Operator: "=", OperandRight: "other"}},
		})
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("range operators", func(t *testing.T) {
		result, err := store.QueryNegotiations(ctx, domainNegotiation.QuerySpec{
			Filter: []domainNegotiation.Criterion{{OperandLeft: "state", Operator: ">=", OperandRight: "700"}},
		})
		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("sort and paging", func(t *testing.T) {
		result, err := store.QueryNegotiations(ctx, domainNegotiation.QuerySpec{
			SortField: "state",
			SortOrder: domainNegotiation.SortDesc,
			Limit:     2,
		})
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, verified.ID, result[0].ID)
		assert.Equal(t, agreed.ID, result[1].ID)

		rest, err := store.QueryNegotiations(ctx, domainNegotiation.QuerySpec{
			SortField: "state",
			SortOrder: domainNegotiation.SortDesc,
			Offset:    2,
		})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, requested.ID, rest[0].ID)
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		result, err := store.QueryNegotiations(ctx, domainNegotiation.QuerySpec{})
		require.NoError(t, err)
		assert.Len(t, result, 3)
	})
}

func TestQueryNegotiationsMatchesAnyOffer(t *testing.T) {
	ctx := context.Background()
	store := NewNegotiationStore(0)

	n := newNegotiation(domainNegotiation.TypeProvider, domainNegotiation.StateOffering)
	n.AddContractOffer(&domainNegotiation.ContractOffer{ID: "offer-first", AssetID: "asset-1"})
	n.AddContractOffer(&domainNegotiation.ContractOffer{ID: "offer-second", AssetID: "asset-2"})
	require.NoError(t, store.Save(ctx, n))

	for _, offerID := range []string{"offer-first", "offer-second"} {
		result, err := store.QueryNegotiations(ctx, domainNegotiation.QuerySpec{
			Filter: []domainNegotiation.Criterion{{OperandLeft: "contractOffers.id", Operator: "=", OperandRight: offerID}},
		})
		require.NoError(t, err)
		require.Len(t, result, 1, "offer %s must match", offerID)
		assert.Equal(t, n.ID, result[0].ID)
	}

	none, err := store.QueryNegotiations(ctx, domainNegotiation.QuerySpec{
		Filter: []domainNegotiation.Criterion{{OperandLeft: "contractOffers.id", Operator: "=", OperandRight: "offer-third"}},
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}
