package negotiation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilterPath(t *testing.T) {
	t.Run("valid paths", func(t *testing.T) {
		for _, path := range []string{
			"state",
			"counterPartyId",
			"contractOffers.policy.assetId",
			"contractAgreement.contractStartDate",
			"contractAgreement.assetId",
			"contractAgreement.policy.assignee",
		} {
			assert.NoError(t, ValidateFilterPath(path), path)
		}
	})

	t.Run("invalid paths", func(t *testing.T) {
		for _, path := range []string{
			"contractAgreement.contractStartDate.begin", // runs past a leaf
			"contractOffers.policy.uid",                 // unknown field
			"contractOffers.policy.assetid",             // wrong case
			"contractOffers.policy.",                    // truncated
			"contractoffers.policy.assetId",             // wrong case at root
			"",
		} {
			err := ValidateFilterPath(path)
			require.Error(t, err, path)
			assert.True(t, IsBadRequest(err), path)
		}
	})

	t.Run("transient fields are not queryable", func(t *testing.T) {
		assert.Error(t, ValidateFilterPath("pendingCommand"))
	})
}

func TestQuerySpec_Validate(t *testing.T) {
	t.Run("passes with valid filters and sort", func(t *testing.T) {
		spec := QuerySpec{
			Filter:    []Criterion{{OperandLeft: "contractAgreement.assetId", Operator: "=", OperandRight: "asset-1"}},
			SortField: "stateTimestamp",
			SortOrder: SortDesc,
		}
		assert.NoError(t, spec.Validate())
	})

	t.Run("rejects bad filter path before the store is touched", func(t *testing.T) {
		spec := QuerySpec{Filter: []Criterion{{OperandLeft: "contractOffers.policy.uid", Operator: "=", OperandRight: "x"}}}
		assert.True(t, IsBadRequest(spec.Validate()))
	})

	t.Run("rejects missing operator", func(t *testing.T) {
		spec := QuerySpec{Filter: []Criterion{{OperandLeft: "state", OperandRight: "700"}}}
		assert.True(t, IsBadRequest(spec.Validate()))
	})

	t.Run("rejects bad sort field", func(t *testing.T) {
		spec := QuerySpec{SortField: "Statetimestamp"}
		assert.True(t, IsBadRequest(spec.Validate()))
	})
}

func TestParseFilterExpression(t *testing.T) {
	c, err := ParseFilterExpression("contractAgreement.assetId=test-asset")
	require.NoError(t, err)
	assert.Equal(t, Criterion{OperandLeft: "contractAgreement.assetId", Operator: "=", OperandRight: "test-asset"}, c)

	c, err = ParseFilterExpression("state != 1100")
	require.NoError(t, err)
	assert.Equal(t, Criterion{OperandLeft: "state", Operator: "!=", OperandRight: "1100"}, c)

	_, err = ParseFilterExpression("nonsense")
	assert.True(t, IsBadRequest(err))
}
