package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTerms() ContractTerms {
	return ContractTerms{
		ContractType:     ContractTypeCall,
		StrikeHashRate:   450.5,
		StartBlockHeight: 800_000,
		EndBlockHeight:   802_016,
		TargetTimestamp:  time.Now().Add(14 * 24 * time.Hour),
		ContractSize:     100_000,
		Premium:          5_000,
		BuyerPubKey:      "02eec7245d6b7d2ccb30380bfbe2a3648cd7a942653f5aa340edcea1f283686619",
		SellerPubKey:     "03a34b99f22c790c4e36b2b3c2c35a36db06226e41c692fc82b8b56ac1c540c5bd",
	}
}

func TestContractTermsValidate(t *testing.T) {
	terms := validTerms()
	require.NoError(t, terms.Validate())

	for _, tc := range []struct {
		name   string
		mutate func(*ContractTerms)
		want   error
	}{
		{"unknown type", func(terms *ContractTerms) { terms.ContractType = "STRADDLE" }, ErrInvalidContractType},
		{"zero strike", func(terms *ContractTerms) { terms.StrikeHashRate = 0 }, ErrInvalidStrike},
		{"inverted window", func(terms *ContractTerms) { terms.EndBlockHeight = terms.StartBlockHeight }, ErrInvalidBlockWindow},
		{"past target", func(terms *ContractTerms) { terms.TargetTimestamp = time.Now().Add(-time.Hour) }, ErrTargetInPast},
		{"zero size", func(terms *ContractTerms) { terms.ContractSize = 0 }, ErrInvalidSize},
		{"negative premium", func(terms *ContractTerms) { terms.Premium = -1 }, ErrNegativePremium},
	} {
		t.Run(tc.name, func(t *testing.T) {
			terms := validTerms()
			tc.mutate(&terms)
			assert.ErrorIs(t, terms.Validate(), tc.want)
		})
	}
}

func TestContractTermsValidatePubKeys(t *testing.T) {
	terms := validTerms()
	terms.BuyerPubKey = "short"
	require.Error(t, terms.Validate())

	terms = validTerms()
	terms.SellerPubKey = "zz" + terms.SellerPubKey[2:]
	require.Error(t, terms.Validate())

	// x-only keys are accepted too
	terms = validTerms()
	terms.BuyerPubKey = terms.BuyerPubKey[2:]
	require.NoError(t, terms.Validate())
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, ContractStatusCreated.CanTransitionTo(ContractStatusActive))
	assert.True(t, ContractStatusCreated.CanTransitionTo(ContractStatusCancelled))
	assert.True(t, ContractStatusActive.CanTransitionTo(ContractStatusSettled))
	assert.True(t, ContractStatusActive.CanTransitionTo(ContractStatusExpired))

	// Refreshes keep the same status
	assert.True(t, ContractStatusActive.CanTransitionTo(ContractStatusActive))

	// The lifecycle never moves backwards
	assert.False(t, ContractStatusActive.CanTransitionTo(ContractStatusCreated))
	assert.False(t, ContractStatusSettled.CanTransitionTo(ContractStatusActive))
	assert.False(t, ContractStatusCancelled.CanTransitionTo(ContractStatusCreated))
	assert.False(t, ContractStatusExpired.CanTransitionTo(ContractStatusSettled))

	assert.False(t, ContractStatus("UNKNOWN").CanTransitionTo(ContractStatusActive))
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, ContractStatusCreated.IsTerminal())
	assert.False(t, ContractStatusActive.IsTerminal())
	assert.True(t, ContractStatusSettled.IsTerminal())
	assert.True(t, ContractStatusExpired.IsTerminal())
	assert.True(t, ContractStatusCancelled.IsTerminal())
}
