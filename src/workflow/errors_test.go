package workflow

import (
	"errors"
	"testing"

	"github.com/hashhedge/workflow/src/utils/arkwallet"
	"github.com/hashhedge/workflow/src/utils/contracts"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"insufficient funds", &arkwallet.RequestError{Code: arkwallet.CodeInsufficientFunds}, KindValidation},
		{"signing failed", &arkwallet.RequestError{Code: arkwallet.CodeSigningFailed}, KindSigning},
		{"wallet locked", &arkwallet.RequestError{Code: arkwallet.CodeWalletLocked}, KindSigning},
		{"broadcast rejected", &arkwallet.RequestError{Code: arkwallet.CodeBroadcastRejected}, KindBroadcast},
		{"backend rejection", &contracts.RequestError{StatusCode: 409}, KindService},
		{"transport failure", errors.New("connection refused"), KindService},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := classify("c1", tc.err)
			assert.Equal(t, tc.kind, out.Kind)
			assert.Equal(t, "c1", out.ContractId)
			assert.ErrorIs(t, out, tc.err)
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Kind: KindService, ContractId: "c1", Message: "call failed", cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "call failed")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "state inconsistency", KindStateInconsistency.String())
}
