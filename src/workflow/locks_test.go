package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContractLocks(t *testing.T) {
	locks := newContractLocks()

	assert.True(t, locks.tryAcquire("c1"))
	assert.False(t, locks.tryAcquire("c1"))

	// Other contracts are unaffected
	assert.True(t, locks.tryAcquire("c2"))

	locks.release("c1")
	assert.True(t, locks.tryAcquire("c1"))
}
