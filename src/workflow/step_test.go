package workflow

import (
	"testing"

	"github.com/hashhedge/workflow/src/utils/model"

	"github.com/stretchr/testify/assert"
)

func TestStepFor(t *testing.T) {
	assert.Equal(t, StepCreate, StepFor(nil, false))

	created := &model.Contract{Id: "c1", Status: model.ContractStatusCreated}
	assert.Equal(t, StepFund, StepFor(created, false))

	active := &model.Contract{Id: "c1", Status: model.ContractStatusActive, SetupTxId: "tx1"}
	assert.Equal(t, StepSetup, StepFor(active, false))
	assert.Equal(t, StepMonitor, StepFor(active, true))

	settled := &model.Contract{Id: "c1", Status: model.ContractStatusSettled}
	assert.Equal(t, StepSettlement, StepFor(settled, false))

	cancelled := &model.Contract{Id: "c1", Status: model.ContractStatusCancelled}
	assert.Equal(t, StepSettlement, StepFor(cancelled, false))
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "fund", StepFund.String())
	assert.Equal(t, "settlement", StepSettlement.String())
}
