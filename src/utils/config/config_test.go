package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) SetupTest() {
	// Viper keeps global state between loads
	viper.Reset()
}

func (s *ConfigTestSuite) TestDefaults() {
	config := Default()
	require.NotNil(s.T(), config)

	assert.False(s.T(), config.IsDevelopment)
	assert.Equal(s.T(), ":7878", config.RESTListenAddress)
	assert.Equal(s.T(), 30*time.Second, config.StopTimeout)

	assert.Equal(s.T(), "http://localhost:8080", config.ContractService.Url)
	assert.Equal(s.T(), 30*time.Second, config.ContractService.RequestTimeout)
	assert.Equal(s.T(), 1, config.ContractService.RetryCount)

	assert.Equal(s.T(), "http://localhost:7070", config.WalletService.Url)

	assert.Equal(s.T(), "testnet3", config.Workflow.Network)
	assert.EqualValues(s.T(), 2, config.Workflow.DefaultFeeRate)
	assert.Equal(s.T(), 5*time.Minute, config.Workflow.TransactionCacheTTL)

	assert.False(s.T(), config.Journal.Enabled)
	assert.Equal(s.T(), "sqlite", config.Journal.Driver)
	assert.Equal(s.T(), 50, config.Journal.BatchSize)

	assert.False(s.T(), config.Redis.Enabled)
	assert.False(s.T(), config.Feed.Enabled)
}

func (s *ConfigTestSuite) TestLoadFile() {
	file, err := os.CreateTemp(s.T().TempDir(), "config-*.json")
	require.NoError(s.T(), err)
	_, err = file.WriteString(`{
		"IsDevelopment": true,
		"Workflow": {"Network": "regtest", "DefaultFeeRate": 5},
		"Journal": {"Enabled": true, "Driver": "postgres"}
	}`)
	require.NoError(s.T(), err)
	require.NoError(s.T(), file.Close())

	config, err := Load(file.Name())
	require.NoError(s.T(), err)

	assert.True(s.T(), config.IsDevelopment)
	assert.Equal(s.T(), "regtest", config.Workflow.Network)
	assert.EqualValues(s.T(), 5, config.Workflow.DefaultFeeRate)
	assert.True(s.T(), config.Journal.Enabled)
	assert.Equal(s.T(), "postgres", config.Journal.Driver)

	// Untouched keys keep their defaults
	assert.Equal(s.T(), "http://localhost:8080", config.ContractService.Url)
}

func (s *ConfigTestSuite) TestEnvOverride() {
	s.T().Setenv("HASHHEDGE_WORKFLOW_NETWORK", "simnet")
	s.T().Setenv("HASHHEDGE_CONTRACT_SERVICE_URL", "http://backend:9090")

	config := Default()
	assert.Equal(s.T(), "simnet", config.Workflow.Network)
	assert.Equal(s.T(), "http://backend:9090", config.ContractService.Url)
}
