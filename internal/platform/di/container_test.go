package di

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"permdelegate/internal/domain/ledger"
	"permdelegate/internal/infra/config"
	"permdelegate/internal/infra/localledger"
	"permdelegate/internal/infra/solana"
)

func TestMemoryContainerRunsScenario(t *testing.T) {
	require := require.New(t)
	cfg := &config.Config{
		LedgerMode:     config.LedgerMemory,
		MintAmount:     10,
		TransferAmount: 10,
		BurnAmount:     3,
		AirdropSOL:     1,
	}

	var out bytes.Buffer
	c, err := NewContainer(context.Background(), cfg, &out, nil)
	require.NoError(err)
	defer c.Close()

	require.IsType(&localledger.Ledger{}, c.Ledger)
	require.Equal(ledger.LamportsPerSOL, c.ScenarioConfig().FundingLamports)

	res, err := c.Scenario.Run(context.Background(), solana.NewPrincipals(), c.ScenarioConfig())
	require.NoError(err)
	require.Equal(uint64(7), res.Supply)
	require.NotEmpty(out.String())
}

func TestRPCContainerDoesNotDial(t *testing.T) {
	require := require.New(t)
	cfg := &config.Config{
		RPCURL:     "http://127.0.0.1:1",
		LedgerMode: config.LedgerRPC,
		Commitment: solana.CommitmentFinalized,
	}

	c, err := NewContainer(context.Background(), cfg, nil, nil)
	require.NoError(err)
	defer c.Close()

	l, ok := c.Ledger.(*solana.RPCLedger)
	require.True(ok)
	require.Equal(solana.CommitmentFinalized, l.Commitment)
}

func TestNilConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil, nil, nil)
	require.Error(t, err)
}
