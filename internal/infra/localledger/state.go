package localledger

import (
	"github.com/blocto/solana-go-sdk/common"

	"permdelegate/internal/infra/solana"
)

// rent parameters of the default cluster configuration
const (
	lamportsPerByteYear    uint64 = 3480
	exemptionThresholdYrs  uint64 = 2
	accountStorageOverhead uint64 = 128

	defaultFeePerSignature uint64 = 5000
	maxPermittedDataLength uint64 = 10 * 1024 * 1024
	maxRecentBlockhashes          = 150
)

func minimumBalance(space uint64) uint64 {
	return (space + accountStorageOverhead) * lamportsPerByteYear * exemptionThresholdYrs
}

type account struct {
	lamports uint64
	space    uint64
	owner    common.PublicKey

	// at most one of these is set once the owning program wrote the account
	mint  *mintState
	token *tokenState
}

type mintState struct {
	initialized       bool
	decimals          uint8
	mintAuthority     *common.PublicKey
	freezeAuthority   *common.PublicKey
	supply            uint64
	permanentDelegate *common.PublicKey
	extensions        []solana.ExtensionType
}

type tokenState struct {
	mint   common.PublicKey
	owner  common.PublicKey
	amount uint64
}

func (a *account) clone() *account {
	c := *a
	if a.mint != nil {
		m := *a.mint
		m.extensions = append([]solana.ExtensionType(nil), a.mint.extensions...)
		c.mint = &m
	}
	if a.token != nil {
		t := *a.token
		c.token = &t
	}
	return &c
}

func (m *mintState) hasExtension(e solana.ExtensionType) bool {
	for _, x := range m.extensions {
		if x == e {
			return true
		}
	}
	return false
}

func cloneAccounts(in map[common.PublicKey]*account) map[common.PublicKey]*account {
	out := make(map[common.PublicKey]*account, len(in))
	for k, v := range in {
		out[k] = v.clone()
	}
	return out
}
