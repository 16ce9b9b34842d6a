package token

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGet(t *testing.T) {
	r := DefaultRegistry()

	apt, err := r.Get(" APTOS ")
	require.NoError(t, err)
	assert.Equal(t, "0x1::aptos_coin::AptosCoin", apt.ContractAddress)
	assert.Equal(t, uint8(8), apt.Decimals)
	assert.Equal(t, "0x1", apt.Owner())
	assert.Equal(t, "APTOS", apt.String())

	_, err = r.Get("doge")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestLoadRegistryOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	content := `tokens:
  - symbol: usdc
    contract_address: "0xabc::coin::USDC"
    decimals: 6
  - symbol: cake
    contract_address: "0x159::oft::CakeOFT"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())

	usdc, err := r.Get("usdc")
	require.NoError(t, err)
	assert.Equal(t, "0xabc::coin::USDC", usdc.ContractAddress)

	cake, err := r.Get("CAKE")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), cake.Decimals)
}

func TestLoadRegistryRejectsBadEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tokens:\n  - symbol: bad\n    contract_address: nope\n"), 0o600))

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}
