package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	mintA = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	mintB = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	owner = "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N"
	addr1 = "So11111111111111111111111111111111111111112"
	addr2 = "SysvarRent111111111111111111111111111111111"
)

func TestNew(t *testing.T) {
	require := require.New(t)

	a, err := New(" "+addr1, owner, mintA)
	require.NoError(err)
	require.Equal(addr1, a.Address)
	require.True(a.BelongsTo(mintA))
	require.False(a.BelongsTo(mintB))

	_, err = New("", owner, mintA)
	require.ErrorIs(err, ErrInvalidAddress)
	_, err = New(addr1, "bad", mintA)
	require.ErrorIs(err, ErrInvalidOwner)
	_, err = New(addr1, owner, "")
	require.ErrorIs(err, ErrInvalidMint)
}

func TestCheckMovement(t *testing.T) {
	require := require.New(t)
	src, err := New(addr1, owner, mintA)
	require.NoError(err)
	dst, err := New(addr2, mintB, mintA)
	require.NoError(err)
	other, err := New(addr2, owner, mintB)
	require.NoError(err)

	// the mover does not have to own src
	require.NoError(CheckMovement(mintA, src, dst, 10))
	require.ErrorIs(CheckMovement(mintA, src, dst, 0), ErrInvalidAmount)
	require.ErrorIs(CheckMovement(mintA, src, other, 1), ErrMintMismatch)
}
