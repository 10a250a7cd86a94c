package operation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	require := require.New(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	j := NewJournal(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	fund, err := j.Begin(KindFund, "authority")
	require.NoError(err)
	j.Succeed(fund, "")

	mint, err := j.Begin(KindInitMint, " mint ")
	require.NoError(err)
	j.Succeed(mint, "sig1")

	burn, err := j.Begin(KindBurn, "3")
	require.NoError(err)
	j.Fail(burn, ErrorTypeSubmission, errors.New("insufficient funds"))

	ops := j.Operations()
	require.Len(ops, 3)
	require.Equal([]int{1, 2, 3}, []int{ops[0].Seq, ops[1].Seq, ops[2].Seq})

	require.Equal(StatusSucceeded, ops[0].Status)
	require.Nil(ops[0].TxSignature)
	require.Equal("mint", ops[1].Detail)
	require.Equal("sig1", *ops[1].TxSignature)

	last, ok := j.LastFailure()
	require.True(ok)
	require.Equal(KindBurn, last.Kind)
	require.Equal(StatusFailed, last.Status)
	require.Equal(ErrorTypeSubmission, *last.ErrorType)
	require.Equal("insufficient funds", *last.ErrorMsg)
}

func TestJournalRejectsUnknownKind(t *testing.T) {
	j := NewJournal(nil)
	_, err := j.Begin(Kind("airdrop"), "")
	require.ErrorIs(t, err, ErrInvalidKind)
	require.Empty(t, j.Operations())

	_, ok := j.LastFailure()
	require.False(t, ok)
}

func TestMarkFailedDefaultsToUnknown(t *testing.T) {
	require := require.New(t)
	op, err := NewPending(1, KindTransfer, "", time.Now())
	require.NoError(err)

	op.MarkFailed("", "  ", time.Now())
	require.Equal(ErrorTypeUnknown, *op.ErrorType)
	require.Nil(op.ErrorMsg)

	op.MarkSucceeded("sig", time.Now())
	require.Nil(op.ErrorType)
	require.Equal(StatusSucceeded, op.Status)
}
