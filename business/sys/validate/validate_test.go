package validate_test

import (
	"testing"

	"github.com/ardanlabs/minichain/business/sys/validate"
	"github.com/ardanlabs/minichain/foundation/blockchain/account"
	"github.com/stretchr/testify/require"
)

type transfer struct {
	From  string `json:"from" validate:"required,pubkey"`
	To    string `json:"to" validate:"required,pubkey"`
	Value uint64 `json:"value"`
}

func TestCheck(t *testing.T) {
	a, err := account.New("kennedy")
	require.NoError(t, err)

	t.Run("Valid", func(t *testing.T) {
		tr := transfer{From: a.PublicKey.Hex(), To: a.PublicKey.Hex(), Value: 0}
		require.NoError(t, validate.Check(tr))
	})

	t.Run("Missing", func(t *testing.T) {
		err := validate.Check(transfer{To: a.PublicKey.Hex()})
		require.True(t, validate.IsFieldErrors(err))

		fields := validate.GetFieldErrors(err).Fields()
		require.Contains(t, fields, "from")
		require.NotContains(t, fields, "to")
	})

	t.Run("BadKey", func(t *testing.T) {
		err := validate.Check(transfer{From: a.PublicKey.Hex(), To: "0x1234"})
		require.True(t, validate.IsFieldErrors(err))

		fields := validate.GetFieldErrors(err).Fields()
		require.Equal(t, "to must be a compressed public key in hex", fields["to"])
	})
}

func TestCheckID(t *testing.T) {
	require.NoError(t, validate.CheckID(validate.GenerateID()))
	require.ErrorIs(t, validate.CheckID("not-an-id"), validate.ErrInvalidID)
}
