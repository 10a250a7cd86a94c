package solana

import (
	"context"
	"encoding/json"
	"testing"

	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
	gax "github.com/googleapis/gax-go/v2"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func keypairJSON(t *testing.T, key []byte) []byte {
	t.Helper()
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)
	return data
}

func TestDecodeKeypair(t *testing.T) {
	acc := types.NewAccount()
	key := []byte(acc.PrivateKey)

	tampered := append([]byte(nil), key...)
	tampered[63] ^= 0xff

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"json array", keypairJSON(t, key), false},
		{"json with whitespace", append(append([]byte("  \n"), keypairJSON(t, key)...), '\n'), false},
		{"base58", []byte(base58.Encode(key)), false},
		{"empty", nil, true},
		{"short", keypairJSON(t, key[:32]), true},
		{"byte out of range", []byte("[256]"), true},
		{"bad base58", []byte("0OIl"), true},
		{"public half mismatch", keypairJSON(t, tampered), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			got, err := DecodeKeypair(tt.data)
			if tt.wantErr {
				require.ErrorIs(err, ErrInvalidKeypair)
				return
			}
			require.NoError(err)
			require.Equal(key, got)
		})
	}
}

type fakeSecrets struct {
	data []byte
	err  error
	name string
}

func (f *fakeSecrets) AccessSecretVersion(_ context.Context, req *secretspb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretspb.AccessSecretVersionResponse, error) {
	f.name = req.GetName()
	if f.err != nil {
		return nil, f.err
	}
	return &secretspb.AccessSecretVersionResponse{
		Name:    req.GetName(),
		Payload: &secretspb.SecretPayload{Data: f.data},
	}, nil
}

func TestFaucetKeyLoaderLoad(t *testing.T) {
	require := require.New(t)
	acc := types.NewAccount()
	secrets := &fakeSecrets{data: keypairJSON(t, acc.PrivateKey)}
	l := &FaucetKeyLoader{Secrets: secrets, log: zap.NewNop()}

	const name = "projects/p/secrets/faucet/versions/latest"
	got, err := l.Load(context.Background(), " "+name+" ")
	require.NoError(err)
	require.Equal(acc.PublicKey, got.PublicKey)
	require.Equal(name, secrets.name)
}

func TestFaucetKeyLoaderErrors(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := &FaucetKeyLoader{Secrets: &fakeSecrets{}, log: zap.NewNop()}
	_, err := l.Load(ctx, "")
	require.ErrorIs(err, ErrFaucetSecretEmpty)

	l.Secrets = &fakeSecrets{err: status.Error(codes.NotFound, "no such secret")}
	_, err = l.Load(ctx, "projects/p/secrets/missing/versions/latest")
	require.ErrorIs(err, ErrFaucetSecretNotFound)

	l.Secrets = &fakeSecrets{data: []byte("[1,2,3]")}
	_, err = l.Load(ctx, "projects/p/secrets/short/versions/latest")
	require.ErrorIs(err, ErrInvalidKeypair)
}
