// internal/infra/solana/faucet_key.go
package solana

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
	gax "github.com/googleapis/gax-go/v2"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrFaucetSecretEmpty    = errors.New("faucet_key: secret name is empty")
	ErrFaucetSecretNotFound = errors.New("faucet_key: secret not found")
	ErrInvalidKeypair       = errors.New("faucet_key: invalid keypair")
)

// SecretAccessor is the slice of the Secret Manager client we use.
type SecretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretspb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretspb.AccessSecretVersionResponse, error)
}

var _ SecretAccessor = (*secretmanager.Client)(nil)

// FaucetKeyLoader restores the optional funding wallet from Secret Manager.
// The faucet only pays for the run; the run's own principals stay ephemeral.
type FaucetKeyLoader struct {
	Secrets SecretAccessor
	log     *zap.Logger
}

// NewFaucetKeyLoader opens a Secret Manager client. credentialsFile may be
// empty, in which case application default credentials are used.
// The returned close func releases the client.
func NewFaucetKeyLoader(ctx context.Context, credentialsFile string, logger *zap.Logger) (*FaucetKeyLoader, func(), error) {
	var opts []option.ClientOption
	if f := strings.TrimSpace(credentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}

	c, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("faucet_key: secretmanager.NewClient: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FaucetKeyLoader{Secrets: c, log: logger.Named("faucet_key")}, func() { _ = c.Close() }, nil
}

// Load reads secretName, e.g.
//
//	"projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest"
//
// and restores the keypair it holds.
func (l *FaucetKeyLoader) Load(ctx context.Context, secretName string) (types.Account, error) {
	name := strings.TrimSpace(secretName)
	if name == "" {
		return types.Account{}, ErrFaucetSecretEmpty
	}
	if l == nil || l.Secrets == nil {
		return types.Account{}, fmt.Errorf("faucet_key: loader not configured")
	}

	resp, err := l.Secrets.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Account{}, fmt.Errorf("%w: %s", ErrFaucetSecretNotFound, name)
		}
		return types.Account{}, fmt.Errorf("faucet_key: AccessSecretVersion: %w", err)
	}

	keyBytes, err := DecodeKeypair(resp.GetPayload().GetData())
	if err != nil {
		return types.Account{}, err
	}

	acc, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return types.Account{}, fmt.Errorf("faucet_key: AccountFromBytes: %w", err)
	}

	l.log.Info("loaded faucet wallet",
		zap.String("secret", name),
		zap.String("pubkey", acc.PublicKey.ToBase58()),
	)
	return acc, nil
}

// DecodeKeypair restores a 64-byte ed25519 secret key from either the
// solana-keygen JSON form ([u8;64] as a number array) or a base58 string.
func DecodeKeypair(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidKeypair)
	}

	var keyBytes []byte
	if trimmed[0] == '[' {
		var ints []int
		if err := json.Unmarshal(trimmed, &ints); err != nil {
			return nil, fmt.Errorf("%w: unmarshal keypair json: %v", ErrInvalidKeypair, err)
		}
		keyBytes = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("%w: byte out of range at %d: %d", ErrInvalidKeypair, i, v)
			}
			keyBytes[i] = byte(v)
		}
	} else {
		b, err := base58.Decode(string(trimmed))
		if err != nil {
			return nil, fmt.Errorf("%w: base58: %v", ErrInvalidKeypair, err)
		}
		keyBytes = b
	}

	if len(keyBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeypair, len(keyBytes), ed25519.PrivateKeySize)
	}

	// the trailing half must be the public key of the leading seed
	priv := ed25519.PrivateKey(keyBytes)
	derived := ed25519.NewKeyFromSeed(priv.Seed())
	if !bytes.Equal(derived, priv) {
		return nil, fmt.Errorf("%w: public half does not match seed", ErrInvalidKeypair)
	}
	return keyBytes, nil
}
