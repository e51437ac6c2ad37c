package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the claim set extracted from a verified token. It is never
// persisted by this service.
type Identity struct {
	UserID      int64
	WorkspaceID int64
}

type Claims struct {
	UserID      int64 `json:"user_id"`
	WorkspaceID int64 `json:"ws_id"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens minted by the chat server. It holds only
// the Ed25519 public key, so this process can authenticate callers but never
// issue tokens itself.
type Verifier struct {
	key ed25519.PublicKey
}

func NewVerifier(key ed25519.PublicKey) *Verifier {
	return &Verifier{key: key}
}

// LoadVerifier reads a PEM-encoded Ed25519 public key from disk.
func LoadVerifier(path string) (*Verifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	key, err := jwt.ParseEdPublicKeyFromPEM(raw)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("public key is not ed25519")
	}
	return NewVerifier(pub), nil
}

// small clock-skew allowance between the two services
const leeway = 2 * time.Minute

// Verify parses and validates a token, returning the caller's identity.
// Safe for concurrent use; no state is mutated.
func (v *Verifier) Verify(tokenStr string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// accept only EdDSA, the method the chat server signs with
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.key, nil
	}, jwt.WithLeeway(leeway), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, WorkspaceID: claims.WorkspaceID}, nil
}
