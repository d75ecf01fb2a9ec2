// Package keys loads, validates and publishes the RSA key pair used to sign
// and verify tokens. A KeyPair is built once at startup and never changes.
package keys

import (
	"crypto"
	"crypto/rsa"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/jwtkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// MinKeyBits is the smallest accepted RSA modulus.
const MinKeyBits = 2048

// KeyPair is an immutable RSA signing key with its public half and key id.
type KeyPair struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
	keyID   string
}

// NewKeyPair validates the keys and derives the key id (RFC 7638 thumbprint
// of the public key). All failures wrap common.ErrConfiguration.
func NewKeyPair(private *rsa.PrivateKey, public *rsa.PublicKey) (*KeyPair, error) {
	if private == nil || public == nil {
		return nil, fmt.Errorf("%w: rsa key pair is incomplete", common.ErrConfiguration)
	}
	if err := private.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %w", common.ErrConfiguration, err)
	}
	if !private.PublicKey.Equal(public) {
		return nil, fmt.Errorf("%w: public key does not match private key", common.ErrConfiguration)
	}
	if bits := public.N.BitLen(); bits < MinKeyBits {
		return nil, fmt.Errorf("%w: rsa key is %d bits, need at least %d", common.ErrConfiguration, bits, MinKeyBits)
	}

	kid, err := thumbprint(public)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}

	return &KeyPair{private: private, public: public, keyID: kid}, nil
}

// ParsePEM builds a KeyPair from PEM encoded keys. PKCS#1 and PKCS#8
// private keys and PKIX or PKCS#1 public keys are accepted.
func ParsePEM(privatePEM, publicPEM []byte) (*KeyPair, error) {
	private, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %w", common.ErrConfiguration, err)
	}
	public, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: parse public key: %w", common.ErrConfiguration, err)
	}
	return NewKeyPair(private, public)
}

func (k *KeyPair) Private() *rsa.PrivateKey { return k.private }
func (k *KeyPair) Public() *rsa.PublicKey   { return k.public }
func (k *KeyPair) KeyID() string            { return k.keyID }

// JWKS returns a JWK set holding the public key, tagged with its key id,
// RS256 and signature use.
func (k *KeyPair) JWKS() (jwk.Set, error) {
	key, err := jwk.FromRaw(k.public)
	if err != nil {
		return nil, fmt.Errorf("jwk from public key: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, k.keyID); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, err
	}

	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		return nil, err
	}
	return set, nil
}

func thumbprint(public *rsa.PublicKey) (string, error) {
	key, err := jwk.FromRaw(public)
	if err != nil {
		return "", fmt.Errorf("jwk from public key: %w", err)
	}
	sum, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("jwk thumbprint: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sum), nil
}
