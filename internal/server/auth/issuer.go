package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/jwtkeeper/internal/common"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/keys"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs tokens for authenticated principals with the RSA private key.
// It is safe for concurrent use and never reads the credential store.
type Issuer struct {
	key      *rsa.PrivateKey
	keyID    string
	issuer   string
	validity time.Duration
	now      func() time.Time
}

// NewIssuer fails with common.ErrConfiguration when the key pair is missing
// or the settings are unusable.
func NewIssuer(kp *keys.KeyPair, issuer string, validity time.Duration, opts ...Option) (*Issuer, error) {
	if kp == nil || kp.Private() == nil {
		return nil, fmt.Errorf("%w: issuer needs a private key", common.ErrConfiguration)
	}
	if issuer == "" {
		return nil, fmt.Errorf("%w: empty issuer", common.ErrConfiguration)
	}
	if validity <= 0 {
		return nil, fmt.Errorf("%w: token validity must be positive", common.ErrConfiguration)
	}

	o := buildOptions(opts)
	return &Issuer{
		key:      kp.Private(),
		keyID:    kp.KeyID(),
		issuer:   issuer,
		validity: validity,
		now:      o.now,
	}, nil
}

// Issue returns a compact RS256 JWT for p with exp = iat + validity.
func (i *Issuer) Issue(p *Principal) (string, error) {
	if p == nil {
		return "", errors.New("issue token: nil principal")
	}

	now := i.now().Truncate(time.Second)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		Scope: strings.Join(p.Authorities(), " "),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = i.keyID

	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
