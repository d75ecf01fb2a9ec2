package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jwtkeeper/internal/common"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/keys"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks bearer tokens against the RSA public key. Only RS256 is
// accepted regardless of the alg header.
type Verifier struct {
	key    *rsa.PublicKey
	parser *jwt.Parser
}

// NewVerifier builds a Verifier. When verifyIssuer is set, tokens whose iss
// differs from issuer are rejected.
func NewVerifier(kp *keys.KeyPair, issuer string, verifyIssuer bool, opts ...Option) (*Verifier, error) {
	if kp == nil || kp.Public() == nil {
		return nil, fmt.Errorf("%w: verifier needs a public key", common.ErrConfiguration)
	}

	o := buildOptions(opts)
	parserOpts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(o.now),
		jwt.WithStrictDecoding(),
	}
	if verifyIssuer {
		if issuer == "" {
			return nil, fmt.Errorf("%w: empty issuer", common.ErrConfiguration)
		}
		parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
	}

	return &Verifier{key: kp.Public(), parser: jwt.NewParser(parserOpts...)}, nil
}

// Verify parses and validates token. Failures wrap common.ErrorUnauthorized
// together with the specific reason (ErrTokenMalformed,
// ErrTokenSignatureInvalid, ErrTokenExpired, ErrTokenIssuerMismatch,
// ErrUnsupportedAlgorithm or ErrInvalidToken).
func (v *Verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := v.parser.ParseWithClaims(token, claims, v.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", common.ErrorUnauthorized, classify(err), err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
	}

	return claims, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	if t.Method == nil || t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
		return nil, common.ErrUnsupportedAlgorithm
	}
	return v.key, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, common.ErrUnsupportedAlgorithm), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrUnsupportedAlgorithm
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return common.ErrTokenIssuerMismatch
	default:
		return common.ErrInvalidToken
	}
}
