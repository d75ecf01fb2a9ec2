package auth

import (
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/jwtkeeper/internal/server/keys"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/models"
)

var (
	keysOnce      sync.Once
	testKeys      *keys.KeyPair
	otherKeys     *keys.KeyPair
	testPublicPEM []byte
)

func mustKeys(t *testing.T) (*keys.KeyPair, *keys.KeyPair) {
	t.Helper()
	keysOnce.Do(func() {
		testKeys, testPublicPEM = generate()
		otherKeys, _ = generate()
	})
	return testKeys, otherKeys
}

func generate() (*keys.KeyPair, []byte) {
	priv, pub, err := keys.Generate(2048)
	if err != nil {
		panic(err)
	}
	kp, err := keys.ParsePEM(priv, pub)
	if err != nil {
		panic(err)
	}
	return kp, pub
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func alice(t *testing.T) *Principal {
	t.Helper()
	p, err := Adapt(&models.User{
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		Authorities:  []string{"read", "write"},
		Enabled:      true,
	})
	if err != nil {
		t.Fatalf("Adapt error: %v", err)
	}
	return p
}

// flipBit decodes one base64url segment of token, flips a bit and re-encodes.
func flipBit(t *testing.T, token string, segment, bit int) string {
	t.Helper()
	parts := strings.Split(token, ".")
	raw, err := base64.RawURLEncoding.DecodeString(parts[segment])
	if err != nil {
		t.Fatalf("decode segment %d: %v", segment, err)
	}
	raw[(bit/8)%len(raw)] ^= 1 << (bit % 8)
	parts[segment] = base64.RawURLEncoding.EncodeToString(raw)
	return strings.Join(parts, ".")
}

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// flipEncodedBit flips one of the six bits carried by character pos of a
// segment, without decoding it. pos may be negative to count from the end.
func flipEncodedBit(t *testing.T, token string, segment, pos, bit int) string {
	t.Helper()
	parts := strings.Split(token, ".")
	seg := []byte(parts[segment])
	if pos < 0 {
		pos += len(seg)
	}
	v := strings.IndexByte(base64URLAlphabet, seg[pos])
	if v < 0 {
		t.Fatalf("segment %d: %q is not base64url", segment, seg[pos])
	}
	seg[pos] = base64URLAlphabet[v^(1<<bit)]
	parts[segment] = string(seg)
	return strings.Join(parts, ".")
}
