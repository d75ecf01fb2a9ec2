package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// Generate creates a new RSA key pair and returns it PEM encoded: the
// private key as PKCS#8 "PRIVATE KEY", the public key as PKIX "PUBLIC KEY".
func Generate(bits int) (privatePEM, publicPEM []byte, err error) {
	if bits < MinKeyBits {
		return nil, nil, fmt.Errorf("rsa key size %d is below %d", bits, MinKeyBits)
	}

	private, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, err
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return nil, nil, err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	if err != nil {
		return nil, nil, err
	}

	privatePEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	publicPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privatePEM, publicPEM, nil
}
