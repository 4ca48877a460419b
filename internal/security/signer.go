package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	enc "github.com/named-data/ndnd/std/encoding"
	"github.com/named-data/ndnd/std/ndn"
	sig "github.com/named-data/ndnd/std/security/signer"

	ncerr "ndnpoke/internal/errors"
	"ndnpoke/internal/packet"
)

const keyIDSize = 8

// NewKeySigner returns the ndnd signer matching the key algorithm:
// RSA, ECDSA or Ed25519.  The KeyLocator is keyName.
func NewKeySigner(keyName enc.Name, key crypto.Signer) (ndn.Signer, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return sig.NewRsaSigner(keyName, k), nil
	case *ecdsa.PrivateKey:
		return sig.NewEccSigner(keyName, k), nil
	case ed25519.PrivateKey:
		return sig.NewEd25519Signer(keyName, k), nil
	default:
		return nil, fmt.Errorf("unsupported key type %T", key)
	}
}

// taggedSigner reports every signing failure as a SigningError for
// the signing-info string that selected it.
type taggedSigner struct {
	ndn.Signer
	info string
}

func (s taggedSigner) Sign(covered enc.Wire) ([]byte, error) {
	v, err := s.Signer.Sign(covered)
	if err != nil {
		return nil, ncerr.WrapSigning(s.info, err)
	}
	return v, nil
}

// KeyID derives the 8-byte key identifier of pub from the SHA-256 of
// its PKIX encoding.
func KeyID(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("encoding public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return sum[:keyIDSize], nil
}

// KeyNameFor builds /<identity>/KEY/<key-id> for pub.
func KeyNameFor(identity enc.Name, pub crypto.PublicKey) (enc.Name, error) {
	id, err := KeyID(pub)
	if err != nil {
		return nil, err
	}
	return packet.Append(identity, keyComponent, packet.BytesComponent(id)), nil
}
