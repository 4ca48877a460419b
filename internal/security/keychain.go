package security

import (
	"bytes"
	"crypto"
	"crypto/ed25519"
	"fmt"
	"os"

	enc "github.com/named-data/ndnd/std/encoding"
	"github.com/named-data/ndnd/std/ndn"
	sig "github.com/named-data/ndnd/std/security/signer"
	"golang.org/x/crypto/ssh"

	ncerr "ndnpoke/internal/errors"
	"ndnpoke/internal/packet"
)

// PassphraseFunc supplies the passphrase of an encrypted key file.
type PassphraseFunc func(path string) ([]byte, error)

// KeyChain holds at most one private key and turns SigningInfo
// requests into signers.  Without a key it can still sign with
// DigestSha256, which is also what the default identity falls back to.
type KeyChain struct {
	defaultIdentity enc.Name
	key             crypto.Signer
	keyID           []byte
}

// NewKeyChain returns an empty key chain whose default identity is
// used for SigningInfo{Type: SignerDefault} once a key is loaded.
func NewKeyChain(defaultIdentity enc.Name) *KeyChain {
	return &KeyChain{defaultIdentity: defaultIdentity}
}

// HasKey reports whether a private key is loaded.
func (kc *KeyChain) HasKey() bool { return kc.key != nil }

// AddKey installs key as the key chain's signing key.
func (kc *KeyChain) AddKey(key crypto.Signer) error {
	if _, err := NewKeySigner(nil, key); err != nil {
		return err
	}
	id, err := KeyID(key.Public())
	if err != nil {
		return err
	}
	kc.key, kc.keyID = key, id
	return nil
}

// LoadKeyFile reads an OpenSSH or PEM private key.  prompt is called
// only when the file is encrypted; it may be nil.
func (kc *KeyChain) LoadKeyFile(path string, prompt PassphraseFunc) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}
	key, err := ParsePrivateKey(data, func() ([]byte, error) {
		if prompt == nil {
			return nil, fmt.Errorf("key %s is encrypted and no passphrase is available", path)
		}
		return prompt(path)
	})
	if err != nil {
		return fmt.Errorf("key %s: %w", path, err)
	}
	return kc.AddKey(key)
}

// ParsePrivateKey decodes an RSA, ECDSA or Ed25519 private key in any
// encoding golang.org/x/crypto/ssh understands.
func ParsePrivateKey(data []byte, passphrase func() ([]byte, error)) (crypto.Signer, error) {
	raw, err := ssh.ParseRawPrivateKey(data)
	if err != nil {
		if _, ok := err.(*ssh.PassphraseMissingError); !ok {
			return nil, fmt.Errorf("parsing key: %w", err)
		}
		pass, perr := passphrase()
		if perr != nil {
			return nil, perr
		}
		raw, err = ssh.ParseRawPrivateKeyWithPassphrase(data, pass)
		if err != nil {
			return nil, fmt.Errorf("decrypting key: %w", err)
		}
	}

	switch k := raw.(type) {
	case *ed25519.PrivateKey:
		return *k, nil
	case crypto.Signer:
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported private key type %T", raw)
	}
}

// SignerFor resolves info to a signer.  Every failure, including one
// from the returned signer's Sign, is a *errors.SigningError.
func (kc *KeyChain) SignerFor(info SigningInfo) (ndn.Signer, error) {
	s, err := kc.resolve(info)
	if err != nil {
		return nil, ncerr.WrapSigning(info.String(), err)
	}
	return taggedSigner{Signer: s, info: info.String()}, nil
}

func (kc *KeyChain) resolve(info SigningInfo) (ndn.Signer, error) {
	switch info.Type {
	case SignerSha256:
		return sig.NewSha256Signer(), nil
	case SignerDefault:
		if kc.key == nil {
			return sig.NewSha256Signer(), nil
		}
		return NewKeySigner(kc.keyNameFor(kc.defaultIdentity), kc.key)
	case SignerIdentity:
		if kc.key == nil {
			return nil, fmt.Errorf("identity %s: %w", info.Name, ncerr.ErrNoKey)
		}
		return NewKeySigner(kc.keyNameFor(info.Name), kc.key)
	case SignerKey, SignerCert:
		if kc.key == nil {
			return nil, fmt.Errorf("key %s: %w", info.keyName(), ncerr.ErrNoKey)
		}
		keyName := info.keyName()
		if !bytes.Equal(keyName[len(keyName)-1].Val, kc.keyID) {
			return nil, fmt.Errorf("key %s does not match the loaded key (id %x)", keyName, kc.keyID)
		}
		return NewKeySigner(keyName, kc.key)
	default:
		return nil, fmt.Errorf("unknown signer type %d", info.Type)
	}
}

// DefaultSigner is the signer for management commands.
func (kc *KeyChain) DefaultSigner() ndn.Signer {
	s, err := kc.SignerFor(SigningInfo{Type: SignerDefault})
	if err != nil {
		return sig.NewSha256Signer()
	}
	return s
}

func (kc *KeyChain) keyNameFor(identity enc.Name) enc.Name {
	return packet.Append(identity, keyComponent, packet.BytesComponent(kc.keyID))
}
