// Package security signs ndnpoke's outgoing packets.
//
// It understands the ndn-cxx signing-info string syntax and keeps a
// small KeyChain that loads a private key file and hands out ndnd
// signers, for both the Data packet and the prefix-registration
// command Interests.
package security

import (
	"fmt"
	"strings"

	enc "github.com/named-data/ndnd/std/encoding"

	"ndnpoke/internal/packet"
)

// DigestSha256Identity is the reserved identity that selects a plain
// SHA-256 digest instead of a key-based signature.
const DigestSha256Identity = "/localhost/identity/digest-sha256"

// SignerType selects how a SigningInfo chooses its signer.
type SignerType int

const (
	// SignerDefault uses the key chain's default identity.
	SignerDefault SignerType = iota
	// SignerIdentity signs with the key of a named identity.
	SignerIdentity
	// SignerKey signs with a specific named key.
	SignerKey
	// SignerCert signs with the key behind a named certificate.
	SignerCert
	// SignerSha256 uses DigestSha256, no key involved.
	SignerSha256
)

func (t SignerType) String() string {
	switch t {
	case SignerIdentity:
		return "id"
	case SignerKey:
		return "key"
	case SignerCert:
		return "cert"
	case SignerSha256:
		return "digest"
	default:
		return "default"
	}
}

// SigningInfo is a parsed signing request.
type SigningInfo struct {
	Type SignerType
	Name enc.Name // identity, key or certificate name; nil for default/digest
}

// DigestSigning returns the SigningInfo for DigestSha256.
func DigestSigning() SigningInfo { return SigningInfo{Type: SignerSha256} }

// ParseSigningInfo parses "", "id:/name", "key:/name/KEY/id" or
// "cert:/name/KEY/id/issuer/version".  The identity
// /localhost/identity/digest-sha256 selects DigestSha256.
func ParseSigningInfo(s string) (SigningInfo, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SigningInfo{Type: SignerDefault}, nil
	}

	scheme, rest, ok := strings.Cut(s, ":")
	if !ok {
		return SigningInfo{}, fmt.Errorf("signing info %q: expected <scheme>:<name>", s)
	}

	var typ SignerType
	switch scheme {
	case "id":
		typ = SignerIdentity
	case "key":
		typ = SignerKey
	case "cert":
		typ = SignerCert
	default:
		return SigningInfo{}, fmt.Errorf("signing info %q: unknown scheme %q", s, scheme)
	}
	if rest == "" {
		return SigningInfo{}, fmt.Errorf("signing info %q: name is empty", s)
	}

	name, err := packet.ParseName(rest)
	if err != nil {
		return SigningInfo{}, fmt.Errorf("signing info: %w", err)
	}
	if typ == SignerIdentity && isDigestIdentity(name) {
		return DigestSigning(), nil
	}
	if typ == SignerKey && !isKeyName(name) {
		return SigningInfo{}, fmt.Errorf("signing info %q: key name must end with /KEY/<key-id>", s)
	}
	if typ == SignerCert && (len(name) < 4 || !isKeyName(name[:len(name)-2])) {
		return SigningInfo{}, fmt.Errorf("signing info %q: certificate name must end with /KEY/<key-id>/<issuer>/<version>", s)
	}
	return SigningInfo{Type: typ, Name: name}, nil
}

func (si SigningInfo) String() string {
	switch si.Type {
	case SignerDefault:
		return ""
	case SignerSha256:
		return "id:" + DigestSha256Identity
	default:
		return si.Type.String() + ":" + si.Name.String()
	}
}

// keyName returns the key name the SigningInfo refers to, or nil when
// it only names an identity.
func (si SigningInfo) keyName() enc.Name {
	switch si.Type {
	case SignerKey:
		return si.Name
	case SignerCert:
		return si.Name[:len(si.Name)-2]
	default:
		return nil
	}
}

// identity returns the identity part of any named SigningInfo.
func (si SigningInfo) identity() enc.Name {
	if kn := si.keyName(); kn != nil {
		return kn[:len(kn)-2]
	}
	return si.Name
}

var keyComponent = packet.Component("KEY")

func isDigestIdentity(name enc.Name) bool {
	digest, err := packet.ParseName(DigestSha256Identity)
	return err == nil && packet.NameEqual(name, digest)
}

func isKeyName(name enc.Name) bool {
	return len(name) >= 2 && packet.ComponentEqual(name[len(name)-2], keyComponent)
}
